package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// numberingService produces candidate journal numbers from the current
// maximum suffix stored in the backend. Candidates are not reserved here;
// the journal header insert (primary key on the number) is the claim, and
// racing writers collide there with a uniqueness violation.
type numberingService struct {
	journalRepo portsrepo.SequenceReader
}

// NewNumberingService creates a new numbering service.
func NewNumberingService(journalRepo portsrepo.SequenceReader) portssvc.NumberingSvcFacade {
	return &numberingService{journalRepo: journalRepo}
}

var _ portssvc.NumberingSvcFacade = (*numberingService)(nil)

// PreviewNextNumber returns the candidate number a create on this date would
// claim next. Read-only: repeated calls without an intervening insert return
// the same value.
func (s *numberingService) PreviewNextNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := domain.DatePrefix(date)
	maxSeq, err := s.journalRepo.MaxSequenceForDate(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read max sequence for prefix %s: %w", prefix, err)
	}
	return domain.FormatJournalNumber(date, maxSeq+1)
}

// AllocateBatch returns count strictly increasing candidates for the date.
// The hint map is owned by this call and discarded with it: the backend is
// queried once per date prefix, subsequent candidates increment the hint.
func (s *numberingService) AllocateBatch(ctx context.Context, date time.Time, count int) ([]string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if count < 1 {
		return nil, fmt.Errorf("%w: batch count must be at least 1, got %d", apperrors.ErrValidation, count)
	}

	hints := make(map[string]int)
	prefix := domain.DatePrefix(date)

	numbers := make([]string, 0, count)
	for i := 0; i < count; i++ {
		next, ok := hints[prefix]
		if !ok {
			maxSeq, err := s.journalRepo.MaxSequenceForDate(ctx, prefix)
			if err != nil {
				return nil, fmt.Errorf("failed to read max sequence for prefix %s: %w", prefix, err)
			}
			next = maxSeq + 1
		}
		number, err := domain.FormatJournalNumber(date, next)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, number)
		hints[prefix] = next + 1
	}

	logger.Debug("Allocated journal number batch",
		slog.String("prefix", prefix),
		slog.Int("count", count),
		slog.String("first", numbers[0]),
		slog.String("last", numbers[len(numbers)-1]))
	return numbers, nil
}

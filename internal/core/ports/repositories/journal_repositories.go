package repositories

import (
	"context"
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
)

// ListJournalsFilter narrows a journal listing. Nil fields mean "any".
type ListJournalsFilter struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    *domain.ApprovalStatus
	Limit     int
	NextToken *string
}

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByNumber retrieves a journal header by its journal number.
	FindJournalByNumber(ctx context.Context, journalNumber string) (*domain.JournalHeader, error)

	// FindDetailsByNumber retrieves all detail lines of a journal, ordered by line number.
	FindDetailsByNumber(ctx context.Context, journalNumber string) ([]domain.JournalDetail, error)

	// ListJournals retrieves a filtered, token-paginated page of journal headers
	// ordered by journal number descending. It returns the headers and a token
	// for the next page (nil when exhausted).
	ListJournals(ctx context.Context, filter ListJournalsFilter) ([]domain.JournalHeader, *string, error)
}

// SequenceReader exposes the current allocation state for a date prefix.
type SequenceReader interface {
	// MaxSequenceForDate returns the highest numeric suffix among journal
	// numbers sharing the given 8-digit date prefix, or 0 when none exist.
	MaxSequenceForDate(ctx context.Context, datePrefix string) (int, error)
}

// JournalWriter defines write operations for journal data. Each method that
// touches multiple tables runs inside one database transaction.
type JournalWriter interface {
	// SaveJournal inserts a header, its detail lines and any attachment
	// metadata atomically. A primary-key collision on the journal number
	// surfaces as apperrors.ErrDuplicate.
	SaveJournal(ctx context.Context, header domain.JournalHeader, details []domain.JournalDetail, attachments []domain.Attachment) error

	// ReplaceJournal updates the header row and replaces all detail lines
	// (delete-all-then-reinsert) atomically.
	ReplaceJournal(ctx context.Context, header domain.JournalHeader, details []domain.JournalDetail) error

	// DeleteJournal removes attachments metadata, detail lines and the header
	// atomically.
	DeleteJournal(ctx context.Context, journalNumber string) error

	// UpdateApprovalStatus transitions a journal's workflow state, stamping or
	// clearing the approver fields.
	UpdateApprovalStatus(ctx context.Context, journalNumber string, status domain.ApprovalStatus, approvedBy *string, approvedAt *time.Time, rejectionReason *string, updatedBy string, updatedAt time.Time) error
}

// AttachmentRepository manages attachment metadata outside of journal writes.
type AttachmentRepository interface {
	SaveAttachment(ctx context.Context, attachment domain.Attachment) error
	FindAttachmentByID(ctx context.Context, attachmentID string) (*domain.Attachment, error)
	FindAttachmentsByJournal(ctx context.Context, journalNumber string) ([]domain.Attachment, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	SequenceReader
	AttachmentRepository
}

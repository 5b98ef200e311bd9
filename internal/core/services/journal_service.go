package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

var (
	ErrJournalMinLines    = errors.New("journal must have at least two detail lines")
	ErrJournalOneSided    = errors.New("journal must contain at least one debit line and one credit line")
	ErrJournalUnbalanced  = errors.New("debit and credit totals do not balance")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDescriptionMissing = errors.New("journal description is required")
	ErrJournalApproved    = errors.New("approved journal cannot be deleted")
	ErrNotPending         = errors.New("journal is not pending approval")
)

// balanceTolerance absorbs rounding noise in submitted amounts. The balance
// invariant holds when |debits - credits| <= 0.01.
var balanceTolerance = decimal.NewFromFloat(0.01)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 50 * time.Millisecond
)

// journalService provides journal entry operations: validation, numbered
// creation under concurrent writers, approval workflow and CSV import.
type journalService struct {
	journalRepo  portsrepo.JournalRepositoryFacade
	accountSvc   portssvc.AccountSvcFacade
	numberingSvc portssvc.NumberingSvcFacade

	// Bounded optimistic retry for journal number contention. Linear backoff:
	// sleep retryBackoff * attempt between attempts.
	maxRetries   int
	retryBackoff time.Duration
}

// JournalServiceOption configures the journal service.
type JournalServiceOption func(*journalService)

// WithRetryPolicy overrides the allocation retry bound and backoff base.
func WithRetryPolicy(maxRetries int, backoff time.Duration) JournalServiceOption {
	return func(s *journalService) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
		if backoff > 0 {
			s.retryBackoff = backoff
		}
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade, numberingSvc portssvc.NumberingSvcFacade, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo:  journalRepo,
		accountSvc:   accountSvc,
		numberingSvc: numberingSvc,
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateDetails checks the structural and balance invariants of submitted
// detail lines and returns the debit-side total (the journal amount).
func (s *journalService) validateDetails(details []dto.JournalDetailRequest) (decimal.Decimal, error) {
	if len(details) < 2 {
		return decimal.Zero, ErrJournalMinLines
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero
	hasDebit := false
	hasCredit := false

	for i, line := range details {
		if line.TotalAmount.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("%w: line %d total amount must be positive", apperrors.ErrValidation, i+1)
		}
		switch domain.DebitCredit(line.Side) {
		case domain.Debit:
			hasDebit = true
			debitsSum = debitsSum.Add(line.TotalAmount)
		case domain.Credit:
			hasCredit = true
			creditsSum = creditsSum.Add(line.TotalAmount)
		default:
			return decimal.Zero, fmt.Errorf("%w: line %d side must be DEBIT or CREDIT", apperrors.ErrValidation, i+1)
		}
	}

	if !hasDebit || !hasCredit {
		return decimal.Zero, ErrJournalOneSided
	}

	if debitsSum.Sub(creditsSum).Abs().GreaterThan(balanceTolerance) {
		return decimal.Zero, fmt.Errorf("%w: ¥%s vs ¥%s",
			ErrJournalUnbalanced, debitsSum.String(), creditsSum.String())
	}

	return debitsSum, nil
}

// validateAccounts checks that every referenced account exists and is active.
func (s *journalService) validateAccounts(ctx context.Context, details []dto.JournalDetailRequest) error {
	codes := make([]string, 0, len(details))
	seen := make(map[string]struct{}, len(details))
	for _, line := range details {
		if _, ok := seen[line.AccountCode]; !ok {
			seen[line.AccountCode] = struct{}{}
			codes = append(codes, line.AccountCode)
		}
	}

	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, code := range codes {
		acc, found := accounts[code]
		if !found {
			return fmt.Errorf("%w: code %s", ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, code)
		}
	}
	return nil
}

// toDomainDetails converts request lines into domain lines with 1-based line
// numbers assigned from slice order.
func toDomainDetails(journalNumber string, details []dto.JournalDetailRequest) []domain.JournalDetail {
	domainDetails := make([]domain.JournalDetail, len(details))
	for i, line := range details {
		domainDetails[i] = domain.JournalDetail{
			JournalNumber:  journalNumber,
			LineNo:         i + 1,
			Side:           domain.DebitCredit(line.Side),
			AccountCode:    line.AccountCode,
			SubAccountCode: line.SubAccountCode,
			PartnerCode:    line.PartnerCode,
			AnalysisCode:   line.AnalysisCode,
			DepartmentCode: line.DepartmentCode,
			BaseAmount:     line.BaseAmount,
			TaxAmount:      line.TaxAmount,
			TotalAmount:    line.TotalAmount,
			TaxCode:        line.TaxCode,
			Memo:           line.Memo,
		}
	}
	return domainDetails
}

// CreateJournal validates the request, then runs the allocate-then-insert
// sequence under bounded retry: the candidate number is computed from the
// current maximum, the insert claims it via the primary key, and a collision
// with a concurrent writer retries the whole sequence after a linearly
// increasing delay.
func (s *journalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: journal date is required", apperrors.ErrValidation)
	}

	totalAmount, err := s.validateDetails(req.Details)
	if err != nil {
		return nil, err
	}
	if err := s.validateAccounts(ctx, req.Details); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		number, err := s.numberingSvc.PreviewNextNumber(ctx, req.Date)
		if err != nil {
			lastErr = err
		} else {
			header := s.newPendingHeader(number, req.Date, req.Description, totalAmount, creatorUserID)
			err = s.journalRepo.SaveJournal(ctx, header, toDomainDetails(number, req.Details), nil)
			if err == nil {
				logger.Info("Journal created",
					slog.String("journal_number", number),
					slog.Int("attempt", attempt))
				return &header, nil
			}
			lastErr = err
			if errors.Is(err, apperrors.ErrDuplicate) {
				logger.Warn("Journal number contention, retrying",
					slog.String("journal_number", number),
					slog.Int("attempt", attempt))
			} else {
				logger.Error("Failed to save journal",
					slog.String("journal_number", number),
					slog.String("error", err.Error()))
			}
		}

		if attempt < s.maxRetries {
			time.Sleep(s.retryBackoff * time.Duration(attempt))
		}
	}

	return nil, fmt.Errorf("sequence generation failed after %d retries: %w", s.maxRetries, lastErr)
}

func (s *journalService) newPendingHeader(number string, date time.Time, description string, totalAmount decimal.Decimal, userID string) domain.JournalHeader {
	now := time.Now().UTC()
	return domain.JournalHeader{
		JournalNumber: number,
		JournalDate:   date,
		Description:   description,
		TotalAmount:   totalAmount,
		Status:        domain.StatusPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// GetJournal retrieves a journal header with its detail lines.
func (s *journalService) GetJournal(ctx context.Context, journalNumber string) (*domain.JournalHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	header, err := s.journalRepo.FindJournalByNumber(ctx, journalNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal", slog.String("journal_number", journalNumber), slog.String("error", err.Error()))
		}
		return nil, err
	}

	details, err := s.journalRepo.FindDetailsByNumber(ctx, journalNumber)
	if err != nil {
		logger.Error("Failed to fetch journal details", slog.String("journal_number", journalNumber), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve details for journal %s: %w", journalNumber, apperrors.ErrInternal)
	}
	header.Details = details

	return header, nil
}

// ListJournals retrieves a filtered, token-paginated page of journals.
func (s *journalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := portsrepo.ListJournalsFilter{
		DateFrom:  params.DateFrom,
		DateTo:    params.DateTo,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	if params.Status != nil {
		status := domain.ApprovalStatus(*params.Status)
		switch status {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
			filter.Status = &status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *params.Status)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, filter)
	if err != nil {
		logger.Error("Failed to list journals", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve journals: %w", err)
	}

	responses := make([]dto.JournalResponse, len(journals))
	for i := range journals {
		responses[i] = dto.ToJournalResponse(&journals[i])
	}

	return &dto.ListJournalsResponse{Journals: responses, NextToken: nextToken}, nil
}

// UpdateJournal replaces a journal's content in full: the header is updated,
// detail lines are deleted and reinserted within one transaction, and the
// approval status falls back to PENDING with approver fields cleared. The
// posting date may only move within the day encoded in the journal number.
func (s *journalService) UpdateJournal(ctx context.Context, journalNumber string, req dto.UpdateJournalRequest, userID string) (*domain.JournalHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.journalRepo.FindJournalByNumber(ctx, journalNumber)
	if err != nil {
		return nil, err
	}

	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}
	// The number embeds the posting day; a date on another day would leave
	// the number sorted against the wrong day's entries.
	if !strings.HasPrefix(journalNumber, domain.DatePrefix(req.Date)) {
		return nil, fmt.Errorf("%w: journal date must stay within the day of number %s; delete and recreate to move it", apperrors.ErrValidation, journalNumber)
	}
	totalAmount, err := s.validateDetails(req.Details)
	if err != nil {
		return nil, err
	}
	if err := s.validateAccounts(ctx, req.Details); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	header := domain.JournalHeader{
		JournalNumber:   journalNumber,
		JournalDate:     req.Date,
		Description:     req.Description,
		TotalAmount:     totalAmount,
		Status:          domain.StatusPending,
		ApprovedBy:      nil,
		ApprovedAt:      nil,
		RejectionReason: nil,
		AuditFields: domain.AuditFields{
			CreatedAt:     existing.CreatedAt,
			CreatedBy:     existing.CreatedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.journalRepo.ReplaceJournal(ctx, header, toDomainDetails(journalNumber, req.Details)); err != nil {
		logger.Error("Failed to replace journal", slog.String("journal_number", journalNumber), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update journal %s: %w", journalNumber, err)
	}

	logger.Info("Journal updated, status reset to PENDING", slog.String("journal_number", journalNumber))
	return &header, nil
}

// DeleteJournal removes the header, its detail lines and attachment metadata
// in one transaction; either everything goes or nothing does. Approved
// journals are protected until an edit or rejection resets them.
func (s *journalService) DeleteJournal(ctx context.Context, journalNumber string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.journalRepo.FindJournalByNumber(ctx, journalNumber)
	if err != nil {
		return err
	}
	if existing.Status == domain.StatusApproved {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrJournalApproved)
	}

	attachments, err := s.journalRepo.FindAttachmentsByJournal(ctx, journalNumber)
	if err != nil {
		logger.Error("Failed to list attachments before delete", slog.String("journal_number", journalNumber), slog.String("error", err.Error()))
		return fmt.Errorf("failed to list attachments for journal %s: %w", journalNumber, err)
	}

	if err := s.journalRepo.DeleteJournal(ctx, journalNumber); err != nil {
		logger.Error("Failed to delete journal", slog.String("journal_number", journalNumber), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete journal %s: %w", journalNumber, err)
	}

	// Disk cleanup is best-effort once the transaction has committed; an
	// orphaned file is preferable to a half-deleted journal.
	for _, att := range attachments {
		if err := os.Remove(att.StoragePath); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove attachment file", slog.String("path", att.StoragePath), slog.String("error", err.Error()))
		}
	}

	logger.Info("Journal deleted", slog.String("journal_number", journalNumber), slog.String("deleted_by", userID))
	return nil
}

// ApproveJournal transitions a PENDING journal to APPROVED, stamping the
// approver identity and time.
func (s *journalService) ApproveJournal(ctx context.Context, journalNumber string, approverUserID string) (*domain.JournalHeader, error) {
	return s.transition(ctx, journalNumber, approverUserID, domain.StatusApproved, nil)
}

// RejectJournal transitions a PENDING journal to REJECTED with a reason.
func (s *journalService) RejectJournal(ctx context.Context, journalNumber string, approverUserID string, reason string) (*domain.JournalHeader, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}
	return s.transition(ctx, journalNumber, approverUserID, domain.StatusRejected, &reason)
}

func (s *journalService) transition(ctx context.Context, journalNumber string, approverUserID string, target domain.ApprovalStatus, reason *string) (*domain.JournalHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	header, err := s.journalRepo.FindJournalByNumber(ctx, journalNumber)
	if err != nil {
		return nil, err
	}
	if header.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: %s (current status %s)", apperrors.ErrConflict, ErrNotPending, header.Status)
	}

	now := time.Now().UTC()
	if err := s.journalRepo.UpdateApprovalStatus(ctx, journalNumber, target, &approverUserID, &now, reason, approverUserID, now); err != nil {
		logger.Error("Failed to update approval status", slog.String("journal_number", journalNumber), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update approval status of journal %s: %w", journalNumber, err)
	}

	header.Status = target
	header.ApprovedBy = &approverUserID
	header.ApprovedAt = &now
	header.RejectionReason = reason
	header.LastUpdatedAt = now
	header.LastUpdatedBy = approverUserID

	logger.Info("Journal status updated",
		slog.String("journal_number", journalNumber),
		slog.String("status", string(target)))
	return header, nil
}

// ImportJournals creates one journal per request entry (a CSV entry may span
// several file rows). Entries are grouped by date prefix and numbered through
// the batch allocator so only the first entry of each prefix queries the
// backend; a candidate lost to a concurrent writer falls back to the retrying
// create path for that entry alone. Failures are reported per entry, in
// 1-based request order.
func (s *journalService) ImportJournals(ctx context.Context, reqs []dto.CreateJournalRequest, creatorUserID string) (*dto.ImportJournalsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: import contains no rows", apperrors.ErrValidation)
	}

	// Group row indexes by date prefix, preserving file order within a group.
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, req := range reqs {
		prefix := domain.DatePrefix(req.Date)
		if _, ok := groups[prefix]; !ok {
			order = append(order, prefix)
		}
		groups[prefix] = append(groups[prefix], i)
	}

	resp := &dto.ImportJournalsResponse{}
	for _, prefix := range order {
		idxs := groups[prefix]
		candidates, err := s.numberingSvc.AllocateBatch(ctx, reqs[idxs[0]].Date, len(idxs))
		if err != nil {
			return nil, fmt.Errorf("failed to allocate numbers for prefix %s: %w", prefix, err)
		}

		for n, idx := range idxs {
			req := reqs[idx]
			number, err := s.importOne(ctx, req, candidates[n], creatorUserID)
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("entry %d: %v", idx+1, err))
				continue
			}
			resp.Imported++
			resp.JournalNumbers = append(resp.JournalNumbers, number)
		}
	}

	logger.Info("Journal import finished",
		slog.Int("imported", resp.Imported),
		slog.Int("failed", len(resp.Errors)))
	return resp, nil
}

// importOne tries the batch candidate first; if a concurrent writer claimed
// it, the row goes through the normal retrying create.
func (s *journalService) importOne(ctx context.Context, req dto.CreateJournalRequest, candidate string, creatorUserID string) (string, error) {
	if req.Description == "" {
		return "", ErrDescriptionMissing
	}
	totalAmount, err := s.validateDetails(req.Details)
	if err != nil {
		return "", err
	}
	if err := s.validateAccounts(ctx, req.Details); err != nil {
		return "", err
	}

	header := s.newPendingHeader(candidate, req.Date, req.Description, totalAmount, creatorUserID)
	err = s.journalRepo.SaveJournal(ctx, header, toDomainDetails(candidate, req.Details), nil)
	if err == nil {
		return candidate, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicate) {
		return "", err
	}

	created, err := s.CreateJournal(ctx, req, creatorUserID)
	if err != nil {
		return "", err
	}
	return created.JournalNumber, nil
}

// AttachFile records uploaded file metadata against an existing journal.
func (s *journalService) AttachFile(ctx context.Context, journalNumber string, attachment domain.Attachment) error {
	if _, err := s.journalRepo.FindJournalByNumber(ctx, journalNumber); err != nil {
		return err
	}
	attachment.JournalNumber = journalNumber
	if err := s.journalRepo.SaveAttachment(ctx, attachment); err != nil {
		return fmt.Errorf("failed to save attachment for journal %s: %w", journalNumber, err)
	}
	return nil
}

// GetAttachment retrieves attachment metadata for download.
func (s *journalService) GetAttachment(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	return s.journalRepo.FindAttachmentByID(ctx, attachmentID)
}

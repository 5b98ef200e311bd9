package services

import (
	"context"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
)

// JournalSvcFacade exposes journal entry operations.
type JournalSvcFacade interface {
	// CreateJournal validates the request, allocates a journal number with
	// bounded retry and persists header plus details atomically.
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalHeader, error)

	// GetJournal retrieves a journal header with its detail lines.
	GetJournal(ctx context.Context, journalNumber string) (*domain.JournalHeader, error)

	// ListJournals retrieves a filtered, token-paginated page of journals.
	ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)

	// UpdateJournal replaces a journal's content and resets its approval
	// status back to PENDING, clearing approver fields.
	UpdateJournal(ctx context.Context, journalNumber string, req dto.UpdateJournalRequest, userID string) (*domain.JournalHeader, error)

	// DeleteJournal removes the header, details and attachment metadata
	// atomically. Approved journals cannot be deleted.
	DeleteJournal(ctx context.Context, journalNumber string, userID string) error

	// ApproveJournal transitions a PENDING journal to APPROVED.
	ApproveJournal(ctx context.Context, journalNumber string, approverUserID string) (*domain.JournalHeader, error)

	// RejectJournal transitions a PENDING journal to REJECTED with a reason.
	RejectJournal(ctx context.Context, journalNumber string, approverUserID string, reason string) (*domain.JournalHeader, error)

	// ImportJournals creates one journal per parsed CSV row, allocating
	// numbers through the batch allocator.
	ImportJournals(ctx context.Context, reqs []dto.CreateJournalRequest, creatorUserID string) (*dto.ImportJournalsResponse, error)

	// AttachFile stores an uploaded file's metadata against a journal.
	AttachFile(ctx context.Context, journalNumber string, attachment domain.Attachment) error

	// GetAttachment retrieves attachment metadata for download.
	GetAttachment(ctx context.Context, attachmentID string) (*domain.Attachment, error)
}

package services

import (
	"context"
	"time"
)

// NumberingSvcFacade allocates human-readable journal numbers.
//
// A candidate returned by either method is not reserved; persisting the
// owning header row (journal number as primary key) is the actual claim.
// Concurrent callers computing the same candidate collide at insert time
// with a uniqueness violation, which CreateJournal absorbs by retrying.
type NumberingSvcFacade interface {
	// PreviewNextNumber returns the next candidate for a posting date.
	// Read-only and idempotent while no insert intervenes.
	PreviewNextNumber(ctx context.Context, date time.Time) (string, error)

	// AllocateBatch returns count strictly increasing candidates sharing the
	// date's prefix. The backend is queried once per prefix per call; later
	// candidates come from a call-scoped hint, never process-wide state.
	AllocateBatch(ctx context.Context, date time.Time, count int) ([]string, error)
}

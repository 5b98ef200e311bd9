package services

import (
	"context"
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
)

// ReportingSvcFacade produces trial balance and reconciliation reports.
type ReportingSvcFacade interface {
	// TrialBalance reports opening/period/closing balances per account.
	TrialBalance(ctx context.Context, from, to time.Time) (*dto.TrialBalanceResponse, error)

	// Reconciliation compares each active mapping's two sides over the range.
	Reconciliation(ctx context.Context, from, to time.Time) (*dto.ReconciliationResponse, error)
}

// ReconciliationSvcFacade manages reconciliation mappings.
type ReconciliationSvcFacade interface {
	CreateMapping(ctx context.Context, req dto.CreateReconciliationMappingRequest, userID string) (*domain.ReconciliationMapping, error)
	GetMapping(ctx context.Context, mappingID string) (*domain.ReconciliationMapping, error)
	ListMappings(ctx context.Context, onlyActive bool) ([]domain.ReconciliationMapping, error)
	DeactivateMapping(ctx context.Context, mappingID string, userID string) error
}

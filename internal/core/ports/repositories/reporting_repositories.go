package repositories

import (
	"context"
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository aggregates journal data for reports.
type ReportingRepository interface {
	// GetTrialBalanceSums returns per-account debit/credit totals split into
	// "before the period" and "within the period" buckets for the given range.
	GetTrialBalanceSums(ctx context.Context, from, to time.Time) ([]domain.AccountPeriodSums, error)

	// GetDepartmentAccountNet returns the net posted amount (debits minus
	// credits) for one department+account pairing over the range.
	GetDepartmentAccountNet(ctx context.Context, departmentCode, accountCode string, from, to time.Time) (decimal.Decimal, error)
}

// ReconciliationRepository persists reconciliation mappings.
type ReconciliationRepository interface {
	SaveMapping(ctx context.Context, mapping domain.ReconciliationMapping) error
	FindMappingByID(ctx context.Context, mappingID string) (*domain.ReconciliationMapping, error)
	ListMappings(ctx context.Context, onlyActive bool) ([]domain.ReconciliationMapping, error)
	UpdateMapping(ctx context.Context, mapping domain.ReconciliationMapping) error
}

package repositories

import (
	"context"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
)

// AccountRepository persists ledger accounts.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)

	// FindAccountsByCodes fetches several accounts at once, keyed by code.
	// Codes with no matching account are simply absent from the map.
	FindAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error)

	ListAccounts(ctx context.Context, onlyActive bool) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// SubAccountRepository persists sub-accounts beneath an account.
type SubAccountRepository interface {
	SaveSubAccount(ctx context.Context, subAccount domain.SubAccount) error
	FindSubAccount(ctx context.Context, accountCode, subAccountCode string) (*domain.SubAccount, error)
	ListSubAccounts(ctx context.Context, accountCode string, onlyActive bool) ([]domain.SubAccount, error)
	UpdateSubAccount(ctx context.Context, subAccount domain.SubAccount) error
}

// PartnerRepository persists counterparties.
type PartnerRepository interface {
	SavePartner(ctx context.Context, partner domain.Partner) error
	FindPartnerByCode(ctx context.Context, partnerCode string) (*domain.Partner, error)
	ListPartners(ctx context.Context, onlyActive bool) ([]domain.Partner, error)
	UpdatePartner(ctx context.Context, partner domain.Partner) error
}

// AnalysisCodeRepository persists analysis codes.
type AnalysisCodeRepository interface {
	SaveAnalysisCode(ctx context.Context, code domain.AnalysisCode) error
	FindAnalysisCode(ctx context.Context, analysisCode string) (*domain.AnalysisCode, error)
	ListAnalysisCodes(ctx context.Context, onlyActive bool) ([]domain.AnalysisCode, error)
	UpdateAnalysisCode(ctx context.Context, code domain.AnalysisCode) error
}

// TaxRateRepository persists tax codes and their rates.
type TaxRateRepository interface {
	SaveTaxRate(ctx context.Context, taxRate domain.TaxRate) error
	FindTaxRateByCode(ctx context.Context, taxCode string) (*domain.TaxRate, error)
	ListTaxRates(ctx context.Context, onlyActive bool) ([]domain.TaxRate, error)
	UpdateTaxRate(ctx context.Context, taxRate domain.TaxRate) error
}

// DepartmentRepository persists departments.
type DepartmentRepository interface {
	SaveDepartment(ctx context.Context, department domain.Department) error
	FindDepartmentByCode(ctx context.Context, departmentCode string) (*domain.Department, error)
	ListDepartments(ctx context.Context, onlyActive bool) ([]domain.Department, error)
	UpdateDepartment(ctx context.Context, department domain.Department) error
}

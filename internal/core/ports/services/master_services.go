package services

import (
	"context"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
)

// AccountSvcFacade exposes ledger account operations.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)
	GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)
	GetAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, onlyActive bool) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, accountCode string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, accountCode string, userID string) error
}

// MasterSvcFacade exposes CRUD for the remaining master entities
// (sub-accounts, partners, analysis codes, tax rates, departments).
type MasterSvcFacade interface {
	CreateSubAccount(ctx context.Context, accountCode string, req dto.CreateSubAccountRequest, userID string) (*domain.SubAccount, error)
	ListSubAccounts(ctx context.Context, accountCode string, onlyActive bool) ([]domain.SubAccount, error)
	UpdateSubAccount(ctx context.Context, accountCode, subAccountCode string, req dto.UpdateMasterRequest, userID string) (*domain.SubAccount, error)
	DeactivateSubAccount(ctx context.Context, accountCode, subAccountCode string, userID string) error

	CreatePartner(ctx context.Context, req dto.CreatePartnerRequest, userID string) (*domain.Partner, error)
	ListPartners(ctx context.Context, onlyActive bool) ([]domain.Partner, error)
	UpdatePartner(ctx context.Context, partnerCode string, req dto.UpdateMasterRequest, userID string) (*domain.Partner, error)
	DeactivatePartner(ctx context.Context, partnerCode string, userID string) error

	CreateAnalysisCode(ctx context.Context, req dto.CreateAnalysisCodeRequest, userID string) (*domain.AnalysisCode, error)
	ListAnalysisCodes(ctx context.Context, onlyActive bool) ([]domain.AnalysisCode, error)
	UpdateAnalysisCode(ctx context.Context, analysisCode string, req dto.UpdateMasterRequest, userID string) (*domain.AnalysisCode, error)
	DeactivateAnalysisCode(ctx context.Context, analysisCode string, userID string) error

	CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest, userID string) (*domain.TaxRate, error)
	ListTaxRates(ctx context.Context, onlyActive bool) ([]domain.TaxRate, error)
	UpdateTaxRate(ctx context.Context, taxCode string, req dto.UpdateMasterRequest, userID string) (*domain.TaxRate, error)
	DeactivateTaxRate(ctx context.Context, taxCode string, userID string) error

	CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest, userID string) (*domain.Department, error)
	ListDepartments(ctx context.Context, onlyActive bool) ([]domain.Department, error)
	UpdateDepartment(ctx context.Context, departmentCode string, req dto.UpdateMasterRequest, userID string) (*domain.Department, error)
	DeactivateDepartment(ctx context.Context, departmentCode string, userID string) error
}

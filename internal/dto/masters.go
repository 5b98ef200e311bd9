package dto

import (
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest creates a ledger account.
type CreateAccountRequest struct {
	AccountCode string `json:"accountCode" binding:"required,max=10"`
	Name        string `json:"name" binding:"required"`
	AccountType string `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

// UpdateAccountRequest updates mutable account fields.
type UpdateAccountRequest struct {
	Name *string `json:"name,omitempty"`
}

// AccountResponse mirrors a persisted account.
type AccountResponse struct {
	AccountCode string `json:"accountCode"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	IsActive    bool   `json:"isActive"`
}

// ToAccountResponse converts a domain account to its DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountCode: a.AccountCode,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		IsActive:    a.IsActive,
	}
}

// CreateSubAccountRequest creates a sub-account beneath an account.
type CreateSubAccountRequest struct {
	SubAccountCode string `json:"subAccountCode" binding:"required,max=10"`
	Name           string `json:"name" binding:"required"`
}

// CreatePartnerRequest creates a counterparty.
type CreatePartnerRequest struct {
	PartnerCode string `json:"partnerCode" binding:"required,max=10"`
	Name        string `json:"name" binding:"required"`
	NameKana    string `json:"nameKana"`
}

// CreateAnalysisCodeRequest creates an analysis code.
type CreateAnalysisCodeRequest struct {
	AnalysisCode string `json:"analysisCode" binding:"required,max=10"`
	Name         string `json:"name" binding:"required"`
}

// CreateTaxRateRequest creates a tax code with its rate.
type CreateTaxRateRequest struct {
	TaxCode string          `json:"taxCode" binding:"required,max=10"`
	Name    string          `json:"name" binding:"required"`
	Rate    decimal.Decimal `json:"rate"`
}

// CreateDepartmentRequest creates a department.
type CreateDepartmentRequest struct {
	DepartmentCode string `json:"departmentCode" binding:"required,max=10"`
	Name           string `json:"name" binding:"required"`
}

// UpdateMasterRequest updates the name of any simple master entity.
type UpdateMasterRequest struct {
	Name *string `json:"name,omitempty"`
}

// CreateReconciliationMappingRequest pairs a department+account against a
// counter department+account.
type CreateReconciliationMappingRequest struct {
	DepartmentCode        string `json:"departmentCode" binding:"required"`
	AccountCode           string `json:"accountCode" binding:"required"`
	CounterDepartmentCode string `json:"counterDepartmentCode" binding:"required"`
	CounterAccountCode    string `json:"counterAccountCode" binding:"required"`
}

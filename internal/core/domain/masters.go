package domain

import "github.com/shopspring/decimal"

// AccountType classifies an account for reporting sign conventions.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is a ledger account (勘定科目).
type Account struct {
	AccountCode string      `json:"accountCode"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}

// SubAccount is a subdivision of an account (補助科目), keyed by
// (accountCode, subAccountCode).
type SubAccount struct {
	AccountCode    string `json:"accountCode"`
	SubAccountCode string `json:"subAccountCode"`
	Name           string `json:"name"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}

// Partner is a counterparty (取引先).
type Partner struct {
	PartnerCode string `json:"partnerCode"`
	Name        string `json:"name"`
	NameKana    string `json:"nameKana"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// AnalysisCode tags detail lines for cross-cutting analysis (分析コード).
type AnalysisCode struct {
	AnalysisCode string `json:"analysisCode"`
	Name         string `json:"name"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// TaxRate is a consumption tax code and its rate (税区分).
type TaxRate struct {
	TaxCode  string          `json:"taxCode"`
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"` // e.g. 0.10 for 10%
	IsActive bool            `json:"isActive"`
	AuditFields
}

// Department is an organizational unit (部門).
type Department struct {
	DepartmentCode string `json:"departmentCode"`
	Name           string `json:"name"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}

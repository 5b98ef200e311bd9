package domain

import "github.com/shopspring/decimal"

// ReconciliationMapping pairs a department+account against a counter
// department+account. Postings on the two sides are expected to net to the
// same amount; the reconciliation report flags pairs where they do not.
type ReconciliationMapping struct {
	MappingID             string `json:"mappingID"`
	DepartmentCode        string `json:"departmentCode"`
	AccountCode           string `json:"accountCode"`
	CounterDepartmentCode string `json:"counterDepartmentCode"`
	CounterAccountCode    string `json:"counterAccountCode"`
	IsActive              bool   `json:"isActive"`
	AuditFields
}

// ReconciliationRow is one mapping's comparison over a reporting period.
type ReconciliationRow struct {
	MappingID             string          `json:"mappingID"`
	DepartmentCode        string          `json:"departmentCode"`
	AccountCode           string          `json:"accountCode"`
	CounterDepartmentCode string          `json:"counterDepartmentCode"`
	CounterAccountCode    string          `json:"counterAccountCode"`
	Amount                decimal.Decimal `json:"amount"`
	CounterAmount         decimal.Decimal `json:"counterAmount"`
	Difference            decimal.Decimal `json:"difference"`
	Matched               bool            `json:"matched"`
}

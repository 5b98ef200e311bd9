package domain

import "github.com/shopspring/decimal"

// TrialBalanceRow is one account's balances over a reporting period:
// the opening balance before the period, the period's debit and credit
// totals, and the resulting closing balance.
type TrialBalanceRow struct {
	AccountCode    string          `json:"accountCode"`
	AccountName    string          `json:"accountName"`
	AccountType    AccountType     `json:"accountType"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	DebitTotal     decimal.Decimal `json:"debitTotal"`
	CreditTotal    decimal.Decimal `json:"creditTotal"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// AccountPeriodSums is the raw aggregation a repository returns for one
// account: totals before the period start and totals within the period.
// The service layer turns these into signed opening/closing balances.
type AccountPeriodSums struct {
	AccountCode   string
	AccountName   string
	AccountType   AccountType
	OpeningDebit  decimal.Decimal
	OpeningCredit decimal.Decimal
	PeriodDebit   decimal.Decimal
	PeriodCredit  decimal.Decimal
}

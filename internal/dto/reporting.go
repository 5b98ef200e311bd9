package dto

import (
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportPeriodParams is the date range of a report request.
type ReportPeriodParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// TrialBalanceResponse is the trial balance over a period plus grand totals.
type TrialBalanceResponse struct {
	From        time.Time                `json:"from"`
	To          time.Time                `json:"to"`
	Rows        []domain.TrialBalanceRow `json:"rows"`
	DebitTotal  decimal.Decimal          `json:"debitTotal"`
	CreditTotal decimal.Decimal          `json:"creditTotal"`
}

// ReconciliationResponse lists per-mapping comparisons; Mismatches counts the
// rows whose two sides did not net to the same amount.
type ReconciliationResponse struct {
	From       time.Time                  `json:"from"`
	To         time.Time                  `json:"to"`
	Rows       []domain.ReconciliationRow `json:"rows"`
	Mismatches int                        `json:"mismatches"`
}

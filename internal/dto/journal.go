package dto

import (
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalDetailRequest is one debit or credit line of a create/update request.
// Line numbers are assigned server-side from slice order; clients never send them.
type JournalDetailRequest struct {
	Side           string          `json:"side" binding:"required,drcr"`
	AccountCode    string          `json:"accountCode" binding:"required"`
	SubAccountCode *string         `json:"subAccountCode,omitempty"`
	PartnerCode    *string         `json:"partnerCode,omitempty"`
	AnalysisCode   *string         `json:"analysisCode,omitempty"`
	DepartmentCode *string         `json:"departmentCode,omitempty"`
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TaxCode        *string         `json:"taxCode,omitempty"`
	Memo           string          `json:"memo"`
}

// CreateJournalRequest creates a journal entry. The journal number is
// allocated server-side.
type CreateJournalRequest struct {
	Date        time.Time              `json:"date" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	Details     []JournalDetailRequest `json:"details" binding:"required,min=2,dive"`
}

// UpdateJournalRequest replaces a journal's content in full. Saving an update
// resets the approval status back to PENDING.
type UpdateJournalRequest struct {
	Date        time.Time              `json:"date" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	Details     []JournalDetailRequest `json:"details" binding:"required,min=2,dive"`
}

// RejectJournalRequest carries the mandatory rejection reason.
type RejectJournalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListJournalsParams filters and paginates a journal listing.
type ListJournalsParams struct {
	DateFrom  *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Status    *string    `form:"status"`
	Limit     int        `form:"limit,default=20"`
	NextToken *string    `form:"nextToken"`
}

// JournalDetailResponse mirrors one persisted detail line.
type JournalDetailResponse struct {
	LineNo         int             `json:"lineNo"`
	Side           string          `json:"side"`
	AccountCode    string          `json:"accountCode"`
	SubAccountCode *string         `json:"subAccountCode,omitempty"`
	PartnerCode    *string         `json:"partnerCode,omitempty"`
	AnalysisCode   *string         `json:"analysisCode,omitempty"`
	DepartmentCode *string         `json:"departmentCode,omitempty"`
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TaxCode        *string         `json:"taxCode,omitempty"`
	Memo           string          `json:"memo"`
}

// JournalResponse mirrors a persisted journal header, optionally with lines.
type JournalResponse struct {
	JournalNumber   string                  `json:"journalNumber"`
	Date            time.Time               `json:"date"`
	Description     string                  `json:"description"`
	TotalAmount     decimal.Decimal         `json:"totalAmount"`
	Status          string                  `json:"status"`
	ApprovedBy      *string                 `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time              `json:"approvedAt,omitempty"`
	RejectionReason *string                 `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	CreatedBy       string                  `json:"createdBy"`
	Details         []JournalDetailResponse `json:"details,omitempty"`
}

// ListJournalsResponse is a page of journals plus the pagination token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// NextNumberResponse is the read-only preview of the next journal number.
type NextNumberResponse struct {
	JournalNumber string `json:"journalNumber"`
	DatePrefix    string `json:"datePrefix"`
}

// ImportJournalsResponse summarizes a CSV import.
type ImportJournalsResponse struct {
	Imported       int      `json:"imported"`
	JournalNumbers []string `json:"journalNumbers"`
	Errors         []string `json:"errors,omitempty"`
}

// ToJournalDetailResponse converts a domain detail line to its DTO.
func ToJournalDetailResponse(d *domain.JournalDetail) JournalDetailResponse {
	return JournalDetailResponse{
		LineNo:         d.LineNo,
		Side:           string(d.Side),
		AccountCode:    d.AccountCode,
		SubAccountCode: d.SubAccountCode,
		PartnerCode:    d.PartnerCode,
		AnalysisCode:   d.AnalysisCode,
		DepartmentCode: d.DepartmentCode,
		BaseAmount:     d.BaseAmount,
		TaxAmount:      d.TaxAmount,
		TotalAmount:    d.TotalAmount,
		TaxCode:        d.TaxCode,
		Memo:           d.Memo,
	}
}

// ToJournalResponse converts a domain header (and any populated details) to its DTO.
func ToJournalResponse(h *domain.JournalHeader) JournalResponse {
	resp := JournalResponse{
		JournalNumber:   h.JournalNumber,
		Date:            h.JournalDate,
		Description:     h.Description,
		TotalAmount:     h.TotalAmount,
		Status:          string(h.Status),
		ApprovedBy:      h.ApprovedBy,
		ApprovedAt:      h.ApprovedAt,
		RejectionReason: h.RejectionReason,
		CreatedAt:       h.CreatedAt,
		CreatedBy:       h.CreatedBy,
	}
	if len(h.Details) > 0 {
		resp.Details = make([]JournalDetailResponse, len(h.Details))
		for i := range h.Details {
			resp.Details[i] = ToJournalDetailResponse(&h.Details[i])
		}
	}
	return resp
}

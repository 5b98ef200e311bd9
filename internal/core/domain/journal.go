package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus indicates the workflow state of a journal entry.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// DebitCredit indicates whether a detail line is a debit (借方) or a credit (貸方).
type DebitCredit string

const (
	Debit  DebitCredit = "DEBIT"
	Credit DebitCredit = "CREDIT"
)

// JournalHeader represents one bookkeeping entry (仕訳). The journal number is
// the primary key and is immutable once assigned.
type JournalHeader struct {
	JournalNumber   string          `json:"journalNumber"`
	JournalDate     time.Time       `json:"journalDate"`
	Description     string          `json:"description"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          ApprovalStatus  `json:"status"`
	ApprovedBy      *string         `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	AuditFields

	// Details is populated only when the caller asks for them.
	Details []JournalDetail `json:"details,omitempty"`
}

// JournalDetail is one debit or credit line belonging to a header.
// Line numbers are 1-based and unique within a header.
type JournalDetail struct {
	JournalNumber  string          `json:"journalNumber"`
	LineNo         int             `json:"lineNo"`
	Side           DebitCredit     `json:"side"`
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

// Attachment is file metadata attached to a journal entry. The bytes live on
// disk; the metadata row is written in the same transaction as the header.
type Attachment struct {
	AttachmentID  string    `json:"attachmentID"`
	JournalNumber string    `json:"journalNumber"`
	FileName      string    `json:"fileName"`
	ContentType   string    `json:"contentType"`
	SizeBytes     int64     `json:"sizeBytes"`
	StoragePath   string    `json:"-"`
	UploadedAt    time.Time `json:"uploadedAt"`
	UploadedBy    string    `json:"uploadedBy"`
}

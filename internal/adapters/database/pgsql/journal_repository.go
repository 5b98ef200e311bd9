package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	"github.com/shiwake-app/shiwake_backend/internal/utils/pagination"
)

// db is the subset of *pgxpool.Pool the journal repository uses.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgxJournalRepository struct {
	db db
}

// NewPgxJournalRepository creates a new repository for journal data.
func NewPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{db: pool}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalHeaderColumns = `journal_number, journal_date, description, total_amount, status, approved_by, approved_at, rejection_reason, created_at, created_by, last_updated_at, last_updated_by`

func scanJournalHeader(row pgx.Row) (*domain.JournalHeader, error) {
	var header domain.JournalHeader
	err := row.Scan(
		&header.JournalNumber,
		&header.JournalDate,
		&header.Description,
		&header.TotalAmount,
		&header.Status,
		&header.ApprovedBy,
		&header.ApprovedAt,
		&header.RejectionReason,
		&header.CreatedAt,
		&header.CreatedBy,
		&header.LastUpdatedAt,
		&header.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &header, nil
}

// SaveJournal inserts the header, its detail lines and attachment metadata
// within one database transaction. The header insert carries the uniqueness
// claim on the journal number; a collision surfaces as ErrDuplicate and the
// whole transaction rolls back.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, header domain.JournalHeader, details []domain.JournalDetail, attachments []domain.Attachment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	headerQuery := `
		INSERT INTO journal_headers (` + journalHeaderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, headerQuery,
		header.JournalNumber,
		header.JournalDate,
		header.Description,
		header.TotalAmount,
		header.Status,
		header.ApprovedBy,
		header.ApprovedAt,
		header.RejectionReason,
		header.CreatedAt,
		header.CreatedBy,
		header.LastUpdatedAt,
		header.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return fmt.Errorf("journal number %s already claimed: %w", header.JournalNumber, mapped)
		}
		return fmt.Errorf("failed to insert journal header %s: %w", header.JournalNumber, err)
	}

	if err := queueDetailInserts(ctx, tx, details); err != nil {
		return fmt.Errorf("failed to insert details for journal %s: %w", header.JournalNumber, err)
	}

	for _, a := range attachments {
		if err := execInsertAttachment(ctx, tx, a); err != nil {
			return fmt.Errorf("failed to insert attachment for journal %s: %w", header.JournalNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journal %s: %w", header.JournalNumber, err)
	}
	return nil
}

// queueDetailInserts batches the detail line inserts on the given transaction.
func queueDetailInserts(ctx context.Context, tx pgx.Tx, details []domain.JournalDetail) error {
	batch := &pgx.Batch{}
	detailQuery := `
		INSERT INTO journal_details (journal_number, line_no, side, account_code, sub_account_code, partner_code, analysis_code, department_code, base_amount, tax_amount, total_amount, tax_code, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, d := range details {
		batch.Queue(detailQuery,
			d.JournalNumber,
			d.LineNo,
			d.Side,
			d.AccountCode,
			d.SubAccountCode,
			d.PartnerCode,
			d.AnalysisCode,
			d.DepartmentCode,
			d.BaseAmount,
			d.TaxAmount,
			d.TotalAmount,
			d.TaxCode,
			d.Memo,
		)
	}
	br := tx.SendBatch(ctx, batch)
	return br.Close()
}

// ReplaceJournal rewrites the header row and replaces every detail line.
func (r *PgxJournalRepository) ReplaceJournal(ctx context.Context, header domain.JournalHeader, details []domain.JournalDetail) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	headerQuery := `
		UPDATE journal_headers
		SET journal_date = $2, description = $3, total_amount = $4, status = $5,
		    approved_by = $6, approved_at = $7, rejection_reason = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE journal_number = $1;
	`
	tag, err := tx.Exec(ctx, headerQuery,
		header.JournalNumber,
		header.JournalDate,
		header.Description,
		header.TotalAmount,
		header.Status,
		header.ApprovedBy,
		header.ApprovedAt,
		header.RejectionReason,
		header.LastUpdatedAt,
		header.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal header %s: %w", header.JournalNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_details WHERE journal_number = $1;`, header.JournalNumber); err != nil {
		return fmt.Errorf("failed to clear details for journal %s: %w", header.JournalNumber, err)
	}
	if err := queueDetailInserts(ctx, tx, details); err != nil {
		return fmt.Errorf("failed to reinsert details for journal %s: %w", header.JournalNumber, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journal replace %s: %w", header.JournalNumber, err)
	}
	return nil
}

// DeleteJournal removes the attachment metadata, detail lines and header in
// one transaction.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, journalNumber string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM journal_attachments WHERE journal_number = $1;`, journalNumber); err != nil {
		return fmt.Errorf("failed to delete attachments for journal %s: %w", journalNumber, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM journal_details WHERE journal_number = $1;`, journalNumber); err != nil {
		return fmt.Errorf("failed to delete details for journal %s: %w", journalNumber, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM journal_headers WHERE journal_number = $1;`, journalNumber)
	if err != nil {
		return fmt.Errorf("failed to delete journal header %s: %w", journalNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journal delete %s: %w", journalNumber, err)
	}
	return nil
}

// UpdateApprovalStatus transitions the workflow state, stamping or clearing
// the approver fields.
func (r *PgxJournalRepository) UpdateApprovalStatus(ctx context.Context, journalNumber string, status domain.ApprovalStatus, approvedBy *string, approvedAt *time.Time, rejectionReason *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE journal_headers
		SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE journal_number = $1;
	`
	tag, err := r.db.Exec(ctx, query, journalNumber, status, approvedBy, approvedAt, rejectionReason, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of journal %s: %w", journalNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindJournalByNumber retrieves a journal header by its journal number.
func (r *PgxJournalRepository) FindJournalByNumber(ctx context.Context, journalNumber string) (*domain.JournalHeader, error) {
	query := `SELECT ` + journalHeaderColumns + ` FROM journal_headers WHERE journal_number = $1;`
	header, err := scanJournalHeader(r.db.QueryRow(ctx, query, journalNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalNumber, err)
	}
	return header, nil
}

// FindDetailsByNumber retrieves all detail lines of a journal ordered by line number.
func (r *PgxJournalRepository) FindDetailsByNumber(ctx context.Context, journalNumber string) ([]domain.JournalDetail, error) {
	query := `
		SELECT journal_number, line_no, side, account_code, sub_account_code, partner_code, analysis_code, department_code, base_amount, tax_amount, total_amount, tax_code, memo
		FROM journal_details
		WHERE journal_number = $1
		ORDER BY line_no;
	`
	rows, err := r.db.Query(ctx, query, journalNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query details for journal %s: %w", journalNumber, err)
	}
	defer rows.Close()

	details := []domain.JournalDetail{}
	for rows.Next() {
		var d domain.JournalDetail
		if err := rows.Scan(
			&d.JournalNumber,
			&d.LineNo,
			&d.Side,
			&d.AccountCode,
			&d.SubAccountCode,
			&d.PartnerCode,
			&d.AnalysisCode,
			&d.DepartmentCode,
			&d.BaseAmount,
			&d.TaxAmount,
			&d.TotalAmount,
			&d.TaxCode,
			&d.Memo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan detail row for journal %s: %w", journalNumber, err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detail rows for journal %s: %w", journalNumber, err)
	}
	return details, nil
}

// ListJournals retrieves a token-paginated page of headers ordered by journal
// number descending, newest first. The page token carries the last journal
// number of the previous page.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, filter portsrepo.ListJournalsFilter) ([]domain.JournalHeader, *string, error) {
	query := `SELECT ` + journalHeaderColumns + ` FROM journal_headers WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.DateFrom != nil {
		query += fmt.Sprintf(" AND journal_date >= $%d", argPos)
		args = append(args, *filter.DateFrom)
		argPos++
	}
	if filter.DateTo != nil {
		query += fmt.Sprintf(" AND journal_date <= $%d", argPos)
		args = append(args, *filter.DateTo)
		argPos++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.NextToken != nil {
		fields, err := pagination.DecodeMultiFieldToken(*filter.NextToken)
		if err != nil || len(fields) != 1 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += fmt.Sprintf(" AND journal_number < $%d", argPos)
		args = append(args, fields[0])
		argPos++
	}

	// Fetch one extra row to learn whether another page exists.
	query += fmt.Sprintf(" ORDER BY journal_number DESC LIMIT $%d;", argPos)
	args = append(args, filter.Limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()

	headers := []domain.JournalHeader{}
	for rows.Next() {
		header, err := scanJournalHeader(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		headers = append(headers, *header)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	var nextToken *string
	if len(headers) > filter.Limit {
		headers = headers[:filter.Limit]
		token := pagination.EncodeMultiFieldToken(headers[len(headers)-1].JournalNumber)
		nextToken = &token
	}
	return headers, nextToken, nil
}

// MaxSequenceForDate returns the highest numeric suffix among journal numbers
// sharing the 8-digit date prefix, or 0 when the date has no journals yet.
// Numbers are fixed-width so the suffix is always the last 6 characters.
func (r *PgxJournalRepository) MaxSequenceForDate(ctx context.Context, datePrefix string) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(RIGHT(journal_number, 6) AS INTEGER)), 0)
		FROM journal_headers
		WHERE journal_number LIKE $1 || '%';
	`
	var maxSeq int
	if err := r.db.QueryRow(ctx, query, datePrefix).Scan(&maxSeq); err != nil {
		return 0, fmt.Errorf("failed to read max sequence for prefix %s: %w", datePrefix, err)
	}
	return maxSeq, nil
}

func execInsertAttachment(ctx context.Context, tx pgx.Tx, a domain.Attachment) error {
	query := `
		INSERT INTO journal_attachments (attachment_id, journal_number, file_name, content_type, size_bytes, storage_path, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query, a.AttachmentID, a.JournalNumber, a.FileName, a.ContentType, a.SizeBytes, a.StoragePath, a.UploadedAt, a.UploadedBy)
	return err
}

// SaveAttachment stores attachment metadata for an existing journal.
func (r *PgxJournalRepository) SaveAttachment(ctx context.Context, attachment domain.Attachment) error {
	query := `
		INSERT INTO journal_attachments (attachment_id, journal_number, file_name, content_type, size_bytes, storage_path, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		attachment.AttachmentID,
		attachment.JournalNumber,
		attachment.FileName,
		attachment.ContentType,
		attachment.SizeBytes,
		attachment.StoragePath,
		attachment.UploadedAt,
		attachment.UploadedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to insert attachment %s: %w", attachment.AttachmentID, err)
	}
	return nil
}

// FindAttachmentByID retrieves one attachment's metadata.
func (r *PgxJournalRepository) FindAttachmentByID(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	query := `
		SELECT attachment_id, journal_number, file_name, content_type, size_bytes, storage_path, uploaded_at, uploaded_by
		FROM journal_attachments
		WHERE attachment_id = $1;
	`
	var a domain.Attachment
	err := r.db.QueryRow(ctx, query, attachmentID).Scan(
		&a.AttachmentID,
		&a.JournalNumber,
		&a.FileName,
		&a.ContentType,
		&a.SizeBytes,
		&a.StoragePath,
		&a.UploadedAt,
		&a.UploadedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find attachment %s: %w", attachmentID, err)
	}
	return &a, nil
}

// FindAttachmentsByJournal lists the attachment metadata of a journal.
func (r *PgxJournalRepository) FindAttachmentsByJournal(ctx context.Context, journalNumber string) ([]domain.Attachment, error) {
	query := `
		SELECT attachment_id, journal_number, file_name, content_type, size_bytes, storage_path, uploaded_at, uploaded_by
		FROM journal_attachments
		WHERE journal_number = $1
		ORDER BY uploaded_at;
	`
	rows, err := r.db.Query(ctx, query, journalNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments for journal %s: %w", journalNumber, err)
	}
	defer rows.Close()

	attachments := []domain.Attachment{}
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(
			&a.AttachmentID,
			&a.JournalNumber,
			&a.FileName,
			&a.ContentType,
			&a.SizeBytes,
			&a.StoragePath,
			&a.UploadedAt,
			&a.UploadedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment row for journal %s: %w", journalNumber, err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachment rows for journal %s: %w", journalNumber, err)
	}
	return attachments, nil
}

package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
)

// PgxMasterRepository persists the simple master entities: sub-accounts,
// partners, analysis codes, tax rates and departments. They share a shape
// (code, name, active flag, audit columns) so one repository covers all five.
type PgxMasterRepository struct {
	pool *pgxpool.Pool
}

// NewPgxMasterRepository creates a new repository for master data.
func NewPgxMasterRepository(pool *pgxpool.Pool) *PgxMasterRepository {
	return &PgxMasterRepository{pool: pool}
}

var (
	_ portsrepo.SubAccountRepository   = (*PgxMasterRepository)(nil)
	_ portsrepo.PartnerRepository      = (*PgxMasterRepository)(nil)
	_ portsrepo.AnalysisCodeRepository = (*PgxMasterRepository)(nil)
	_ portsrepo.TaxRateRepository      = (*PgxMasterRepository)(nil)
	_ portsrepo.DepartmentRepository   = (*PgxMasterRepository)(nil)
)

// --- Sub-accounts ---

const subAccountColumns = `account_code, sub_account_code, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxMasterRepository) SaveSubAccount(ctx context.Context, subAccount domain.SubAccount) error {
	query := `
		INSERT INTO sub_accounts (` + subAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		subAccount.AccountCode,
		subAccount.SubAccountCode,
		subAccount.Name,
		subAccount.IsActive,
		subAccount.CreatedAt,
		subAccount.CreatedBy,
		subAccount.LastUpdatedAt,
		subAccount.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to insert sub-account %s/%s: %w", subAccount.AccountCode, subAccount.SubAccountCode, err)
	}
	return nil
}

func (r *PgxMasterRepository) FindSubAccount(ctx context.Context, accountCode, subAccountCode string) (*domain.SubAccount, error) {
	query := `SELECT ` + subAccountColumns + ` FROM sub_accounts WHERE account_code = $1 AND sub_account_code = $2;`
	var s domain.SubAccount
	err := r.pool.QueryRow(ctx, query, accountCode, subAccountCode).Scan(
		&s.AccountCode, &s.SubAccountCode, &s.Name, &s.IsActive,
		&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sub-account %s/%s: %w", accountCode, subAccountCode, err)
	}
	return &s, nil
}

func (r *PgxMasterRepository) ListSubAccounts(ctx context.Context, accountCode string, onlyActive bool) ([]domain.SubAccount, error) {
	query := `SELECT ` + subAccountColumns + ` FROM sub_accounts WHERE account_code = $1`
	if onlyActive {
		query += ` AND is_active`
	}
	query += ` ORDER BY sub_account_code;`

	rows, err := r.pool.Query(ctx, query, accountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-accounts for %s: %w", accountCode, err)
	}
	defer rows.Close()

	subAccounts := []domain.SubAccount{}
	for rows.Next() {
		var s domain.SubAccount
		if err := rows.Scan(
			&s.AccountCode, &s.SubAccountCode, &s.Name, &s.IsActive,
			&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sub-account row: %w", err)
		}
		subAccounts = append(subAccounts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sub-account rows: %w", err)
	}
	return subAccounts, nil
}

func (r *PgxMasterRepository) UpdateSubAccount(ctx context.Context, subAccount domain.SubAccount) error {
	query := `
		UPDATE sub_accounts
		SET name = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_code = $1 AND sub_account_code = $2;
	`
	tag, err := r.pool.Exec(ctx, query,
		subAccount.AccountCode,
		subAccount.SubAccountCode,
		subAccount.Name,
		subAccount.IsActive,
		subAccount.LastUpdatedAt,
		subAccount.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update sub-account %s/%s: %w", subAccount.AccountCode, subAccount.SubAccountCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Partners ---

const partnerColumns = `partner_code, name, name_kana, is_active, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxMasterRepository) SavePartner(ctx context.Context, partner domain.Partner) error {
	query := `
		INSERT INTO partners (` + partnerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		partner.PartnerCode,
		partner.Name,
		partner.NameKana,
		partner.IsActive,
		partner.CreatedAt,
		partner.CreatedBy,
		partner.LastUpdatedAt,
		partner.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to insert partner %s: %w", partner.PartnerCode, err)
	}
	return nil
}

func (r *PgxMasterRepository) FindPartnerByCode(ctx context.Context, partnerCode string) (*domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE partner_code = $1;`
	var p domain.Partner
	err := r.pool.QueryRow(ctx, query, partnerCode).Scan(
		&p.PartnerCode, &p.Name, &p.NameKana, &p.IsActive,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find partner %s: %w", partnerCode, err)
	}
	return &p, nil
}

func (r *PgxMasterRepository) ListPartners(ctx context.Context, onlyActive bool) ([]domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY partner_code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer rows.Close()

	partners := []domain.Partner{}
	for rows.Next() {
		var p domain.Partner
		if err := rows.Scan(
			&p.PartnerCode, &p.Name, &p.NameKana, &p.IsActive,
			&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partner rows: %w", err)
	}
	return partners, nil
}

func (r *PgxMasterRepository) UpdatePartner(ctx context.Context, partner domain.Partner) error {
	query := `
		UPDATE partners
		SET name = $2, name_kana = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE partner_code = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		partner.PartnerCode,
		partner.Name,
		partner.NameKana,
		partner.IsActive,
		partner.LastUpdatedAt,
		partner.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update partner %s: %w", partner.PartnerCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Analysis codes ---

const analysisCodeColumns = `analysis_code, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxMasterRepository) SaveAnalysisCode(ctx context.Context, code domain.AnalysisCode) error {
	query := `
		INSERT INTO analysis_codes (` + analysisCodeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		code.AnalysisCode,
		code.Name,
		code.IsActive,
		code.CreatedAt,
		code.CreatedBy,
		code.LastUpdatedAt,
		code.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to insert analysis code %s: %w", code.AnalysisCode, err)
	}
	return nil
}

func (r *PgxMasterRepository) FindAnalysisCode(ctx context.Context, analysisCode string) (*domain.AnalysisCode, error) {
	query := `SELECT ` + analysisCodeColumns + ` FROM analysis_codes WHERE analysis_code = $1;`
	var c domain.AnalysisCode
	err := r.pool.QueryRow(ctx, query, analysisCode).Scan(
		&c.AnalysisCode, &c.Name, &c.IsActive,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find analysis code %s: %w", analysisCode, err)
	}
	return &c, nil
}

func (r *PgxMasterRepository) ListAnalysisCodes(ctx context.Context, onlyActive bool) ([]domain.AnalysisCode, error) {
	query := `SELECT ` + analysisCodeColumns + ` FROM analysis_codes`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY analysis_code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis codes: %w", err)
	}
	defer rows.Close()

	codes := []domain.AnalysisCode{}
	for rows.Next() {
		var c domain.AnalysisCode
		if err := rows.Scan(
			&c.AnalysisCode, &c.Name, &c.IsActive,
			&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis code row: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis code rows: %w", err)
	}
	return codes, nil
}

func (r *PgxMasterRepository) UpdateAnalysisCode(ctx context.Context, code domain.AnalysisCode) error {
	query := `
		UPDATE analysis_codes
		SET name = $2, is_active = $3, last_updated_at = $4, last_updated_by = $5
		WHERE analysis_code = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		code.AnalysisCode,
		code.Name,
		code.IsActive,
		code.LastUpdatedAt,
		code.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis code %s: %w", code.AnalysisCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Tax rates ---

const taxRateColumns = `tax_code, name, rate, is_active, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxMasterRepository) SaveTaxRate(ctx context.Context, taxRate domain.TaxRate) error {
	query := `
		INSERT INTO tax_rates (` + taxRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		taxRate.TaxCode,
		taxRate.Name,
		taxRate.Rate,
		taxRate.IsActive,
		taxRate.CreatedAt,
		taxRate.CreatedBy,
		taxRate.LastUpdatedAt,
		taxRate.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to insert tax rate %s: %w", taxRate.TaxCode, err)
	}
	return nil
}

func (r *PgxMasterRepository) FindTaxRateByCode(ctx context.Context, taxCode string) (*domain.TaxRate, error) {
	query := `SELECT ` + taxRateColumns + ` FROM tax_rates WHERE tax_code = $1;`
	var t domain.TaxRate
	err := r.pool.QueryRow(ctx, query, taxCode).Scan(
		&t.TaxCode, &t.Name, &t.Rate, &t.IsActive,
		&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tax rate %s: %w", taxCode, err)
	}
	return &t, nil
}

func (r *PgxMasterRepository) ListTaxRates(ctx context.Context, onlyActive bool) ([]domain.TaxRate, error) {
	query := `SELECT ` + taxRateColumns + ` FROM tax_rates`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY tax_code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax rates: %w", err)
	}
	defer rows.Close()

	taxRates := []domain.TaxRate{}
	for rows.Next() {
		var t domain.TaxRate
		if err := rows.Scan(
			&t.TaxCode, &t.Name, &t.Rate, &t.IsActive,
			&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tax rate row: %w", err)
		}
		taxRates = append(taxRates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax rate rows: %w", err)
	}
	return taxRates, nil
}

func (r *PgxMasterRepository) UpdateTaxRate(ctx context.Context, taxRate domain.TaxRate) error {
	query := `
		UPDATE tax_rates
		SET name = $2, rate = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE tax_code = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		taxRate.TaxCode,
		taxRate.Name,
		taxRate.Rate,
		taxRate.IsActive,
		taxRate.LastUpdatedAt,
		taxRate.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update tax rate %s: %w", taxRate.TaxCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Departments ---

const departmentColumns = `department_code, name, is_active, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxMasterRepository) SaveDepartment(ctx context.Context, department domain.Department) error {
	query := `
		INSERT INTO departments (` + departmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		department.DepartmentCode,
		department.Name,
		department.IsActive,
		department.CreatedAt,
		department.CreatedBy,
		department.LastUpdatedAt,
		department.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to insert department %s: %w", department.DepartmentCode, err)
	}
	return nil
}

func (r *PgxMasterRepository) FindDepartmentByCode(ctx context.Context, departmentCode string) (*domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE department_code = $1;`
	var d domain.Department
	err := r.pool.QueryRow(ctx, query, departmentCode).Scan(
		&d.DepartmentCode, &d.Name, &d.IsActive,
		&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find department %s: %w", departmentCode, err)
	}
	return &d, nil
}

func (r *PgxMasterRepository) ListDepartments(ctx context.Context, onlyActive bool) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY department_code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	departments := []domain.Department{}
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(
			&d.DepartmentCode, &d.Name, &d.IsActive,
			&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan department row: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department rows: %w", err)
	}
	return departments, nil
}

func (r *PgxMasterRepository) UpdateDepartment(ctx context.Context, department domain.Department) error {
	query := `
		UPDATE departments
		SET name = $2, is_active = $3, last_updated_at = $4, last_updated_by = $5
		WHERE department_code = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		department.DepartmentCode,
		department.Name,
		department.IsActive,
		department.LastUpdatedAt,
		department.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update department %s: %w", department.DepartmentCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

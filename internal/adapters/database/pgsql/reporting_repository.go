package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReportingRepository creates a new repository for report aggregations.
func NewPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{pool: pool}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetTrialBalanceSums aggregates each account's debit and credit totals into
// an opening bucket (postings dated before the period) and a period bucket.
// Accounts with no postings up to the period end are omitted.
func (r *PgxReportingRepository) GetTrialBalanceSums(ctx context.Context, from, to time.Time) ([]domain.AccountPeriodSums, error) {
	query := `
		SELECT a.account_code,
		       a.name,
		       a.account_type,
		       COALESCE(SUM(d.total_amount) FILTER (WHERE d.side = 'DEBIT'  AND h.journal_date < $1), 0) AS opening_debit,
		       COALESCE(SUM(d.total_amount) FILTER (WHERE d.side = 'CREDIT' AND h.journal_date < $1), 0) AS opening_credit,
		       COALESCE(SUM(d.total_amount) FILTER (WHERE d.side = 'DEBIT'  AND h.journal_date >= $1), 0) AS period_debit,
		       COALESCE(SUM(d.total_amount) FILTER (WHERE d.side = 'CREDIT' AND h.journal_date >= $1), 0) AS period_credit
		FROM accounts a
		JOIN journal_details d ON d.account_code = a.account_code
		JOIN journal_headers h ON h.journal_number = d.journal_number
		WHERE h.journal_date <= $2
		GROUP BY a.account_code, a.name, a.account_type
		ORDER BY a.account_code;
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance sums: %w", err)
	}
	defer rows.Close()

	sums := []domain.AccountPeriodSums{}
	for rows.Next() {
		var s domain.AccountPeriodSums
		if err := rows.Scan(
			&s.AccountCode,
			&s.AccountName,
			&s.AccountType,
			&s.OpeningDebit,
			&s.OpeningCredit,
			&s.PeriodDebit,
			&s.PeriodCredit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		sums = append(sums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}
	return sums, nil
}

// GetDepartmentAccountNet nets debits minus credits for one department and
// account pairing over the range. Zero when nothing was posted.
func (r *PgxReportingRepository) GetDepartmentAccountNet(ctx context.Context, departmentCode, accountCode string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN d.side = 'DEBIT' THEN d.total_amount ELSE -d.total_amount END), 0)
		FROM journal_details d
		JOIN journal_headers h ON h.journal_number = d.journal_number
		WHERE d.department_code = $1
		  AND d.account_code = $2
		  AND h.journal_date >= $3
		  AND h.journal_date <= $4;
	`
	var net decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, departmentCode, accountCode, from, to).Scan(&net); err != nil {
		return decimal.Zero, fmt.Errorf("failed to net %s/%s: %w", departmentCode, accountCode, err)
	}
	return net, nil
}

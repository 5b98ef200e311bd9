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

type PgxReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReconciliationRepository creates a new repository for reconciliation mappings.
func NewPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepository {
	return &PgxReconciliationRepository{pool: pool}
}

var _ portsrepo.ReconciliationRepository = (*PgxReconciliationRepository)(nil)

const mappingColumns = `mapping_id, department_code, account_code, counter_department_code, counter_account_code, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanMapping(row pgx.Row) (*domain.ReconciliationMapping, error) {
	var m domain.ReconciliationMapping
	err := row.Scan(
		&m.MappingID,
		&m.DepartmentCode,
		&m.AccountCode,
		&m.CounterDepartmentCode,
		&m.CounterAccountCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxReconciliationRepository) SaveMapping(ctx context.Context, mapping domain.ReconciliationMapping) error {
	query := `
		INSERT INTO reconciliation_mappings (` + mappingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		mapping.MappingID,
		mapping.DepartmentCode,
		mapping.AccountCode,
		mapping.CounterDepartmentCode,
		mapping.CounterAccountCode,
		mapping.IsActive,
		mapping.CreatedAt,
		mapping.CreatedBy,
		mapping.LastUpdatedAt,
		mapping.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapInsertError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to insert reconciliation mapping %s: %w", mapping.MappingID, err)
	}
	return nil
}

func (r *PgxReconciliationRepository) FindMappingByID(ctx context.Context, mappingID string) (*domain.ReconciliationMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM reconciliation_mappings WHERE mapping_id = $1;`
	mapping, err := scanMapping(r.pool.QueryRow(ctx, query, mappingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reconciliation mapping %s: %w", mappingID, err)
	}
	return mapping, nil
}

func (r *PgxReconciliationRepository) ListMappings(ctx context.Context, onlyActive bool) ([]domain.ReconciliationMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM reconciliation_mappings`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY department_code, account_code;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation mappings: %w", err)
	}
	defer rows.Close()

	mappings := []domain.ReconciliationMapping{}
	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation mapping row: %w", err)
		}
		mappings = append(mappings, *mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation mapping rows: %w", err)
	}
	return mappings, nil
}

func (r *PgxReconciliationRepository) UpdateMapping(ctx context.Context, mapping domain.ReconciliationMapping) error {
	query := `
		UPDATE reconciliation_mappings
		SET department_code = $2, account_code = $3, counter_department_code = $4, counter_account_code = $5,
		    is_active = $6, last_updated_at = $7, last_updated_by = $8
		WHERE mapping_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		mapping.MappingID,
		mapping.DepartmentCode,
		mapping.AccountCode,
		mapping.CounterDepartmentCode,
		mapping.CounterAccountCode,
		mapping.IsActive,
		mapping.LastUpdatedAt,
		mapping.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation mapping %s: %w", mapping.MappingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

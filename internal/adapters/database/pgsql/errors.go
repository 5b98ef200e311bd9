package pgsql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
)

// uniqueViolationCode is the PostgreSQL error code for unique_violation.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. Journal number allocation depends on this: a racing insert on
// the same candidate number collides here and the caller retries.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// mapInsertError converts constraint violations into application errors.
func mapInsertError(err error) error {
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicate
	}
	return err
}

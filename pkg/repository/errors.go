package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes inspected by the mapping helpers.
const (
	PgDuplicateKey    = "23505"
	PgUndefinedTable  = "42P01"
	PgUndefinedObject = "42704"
)

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr and PostgreSQL unique violation (23505)
// to duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	if code, _, ok := PgCode(err); ok && code == PgDuplicateKey {
		return duplicateErr
	}

	return err
}

// PgCode extracts the SQLSTATE code and primary message from a PostgreSQL error
// anywhere in err's chain. ok is false when err carries no *pgconn.PgError.
func PgCode(err error) (code, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.Message, true
}

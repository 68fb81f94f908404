package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var ErrNotFound = errors.New("record not found")

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

func wrapNoRows[T any](v T, err error) (T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err came from a unique constraint,
// for either supported driver.
func IsUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	return sqlState(err) == codeCheckViolation
}

// IsNumericOutOfRange reports whether a value did not fit its NUMERIC column.
func IsNumericOutOfRange(err error) bool {
	return sqlState(err) == codeNumericOutOfRange
}

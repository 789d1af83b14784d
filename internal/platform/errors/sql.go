package errors

// Backend helpers mapping pgx and sqlite errors to project ErrorCodes, plus retry semantics

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLSTATE codes we care about
const (
	pgErrUniqueViolation           = "23505"
	pgErrForeignKeyViolation       = "23503"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"
	pgErrInvalidDatetimeFormat     = "22007"

	pgErrSerializationFailure   = "40001"
	pgErrDeadlockDetected       = "40P01"
	pgErrLockNotAvailable       = "55P03"
	pgErrReadOnlySQLTransaction = "25006"
	pgErrCannotConnectNow       = "57P03"
)

// sqliteCoder matches *sqlite.Error from modernc.org/sqlite without pinning the concrete type
type sqliteCoder interface {
	error
	Code() int
}

// ExtractPgError returns (*pgconn.PgError, true) if the root cause is a PgError
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// ExtractSQLiteCode returns the extended result code if err carries one
func ExtractSQLiteCode(err error) (int, bool) {
	var se sqliteCoder
	if stderrs.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

// DBErrorCode maps a backend error to an ErrorCode with an ok flag
// !ok means err came from neither pgx nor sqlite; caller may fall back to generic handling
func DBErrorCode(err error) (ErrorCode, bool) {
	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return ErrorCodeDuplicateKey, true
		case pgErrForeignKeyViolation, pgErrStringDataRightTruncation,
			pgErrInvalidTextRepresentation, pgErrInvalidDatetimeFormat:
			return ErrorCodeInvalidArgument, true
		case pgErrNotNullViolation, pgErrCheckViolation:
			return ErrorCodeValidation, true
		case pgErrReadOnlySQLTransaction, pgErrCannotConnectNow:
			return ErrorCodeUnavailable, true
		}
		return ErrorCodeStorage, true
	}

	if c, ok := ExtractSQLiteCode(err); ok {
		switch c {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrorCodeDuplicateKey, true
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrorCodeInvalidArgument, true
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ErrorCodeValidation, true
		}
		switch c & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_CANTOPEN:
			return ErrorCodeUnavailable, true
		}
		return ErrorCodeStorage, true
	}

	return ErrorCodeUnknown, false
}

// FromSQL wraps a backend error with a mapped ErrorCode and message. nil stays nil
func FromSQL(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeStorage, msg)
}

// FromSQLf is the formatted variant of FromSQL
func FromSQLf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromSQL(err, fmt.Sprintf(format, a...))
}

// AttachFieldFromPg enriches an error with the column named by a PgError, if any
func AttachFieldFromPg(err error) error {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return err
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(err, col)
	}
	return err
}

// IsRetryable reports whether a database error represents a transient condition
// (lock contention, serialization failure, a busy sqlite file)
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
			return true
		}
		return false
	}
	if c, ok := ExtractSQLiteCode(err); ok {
		switch c & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}

	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "commit unexpectedly resulted in rollback"),
		strings.Contains(s, "deadlock detected"),
		strings.Contains(s, "could not serialize access"),
		strings.Contains(s, "database is locked"),
		strings.Contains(s, "canceling statement due to lock timeout"):
		return true
	}
	return false
}

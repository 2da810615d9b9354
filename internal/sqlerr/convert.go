package sqlerr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ConvertPgError converts a raw Postgres error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// ConvertSQLiteError converts a raw SQLite error. SQLite only names the
// offending column in the message ("UNIQUE constraint failed: users.email"),
// so table and column are parsed from there.
func ConvertSQLiteError(src sqlite3.Error) *Error {
	e := &Error{
		Code:         Other,
		Severity:     SeverityError,
		DatabaseCode: src.ExtendedCode.Error(),
		Message:      src.Error(),
		driverErr:    src,
	}

	switch src.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		e.Code = UniqueViolation
	case sqlite3.ErrConstraintForeignKey:
		e.Code = ForeignKeyViolation
	case sqlite3.ErrConstraintNotNull:
		e.Code = NotNullViolation
	case sqlite3.ErrConstraintCheck:
		e.Code = CheckViolation
	}
	if src.Code == sqlite3.ErrBusy || src.Code == sqlite3.ErrLocked {
		e.Code = SerializationFailure
	}

	if _, target, ok := strings.Cut(e.Message, "failed: "); ok {
		// Only the first column of a composite constraint is kept.
		target, _, _ = strings.Cut(target, ",")
		if table, column, ok := strings.Cut(strings.TrimSpace(target), "."); ok {
			e.TableName = table
			e.ColumnName = column
		}
	}
	return e
}

// Normalize finds a driver error in err's chain and converts it. It returns
// nil when err did not come from a known driver.
func Normalize(err error) *Error {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return ConvertSQLiteError(liteErr)
	}
	return nil
}

// ErrCode reports the Code of err, or Other for non-driver errors.
func ErrCode(err error) Code {
	if sqlErr := Normalize(err); sqlErr != nil {
		return sqlErr.Code
	}
	return Other
}

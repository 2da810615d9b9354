package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestNormalizePostgres(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		Message:        `duplicate key value violates unique constraint "users_email_key"`,
		TableName:      "users",
		ConstraintName: "users_email_key",
	})

	sqlErr := Normalize(err)
	if sqlErr == nil || sqlErr.Code != UniqueViolation {
		t.Fatalf("Normalize = %+v, want unique violation", sqlErr)
	}
	if ErrCode(err) != UniqueViolation {
		t.Fatalf("ErrCode = %s", ErrCode(err))
	}
}

func TestNormalizeSQLite(t *testing.T) {
	src := sqlite3.Error{
		Code:         sqlite3.ErrConstraint,
		ExtendedCode: sqlite3.ErrConstraintUnique,
	}

	sqlErr := ConvertSQLiteError(src)
	if sqlErr.Code != UniqueViolation {
		t.Fatalf("Code = %s", sqlErr.Code)
	}
}

func TestNormalizeUnknown(t *testing.T) {
	if Normalize(errors.New("boom")) != nil {
		t.Fatal("plain errors must not normalize")
	}
	if ErrCode(errors.New("boom")) != Other {
		t.Fatal("plain errors must map to Other")
	}
}

func TestMapCode(t *testing.T) {
	tests := map[string]Code{
		"23505": UniqueViolation,
		"23503": ForeignKeyViolation,
		"23502": NotNullViolation,
		"23514": CheckViolation,
		"40001": SerializationFailure,
		"08006": ConnectionFailure,
		"42P01": Other,
	}
	for state, want := range tests {
		if got := MapCode(state); got != want {
			t.Errorf("MapCode(%q) = %s, want %s", state, got, want)
		}
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  errs.Kind
		field string
	}{
		{"unique email", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, errs.KindValidation, "email"},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, errs.KindValidation, "name"},
		{"check", &pgconn.PgError{Code: "23514", TableName: "users", ColumnName: "status"}, errs.KindBadRequest, ""},
		{"no rows", fmt.Errorf("get: %w", sql.ErrNoRows), errs.KindNotFound, ""},
		{"unknown", errors.New("connection reset by peer"), errs.KindInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.kind)
			}
			if tt.field != "" && (len(got.Details) != 1 || got.Details[0].Field != tt.field) {
				t.Fatalf("Details = %+v, want field %q", got.Details, tt.field)
			}
		})
	}
}

func TestHandleErrorKeepsHTTPError(t *testing.T) {
	want := errs.NewNotFoundError("User with id 1 not found")
	if got := HandleError(fmt.Errorf("wrapped: %w", want)); got != want {
		t.Fatalf("got %v, want original", got)
	}
}

func TestHumanize(t *testing.T) {
	if got := humanizeText("first_name"); got != "First Name" {
		t.Fatalf("humanizeText = %q", got)
	}
	if got := getEntityName("users", ""); got != "User" {
		t.Fatalf("getEntityName = %q", got)
	}
	if got := extractColumnForUniqueViolation("unique_users_email"); got != "email" {
		t.Fatalf("extractColumnForUniqueViolation = %q", got)
	}
}

package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HandleError turns a database error into an *errs.HTTPError.
//
//   - *errs.HTTPError: returned unchanged
//   - unique / not-null violation: validation error on the offending column
//   - foreign-key / check violation: bad request
//   - no rows: not found
//   - anything else: internal error, cause kept for logs
func HandleError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if sqlErr := Normalize(err); sqlErr != nil {
		switch sqlErr.Code {
		case UniqueViolation:
			column := sqlErr.ColumnName
			if column == "" {
				column = extractColumnForUniqueViolation(sqlErr.ConstraintName)
			}
			return errs.NewValidationError([]errs.FieldError{{
				Field:   strings.ToLower(column),
				Message: "is already taken",
			}})

		case NotNullViolation:
			return errs.NewValidationError([]errs.FieldError{{
				Field:   strings.ToLower(sqlErr.ColumnName),
				Message: "is required",
			}})

		case ForeignKeyViolation, CheckViolation:
			return errs.NewBadRequestError(formatUserFriendlyMessage(sqlErr))

		default:
			return errs.NewInternalServerError(err)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found")
	}

	return errs.NewInternalServerError(err)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case CheckViolation:
		if fieldName := humanizeText(sqlErr.ColumnName); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers "<entity>_id" columns, then the singular table name.
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns "first_name" into "First Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var constraintKeyRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation reads the column from the constraint
// name: "unique_users_email" or "users_email_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := constraintKeyRe.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

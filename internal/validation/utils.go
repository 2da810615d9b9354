package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads.
//
// Validate returns nil, validator.ValidationErrors (usually via Check),
// CustomValidationErrors for rules tags cannot express, or an *errs.HTTPError
// for request-level failures that are not tied to a field.
type Validatable interface {
	Validate() error
}

// Enum is implemented by closed enumerations checked with the `enum` tag.
type Enum interface {
	IsValid() bool
	AllowedValues() []string
}

// CustomValidationError is one field rule violation that tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors satisfies error so Validate can return it.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	validate = newValidator()
	binder   = &Binder{}
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name: clients never see Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// enum: the field implements Enum and holds one of its declared values.
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(Enum)
		return ok && e.IsValid()
	})

	// mailbox: a bare local@domain address with both parts non-empty. Unlike
	// `email` it does not require a dotted domain, so a@b passes.
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return IsMailbox(fl.Field().String())
	})

	return v
}

// IsMailbox reports whether s is a single RFC 5322 address with no display
// name or angle brackets.
func IsMailbox(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	return ok && local != "" && domain != ""
}

// Check runs the tag rules on s, a struct or pointer to struct.
func Check(s any) error {
	return validate.Struct(s)
}

// BindAndValidate binds the request into payload and validates it.
//
// Binding failures (malformed JSON, wrong types, unknown enum values) are bad
// requests. Rule violations are validation errors carrying every violated
// field.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := binder.Bind(payload, c); err != nil {
		return bindError(err)
	}
	return Validate(payload)
}

// Validate runs payload.Validate and classifies the outcome.
func Validate(payload Validatable) error {
	err := payload.Validate()
	if err == nil {
		return nil
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	details, ok := extractValidationError(err)
	if !ok {
		// validator.InvalidValidationError and friends: a bug, not bad input.
		return errs.NewInternalServerError(err)
	}
	return errs.NewValidationError(details)
}

func extractValidationError(err error) ([]errs.FieldError, bool) {
	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		fieldErrors := make([]errs.FieldError, 0, len(customErrors))
		for _, e := range customErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field:   e.Field,
				Message: e.Message,
			})
		}
		return fieldErrors, true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field:   e.Field(),
			Message: message(e),
		})
	}
	return fieldErrors, true
}

// message turns a failed tag into the client-facing text.
func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"

	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())

	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return fmt.Sprintf("must not exceed %s", e.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())

	case "enum":
		if en, ok := e.Value().(Enum); ok {
			return fmt.Sprintf("must be one of: %s", strings.Join(en.AllowedValues(), ", "))
		}
		return "is not an allowed value"

	case "email", "mailbox":
		return "must be a valid email address"

	case "uuid":
		return "must be a valid UUID"

	default:
		if e.Param() != "" {
			return fmt.Sprintf("failed on %s=%s", e.Tag(), e.Param())
		}
		return fmt.Sprintf("failed on %s", e.Tag())
	}
}

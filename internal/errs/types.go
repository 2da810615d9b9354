package errs

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure before it crosses the HTTP boundary.
//
// The zero value is not a valid kind: every error must be classified
// explicitly by one of the constructors in http.go.
type Kind int

const (
	// KindNotFound means the referenced resource does not exist.
	KindNotFound Kind = iota + 1

	// KindBadRequest means a malformed or out-of-range request parameter
	// (bad JSON, pagination bounds, unknown filter values).
	KindBadRequest

	// KindValidation means one or more field rules were violated.
	// Errors of this kind carry the field-level details.
	KindValidation

	// KindInternal means an unexpected failure in a collaborator
	// (store, cache, queue). The cause is logged, never returned.
	KindInternal
)

// statusByKind is the only place where kinds meet HTTP status codes.
// Adding a kind means adding a row here.
var statusByKind = map[Kind]int{
	KindNotFound:   http.StatusNotFound,
	KindBadRequest: http.StatusBadRequest,
	KindValidation: http.StatusUnprocessableEntity,
	KindInternal:   http.StatusInternalServerError,
}

// Kinds lists every kind in the taxonomy.
func Kinds() []Kind {
	return []Kind{KindNotFound, KindBadRequest, KindValidation, KindInternal}
}

// Status returns the HTTP status code a kind maps to.
//
// It panics on an unclassified kind: that is a programming error, not
// something a request can trigger.
func (k Kind) Status() int {
	status, ok := statusByKind[k]
	if !ok {
		panic(fmt.Sprintf("errs: unclassified error kind %d", int(k)))
	}
	return status
}

// String returns a machine-friendly name like "NOT_FOUND", used in logs.
func (k Kind) String() string {
	status, ok := statusByKind[k]
	if !ok {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// FieldError is one violated rule on one input field.
//
// Field is omitted for errors that do not belong to a single field.
//
//	{ "field": "email", "message": "must be a valid email address" }
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// HTTPError is the error type every handler, service and middleware returns
// to the transport. The global error handler turns it into a failure envelope.
type HTTPError struct {
	Kind    Kind
	Message string

	// Details holds the field-level errors. Only set for KindValidation.
	Details []FieldError

	// cause is the underlying error for internal failures. It is logged
	// and reported to APM, but never serialized.
	cause error
}

// Error returns the client-facing message, prefixed by the cause when one is
// attached so logs keep the full picture.
func (e *HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Status is a shortcut for e.Kind.Status().
func (e *HTTPError) Status() int {
	return e.Kind.Status()
}

// Is reports whether target is an *HTTPError of the same kind.
//
//	errors.Is(err, &errs.HTTPError{Kind: errs.KindNotFound})
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Kind == 0 || t.Kind == e.Kind
}

// WithMessage returns a copy of the error with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Kind:    e.Kind,
		Message: message,
		Details: e.Details,
		cause:   e.cause,
	}
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

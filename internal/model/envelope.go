package model

import (
	"encoding/json"
	"errors"

	"github.com/deppfellow/users-api/internal/errs"
)

var (
	// ErrEmptyEnvelope is returned when marshaling an Envelope that was not
	// built through Success or Failure.
	ErrEmptyEnvelope = errors.New("envelope has neither data nor error")

	// ErrAmbiguousEnvelope is returned when decoding a body that carries
	// both data and error, or neither.
	ErrAmbiguousEnvelope = errors.New("envelope must carry exactly one of data or error")
)

// ErrorPayload is the `error` side of an Envelope.
type ErrorPayload struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details []errs.FieldError `json:"details,omitempty"`
}

// Envelope wraps every response body. It carries either data or an error,
// never both: the fields are unexported and only Success and Failure can set
// them.
//
//	{"data": {...}}
//	{"error": {"code": 404, "message": "User with id 999 not found"}}
type Envelope[T any] struct {
	data *T
	err  *ErrorPayload
}

// Success wraps data.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{data: &data}
}

// Failure wraps an error payload. details may be nil.
func Failure[T any](code int, message string, details []errs.FieldError) Envelope[T] {
	return Envelope[T]{err: &ErrorPayload{
		Code:    code,
		Message: message,
		Details: details,
	}}
}

// FailureFromError maps a classified error to its failure envelope. Field
// details are attached for validation errors only.
func FailureFromError(e *errs.HTTPError) Envelope[any] {
	var details []errs.FieldError
	if e.Kind == errs.KindValidation {
		details = e.Details
	}
	return Failure[any](e.Status(), e.Message, details)
}

// Data returns the success payload, if any.
func (e Envelope[T]) Data() (T, bool) {
	if e.data == nil {
		var zero T
		return zero, false
	}
	return *e.data, true
}

// Err returns the error payload, if any.
func (e Envelope[T]) Err() (ErrorPayload, bool) {
	if e.err == nil {
		return ErrorPayload{}, false
	}
	return *e.err, true
}

// IsSuccess reports whether the envelope carries data.
func (e Envelope[T]) IsSuccess() bool {
	return e.data != nil
}

// MarshalJSON writes only the populated side.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	switch {
	case e.data != nil:
		return json.Marshal(struct {
			Data *T `json:"data"`
		}{e.data})
	case e.err != nil:
		return json.Marshal(struct {
			Error *ErrorPayload `json:"error"`
		}{e.err})
	default:
		return nil, ErrEmptyEnvelope
	}
}

// UnmarshalJSON decodes a response body, rejecting bodies that carry both
// sides or neither.
func (e *Envelope[T]) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data  json.RawMessage `json:"data"`
		Error *ErrorPayload   `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	hasData := len(raw.Data) > 0
	if hasData == (raw.Error != nil) {
		return ErrAmbiguousEnvelope
	}

	if raw.Error != nil {
		*e = Envelope[T]{err: raw.Error}
		return nil
	}

	var data T
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		return err
	}
	*e = Envelope[T]{data: &data}
	return nil
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatusTable(t *testing.T) {
	want := map[Kind]int{
		KindNotFound:   http.StatusNotFound,
		KindBadRequest: http.StatusBadRequest,
		KindValidation: http.StatusUnprocessableEntity,
		KindInternal:   http.StatusInternalServerError,
	}

	kinds := Kinds()
	if len(kinds) != len(statusByKind) {
		t.Fatalf("Kinds() has %d entries, status table has %d", len(kinds), len(statusByKind))
	}

	for _, k := range kinds {
		if got := k.Status(); got != want[k] {
			t.Errorf("%s.Status() = %d, want %d", k, got, want[k])
		}
	}
}

func TestKindStatusPanicsOnUnclassified(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero Kind")
		}
	}()
	_ = Kind(0).Status()
}

func TestKindString(t *testing.T) {
	if got := KindValidation.String(); got != "UNPROCESSABLE_ENTITY" {
		t.Fatalf("KindValidation.String() = %q", got)
	}
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Fatalf("Kind(42).String() = %q", got)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *HTTPError
		kind    Kind
		message string
	}{
		{"not found", NewNotFoundError("User with id 999 not found"), KindNotFound, "User with id 999 not found"},
		{"bad request", NewBadRequestError("page must be >= 1"), KindBadRequest, "page must be >= 1"},
		{"validation", NewValidationError([]FieldError{{Field: "email", Message: "is required"}}), KindValidation, "Validation failed"},
		{"internal", NewInternalServerError(errors.New("connection reset")), KindInternal, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
		})
	}
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("list users: %w", NewInternalServerError(cause))

	if !errors.Is(err, cause) {
		t.Fatal("cause is not reachable through errors.Is")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatal("HTTPError not reachable through errors.As")
	}
	if httpErr.Message != "Internal Server Error" {
		t.Fatalf("client message leaks cause: %q", httpErr.Message)
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := NewNotFoundError("gone")

	if !errors.Is(err, &HTTPError{Kind: KindNotFound}) {
		t.Error("expected match on same kind")
	}
	if errors.Is(err, &HTTPError{Kind: KindBadRequest}) {
		t.Error("unexpected match on different kind")
	}
	if !errors.Is(err, &HTTPError{}) {
		t.Error("expected zero-kind target to match any HTTPError")
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/labstack/echo/v4"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"caller id kept", "req-123", true},
		{"missing", "", false},
		{"contains space", "req 123", false},
		{"control byte", "req\x01", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"max length", strings.Repeat("a", maxRequestIDLen), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			h := RequestID()(func(c echo.Context) error {
				seen = GetRequestID(c)
				return nil
			})
			if err := h(c); err != nil {
				t.Fatal(err)
			}

			got := rec.Header().Get(RequestIDHeader)
			if got != seen {
				t.Errorf("header %q, context %q", got, seen)
			}
			if tt.keep && got != tt.header {
				t.Errorf("id = %q, want caller id", got)
			}
			if !tt.keep && (got == tt.header || len(got) != 36) {
				t.Errorf("id = %q, want a fresh uuid", got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    errs.Kind
		message string
	}{
		{"http error passes", errs.NewNotFoundError("User with id 7 not found"), errs.KindNotFound, "User with id 7 not found"},
		{"wrapped http error", fmt.Errorf("ctx: %w", errs.NewBadRequestError("bad")), errs.KindBadRequest, "bad"},
		{"echo 404", echo.ErrNotFound, errs.KindNotFound, "Route not found"},
		{"echo 405", echo.ErrMethodNotAllowed, errs.KindBadRequest, "Method Not Allowed"},
		{"echo 415", echo.ErrUnsupportedMediaType, errs.KindBadRequest, "Unsupported Media Type"},
		{"echo 503", echo.ErrServiceUnavailable, errs.KindInternal, "Internal Server Error"},
		{"plain error", fmt.Errorf("boom"), errs.KindInternal, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Message != tt.message {
				t.Errorf("message = %q, want %q", got.Message, tt.message)
			}
		})
	}
}

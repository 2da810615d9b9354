package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/labstack/echo/v4"
)

type color int

func (c color) IsValid() bool            { return c == 1 || c == 2 }
func (c color) AllowedValues() []string { return []string{"red", "blue"} }

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Nickname string `json:"nickname" validate:"max=5"`
	Password string `json:"password" validate:"required,min=8"`
	Color    color  `json:"color" validate:"enum"`
}

func (p *signupPayload) Validate() error {
	return Check(p)
}

type customPayload struct {
	fail error
}

func (p *customPayload) Validate() error {
	return p.fail
}

func requireValidationError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error %v is not an *errs.HTTPError", err)
	}
	if httpErr.Kind != errs.KindValidation {
		t.Fatalf("Kind = %s, want %s", httpErr.Kind, errs.KindValidation)
	}
	return httpErr
}

func TestValidateCollectsEveryFieldInOrder(t *testing.T) {
	err := Validate(&signupPayload{Email: "nope", Nickname: "toolongname", Password: "short"})
	httpErr := requireValidationError(t, err)

	want := []errs.FieldError{
		{Field: "email", Message: "must be a valid email address"},
		{Field: "nickname", Message: "must not exceed 5 characters"},
		{Field: "password", Message: "must be at least 8 characters"},
		{Field: "color", Message: "must be one of: red, blue"},
	}

	if len(httpErr.Details) != len(want) {
		t.Fatalf("Details = %+v, want %d entries", httpErr.Details, len(want))
	}
	for i := range want {
		if httpErr.Details[i] != want[i] {
			t.Errorf("Details[%d] = %+v, want %+v", i, httpErr.Details[i], want[i])
		}
	}
}

func TestValidatePasses(t *testing.T) {
	p := &signupPayload{Email: "ada@example.com", Password: "correct horse", Color: 2}
	if err := Validate(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCustomErrors(t *testing.T) {
	err := Validate(&customPayload{fail: CustomValidationErrors{
		{Field: "start", Message: "must be before end"},
	}})
	httpErr := requireValidationError(t, err)

	if len(httpErr.Details) != 1 || httpErr.Details[0].Field != "start" {
		t.Fatalf("Details = %+v", httpErr.Details)
	}
}

func TestValidatePassesHTTPErrorThrough(t *testing.T) {
	want := errs.NewBadRequestError("page must be >= 1")
	err := Validate(&customPayload{fail: want})

	if err != want {
		t.Fatalf("err = %v, want the original HTTPError", err)
	}
}

func TestValidateUnknownErrorIsInternal(t *testing.T) {
	err := Validate(&customPayload{fail: errors.New("boom")})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != errs.KindInternal {
		t.Fatalf("err = %v, want internal error", err)
	}
}

func TestBindAndValidate(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name string
		body string
		kind errs.Kind
	}{
		{"malformed json", `{"email":`, errs.KindBadRequest},
		{"wrong type", `{"email": 42}`, errs.KindBadRequest},
		{"rule violation", `{"email":"ada@example.com","password":"short","color":1}`, errs.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())

			err := BindAndValidate(c, &signupPayload{})

			var httpErr *errs.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("err = %v, want *errs.HTTPError", err)
			}
			if httpErr.Kind != tt.kind {
				t.Fatalf("Kind = %s, want %s (%v)", httpErr.Kind, tt.kind, err)
			}
		})
	}
}

func TestIsMailbox(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ada@example.com", true},
		{"a@b", true},
		{"first.last+tag@sub.example.org", true},
		{"ada", false},
		{"@example.com", false},
		{"ada@", false},
		{"ada@@example.com", false},
		{"ada @example.com", false},
		{"Ada <ada@example.com>", false},
		{"<ada@example.com>", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsMailbox(tt.in); got != tt.want {
			t.Errorf("IsMailbox(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

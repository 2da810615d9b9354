package user

import (
	"errors"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// ---------------------------------------------------------------------------

// CreateUserPayload is the body of POST /api/users. Status defaults to
// active when absent.
type CreateUserPayload struct {
	Email    string                 `json:"email"`
	Name     string                 `json:"name"`
	Password string                 `json:"password"`
	Status   model.Optional[Status] `json:"status,omitzero"`
}

func (p *CreateUserPayload) Validate() error {
	rules := struct {
		Email    string  `json:"email" validate:"required,mailbox"`
		Name     string  `json:"name" validate:"required,max=100"`
		Password string  `json:"password" validate:"required,min=8"`
		Status   *Status `json:"status" validate:"omitnil,enum"`
	}{
		Email:    p.Email,
		Name:     p.Name,
		Password: p.Password,
		Status:   p.Status.Ptr(),
	}
	return validation.Check(rules)
}

// ---------------------------------------------------------------------------

// UpdateUserPayload is PATCH /api/users/:user_id. Only the fields present in
// the body are checked and applied; password cannot be changed here.
type UpdateUserPayload struct {
	ID     string                 `param:"user_id" json:"-"`
	Email  model.Optional[string] `json:"email,omitzero"`
	Name   model.Optional[string] `json:"name,omitzero"`
	Status model.Optional[Status] `json:"status,omitzero"`
}

func (p *UpdateUserPayload) Validate() error {
	rules := struct {
		Email  *string `json:"email" validate:"omitnil,mailbox"`
		Name   *string `json:"name" validate:"omitnil,min=1,max=100"`
		Status *Status `json:"status" validate:"omitnil,enum"`
	}{
		Email:  p.Email.Ptr(),
		Name:   p.Name.Ptr(),
		Status: p.Status.Ptr(),
	}
	return validation.Check(rules)
}

// Patch converts the payload into a store patch. Call it after Validate.
func (p *UpdateUserPayload) Patch() Patch {
	return Patch{
		Email:  p.Email.Ptr(),
		Name:   p.Name.Ptr(),
		Status: p.Status.Ptr(),
	}
}

// ---------------------------------------------------------------------------

// GetUserPayload is GET /api/users/:user_id.
type GetUserPayload struct {
	ID string `param:"user_id" validate:"required"`
}

func (p *GetUserPayload) Validate() error {
	return validation.Check(p)
}

// DeleteUserPayload is DELETE /api/users/:user_id.
type DeleteUserPayload struct {
	ID string `param:"user_id" validate:"required"`
}

func (p *DeleteUserPayload) Validate() error {
	return validation.Check(p)
}

// ---------------------------------------------------------------------------

// ListUsersQuery is the query string of GET /api/users. Build it with
// NewListUsersQuery so absent parameters keep their defaults.
type ListUsersQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Status   string `query:"status"`
	Search   string `query:"search"`
}

func NewListUsersQuery() *ListUsersQuery {
	return &ListUsersQuery{
		Page:     model.DefaultPage,
		PageSize: model.DefaultPageSize,
	}
}

// BindQuery reads the query string. page and page_size must be integers;
// absent or empty parameters keep their current values.
func (q *ListUsersQuery) BindQuery(c echo.Context) error {
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("page_size", &q.PageSize).
		String("status", &q.Status).
		String("search", &q.Search).
		BindError()

	var bindingErr *echo.BindingError
	if errors.As(err, &bindingErr) {
		return errs.NewBadRequestError(bindingErr.Field + " must be an integer")
	}
	return err
}

// Validate rejects out-of-range pagination and unknown status filters. These
// are request errors, not field errors, so it returns a bad request directly.
func (q *ListUsersQuery) Validate() error {
	if q.Page < 1 {
		return errs.NewBadRequestError("page must be >= 1")
	}
	if q.PageSize < 1 || q.PageSize > model.MaxPageSize {
		return errs.NewBadRequestError("page_size must be between 1 and 100")
	}
	if q.Status != "" {
		if _, err := ParseStatus(q.Status); err != nil {
			return errs.NewBadRequestError(err.Error())
		}
	}
	return nil
}

// Filter converts the query into a store filter. Call it after Validate.
func (q *ListUsersQuery) Filter() Filter {
	f := Filter{Search: q.Search}
	if st, err := ParseStatus(q.Status); err == nil {
		f.Status = &st
	}
	return f
}

package handler

import (
	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/model/user"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/deppfellow/users-api/internal/service"
	"github.com/labstack/echo/v4"
)

// UserHandler serves /api/users.
type UserHandler struct {
	Handler
	userService *service.UserService
}

func NewUserHandler(s *server.Server, userService *service.UserService) *UserHandler {
	return &UserHandler{
		Handler:     NewHandler(s),
		userService: userService,
	}
}

func (h *UserHandler) ListUsers(c echo.Context, q *user.ListUsersQuery) (model.PaginatedResponse[user.User], error) {
	return h.userService.List(c.Request().Context(), q)
}

func (h *UserHandler) CreateUser(c echo.Context, p *user.CreateUserPayload) (*user.User, error) {
	return h.userService.Create(c.Request().Context(), p)
}

func (h *UserHandler) GetUser(c echo.Context, p *user.GetUserPayload) (*user.User, error) {
	return h.userService.Get(c.Request().Context(), p.ID)
}

func (h *UserHandler) UpdateUser(c echo.Context, p *user.UpdateUserPayload) (*user.User, error) {
	return h.userService.Update(c.Request().Context(), p)
}

func (h *UserHandler) DeleteUser(c echo.Context, p *user.DeleteUserPayload) error {
	return h.userService.Delete(c.Request().Context(), p.ID)
}

// NewPayload allocates an empty request payload for Handle.
func NewPayload[T any]() *T {
	return new(T)
}

// Package router builds the Echo instance: global middleware, the error
// handler and the route table.
package router

import (
	"net/http"

	"github.com/deppfellow/users-api/internal/handler"
	"github.com/deppfellow/users-api/internal/middleware"
	"github.com/deppfellow/users-api/internal/model/user"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/deppfellow/users-api/internal/validation"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler
	router.Binder = &validation.Binder{}

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Metrics.Observe(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)
	registerUserRoutes(router.Group("/api/users"), h)

	return router
}

func registerUserRoutes(g *echo.Group, h *handler.Handlers) {
	u := h.User

	g.GET("", handler.Handle(u.Handler, u.ListUsers, http.StatusOK, user.NewListUsersQuery))
	g.POST("", handler.Handle(u.Handler, u.CreateUser, http.StatusCreated, handler.NewPayload[user.CreateUserPayload]))
	g.GET("/:user_id", handler.Handle(u.Handler, u.GetUser, http.StatusOK, handler.NewPayload[user.GetUserPayload]))
	g.PATCH("/:user_id", handler.Handle(u.Handler, u.UpdateUser, http.StatusOK, handler.NewPayload[user.UpdateUserPayload]))
	g.DELETE("/:user_id", handler.HandleNoContent(u.Handler, u.DeleteUser, http.StatusNoContent, handler.NewPayload[user.DeleteUserPayload]))
}

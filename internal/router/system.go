package router

import (
	"github.com/deppfellow/users-api/internal/handler"
	"github.com/deppfellow/users-api/internal/lib/metrics"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the endpoints that are not part of the
// users API: health, metrics and docs.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	r.StaticFS("/static", echo.MustSubFS(handler.StaticFS, "static"))
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}

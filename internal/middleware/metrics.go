package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/deppfellow/users-api/internal/lib/metrics"
	"github.com/labstack/echo/v4"
)

type MetricsMiddleware struct{}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{}
}

// Observe records every request under its route pattern. Unmatched
// requests share the "unmatched" route label.
func (m *MetricsMiddleware) Observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" || errors.Is(err, echo.ErrNotFound) {
				route = "unmatched"
			}
			metrics.ObserveHTTPRequest(c.Request().Method, route, strconv.Itoa(responseStatus(c, err)), time.Since(start))
			return err
		}
	}
}

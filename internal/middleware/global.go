package middleware

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/deppfellow/users-api/internal/model"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/deppfellow/users-api/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares bundles the middleware every route goes through and
// the global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger emits one "API" line per request. Its level follows the
// final status: error for 5xx, warn for 4xx, info otherwise.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler has not written the response yet when a
			// handler returns an error, so v.Status may still read 200.
			// https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			statusCode := v.Status
			if v.Error != nil {
				statusCode = Classify(v.Error).Status()
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// Classify turns any error that reaches the transport into one of the four
// error kinds:
//   - *errs.HTTPError passes through
//   - echo 404 is a missing route
//   - other echo 4xx (405, 413, 415, ...) are bad requests
//   - echo 5xx are internal errors
//   - everything else goes through sqlerr.HandleError
func Classify(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch {
		case echoErr.Code == http.StatusNotFound:
			return errs.NewNotFoundError("Route not found")
		case echoErr.Code >= 400 && echoErr.Code < 500:
			return errs.NewBadRequestError(echoMessage(echoErr))
		default:
			return errs.NewInternalServerError(err)
		}
	}

	return sqlerr.HandleError(err)
}

func echoMessage(e *echo.HTTPError) string {
	if msg, ok := e.Message.(string); ok && msg != "" {
		return msg
	}
	if e.Message != nil {
		return fmt.Sprint(e.Message)
	}
	return http.StatusText(e.Code)
}

// responseStatus is the status a request ends with, including errors the
// error handler has not rendered yet.
func responseStatus(c echo.Context, err error) int {
	if err != nil && !c.Response().Committed {
		return Classify(err).Status()
	}
	return c.Response().Status
}

// GlobalErrorHandler renders every error as an error envelope. Internal
// causes are logged, never sent.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := Classify(err)
	status := httpErr.Status()

	logger := GetLogger(c)
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(err).
		Int("status", status).
		Str("error_code", httpErr.Kind.String()).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, model.FailureFromError(httpErr))
}

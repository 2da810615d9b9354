package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/deppfellow/users-api/internal/errs"
	"github.com/labstack/echo/v4"
)

// QueryBinder is implemented by payloads that read their own query string,
// usually through echo.QueryParamsBinder so failures name the parameter.
type QueryBinder interface {
	BindQuery(c echo.Context) error
}

// Binder is echo's DefaultBinder restricted to JSON bodies. A body must hold
// exactly one JSON value; anything after it is rejected.
type Binder struct {
	echo.DefaultBinder
}

func (b *Binder) Bind(i any, c echo.Context) error {
	if err := b.BindPathParams(c, i); err != nil {
		return err
	}

	switch c.Request().Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if qb, ok := i.(QueryBinder); ok {
			if err := qb.BindQuery(c); err != nil {
				return err
			}
		} else if err := b.BindQueryParams(c, i); err != nil {
			return err
		}
	}

	return b.bindJSONBody(c, i)
}

func (b *Binder) bindJSONBody(c echo.Context, i any) error {
	req := c.Request()
	if req.ContentLength == 0 {
		return nil
	}
	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return echo.ErrUnsupportedMediaType
	}

	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(i); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return jsonBodyError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errs.NewBadRequestError("Malformed JSON body: unexpected data after the top-level value")
	}
	return nil
}

func jsonBodyError(err error) *errs.HTTPError {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &syntaxErr):
		return errs.NewBadRequestError(fmt.Sprintf("Malformed JSON body at offset %d", syntaxErr.Offset))
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errs.NewBadRequestError("Malformed JSON body: unexpected end of input")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return errs.NewBadRequestError("Request body must be a JSON " + jsonKind(typeErr.Type))
		}
		return errs.NewBadRequestError(fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type)))
	}
	// Errors from our own UnmarshalJSON methods (enum parsing) are already
	// client-facing.
	return errs.NewBadRequestError(err.Error())
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func bindError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var bindingErr *echo.BindingError
	if errors.As(err, &bindingErr) {
		return errs.NewBadRequestError(bindingErr.Field + " has an invalid value")
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return errs.NewBadRequestError(fmt.Sprintf("%q is not a valid number", numErr.Num))
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok && msg != "" && echoErr.Internal == nil {
			return errs.NewBadRequestError(msg)
		}
		return errs.NewBadRequestError(http.StatusText(echoErr.Code))
	}
	return errs.NewBadRequestError("Malformed request")
}

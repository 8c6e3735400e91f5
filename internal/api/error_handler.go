package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/busops/identity-service/internal/api/handler"
	"github.com/busops/identity-service/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the standard envelope: {"code", "message", "data", "timestamp"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if code == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}

		var data any
		var ve *handler.ValidationError
		if errors.As(err, &ve) {
			data = map[string][]string{"errors": ve.Fields}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = handler.Respond(c, code, msg, data)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, "validation failed"
	}

	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindConflict:
			return http.StatusConflict, de.Message
		case domain.KindUnauthorized:
			return http.StatusUnauthorized, de.Message
		case domain.KindForbidden:
			return http.StatusForbidden, de.Message
		case domain.KindInvalid:
			return http.StatusBadRequest, de.Message
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	ev := log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	if oe, ok := oops.AsOops(err); ok {
		ev = ev.Interface("code", oe.Code()).Interface("context", oe.Context())
	}
	ev.Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

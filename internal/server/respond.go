package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/labstack/echo/v4"
)

type envelope struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
	Kind    app.ErrorKind `json:"kind,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// statusFor maps an error kind onto its HTTP status.
func statusFor(kind app.ErrorKind) int {
	switch kind {
	case app.ErrInvalidProgress, app.ErrMissingDelayReason, app.ErrInvalidInput:
		return http.StatusBadRequest
	case app.ErrForbidden, app.ErrUnknownRole:
		return http.StatusForbidden
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrConcurrentUpdateConflict:
		return http.StatusConflict
	case app.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// kindForStatus classifies errors raised by echo itself: unmatched routes,
// bad bodies, missing tokens.
func kindForStatus(code int) app.ErrorKind {
	switch code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return app.ErrInvalidInput
	case http.StatusUnauthorized, http.StatusForbidden:
		return app.ErrForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return app.ErrNotFound
	}
	return app.ErrInternal
}

// errorHandler renders every failure in the response envelope.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code int
		body envelope
	)
	var appErr *app.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = statusFor(appErr.Kind)
		body = envelope{Kind: appErr.Kind, Message: appErr.Message}
		if body.Message == "" && appErr.Err != nil {
			body.Message = appErr.Err.Error()
		}
		if code == http.StatusInternalServerError {
			s.logger.Error("request failed", "path", c.Path(), "error", err)
			body.Message = "internal error"
		}
	case errors.As(err, &httpErr):
		code = httpErr.Code
		body = envelope{Kind: kindForStatus(code), Message: messageOf(httpErr)}
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
		code = http.StatusInternalServerError
		body = envelope{Kind: app.ErrInternal, Message: "internal error"}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		s.logger.Error("writing error response", "error", err)
	}
}

func messageOf(e *echo.HTTPError) string {
	if msg, ok := e.Message.(string); ok {
		return msg
	}
	return strings.ToLower(http.StatusText(e.Code))
}

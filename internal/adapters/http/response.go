package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stickyboard/core/internal/domain/entities"
)

const (
	actorContextKey = "actor"

	// NonceContextKey is where the CSRF middleware leaves the current token.
	NonceContextKey = "csrf"

	maxBodySize = 64 << 10
)

// Envelope wraps every board response.
type Envelope struct {
	Success      bool        `json:"success"`
	Data         interface{} `json:"data,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// ErrorResponse is returned by the non-board endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SetActor stores the authenticated actor on the request context.
func SetActor(c echo.Context, actor entities.Actor) {
	c.Set(actorContextKey, actor)
}

// ActorFrom returns the actor set by the auth middleware, or an anonymous
// actor when there is none.
func ActorFrom(c echo.Context) entities.Actor {
	actor, ok := c.Get(actorContextKey).(entities.Actor)
	if !ok {
		return entities.Actor{}
	}
	return actor
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// failure renders err inside the envelope. data, when non-nil, carries the
// note's unchanged state alongside a validation error.
func failure(c echo.Context, err error, data interface{}) error {
	return c.JSON(statusFor(err), Envelope{Success: false, Data: data, ErrorMessage: messageFor(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrNoteNotFound), errors.Is(err, entities.ErrInvalidNoteID):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entities.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, entities.ErrNoteNotFound), errors.Is(err, entities.ErrInvalidNoteID):
		return "Invalid note ID"
	case errors.Is(err, entities.ErrForbidden):
		return "Insufficient permissions"
	case errors.Is(err, entities.ErrUnauthorized):
		return "Authentication required"
	case errors.Is(err, entities.ErrInvalidInput):
		return err.Error()
	default:
		return "Internal server error"
	}
}

// decodeBody binds a JSON request body into v through echo's binder. An
// empty body leaves v untouched.
func decodeBody(c echo.Context, v interface{}) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodySize)
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: malformed request body", entities.ErrInvalidInput)
	}
	return nil
}

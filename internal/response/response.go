// Package response renders every handler outcome, success or failure, as
// one uniform JSON envelope and owns the mapping from failure kinds to HTTP
// status codes. Handlers never write raw JSON; they go through the helpers
// here so that no failure can leak to a client un-enveloped.
package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the wrapper returned on every response:
// success flags the outcome, message is human readable, data carries the
// payload (null on failure), and errors holds per-field validation messages
// when present.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Errors  any    `json:"errors,omitempty"`
}

// OK renders a 200 envelope with the given message and payload.
func OK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created renders a 201 envelope for a freshly created resource.
func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// BadRequest renders a 400 envelope for a request body that could not be
// parsed at all (malformed JSON, wrong content type).
func BadRequest(c echo.Context) error {
	return fail(c, http.StatusBadRequest, "Invalid request body")
}

// Unauthenticated renders the 401 envelope used for a missing, malformed or
// revoked bearer credential.
func Unauthenticated(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Unauthenticated")
}

// InvalidCredentials renders the 401 envelope for a failed login. The
// message is identical whether the email is unknown or the password wrong.
func InvalidCredentials(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Invalid credentials")
}

// Forbidden renders a 403 envelope. The message intentionally carries no
// detail about the resource so a denied caller learns nothing about
// ownership; pass "" for the generic wording.
func Forbidden(c echo.Context, message string) error {
	if message == "" {
		message = "Unauthorized"
	}
	return fail(c, http.StatusForbidden, message)
}

// AdminOnly is the 403 variant returned by user-management routes.
func AdminOnly(c echo.Context) error {
	return Forbidden(c, "Unauthorized. Admin access required.")
}

// NotFound renders the 404 envelope for an id that matches no row.
func NotFound(c echo.Context) error {
	return fail(c, http.StatusNotFound, "Resource not found")
}

// EndpointNotFound renders the 404 envelope for a route that matches no
// registered endpoint.
func EndpointNotFound(c echo.Context) error {
	return fail(c, http.StatusNotFound, "Endpoint not found")
}

// ValidationFailed renders a 422 envelope. All failing fields are reported
// together; the top-level message is the first failure, with a count suffix
// when more follow.
func ValidationFailed(c echo.Context, errs *FieldErrors) error {
	return c.JSON(http.StatusUnprocessableEntity, Envelope{
		Success: false,
		Message: errs.Summary(),
		Errors:  errs,
	})
}

// ServerError renders a 500 envelope. The underlying error is logged, never
// sent to the client.
func ServerError(c echo.Context, err error) error {
	if err != nil {
		log.Printf("internal error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	return fail(c, http.StatusInternalServerError, "Internal server error")
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// ErrorHandler is installed as Echo's HTTPErrorHandler so that anything the
// framework raises on its own (unmatched routes, method mismatches, stray
// panics recovered upstream) still comes out as an envelope instead of the
// default error page.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			// Both mean "no such endpoint" to a JSON client.
			_ = EndpointNotFound(c)
		case http.StatusUnauthorized:
			_ = Unauthenticated(c)
		case http.StatusForbidden:
			_ = Forbidden(c, "")
		default:
			_ = fail(c, he.Code, http.StatusText(he.Code))
		}
		return
	}
	_ = ServerError(c, err)
}

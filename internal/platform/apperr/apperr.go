// Package apperr holds the error values shared by the domain packages and the
// echo error handler that turns them into JSON responses.
package apperr

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Stores return these, optionally wrapped, and the error handler maps them.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError reports every failing input field of a request at once.
// Details maps each checked field to whether it passed.
type ValidationError struct {
	Message string
	Fields  []string
	Details map[string]bool
}

// NewValidation builds a ValidationError from a field -> passed map. It
// returns nil when every field passed. order fixes the field order of the
// report; fields absent from order are appended sorted.
func NewValidation(message string, checks map[string]bool, order []string) *ValidationError {
	var failed []string
	seen := make(map[string]bool, len(checks))
	for _, f := range order {
		ok, present := checks[f]
		if !present {
			continue
		}
		seen[f] = true
		if !ok {
			failed = append(failed, f)
		}
	}
	var rest []string
	for f, ok := range checks {
		if !seen[f] && !ok {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	failed = append(failed, rest...)

	if len(failed) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Fields: failed, Details: checks}
}

func (e *ValidationError) Error() string {
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

// NotFound wraps ErrNotFound with a client-facing message.
func NotFound(message string) error {
	return &messageError{status: http.StatusNotFound, message: message, err: ErrNotFound}
}

// Conflict wraps ErrConflict with a client-facing message.
func Conflict(message string) error {
	return &messageError{status: http.StatusConflict, message: message, err: ErrConflict}
}

type messageError struct {
	status  int
	message string
	err     error
}

func (e *messageError) Error() string { return e.message }
func (e *messageError) Unwrap() error { return e.err }

type validationBody struct {
	Message       string          `json:"message"`
	Details       map[string]bool `json:"details"`
	MissingFields []string        `json:"missingFields"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Handler returns an echo.HTTPErrorHandler. Unclassified errors become 500
// "Server error" and carry the underlying message only when exposeDetail is
// true.
func Handler(logger zerolog.Logger, exposeDetail bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := classify(err, exposeDetail)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func classify(err error, exposeDetail bool) (int, any) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, validationBody{
			Message:       verr.Message,
			Details:       verr.Details,
			MissingFields: verr.Fields,
		}
	}

	var merr *messageError
	if errors.As(err, &merr) {
		return merr.status, errorBody{Message: merr.message}
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		body := errorBody{}
		if msg, ok := herr.Message.(string); ok {
			body.Message = msg
		} else {
			body.Message = http.StatusText(herr.Code)
		}
		if exposeDetail && herr.Internal != nil {
			body.Error = herr.Internal.Error()
		}
		return herr.Code, body
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorBody{Message: "Not found"}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorBody{Message: "Conflict"}
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, errorBody{Message: "Service unavailable"}
	}

	body := errorBody{Message: "Server error"}
	if exposeDetail {
		body.Error = err.Error()
	}
	return http.StatusInternalServerError, body
}

// Status is the response code Handler would write for err.
func Status(err error) int {
	status, _ := classify(err, false)
	return status
}

package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, err error, exposeDetail bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	Handler(zerolog.Nop(), exposeDetail)(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestNewValidation_AllPass(t *testing.T) {
	assert.Nil(t, NewValidation("bad", map[string]bool{"a": true, "b": true}, []string{"a", "b"}))
}

func TestNewValidation_OrderAndRest(t *testing.T) {
	verr := NewValidation("bad", map[string]bool{
		"first_name": false,
		"age":        false,
		"mobile":     true,
		"zeta":       false,
		"alpha":      false,
	}, []string{"first_name", "mobile", "age"})

	require.NotNil(t, verr)
	assert.Equal(t, []string{"first_name", "age", "alpha", "zeta"}, verr.Fields)
	assert.Contains(t, verr.Error(), "first_name, age")
}

func TestHandler_Validation(t *testing.T) {
	verr := NewValidation("Missing or invalid required fields",
		map[string]bool{"mobile": false, "age": true}, []string{"age", "mobile"})

	rec, body := serve(t, verr, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing or invalid required fields", body["message"])
	assert.Equal(t, []any{"mobile"}, body["missingFields"])
	assert.Equal(t, map[string]any{"mobile": false, "age": true}, body["details"])
}

func TestHandler_WrappedSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found message", NotFound("Registration not found"), http.StatusNotFound, "Registration not found"},
		{"conflict message", Conflict("Username or mobile already exists"), http.StatusConflict, "Username or mobile already exists"},
		{"bare not found", fmt.Errorf("load camp: %w", ErrNotFound), http.StatusNotFound, "Not found"},
		{"unavailable", fmt.Errorf("redis: %w", ErrUnavailable), http.StatusServiceUnavailable, "Service unavailable"},
		{"echo error", echo.NewHTTPError(http.StatusForbidden, "Require Admin Role!"), http.StatusForbidden, "Require Admin Role!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, tt.err, true)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}

func TestHandler_ServerErrorDetail(t *testing.T) {
	cause := errors.New("insert registration: connection reset")

	rec, body := serve(t, cause, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", body["message"])
	assert.Equal(t, cause.Error(), body["error"])

	rec, body = serve(t, cause, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", body["message"])
	_, has := body["error"]
	assert.False(t, has, "production responses must not carry detail")
}

func TestHandler_NotFoundIsSentinel(t *testing.T) {
	assert.True(t, errors.Is(NotFound("x"), ErrNotFound))
	assert.True(t, errors.Is(Conflict("x"), ErrConflict))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, Status(NotFound("Camp not found")))
	assert.Equal(t, http.StatusBadRequest, Status(NewValidation("m", map[string]bool{"a": false}, nil)))
	assert.Equal(t, http.StatusForbidden, Status(echo.NewHTTPError(http.StatusForbidden, "no")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
}

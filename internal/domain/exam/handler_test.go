package exam

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/auth"
)

type testServer struct {
	e      *echo.Echo
	issuer *auth.TokenIssuer
	repo   *mockRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc, repo, _ := newTestService()
	issuer := auth.NewTokenIssuer("exam-handler-test-secret-0123456789", time.Hour)

	e := echo.New()
	e.HTTPErrorHandler = apperr.Handler(zerolog.Nop(), true)
	NewHandler(svc).RegisterRoutes(e.Group("/api", auth.RequireAuth(issuer, nil)))
	return &testServer{e: e, issuer: issuer, repo: repo}
}

func (s *testServer) do(t *testing.T, role auth.Role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	tok, _, err := s.issuer.Issue(11, role, "dr.rao")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateByRole(t *testing.T) {
	body := `{"registration_id": 2, "via_result": "Negative", "actions_taken": ["Follow5Years"]}`

	tests := []struct {
		role auth.Role
		code int
	}{
		{auth.RoleDoctor, http.StatusCreated},
		{auth.RoleAdmin, http.StatusCreated},
		{auth.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, tt.role, http.MethodPost, "/api/doctor-exams", body)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if tt.code == http.StatusForbidden && !strings.Contains(rec.Body.String(), "Require Doctor Role!") {
				t.Errorf("unexpected body %s", rec.Body.String())
			}
		})
	}
}

func TestHandler_CreateResponse(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, auth.RoleDoctor, http.MethodPost, "/api/doctor-exams", `{"registration_id": 2, "via_result": "Negative"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Doctor exam recorded" || body.ID != 1 {
		t.Errorf("unexpected body %+v", body)
	}
	if uid := s.repo.exams[1].UserID; uid == nil || *uid != 11 {
		t.Errorf("exam must record the caller, got %v", uid)
	}
}

func TestHandler_CreateMissingResult(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, auth.RoleDoctor, http.MethodPost, "/api/doctor-exams", `{"registration_id": 2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "via_result is required") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_CreateWithoutTableEchoes(t *testing.T) {
	s := newTestServer(t)
	s.repo.createErr = &pgconn.PgError{Code: "42P01"}

	rec := s.do(t, auth.RoleDoctor, http.MethodPost, "/api/doctor-exams", `{"registration_id": 2, "via_result": "Positive"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var body struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Doctor exam (no table) - echo" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.Data["via_result"] != "Positive" {
		t.Errorf("payload not echoed: %v", body.Data)
	}
}

func TestHandler_ListAndGet(t *testing.T) {
	s := newTestServer(t)
	for _, r := range []string{"Negative", "Positive"} {
		rec := s.do(t, auth.RoleDoctor, http.MethodPost, "/api/doctor-exams", `{"registration_id": 5, "via_result": "`+r+`"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed: %d", rec.Code)
		}
	}

	rec := s.do(t, auth.RoleUser, http.MethodGet, "/api/doctor-exams/registration/5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var exams []Exam
	if err := json.Unmarshal(rec.Body.Bytes(), &exams); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(exams) != 2 || exams[0].VIAResult != VIAPositive {
		t.Errorf("expected newest first, got %+v", exams)
	}

	rec = s.do(t, auth.RoleUser, http.MethodGet, "/api/doctor-exams/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = s.do(t, auth.RoleUser, http.MethodGet, "/api/doctor-exams/99", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Not found") {
		t.Errorf("expected 404 Not found, got %d %s", rec.Code, rec.Body.String())
	}
}

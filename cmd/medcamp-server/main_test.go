package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/medcamp/medcamp/internal/config"
	"github.com/medcamp/medcamp/internal/platform/auth"
	"github.com/medcamp/medcamp/internal/platform/db"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Env:                "test",
		JWTSecret:          "main-test-secret-0123456789abcdef",
		JWTTTL:             time.Hour,
		CORSOrigins:        []string{"http://localhost:3000"},
		BodyLimit:          "1K",
		LoginRatePerMinute: 5,
	}
}

func newTestEcho(t *testing.T) http.Handler {
	t.Helper()
	store := auth.NewMemoryRevocationStore(time.Minute)
	t.Cleanup(store.Close)
	return newEcho(serverDeps{
		cfg:      testConfig(),
		logger:   zerolog.Nop(),
		revoked:  store,
		registry: prometheus.NewRegistry(),
	})
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestEcho(t)
	for _, path := range []string{"/health", "/api/health"} {
		rec := serve(h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s: security headers missing", path)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: request id missing", path)
		}
	}
}

func TestAPIRequiresToken(t *testing.T) {
	h := newTestEcho(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/camps"},
		{http.MethodPost, "/api/registrations"},
		{http.MethodGet, "/api/registrations/1"},
		{http.MethodPost, "/api/doctor-exams"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/stats"},
	}
	for _, p := range paths {
		rec := serve(h, p.method, p.path, "", nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403 without token, got %d", p.method, p.path, rec.Code)
		}
		rec = serve(h, p.method, p.path, "", map[string]string{"Authorization": "Bearer not-a-jwt"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 with bad token, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	h := newTestEcho(t)
	body := `{"username":"` + strings.Repeat("a", 2048) + `","password":"x"}`
	rec := serve(h, http.MethodPost, "/api/auth/login", body, map[string]string{"Content-Type": "application/json"})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestEcho(t)
	rec := serve(h, http.MethodOptions, "/api/registrations", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestEcho(t)
	serve(h, http.MethodGet, "/health", "", nil)

	rec := serve(h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "medcamp_http_request_duration_seconds") {
		t.Error("request histogram not exported")
	}
}

func TestPrintTableCounts(t *testing.T) {
	var buf bytes.Buffer
	failed := printTableCounts(&buf, []db.TableCount{
		{Table: "camps", Rows: 3},
		{Table: "doctor_exams", Err: errors.New(`relation "doctor_exams" does not exist`)},
	})
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
	out := buf.String()
	if !strings.Contains(out, "camps") || !strings.Contains(out, "ERROR") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPrintMigrationStatus(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var buf bytes.Buffer
	printMigrationStatus(&buf, []db.MigrationStatus{
		{Version: 1, Name: "001_core.sql", Applied: true, AppliedAt: &at},
		{Version: 3, Name: "003_doctor_exams.sql"},
	})
	out := buf.String()
	if !strings.Contains(out, "2025-01-02 03:04:05") || !strings.Contains(out, "pending") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

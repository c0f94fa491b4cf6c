package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRole(role Role) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(WithClaims(req.Context(), &Claims{UserID: 1, Role: role}))
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		role    Role
		allowed bool
	}{
		{RoleAdmin, true},
		{RoleDoctor, false},
		{RoleUser, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			err := RequireAdmin()(okHandler)(contextWithRole(tt.role))
			if tt.allowed {
				if err != nil {
					t.Errorf("expected access, got %v", err)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %v", err)
			}
			if httpErr.Message != "Require Admin Role!" {
				t.Errorf("unexpected message %v", httpErr.Message)
			}
		})
	}
}

func TestRequireDoctorOrAdmin(t *testing.T) {
	tests := []struct {
		role    Role
		allowed bool
	}{
		{RoleAdmin, true},
		{RoleDoctor, true},
		{RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			err := RequireDoctorOrAdmin()(okHandler)(contextWithRole(tt.role))
			if tt.allowed && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if !tt.allowed {
				httpErr, ok := err.(*echo.HTTPError)
				if !ok || httpErr.Code != http.StatusForbidden {
					t.Fatalf("expected 403, got %v", err)
				}
				if httpErr.Message != "Require Doctor Role!" {
					t.Errorf("unexpected message %v", httpErr.Message)
				}
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, name := range []string{"admin", "doctor", "user"} {
		if _, err := ParseRole(name); err != nil {
			t.Errorf("ParseRole(%q): %v", name, err)
		}
	}
	for _, name := range []string{"", "Admin", "nurse"} {
		if _, err := ParseRole(name); err == nil {
			t.Errorf("ParseRole(%q) should fail", name)
		}
	}
}

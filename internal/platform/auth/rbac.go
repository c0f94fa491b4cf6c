package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that admits the request when allowed
// reports true for the caller's role. It must run after RequireAuth.
func RequireRole(allowed func(Role) bool, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed(RoleFromContext(c.Request().Context())) {
				return echo.NewHTTPError(http.StatusForbidden, message)
			}
			return next(c)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(Role.IsAdmin, "Require Admin Role!")
}

func RequireDoctorOrAdmin() echo.MiddlewareFunc {
	return RequireRole(Role.CanExamine, "Require Doctor Role!")
}

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// RequireAuth verifies the bearer token on every request. A request without
// a token is refused with 403 and a bad, expired or revoked token with 401.
func RequireAuth(issuer *TokenIssuer, revoked RevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := bearerToken(c.Request().Header.Get("Authorization"))
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusForbidden, "No token provided")
			}

			claims, err := issuer.Parse(tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "token revocation check failed").SetInternal(err)
				}
				if isRevoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
				}
			}

			ctx := WithClaims(c.Request().Context(), claims)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

func UserIDFromContext(ctx context.Context) int64 {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}

func RoleFromContext(ctx context.Context) Role {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Role
	}
	return ""
}

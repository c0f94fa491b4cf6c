package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medcamp/medcamp/internal/platform/auth"
)

type Handler struct {
	svc        *Service
	loginLimit echo.MiddlewareFunc
}

// NewHandler takes the middleware that throttles login attempts; nil means
// no throttling.
func NewHandler(svc *Service, loginLimit echo.MiddlewareFunc) *Handler {
	return &Handler{svc: svc, loginLimit: loginLimit}
}

// RegisterRoutes mounts login on public and everything else on the
// authenticated api group.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	var loginMW []echo.MiddlewareFunc
	if h.loginLimit != nil {
		loginMW = append(loginMW, h.loginLimit)
	}
	public.POST("/auth/login", h.Login, loginMW...)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", h.Me)

	users := api.Group("/users", auth.RequireAdmin())
	users.GET("", h.List)
	users.GET("/roles", h.Roles)
	users.POST("", h.Create)
	users.DELETE("/:user_id", h.Delete)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	session, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.svc.Logout(ctx, auth.ClaimsFromContext(ctx)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me echoes the identity carried by the token.
func (h *Handler) Me(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{
		"id":       claims.UserID,
		"username": claims.Username,
		"role":     claims.Role,
	})
}

func (h *Handler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) Roles(c echo.Context) error {
	roles, err := h.svc.Roles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *Handler) Create(c echo.Context) error {
	var req NewUser
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"userId":  id,
	})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

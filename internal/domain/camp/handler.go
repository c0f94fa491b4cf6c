package camp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medcamp/medcamp/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the camp endpoints on an authenticated group.
// Writes are admin only.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := auth.RequireAdmin()

	api.GET("/camps", h.List)
	api.POST("/camps", h.Create, admin)
	api.GET("/camps/:id", h.Get)
	api.PUT("/camps/:id", h.Update, admin)
	api.GET("/stats", h.Stats)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	camp, err := h.svc.Create(c.Request().Context(), &in, auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Camp created successfully",
		"campId":  camp.ID,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Camp not found")
	}
	camp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, camp)
}

func (h *Handler) List(c echo.Context) error {
	camps, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, camps)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Camp not found")
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Update(c.Request().Context(), id, &in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Camp updated successfully"})
}

func (h *Handler) Stats(c echo.Context) error {
	s, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

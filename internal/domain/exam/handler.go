package exam

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/doctor-exams")
	g.POST("", h.Create, auth.RequireDoctorOrAdmin())
	g.GET("/registration/:registration_id", h.ListByRegistration)
	g.GET("/:id", h.Get)
}

func (h *Handler) Create(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	e, stored, err := h.svc.Record(ctx, &sub, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	if !stored {
		return c.JSON(http.StatusCreated, map[string]any{
			"message": "Doctor exam (no table) - echo",
			"data":    sub,
		})
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Doctor exam recorded",
		"id":      e.ID,
	})
}

func (h *Handler) ListByRegistration(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("registration_id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}
	exams, err := h.svc.ListByRegistration(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exams)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	e, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

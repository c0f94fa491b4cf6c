package registration

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the registration endpoints on api, which must
// already require authentication.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/registrations", h.List)
	api.POST("/registrations", h.Create)
	api.GET("/registrations/camp/:campId", h.ListByCamp)
	api.GET("/camps/:id/registrations", h.ListCampRoster)
	api.GET("/registrations/:id", h.Get)
	api.PUT("/registrations/:id", h.Update)
	api.GET("/lookups", h.Lookups)
}

func (h *Handler) Create(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.Create(c.Request().Context(), &sub)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":            "Registration successful",
		"registrationId":     created.RegistrationID,
		"opdNumber":          created.OPDNumber,
		"registrationNumber": created.RegistrationNumber,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Registration not found")
	}
	reg, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reg)
}

func (h *Handler) ListByCamp(c echo.Context) error {
	return h.listByCamp(c, "campId")
}

// ListCampRoster serves the same list under the camp resource.
func (h *Handler) ListCampRoster(c echo.Context) error {
	return h.listByCamp(c, "id")
}

func (h *Handler) listByCamp(c echo.Context, param string) error {
	campID, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || campID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid camp id")
	}
	regs, err := h.svc.ListByCamp(c.Request().Context(), campID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, regs)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	regs, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(regs, total, p))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Registration not found")
	}
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Update(c.Request().Context(), id, &sub); err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) || errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update registration").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":        "Registration updated successfully",
		"registrationId": id,
	})
}

func (h *Handler) Lookups(c echo.Context) error {
	l, err := h.svc.Lookups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

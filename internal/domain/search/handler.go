package search

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homa/homa/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(root *echo.Group) {
	root.GET("/search", h.Search, auth.RequireActive())
	root.GET("/patient/doctors", h.FindDoctors, auth.RequireRole(auth.RolePatient))
}

func (h *Handler) Search(c echo.Context) error {
	var q Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	res, err := h.svc.Search(ctx, auth.ActorFromContext(ctx), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) FindDoctors(c echo.Context) error {
	var q Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.FindDoctors(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

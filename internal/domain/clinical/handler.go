package clinical

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/homa/homa/internal/platform/auth"
	"github.com/homa/homa/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(root *echo.Group) {
	doctor := root.Group("/doctor", auth.RequireRole(auth.RoleDoctor))
	doctor.POST("/appointment/:id/treatment", h.RecordTreatment)
	doctor.GET("/patient/:id/history", h.PatientHistory)

	root.GET("/patient/history", h.OwnHistory, auth.RequireRole(auth.RolePatient))
	root.GET("/admin/treatments", h.ListAll, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) RecordTreatment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req TreatmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.RecordTreatment(c.Request().Context(), id, actor.DoctorID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":   "Treatment records updated.",
		"treatment": t,
	})
}

// PatientHistory lets any doctor read a patient's history.
func (h *Handler) PatientHistory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	hist, err := h.svc.GetHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hist)
}

func (h *Handler) OwnHistory(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.PatientID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
	}
	hist, err := h.svc.GetHistory(c.Request().Context(), actor.PatientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hist)
}

func (h *Handler) ListAll(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAll(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg, c.Path()))
}

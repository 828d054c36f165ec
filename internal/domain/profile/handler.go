package profile

import (
	"net/http"

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

func (h *Handler) RegisterRoutes(root *echo.Group, api *echo.Group) {
	patient := root.Group("/patient", auth.RequireRole(auth.RolePatient))
	patient.GET("/profile", h.GetOwnPatientProfile)
	patient.POST("/profile", h.UpdateOwnPatientProfile)

	doctor := root.Group("/doctor", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/profile", h.GetOwnDoctorProfile)
	doctor.POST("/update-availability", h.UpdateAvailability)

	admin := root.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/doctors", h.ListDoctors)
	admin.GET("/patients", h.ListPatients)

	api.GET("/doctors", h.ListDoctorSummaries, auth.RequireActive())
}

func (h *Handler) GetOwnPatientProfile(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.PatientID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), actor.PatientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateOwnPatientProfile(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.PatientID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
	}
	var upd PatientUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdatePatientProfile(c.Request().Context(), actor.PatientID, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Profile updated.",
		"patient": p,
	})
}

func (h *Handler) GetOwnDoctorProfile(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.DoctorID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "doctor profile not found")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), actor.DoctorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

type availabilityRequest struct {
	Status string `json:"status" form:"status"`
}

func (h *Handler) UpdateAvailability(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.DoctorID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "doctor profile not found")
	}
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status, err := h.svc.UpdateAvailability(c.Request().Context(), actor.DoctorID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Your availability status has been updated.",
		"status":  status,
	})
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg, c.Path()))
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg, c.Path()))
}

// ListDoctorSummaries serves GET /api/v1/doctors.
func (h *Handler) ListDoctorSummaries(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	out := make([]DoctorSummary, 0, len(items))
	for _, d := range items {
		out = append(out, d.Summary())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg, c.Path()))
}

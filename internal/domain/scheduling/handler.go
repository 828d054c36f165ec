package scheduling

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

func (h *Handler) RegisterRoutes(root *echo.Group, api *echo.Group) {
	patient := root.Group("/patient", auth.RequireRole(auth.RolePatient))
	patient.GET("/dashboard", h.PatientDashboard)
	patient.GET("/appointments", h.ListPatientAppointments)
	patient.POST("/book/:doctorId", h.Book)
	patient.POST("/cancel/:appointmentId", h.Cancel)

	doctor := root.Group("/doctor", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/dashboard", h.DoctorDashboard)
	doctor.POST("/appointment/:id/status", h.UpdateStatus)

	root.GET("/admin/appointments", h.ListAll, auth.RequireRole(auth.RoleAdmin))

	api.GET("/appointments/:id", h.GetAppointment, auth.RequireActive())
	api.PUT("/appointments/:id", h.UpdateAppointment, auth.RequireRole(auth.RoleAdmin))
	api.DELETE("/appointments/:id", h.DeleteAppointment, auth.RequireRole(auth.RoleAdmin))
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// -- Patient --

func (h *Handler) PatientDashboard(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.PatientID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
	}
	dash, err := h.svc.Dashboard(c.Request().Context(), actor.PatientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dash)
}

func (h *Handler) ListPatientAppointments(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.PatientID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
	}
	items, err := h.svc.ListForPatient(c.Request().Context(), actor.PatientID, c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Book(c echo.Context) error {
	doctorID, err := pathID(c, "doctorId")
	if err != nil {
		return err
	}
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.svc.Book(c.Request().Context(), actor.PatientID, doctorID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "Appointment booked successfully!",
		"appointment": a,
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := pathID(c, "appointmentId")
	if err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.svc.Cancel(c.Request().Context(), id, actor.PatientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Appointment cancelled.",
		"appointment": a,
	})
}

// -- Doctor --

func (h *Handler) DoctorDashboard(c echo.Context) error {
	actor := auth.ActorFromContext(c.Request().Context())
	if actor.DoctorID == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "doctor profile not found")
	}
	days, err := h.svc.ListForDoctor(c.Request().Context(), actor.DoctorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id": actor.DoctorID,
		"days":      days,
	})
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	a, err := h.svc.TransitionByDoctor(c.Request().Context(), id, actor.DoctorID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Appointment marked as " + string(a.Status) + ".",
		"appointment": a,
	})
}

// -- Admin & API --

func (h *Handler) ListAll(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAll(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg, c.Path()))
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.svc.GetForActor(ctx, auth.ActorFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AdminUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.AdminUpdate(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Appointment updated",
		"appointment": a,
	})
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

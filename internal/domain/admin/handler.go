package admin

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
	admin := root.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/departments", h.ListDepartments)
	admin.GET("/add/doctors", h.DoctorForm)
	admin.POST("/add/doctors", h.CreateDoctor)
	admin.GET("/add/department", h.ListDepartments)
	admin.POST("/add/department", h.CreateDepartment)
	admin.POST("/edit/department/:id", h.EditDepartment)
	admin.POST("/edit/doctor/:id", h.EditDoctor)
	admin.GET("/blacklist/:userId", h.Blacklist)
	admin.GET("/unblacklist/:userId", h.Unblacklist)

	api.POST("/doctors", h.CreateDoctorAPI, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// -- Department --

func (h *Handler) ListDepartments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDepartments(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg, c.Path()))
}

func (h *Handler) CreateDepartment(c echo.Context) error {
	var in DepartmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.CreateDepartment(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":    "Department " + d.Name + " has been added",
		"department": d,
	})
}

func (h *Handler) EditDepartment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in DepartmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.EditDepartment(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Department updated successfully",
		"department": d,
	})
}

// -- Doctor --

// DoctorForm returns the departments a new doctor can be assigned to.
func (h *Handler) DoctorForm(c echo.Context) error {
	items, _, err := h.svc.ListDepartments(c.Request().Context(), pagination.MaxLimit, 0)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newDoctorForm(items))
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var req CreateDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.svc.CreateDoctor(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Dr. " + doc.FullName + " added successfully!",
		"doctor":  doc,
	})
}

// CreateDoctorAPI serves POST /api/v1/doctors.
func (h *Handler) CreateDoctorAPI(c echo.Context) error {
	var req CreateDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.svc.CreateDoctor(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Doctor created",
		"id":      doc.ID,
		"code":    doc.Code,
	})
}

func (h *Handler) EditDoctor(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req EditDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.svc.EditDoctor(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Doctor " + doc.FullName + " details are successfully edited",
		"doctor":  doc,
	})
}

// -- Moderation --

func (h *Handler) Blacklist(c echo.Context) error {
	return h.setBlocked(c, true)
}

func (h *Handler) Unblacklist(c echo.Context) error {
	return h.setBlocked(c, false)
}

func (h *Handler) setBlocked(c echo.Context, blocked bool) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	ctx := c.Request().Context()
	user, err := h.svc.SetBlocked(ctx, auth.ActorFromContext(ctx), userID, blocked)
	if err != nil {
		return err
	}
	msg := "You have unblacklisted " + user.Email
	if blocked {
		msg = "You have blacklisted " + user.Email
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": msg,
		"user":    user,
	})
}

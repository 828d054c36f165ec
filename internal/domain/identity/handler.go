package identity

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homa/homa/internal/platform/auth"
	"github.com/homa/homa/pkg/pagination"
)

type Handler struct {
	svc         *Service
	revocations *auth.TokenRevocationStore
}

func NewHandler(svc *Service, revocations *auth.TokenRevocationStore) *Handler {
	return &Handler{svc: svc, revocations: revocations}
}

func (h *Handler) RegisterRoutes(root *echo.Group) {
	root.POST("/register", h.Register)
	root.POST("/login", h.Login)

	root.GET("/logout", h.Logout, auth.RequireActive())
	root.GET("/profile", h.Profile, auth.RequireActive())

	root.GET("/admin/users", h.ListUsers, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	user, patient, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Registration successful.",
		"user":    user,
		"patient": patient,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Logout revokes the bearer token used for this request.
func (h *Handler) Logout(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil || claims.ID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	exp := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	h.revocations.Revoke(claims.ID, exp)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out."})
}

func (h *Handler) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.ActorFromContext(c.Request().Context()))
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg, c.Path()))
}

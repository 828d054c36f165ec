package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homa/homa/internal/platform/auth"
)

// AuditRoute describes a route whose access is written to the audit trail.
type AuditRoute struct {
	// Resource names what the route exposes, e.g. "patient_history".
	Resource string
	// PatientParam is the path parameter holding a patient id, if any.
	PatientParam string
}

// AuditRoutes maps echo route patterns to their audit description.
type AuditRoutes map[string]AuditRoute

// AuditEntry is one audited access.
type AuditEntry struct {
	Time      time.Time
	RequestID string
	UserID    int64
	Role      auth.Role
	Action    string
	Resource  string
	PatientID int64
	Method    string
	Path      string
	RemoteIP  string
	Status    int
}

// Audit writes an entry for every request to a route listed in routes,
// after the handler ran so the final status is known. Patients reading their
// own records are attributed to their own patient id.
func Audit(logger zerolog.Logger, routes AuditRoutes) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route, ok := routes[c.Path()]
			if !ok {
				return next(c)
			}

			err := next(c)

			req := c.Request()
			entry := AuditEntry{
				Time:     time.Now().UTC(),
				Action:   auditAction(req.Method),
				Resource: route.Resource,
				Method:   req.Method,
				Path:     req.URL.Path,
				RemoteIP: c.RealIP(),
				Status:   c.Response().Status,
			}
			if err != nil {
				entry.Status = errorStatus(err)
			}
			entry.RequestID, _ = c.Get("request_id").(string)

			if actor := auth.ActorFromContext(req.Context()); actor != nil {
				entry.UserID = actor.UserID
				entry.Role = actor.Role
				if actor.Is(auth.RolePatient) {
					entry.PatientID = actor.PatientID
				}
			}
			if route.PatientParam != "" {
				if id, perr := strconv.ParseInt(c.Param(route.PatientParam), 10, 64); perr == nil {
					entry.PatientID = id
				}
			}

			logAudit(logger, entry)
			return err
		}
	}
}

func logAudit(logger zerolog.Logger, e AuditEntry) {
	evt := logger.Info()
	if e.Status == http.StatusForbidden || e.Status == http.StatusUnauthorized {
		evt = logger.Warn()
	}
	evt = evt.
		Str("type", "access_audit").
		Time("at", e.Time).
		Str("request_id", e.RequestID).
		Int64("user_id", e.UserID).
		Str("role", string(e.Role)).
		Str("action", e.Action).
		Str("resource", e.Resource)
	if e.PatientID != 0 {
		evt = evt.Int64("patient_id", e.PatientID)
	}
	evt.
		Str("method", e.Method).
		Str("path", e.Path).
		Str("remote_ip", e.RemoteIP).
		Int("status", e.Status).
		Bool("allowed", e.Status < http.StatusBadRequest).
		Msg("record access")
}

func auditAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

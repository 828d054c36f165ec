package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects anonymous callers with 401, and blocked callers or
// callers holding none of roles with 403. No role implies another.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFromContext(c.Request().Context())
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if actor.Blocked {
				return echo.NewHTTPError(http.StatusForbidden, "account is blocked")
			}
			for _, required := range roles {
				if actor.Role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(names, " or ")))
		}
	}
}

// RequireActive admits any authenticated, non-blocked caller.
func RequireActive() echo.MiddlewareFunc {
	return RequireRole(RoleAdmin, RoleDoctor, RolePatient)
}

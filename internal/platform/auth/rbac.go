package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// rolePermissions maps each role to the permissions it carries. Admin passes
// every check regardless of this table.
var rolePermissions = map[string][]string{
	"doctor": {
		"patients.read", "patients.write",
		"visits.read", "visits.write",
		"prescriptions.read", "prescriptions.write",
		"notifications.read", "notifications.write",
	},
	"nurse": {
		"patients.read",
		"visits.read", "visits.write",
		"prescriptions.read",
		"notifications.read", "notifications.write",
	},
	"receptionist": {
		"patients.read", "patients.write",
		"doctors.read",
		"visits.read", "visits.write",
		"billing.read", "billing.write",
		"notifications.read",
	},
	"billing": {
		"patients.read",
		"billing.read", "billing.write",
		"notifications.read",
	},
}

// Can reports whether the user on ctx holds the named permission. It is the
// synchronous capability check consumed by handlers that gate individual
// fields or actions rather than whole routes.
func Can(ctx context.Context, permission string) bool {
	role := RoleFromContext(ctx)
	if role == "admin" {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// RequireRole returns middleware that rejects requests whose user holds none
// of the given roles. Admin always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == "admin" {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// RequirePermission returns middleware gating a route on a single permission.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !Can(c.Request().Context(), permission) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("required permission: %s", permission))
			}
			return next(c)
		}
	}
}

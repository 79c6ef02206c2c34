package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/auth"
	"github.com/iliyamo/session-slot-console/internal/model"
)

// NotAdminMessage is the body of every 403 from RequireAdmin.
const NotAdminMessage = "Unauthorized access: Not an admin"

// AdminChecker answers the admin authorization check.
type AdminChecker interface {
	IsAdmin(ctx context.Context, ident *model.Identity) bool
}

// RequireAdmin runs the admin check on every request. It must be mounted
// after JWTAuth.
func RequireAdmin(checker AdminChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if !checker.IsAdmin(ctx, auth.CurrentIdentity(ctx)) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": NotAdminMessage})
			}
			return next(c)
		}
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/auth"
)

// currentUserID returns the authenticated identity id, or "anon".
func currentUserID(c echo.Context) string {
	if ident := auth.CurrentIdentity(c.Request().Context()); ident != nil && ident.ID != "" {
		return ident.ID
	}
	return "anon"
}

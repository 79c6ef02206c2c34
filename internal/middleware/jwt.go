package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/auth"
	"github.com/iliyamo/session-slot-console/internal/logging"
	"github.com/iliyamo/session-slot-console/internal/model"
)

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(raw string) (*model.Identity, error)
}

// JWTAuth validates the Bearer access token and attaches the identity to the
// request context, where auth.CurrentIdentity finds it. The request logger
// is tagged with the identity id.
func JWTAuth(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			ident, err := a.Authenticate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			setRequestContext(c, func(ctx context.Context) context.Context {
				ctx = auth.ContextWithIdentity(ctx, ident)
				return logging.ContextWithLogger(ctx, logging.Or(ctx, nil).With("identity_id", ident.ID))
			})
			return next(c)
		}
	}
}

func setRequestContext(c echo.Context, fn func(context.Context) context.Context) {
	req := c.Request()
	c.SetRequest(req.WithContext(fn(req.Context())))
}

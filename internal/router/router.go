// Package router registers the HTTP routes of the console API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/handler"
	"github.com/iliyamo/session-slot-console/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the sign-up, sign-in and token endpoints under
// /v1/auth. Only logout needs a bearer token; it does not need admin.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authn middleware.Authenticator) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/password-reset", a.RequestPasswordReset)
	g.POST("/password-reset/confirm", a.ConfirmPasswordReset)
	g.POST("/logout", a.Logout, middleware.JWTAuth(authn))
}

// RegisterConsole registers the dashboard under /v1. Every request passes
// the JWT check, the admin check and the rate limiter, in that order.
func RegisterConsole(e *echo.Echo, a *handler.AuthHandler, h *handler.ConsoleHandler,
	authn middleware.Authenticator, admins middleware.AdminChecker, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1",
		middleware.JWTAuth(authn),
		middleware.RequireAdmin(admins),
		limiter,
	)

	g.GET("/me", a.Me)

	// ---- Sessions ----
	g.GET("/sessions", h.ListSessions)
	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:id", h.GetSession)
	g.PATCH("/sessions/:id", h.UpdateSession)
	g.DELETE("/sessions/:id", h.DeleteSession)
	g.POST("/sessions/:id/close", h.CloseSession)
	g.POST("/sessions/:id/reopen", h.ReopenSession)

	// ---- Slots ----
	g.GET("/sessions/:id/teams/:team/slots", h.ListSlots)
	g.PUT("/sessions/:id/teams/:team/slots", h.InitializeSlots)
	g.PUT("/sessions/:id/teams/:team/slots/:index", h.ReserveSlot)
	g.DELETE("/sessions/:id/teams/:team/slots/:index", h.ReleaseSlot)
}

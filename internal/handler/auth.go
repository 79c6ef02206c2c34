package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/session-slot-console/internal/auth"
	"github.com/iliyamo/session-slot-console/internal/events"
	"github.com/iliyamo/session-slot-console/internal/logging"
	"github.com/iliyamo/session-slot-console/internal/middleware"
	"github.com/iliyamo/session-slot-console/internal/model"
	"github.com/iliyamo/session-slot-console/internal/repository"
)

// IdentityGateway is what the auth endpoints need from auth.Gateway.
type IdentityGateway interface {
	SignUp(ctx context.Context, email, password string) (*model.Identity, error)
	SignIn(ctx context.Context, email, password string) (*model.Identity, error)
	SignOut(ctx context.Context, identityID string) error
	IssueTokens(ctx context.Context, ident *model.Identity) (auth.Tokens, error)
	Refresh(ctx context.Context, raw string) (*model.Identity, auth.Tokens, error)
	RequestPasswordReset(ctx context.Context, email string) (*model.Identity, string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Gateway     IdentityGateway
	Admins      *repository.AdminRepo
	Events      events.Publisher
	ResetTTLMin int
}

func NewAuthHandler(g IdentityGateway, admins *repository.AdminRepo, pub events.Publisher, resetTTLMin int) *AuthHandler {
	return &AuthHandler{Gateway: g, Admins: admins, Events: pub, ResetTTLMin: resetTTLMin}
}

// ----- DTOs -----

type registerReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type resetReq struct {
	Email string `json:"email"`
}
type resetConfirmReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type identityPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
type authResp struct {
	Identity identityPart `json:"identity"`
	Access   tokenPart    `json:"access"`
	Refresh  tokenPart    `json:"refresh"`
}

func newAuthResp(ident *model.Identity, t auth.Tokens) authResp {
	return authResp{
		Identity: identityPart{ID: ident.ID, Email: ident.Email},
		Access:   tokenPart{Token: t.Access.Token, Expires: t.Access.Exp},
		Refresh:  tokenPart{Token: t.Refresh.Raw, Expires: t.Refresh.Exp},
	}
}

// Register creates an identity, grants it admin and returns tokens.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if req.Password != req.ConfirmPassword {
		fields["confirm_password"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	ident, err := h.Gateway.SignUp(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": map[string]string{"password": err.Error()}})
	case errors.Is(err, auth.ErrEmailInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case err != nil:
		return writeError(c, "register", err)
	}

	if err := h.Admins.Create(ctx, model.AdminRecord{IdentityID: ident.ID, Email: ident.Email, Name: req.Name}); err != nil {
		return writeError(c, "register admin", err)
	}
	emit(c, h.Events, events.ActivityEvent{Kind: events.AdminRegistered, ActorID: ident.ID, UserID: ident.ID, UserName: req.Name})

	tokens, err := h.Gateway.IssueTokens(ctx, ident)
	if err != nil {
		return writeError(c, "issue tokens", err)
	}
	return c.JSON(http.StatusCreated, newAuthResp(ident, tokens))
}

// Login verifies credentials and the admin record. A valid identity that is
// not an admin is signed out again and refused.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	ident, err := h.Gateway.SignIn(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return writeError(c, "login", err)
	}

	if !h.Admins.IsAdmin(ctx, ident) {
		if err := h.Gateway.SignOut(ctx, ident.ID); err != nil {
			logging.Or(ctx, nil).Warn("sign out of non-admin failed", "identity_id", ident.ID, "error", err)
		}
		return c.JSON(http.StatusForbidden, echo.Map{"error": middleware.NotAdminMessage})
	}

	tokens, err := h.Gateway.IssueTokens(ctx, ident)
	if err != nil {
		return writeError(c, "issue tokens", err)
	}
	return c.JSON(http.StatusOK, newAuthResp(ident, tokens))
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	ident, tokens, err := h.Gateway.Refresh(ctx, req.RefreshToken)
	if errors.Is(err, auth.ErrInvalidToken) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return writeError(c, "refresh", err)
	}
	return c.JSON(http.StatusOK, newAuthResp(ident, tokens))
}

// Logout revokes every refresh token of the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	ident := auth.CurrentIdentity(c.Request().Context())
	if ident == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Gateway.SignOut(ctx, ident.ID); err != nil {
		return writeError(c, "logout", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestPasswordReset always answers 202 so the endpoint cannot be used to
// discover registered emails. The token goes to the mailer over the broker.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return badRequest(c, "email required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	log := logging.Or(ctx, nil)
	ident, token, err := h.Gateway.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		log.Error("password reset request failed", "error", err)
	}
	if ident != nil && h.Events != nil {
		now := time.Now().UTC()
		ev := events.PasswordResetEvent{
			IdentityID:  ident.ID,
			Email:       ident.Email,
			Token:       token,
			ExpiresAt:   now.Add(time.Duration(h.ResetTTLMin) * time.Minute).Format(time.RFC3339),
			RequestedAt: now.Format(time.RFC3339),
		}
		if err := h.Events.PublishPasswordReset(ctx, ev); err != nil {
			log.Warn("publish password reset failed", "identity_id", ident.ID, "error", err)
		}
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "if the email is registered, a reset link has been sent"})
}

// ConfirmPasswordReset redeems a reset token.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return badRequest(c, "token required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	err := h.Gateway.ResetPassword(ctx, req.Token, req.Password)
	switch {
	case errors.Is(err, auth.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": map[string]string{"password": err.Error()}})
	case errors.Is(err, auth.ErrInvalidToken):
		return badRequest(c, "invalid or expired token")
	case err != nil:
		return writeError(c, "reset password", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the admin record of the caller.
func (h *AuthHandler) Me(c echo.Context) error {
	ident := auth.CurrentIdentity(c.Request().Context())
	if ident == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	rec, err := h.Admins.Get(ctx, ident.ID)
	if err != nil {
		return writeError(c, "load admin", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":        ident.ID,
		"email":     rec.Email,
		"name":      rec.Name,
		"role":      rec.Role,
		"createdAt": rec.CreatedAt,
	})
}

// Package auth is the identity gateway: sign-up, sign-in, sign-out, token
// rotation and password resets over the MySQL identity tables.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/session-slot-console/internal/model"
	"github.com/iliyamo/session-slot-console/internal/repository"
	"github.com/iliyamo/session-slot-console/internal/utils"
)

// UserStore is the subset of repository.UserRepo the gateway needs.
type UserStore interface {
	Create(ctx context.Context, email, password string, cost int) (string, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdatePassword(ctx context.Context, id, password string, cost int) error
}

// TokenStore is the subset of repository.TokenRepo the gateway needs.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// ResetStore is the subset of repository.PasswordResetRepo the gateway needs.
type ResetStore interface {
	Store(ctx context.Context, userID, tokenHash string, exp time.Time) error
	Consume(ctx context.Context, tokenHash string) (string, error)
}

// Settings are the token lifetimes and hashing cost.
type Settings struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	ResetTTLMin    int
}

// Tokens is an issued access/refresh pair. Refresh.Raw goes to the client
// and only its hash is stored.
type Tokens struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// Gateway implements the identity operations.
type Gateway struct {
	Users    UserStore
	Tokens   TokenStore
	Resets   ResetStore
	Settings Settings
}

func NewGateway(u UserStore, t TokenStore, r ResetStore, s Settings) *Gateway {
	return &Gateway{Users: u, Tokens: t, Resets: r, Settings: s}
}

// SignUp registers a new identity.
func (g *Gateway) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.CheckPasswordPolicy(password); err != nil {
		return nil, ErrWeakPassword
	}
	id, err := g.Users.Create(ctx, email, password, g.Settings.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return &model.Identity{ID: id, Email: email}, nil
}

// SignIn verifies email and password.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	u, err := g.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &model.Identity{ID: u.ID, Email: u.Email}, nil
}

// SignOut revokes every refresh token of the identity. Outstanding access
// tokens stay valid until they expire.
func (g *Gateway) SignOut(ctx context.Context, identityID string) error {
	if err := g.Tokens.RevokeAllForUser(ctx, identityID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// IssueTokens mints an access token and stores a fresh refresh token.
func (g *Gateway) IssueTokens(ctx context.Context, ident *model.Identity) (Tokens, error) {
	access, err := utils.NewAccessToken(g.Settings.JWTSecret, ident.ID, g.Settings.AccessTTLMin)
	if err != nil {
		return Tokens{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(g.Settings.RefreshTTLDays)
	if err != nil {
		return Tokens{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := g.Tokens.StoreRefresh(ctx, ident.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Tokens{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

// Refresh validates raw, revokes it and issues a new pair.
func (g *Gateway) Refresh(ctx context.Context, raw string) (*model.Identity, Tokens, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	userID, err := g.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return nil, Tokens{}, ErrInvalidToken
	}
	if err != nil {
		return nil, Tokens{}, fmt.Errorf("refresh: %w", err)
	}
	if err := g.Tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, Tokens{}, fmt.Errorf("refresh: %w", err)
	}
	u, err := g.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, Tokens{}, ErrInvalidToken
	}
	if err != nil {
		return nil, Tokens{}, fmt.Errorf("refresh: %w", err)
	}
	if !u.IsActive {
		return nil, Tokens{}, ErrInvalidToken
	}
	ident := &model.Identity{ID: u.ID, Email: u.Email}
	tokens, err := g.IssueTokens(ctx, ident)
	if err != nil {
		return nil, Tokens{}, err
	}
	return ident, tokens, nil
}

// Authenticate verifies a bearer access token.
func (g *Gateway) Authenticate(raw string) (*model.Identity, error) {
	sub, err := utils.ParseAccessToken(g.Settings.JWTSecret, raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &model.Identity{ID: sub}, nil
}

// RequestPasswordReset creates a one-time reset token for email. An unknown
// email yields a nil identity and no error so callers cannot probe for
// registered addresses.
func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) (*model.Identity, string, error) {
	u, err := g.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("request password reset: %w", err)
	}
	raw, err := utils.RandomHex(32)
	if err != nil {
		return nil, "", fmt.Errorf("request password reset: %w", err)
	}
	exp := time.Now().UTC().Add(time.Duration(g.Settings.ResetTTLMin) * time.Minute)
	if err := g.Resets.Store(ctx, u.ID, utils.HashRefreshRaw(raw), exp); err != nil {
		return nil, "", fmt.Errorf("request password reset: %w", err)
	}
	return &model.Identity{ID: u.ID, Email: u.Email}, raw, nil
}

// ResetPassword redeems a reset token, sets the new password and signs the
// identity out everywhere.
func (g *Gateway) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := utils.CheckPasswordPolicy(newPassword); err != nil {
		return ErrWeakPassword
	}
	userID, err := g.Resets.Consume(ctx, utils.HashRefreshRaw(strings.TrimSpace(token)))
	if errors.Is(err, repository.ErrTokenInvalid) {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := g.Users.UpdatePassword(ctx, userID, newPassword, g.Settings.BcryptCost); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return g.SignOut(ctx, userID)
}

package auth

import (
	"context"

	"github.com/iliyamo/session-slot-console/internal/model"
)

type identityKey struct{}

// ContextWithIdentity attaches the signed-in identity to ctx.
func ContextWithIdentity(ctx context.Context, ident *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// CurrentIdentity returns the identity attached by the JWT middleware, or nil
// when nobody is signed in.
func CurrentIdentity(ctx context.Context) *model.Identity {
	ident, _ := ctx.Value(identityKey{}).(*model.Identity)
	return ident
}

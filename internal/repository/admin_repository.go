package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/logging"
	"github.com/iliyamo/session-slot-console/internal/model"
)

// AdminRepo stores admin records and answers the admin authorization check.
type AdminRepo struct {
	Store docstore.Store
	Now   func() time.Time
}

// NewAdminRepo returns an AdminRepo bound to the provided store.
func NewAdminRepo(st docstore.Store) *AdminRepo {
	return &AdminRepo{Store: st, Now: time.Now}
}

type adminDoc struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	Role      string `json:"role"`
}

// Create writes admins/{IdentityID}. CreatedAt defaults to now and Role is
// always model.RoleAdmin.
func (r *AdminRepo) Create(ctx context.Context, rec model.AdminRecord) error {
	if !validKey(rec.IdentityID) {
		return &ValidationError{Fields: map[string]string{"identityId": "invalid"}}
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = r.Now()
	}
	err := r.Store.Set(ctx, docstore.Join(adminsRoot, rec.IdentityID), adminDoc{
		Email:     rec.Email,
		Name:      rec.Name,
		CreatedAt: formatTime(created),
		Role:      model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// Get loads the admin record of an identity or returns ErrAdminNotFound.
func (r *AdminRepo) Get(ctx context.Context, identityID string) (model.AdminRecord, error) {
	if !validKey(identityID) {
		return model.AdminRecord{}, ErrAdminNotFound
	}
	snap, err := r.Store.Get(ctx, docstore.Join(adminsRoot, identityID))
	if err != nil {
		return model.AdminRecord{}, fmt.Errorf("get admin: %w", err)
	}
	if !snap.Exists() {
		return model.AdminRecord{}, ErrAdminNotFound
	}
	var d adminDoc
	if err := snap.Decode(&d); err != nil {
		return model.AdminRecord{}, fmt.Errorf("get admin: %w", err)
	}
	rec := model.AdminRecord{IdentityID: identityID, Email: d.Email, Name: d.Name, Role: d.Role}
	if t, ok := parseTime(d.CreatedAt); ok {
		rec.CreatedAt = t
	}
	return rec, nil
}

// IsAdmin reports whether an admin record exists for the identity. A nil
// identity answers false without touching the store. Store failures are
// logged and answered with false, so access is denied rather than granted.
func (r *AdminRepo) IsAdmin(ctx context.Context, ident *model.Identity) bool {
	if ident == nil || !validKey(ident.ID) {
		return false
	}
	ok, err := docstore.Exists(ctx, r.Store, docstore.Join(adminsRoot, ident.ID))
	if err != nil {
		logging.Or(ctx, nil).Warn("admin status check failed", "identity_id", ident.ID, "error", err)
		return false
	}
	return ok
}

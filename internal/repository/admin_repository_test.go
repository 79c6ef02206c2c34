package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/model"
)

func TestAdminRepo_CreateGetIsAdmin(t *testing.T) {
	_, _, admins, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, admins.Create(ctx, model.AdminRecord{
		IdentityID: "id-1", Email: "ops@example.com", Name: "Ops",
	}))

	rec, err := admins.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", rec.Email)
	assert.Equal(t, model.RoleAdmin, rec.Role)
	assert.True(t, rec.CreatedAt.Equal(fixedNow))

	assert.True(t, admins.IsAdmin(ctx, &model.Identity{ID: "id-1"}))
	assert.False(t, admins.IsAdmin(ctx, &model.Identity{ID: "id-2"}))
	assert.False(t, admins.IsAdmin(ctx, nil))

	_, err = admins.Get(ctx, "id-2")
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

type failingStore struct{ docstore.Store }

func (failingStore) Get(context.Context, string) (docstore.Snapshot, error) {
	return docstore.Snapshot{}, errors.New("connection refused")
}

func TestAdminRepo_IsAdminFailsClosed(t *testing.T) {
	admins := NewAdminRepo(failingStore{Store: docstore.NewMemoryStore()})
	assert.False(t, admins.IsAdmin(context.Background(), &model.Identity{ID: "id-1"}))
}

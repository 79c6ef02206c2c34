package repository

import (
	"testing"
	"time"

	"github.com/iliyamo/session-slot-console/internal/docstore"
)

var fixedNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func newTestRepos(t *testing.T) (*SessionRepo, *SlotRepo, *AdminRepo, docstore.Store) {
	t.Helper()
	st := docstore.NewMemoryStore()
	now := func() time.Time { return fixedNow }
	sessions := &SessionRepo{Store: st, Now: now}
	slots := &SlotRepo{Store: st, Now: now}
	admins := &AdminRepo{Store: st, Now: now}
	return sessions, slots, admins, st
}

func strPtr(s string) *string { return &s }

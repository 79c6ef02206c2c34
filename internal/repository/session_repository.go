package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/model"
)

// SessionRepo is the session registry. It creates, lists, edits,
// closes/reopens and deletes session documents. Every mutation goes straight
// to the store; there is no local caching or locking.
type SessionRepo struct {
	Store docstore.Store
	Now   func() time.Time
}

// NewSessionRepo returns a SessionRepo bound to the provided store.
func NewSessionRepo(st docstore.Store) *SessionRepo {
	return &SessionRepo{Store: st, Now: time.Now}
}

// Create expands the draft's team configuration into empty slot arrays,
// stamps status=active and createdAt, generates the id with Push and writes
// the whole document. It returns the generated id.
func (r *SessionRepo) Create(ctx context.Context, draft model.SessionDraft) (string, error) {
	verr := &ValidationError{}
	teams := make(map[string]teamDoc, len(draft.Teams))
	for name, count := range draft.Teams {
		if !validKey(name) {
			verr.Add("teams."+name, "invalid team name")
			continue
		}
		if count <= 0 {
			verr.Add("teams."+name, "slot count must be positive")
			continue
		}
		teams[name] = teamDoc{SlotCount: count}
	}
	if err := verr.orNil(); err != nil {
		return "", err
	}

	id, err := r.Store.Push(ctx, sessionsRoot)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	doc := map[string]any{
		"event":     draft.Event,
		"date":      draft.Date,
		"time":      draft.Time,
		"status":    string(model.StatusActive),
		"createdAt": formatTime(r.Now()),
	}
	if len(teams) > 0 {
		td := make(map[string]any, len(teams))
		for name, t := range teams {
			td[name] = map[string]any{"slotCount": t.SlotCount, "slots": emptySlots(t.SlotCount)}
		}
		doc["teams"] = td
	}
	if err := r.Store.Set(ctx, sessionPath(id), doc); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// List returns every session keyed by id, or an empty map when there are none.
func (r *SessionRepo) List(ctx context.Context) (map[string]model.Session, error) {
	snap, err := r.Store.Get(ctx, sessionsRoot)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make(map[string]model.Session)
	if !snap.Exists() {
		return out, nil
	}
	var docs map[string]sessionDoc
	if err := snap.Decode(&docs); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for id, d := range docs {
		out[id] = d.toModel(id)
	}
	return out, nil
}

// Get loads one session. It returns ErrSessionNotFound when absent.
func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	if !validKey(id) {
		return model.Session{}, ErrSessionNotFound
	}
	snap, err := r.Store.Get(ctx, sessionPath(id))
	if err != nil {
		return model.Session{}, fmt.Errorf("get session: %w", err)
	}
	if !snap.Exists() {
		return model.Session{}, ErrSessionNotFound
	}
	var d sessionDoc
	if err := snap.Decode(&d); err != nil {
		return model.Session{}, fmt.Errorf("get session: %w", err)
	}
	return d.toModel(id), nil
}

// Update merges the non-nil fields of u into the session and stamps
// updatedAt. Fields not present in u are left as they are.
func (r *SessionRepo) Update(ctx context.Context, id string, u model.SessionUpdate) error {
	fields := map[string]any{}
	if u.Event != nil {
		fields["event"] = *u.Event
	}
	if u.Date != nil {
		fields["date"] = *u.Date
	}
	if u.Time != nil {
		fields["time"] = *u.Time
	}
	return r.merge(ctx, "update session", id, fields)
}

// SetStatus moves the session to status. Only active and closed are accepted.
func (r *SessionRepo) SetStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return &ValidationError{Fields: map[string]string{"status": "must be active or closed"}}
	}
	return r.merge(ctx, "set session status", id, map[string]any{"status": string(status)})
}

// Close marks the session closed.
func (r *SessionRepo) Close(ctx context.Context, id string) error {
	return r.SetStatus(ctx, id, model.StatusClosed)
}

// Reopen marks the session active again.
func (r *SessionRepo) Reopen(ctx context.Context, id string) error {
	return r.SetStatus(ctx, id, model.StatusActive)
}

// Delete removes the session with all of its teams and slots. It cannot be undone.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.ensureExists(ctx, "delete session", id); err != nil {
		return err
	}
	if err := r.Store.Remove(ctx, sessionPath(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// merge applies fields plus updatedAt to an existing session. A merge never
// creates a session that is not already there.
func (r *SessionRepo) merge(ctx context.Context, op, id string, fields map[string]any) error {
	if err := r.ensureExists(ctx, op, id); err != nil {
		return err
	}
	fields["updatedAt"] = formatTime(r.Now())
	if err := r.Store.Update(ctx, sessionPath(id), fields); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *SessionRepo) ensureExists(ctx context.Context, op, id string) error {
	if !validKey(id) {
		return ErrSessionNotFound
	}
	ok, err := docstore.Exists(ctx, r.Store, sessionPath(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/session-slot-console/internal/docstore"
	"github.com/iliyamo/session-slot-console/internal/model"
)

// SlotRepo is the slot allocator. It (re)initializes a team's slot array and
// toggles individual slots between empty and reserved.
//
// Reservations are last-write-wins: ReserveSlot never checks whether the
// slot is already taken, so two concurrent reservations of the same slot
// both succeed and the later write is what readers see.
type SlotRepo struct {
	Store docstore.Store
	Now   func() time.Time
}

// NewSlotRepo returns a SlotRepo bound to the provided store.
func NewSlotRepo(st docstore.Store) *SlotRepo {
	return &SlotRepo{Store: st, Now: time.Now}
}

// InitializeTeamSlots overwrites the team's slotCount and replaces its whole
// slot array with slotCount empty slots, discarding any reservations. A zero
// slotCount means model.DefaultSlotCount. The team is created when missing.
func (r *SlotRepo) InitializeTeamSlots(ctx context.Context, sessionID, team string, slotCount int) error {
	if slotCount == 0 {
		slotCount = model.DefaultSlotCount
	}
	verr := &ValidationError{}
	if slotCount < 0 {
		verr.Add("slotCount", "must be positive")
	}
	if !validKey(team) {
		verr.Add("team", "invalid team name")
	}
	if err := verr.orNil(); err != nil {
		return err
	}
	if err := r.ensureSession(ctx, sessionID); err != nil {
		return err
	}
	base := docstore.Join("teams", team)
	err := r.Store.Update(ctx, sessionPath(sessionID), map[string]any{
		docstore.Join(base, "slotCount"): slotCount,
		docstore.Join(base, "slots"):     emptySlots(slotCount),
	})
	if err != nil {
		return fmt.Errorf("initialize team slots: %w", err)
	}
	return nil
}

// ReserveSlot marks the slot reserved for p. An existing occupant is
// overwritten without error.
func (r *SlotRepo) ReserveSlot(ctx context.Context, sessionID, team string, index int, p model.Player) error {
	verr := &ValidationError{}
	if strings.TrimSpace(p.UserID) == "" {
		verr.Add("userId", "required")
	}
	if strings.TrimSpace(p.UserName) == "" {
		verr.Add("userName", "required")
	}
	if err := verr.orNil(); err != nil {
		return err
	}
	if err := r.ensureSlot(ctx, sessionID, team, index); err != nil {
		return err
	}
	err := r.Store.Update(ctx, slotPath(sessionID, team, index), map[string]any{
		"reserved":   true,
		"reservedAt": formatTime(r.Now()),
		"userId":     p.UserID,
		"userName":   p.UserName,
	})
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	return nil
}

// ReleaseSlot empties the slot. Releasing an empty slot changes nothing.
func (r *SlotRepo) ReleaseSlot(ctx context.Context, sessionID, team string, index int) error {
	if err := r.ensureSlot(ctx, sessionID, team, index); err != nil {
		return err
	}
	err := r.Store.Update(ctx, slotPath(sessionID, team, index), map[string]any{
		"reserved":   false,
		"reservedAt": nil,
		"userId":     nil,
		"userName":   nil,
	})
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

// ListSlots returns the team's slots ordered by numeric index. An absent
// session or team is reported as ErrSessionNotFound or ErrTeamNotFound, never
// as an empty list.
func (r *SlotRepo) ListSlots(ctx context.Context, sessionID, team string) ([]model.Slot, error) {
	if !validKey(sessionID) {
		return nil, ErrSessionNotFound
	}
	if !validKey(team) {
		return nil, ErrTeamNotFound
	}
	snap, err := r.Store.Get(ctx, teamPath(sessionID, team))
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	if !snap.Exists() {
		if err := r.ensureSession(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrTeamNotFound
	}
	var d teamDoc
	if err := snap.Decode(&d); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return sortedSlots(d.Slots), nil
}

func (r *SlotRepo) ensureSession(ctx context.Context, sessionID string) error {
	if !validKey(sessionID) {
		return ErrSessionNotFound
	}
	ok, err := docstore.Exists(ctx, r.Store, sessionPath(sessionID))
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// ensureSlot keeps merges from creating slots that were never initialized.
func (r *SlotRepo) ensureSlot(ctx context.Context, sessionID, team string, index int) error {
	if index < 0 || !validKey(team) {
		return ErrSlotNotFound
	}
	if !validKey(sessionID) {
		return ErrSessionNotFound
	}
	ok, err := docstore.Exists(ctx, r.Store, slotPath(sessionID, team, index))
	if err != nil {
		return fmt.Errorf("load slot: %w", err)
	}
	if ok {
		return nil
	}
	teamOK, err := docstore.Exists(ctx, r.Store, teamPath(sessionID, team))
	if err != nil {
		return fmt.Errorf("load team: %w", err)
	}
	if teamOK {
		return ErrSlotNotFound
	}
	if err := r.ensureSession(ctx, sessionID); err != nil {
		return err
	}
	return ErrTeamNotFound
}

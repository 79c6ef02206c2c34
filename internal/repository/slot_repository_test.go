package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/session-slot-console/internal/model"
)

func newSessionWithTeam(t *testing.T, sessions *SessionRepo, team string, n int) string {
	t.Helper()
	id, err := sessions.Create(context.Background(), model.SessionDraft{
		Event: "e", Teams: map[string]int{team: n},
	})
	require.NoError(t, err)
	return id
}

func TestSlotRepo_InitializeReturnsEmptySortedSlots(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id, err := sessions.Create(ctx, model.SessionDraft{Event: "e"})
	require.NoError(t, err)

	require.NoError(t, slots.InitializeTeamSlots(ctx, id, "yellow", 12))

	got, err := slots.ListSlots(ctx, id, "yellow")
	require.NoError(t, err)
	require.Len(t, got, 12)
	for i, s := range got {
		assert.Equal(t, i, s.Index)
		assert.False(t, s.Reserved)
		assert.Empty(t, s.UserID)
		assert.Empty(t, s.UserName)
		assert.Nil(t, s.ReservedAt)
	}
}

func TestSlotRepo_InitializeDefaultsAndResets(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 4)
	require.NoError(t, slots.ReserveSlot(ctx, id, "blue", 3, model.Player{UserID: "u", UserName: "n"}))

	require.NoError(t, slots.InitializeTeamSlots(ctx, id, "blue", 0))

	got, err := slots.ListSlots(ctx, id, "blue")
	require.NoError(t, err)
	assert.Len(t, got, model.DefaultSlotCount)
	for _, s := range got {
		assert.False(t, s.Reserved)
	}

	s, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSlotCount, s.Teams["blue"].SlotCount)

	// Shrinking drops the slots above the new count.
	require.NoError(t, slots.InitializeTeamSlots(ctx, id, "blue", 2))
	got, err = slots.ListSlots(ctx, id, "blue")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSlotRepo_InitializeValidation(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 1)

	var verr *ValidationError
	assert.ErrorAs(t, slots.InitializeTeamSlots(ctx, id, "blue", -1), &verr)
	assert.ErrorAs(t, slots.InitializeTeamSlots(ctx, id, "a.b", 2), &verr)
	assert.ErrorIs(t, slots.InitializeTeamSlots(ctx, "missing", "blue", 2), ErrSessionNotFound)
}

func TestSlotRepo_ReserveReleaseRoundTrip(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 3)

	before := fixedNow
	require.NoError(t, slots.ReserveSlot(ctx, id, "blue", 1, model.Player{UserID: "u7", UserName: "Sam"}))

	got, err := slots.ListSlots(ctx, id, "blue")
	require.NoError(t, err)
	assert.True(t, got[1].Reserved)
	assert.Equal(t, "u7", got[1].UserID)
	assert.Equal(t, "Sam", got[1].UserName)
	require.NotNil(t, got[1].ReservedAt)
	assert.False(t, got[1].ReservedAt.Before(before))

	require.NoError(t, slots.ReleaseSlot(ctx, id, "blue", 1))
	got, err = slots.ListSlots(ctx, id, "blue")
	require.NoError(t, err)
	assert.Equal(t, model.Slot{Index: 1}, got[1])
}

func TestSlotRepo_ReleaseIsIdempotent(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 2)

	require.NoError(t, slots.ReleaseSlot(ctx, id, "blue", 0))
	require.NoError(t, slots.ReleaseSlot(ctx, id, "blue", 0))

	got, err := slots.ListSlots(ctx, id, "blue")
	require.NoError(t, err)
	assert.Equal(t, model.Slot{Index: 0}, got[0])
}

func TestSlotRepo_ReserveLastWriteWins(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 2)

	require.NoError(t, slots.ReserveSlot(ctx, id, "blue", 0, model.Player{UserID: "u1", UserName: "Alice"}))
	slots.Now = func() time.Time { return fixedNow.Add(time.Minute) }
	require.NoError(t, slots.ReserveSlot(ctx, id, "blue", 0, model.Player{UserID: "u2", UserName: "Bob"}))

	got, err := slots.ListSlots(ctx, id, "blue")
	require.NoError(t, err)
	assert.Equal(t, "u2", got[0].UserID)
	assert.Equal(t, "Bob", got[0].UserName)
	require.NotNil(t, got[0].ReservedAt)
	assert.True(t, got[0].ReservedAt.Equal(fixedNow.Add(time.Minute)))
}

func TestSlotRepo_ReserveValidation(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 2)

	var verr *ValidationError
	require.ErrorAs(t, slots.ReserveSlot(ctx, id, "blue", 0, model.Player{UserID: " "}), &verr)
	assert.Contains(t, verr.Fields, "userId")
	assert.Contains(t, verr.Fields, "userName")
}

func TestSlotRepo_AbsentTargets(t *testing.T) {
	sessions, slots, _, st := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 2)
	p := model.Player{UserID: "u", UserName: "n"}

	assert.ErrorIs(t, slots.ReserveSlot(ctx, id, "blue", 2, p), ErrSlotNotFound)
	assert.ErrorIs(t, slots.ReserveSlot(ctx, id, "blue", -1, p), ErrSlotNotFound)
	assert.ErrorIs(t, slots.ReserveSlot(ctx, id, "red", 0, p), ErrTeamNotFound)
	assert.ErrorIs(t, slots.ReserveSlot(ctx, "gone", "blue", 0, p), ErrSessionNotFound)
	assert.ErrorIs(t, slots.ReleaseSlot(ctx, id, "red", 0), ErrTeamNotFound)

	_, err := slots.ListSlots(ctx, id, "red")
	assert.ErrorIs(t, err, ErrTeamNotFound)
	_, err = slots.ListSlots(ctx, "gone", "blue")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	snap, err := st.Get(ctx, "sessions/"+id+"/teams/blue/slots/2")
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

func TestSlotRepo_SlotWritesLeaveSessionUntouched(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id := newSessionWithTeam(t, sessions, "blue", 2)

	require.NoError(t, slots.ReserveSlot(ctx, id, "blue", 0, model.Player{UserID: "u", UserName: "n"}))

	s, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, s.UpdatedAt)
	assert.Equal(t, "e", s.Event)
}

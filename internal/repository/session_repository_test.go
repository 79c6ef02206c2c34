package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/session-slot-console/internal/model"
)

func TestSessionRepo_CreateAppearsInList(t *testing.T) {
	sessions, _, _, _ := newTestRepos(t)
	ctx := context.Background()

	id, err := sessions.Create(ctx, model.SessionDraft{
		Event: "Thursday league",
		Date:  "2026-03-19",
		Time:  "20:00",
		Teams: map[string]int{"blue": 3, "green": 2},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	all, err := sessions.List(ctx)
	require.NoError(t, err)
	require.Contains(t, all, id)

	s := all[id]
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "Thursday league", s.Event)
	assert.Equal(t, "2026-03-19", s.Date)
	assert.Equal(t, "20:00", s.Time)
	assert.Equal(t, model.StatusActive, s.Status)
	assert.True(t, s.CreatedAt.Equal(fixedNow))
	assert.Nil(t, s.UpdatedAt)
	require.Len(t, s.Teams, 2)
	assert.Equal(t, 3, s.Teams["blue"].SlotCount)
	assert.Len(t, s.Teams["blue"].Slots, 3)
	assert.Len(t, s.Teams["green"].Slots, 2)
}

func TestSessionRepo_ListEmpty(t *testing.T) {
	sessions, _, _, _ := newTestRepos(t)
	all, err := sessions.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSessionRepo_CreateRejectsBadTeams(t *testing.T) {
	sessions, _, _, _ := newTestRepos(t)
	_, err := sessions.Create(context.Background(), model.SessionDraft{
		Event: "x",
		Teams: map[string]int{"bad/name": 2, "ok": 0},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "teams.bad/name")
	assert.Contains(t, verr.Fields, "teams.ok")

	all, err := sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionRepo_UpdateMergesFields(t *testing.T) {
	sessions, _, _, _ := newTestRepos(t)
	ctx := context.Background()
	id, err := sessions.Create(ctx, model.SessionDraft{Event: "old", Date: "d", Time: "t"})
	require.NoError(t, err)

	require.NoError(t, sessions.Update(ctx, id, model.SessionUpdate{Event: strPtr("new")}))

	s, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", s.Event)
	assert.Equal(t, "d", s.Date)
	assert.Equal(t, "t", s.Time)
	require.NotNil(t, s.UpdatedAt)
	assert.True(t, s.UpdatedAt.Equal(fixedNow))
}

func TestSessionRepo_MissingSession(t *testing.T) {
	sessions, _, _, st := newTestRepos(t)
	ctx := context.Background()

	_, err := sessions.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Update(ctx, "nope", model.SessionUpdate{Event: strPtr("x")}), ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Close(ctx, "nope"), ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Delete(ctx, "nope"), ErrSessionNotFound)

	// No phantom node was written by the failed merges.
	snap, err := st.Get(ctx, "sessions/nope")
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

func TestSessionRepo_SetStatusRejectsUnknown(t *testing.T) {
	sessions, _, _, _ := newTestRepos(t)
	ctx := context.Background()
	id, err := sessions.Create(ctx, model.SessionDraft{Event: "e"})
	require.NoError(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, sessions.SetStatus(ctx, id, "archived"), &verr)
}

func TestSessionRepo_CloseReopen(t *testing.T) {
	sessions, _, _, _ := newTestRepos(t)
	ctx := context.Background()
	id, err := sessions.Create(ctx, model.SessionDraft{Event: "e"})
	require.NoError(t, err)

	require.NoError(t, sessions.Close(ctx, id))
	s, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, s.Status)

	// Closing twice is fine.
	require.NoError(t, sessions.Close(ctx, id))

	require.NoError(t, sessions.Reopen(ctx, id))
	s, err = sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, s.Status)
}

func TestSessionRepo_DeleteCascades(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()
	id, err := sessions.Create(ctx, model.SessionDraft{Event: "e", Teams: map[string]int{"blue": 2}})
	require.NoError(t, err)
	require.NoError(t, slots.ReserveSlot(ctx, id, "blue", 0, model.Player{UserID: "u1", UserName: "Alice"}))

	require.NoError(t, sessions.Delete(ctx, id))

	_, err = sessions.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = slots.ListSlots(ctx, id, "blue")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = slots.ListSlots(ctx, id, "anything")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepo_EndToEnd(t *testing.T) {
	sessions, slots, _, _ := newTestRepos(t)
	ctx := context.Background()

	id, err := sessions.Create(ctx, model.SessionDraft{
		Event: "Cup", Date: "2026-04-01", Time: "19:00",
		Teams: map[string]int{"Team A": 2},
	})
	require.NoError(t, err)
	require.NoError(t, slots.InitializeTeamSlots(ctx, id, "Team A", 2))
	require.NoError(t, slots.ReserveSlot(ctx, id, "Team A", 0, model.Player{UserID: "u1", UserName: "Alice"}))

	got, err := slots.ListSlots(ctx, id, "Team A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Reserved)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, "Alice", got[0].UserName)
	assert.False(t, got[1].Reserved)
	assert.Empty(t, got[1].UserID)

	require.NoError(t, sessions.Close(ctx, id))
	s, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, s.Status)

	require.NoError(t, sessions.Reopen(ctx, id))
	s, err = sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, s.Status)
	assert.True(t, s.Teams["Team A"].Slots[0].Reserved)
}

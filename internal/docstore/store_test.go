package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(rdb, "test"),
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, st Store)) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, st) })
	}
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		doc := map[string]any{
			"event": "Friday five-a-side",
			"teams": map[string]any{
				"blue": map[string]any{"slotCount": 2, "slots": []any{
					map[string]any{"reserved": false},
					map[string]any{"reserved": true, "userId": "u1"},
				}},
			},
		}
		require.NoError(t, st.Set(ctx, "sessions/s1", doc))

		snap, err := st.Get(ctx, "sessions/s1")
		require.NoError(t, err)
		require.True(t, snap.Exists())
		assert.Equal(t, "s1", snap.Key())

		var got struct {
			Event string `json:"event"`
			Teams map[string]struct {
				SlotCount int `json:"slotCount"`
				Slots     map[string]struct {
					Reserved bool   `json:"reserved"`
					UserID   string `json:"userId"`
				} `json:"slots"`
			} `json:"teams"`
		}
		require.NoError(t, snap.Decode(&got))
		assert.Equal(t, "Friday five-a-side", got.Event)
		assert.Equal(t, 2, got.Teams["blue"].SlotCount)
		assert.Len(t, got.Teams["blue"].Slots, 2)
		assert.True(t, got.Teams["blue"].Slots["1"].Reserved)
		assert.Equal(t, "u1", got.Teams["blue"].Slots["1"].UserID)

		leaf, err := st.Get(ctx, "sessions/s1/teams/blue/slotCount")
		require.NoError(t, err)
		assert.Equal(t, json.Number("2"), leaf.Value())
	})
}

func TestStore_GetMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		snap, err := st.Get(context.Background(), "nothing/here")
		require.NoError(t, err)
		assert.False(t, snap.Exists())

		var v map[string]any
		require.NoError(t, snap.Decode(&v))
		assert.Nil(t, v)
	})
}

func TestStore_SetOverwritesSubtree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "a", map[string]any{"x": 1, "y": 2}))
		require.NoError(t, st.Set(ctx, "a", map[string]any{"z": 3}))

		snap, err := st.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"z": json.Number("3")}, snap.Value())
	})
}

func TestStore_UpdateMergesAndClears(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "slot", map[string]any{
			"reserved": true, "userId": "u1", "userName": "Alice",
		}))
		require.NoError(t, st.Update(ctx, "slot", map[string]any{
			"reserved": false, "userId": nil, "userName": nil, "reservedAt": nil,
		}))

		snap, err := st.Get(ctx, "slot")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"reserved": false}, snap.Value())
	})
}

func TestStore_UpdateNestedKeys(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "s", map[string]any{"event": "e", "teams": map[string]any{
			"blue": map[string]any{"slotCount": 1, "slots": []any{map[string]any{"reserved": true}}},
		}}))
		require.NoError(t, st.Update(ctx, "s", map[string]any{
			"teams/blue/slotCount": 2,
			"teams/blue/slots":     []any{map[string]any{"reserved": false}, map[string]any{"reserved": false}},
		}))

		snap, err := st.Get(ctx, "s/teams/blue/slots")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"0": map[string]any{"reserved": false},
			"1": map[string]any{"reserved": false},
		}, snap.Value())

		ev, err := st.Get(ctx, "s/event")
		require.NoError(t, err)
		assert.Equal(t, "e", ev.Value())
	})
}

func TestStore_UpdateRejectsOverlap(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		err := st.Update(context.Background(), "s", map[string]any{
			"teams":      map[string]any{},
			"teams/blue": 1,
		})
		assert.ErrorIs(t, err, ErrOverlappingUpdate)
	})
}

func TestStore_WriteUnderLeafReplacesLeaf(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "a", "leaf"))
		require.NoError(t, st.Set(ctx, "a/b", "child"))

		snap, err := st.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"b": "child"}, snap.Value())
	})
}

func TestStore_RemoveCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "sessions/s1", map[string]any{"teams": map[string]any{"blue": map[string]any{"slotCount": 3}}}))
		require.NoError(t, st.Set(ctx, "sessions/s2", map[string]any{"event": "keep"}))
		require.NoError(t, st.Remove(ctx, "sessions/s1"))

		gone, err := st.Get(ctx, "sessions/s1/teams/blue")
		require.NoError(t, err)
		assert.False(t, gone.Exists())

		kept, err := st.Get(ctx, "sessions")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"s2": map[string]any{"event": "keep"}}, kept.Value())

		// Removing again is a no-op.
		require.NoError(t, st.Remove(ctx, "sessions/s1"))
	})
}

func TestStore_SiblingPrefixIsolation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "team/a", 1))
		require.NoError(t, st.Set(ctx, "team-b/a", 2))
		require.NoError(t, st.Remove(ctx, "team"))

		snap, err := st.Get(ctx, "team-b/a")
		require.NoError(t, err)
		assert.Equal(t, json.Number("2"), snap.Value())
	})
}

func TestStore_PushKeysAreUniqueAndOrdered(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		prev := ""
		for i := 0; i < 50; i++ {
			k, err := st.Push(ctx, "sessions")
			require.NoError(t, err)
			assert.NoError(t, ValidateSegment(k))
			assert.Greater(t, k, prev)
			prev = k
		}
	})
}

func TestStore_InvalidPaths(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		_, err := st.Get(ctx, "sessions/a.b")
		assert.ErrorIs(t, err, ErrInvalidPath)

		err = st.Set(ctx, "x", map[string]any{"bad#key": 1})
		assert.ErrorIs(t, err, ErrInvalidPath)

		err = st.Set(ctx, "", "scalar")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestStore_EmptyValuesAreNotStored(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.Set(ctx, "x", map[string]any{"empty": map[string]any{}}))
		ok, err := Exists(ctx, st, "x")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// Package docstore implements a hierarchical, path-addressed JSON document
// store. Documents live in a single tree; any path can be read as a subtree,
// overwritten, merged into, or removed. Values follow realtime-database
// conventions: arrays are stored as maps keyed by decimal index, and nil values
// and empty maps are never stored, so writing nil at a path deletes it.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	// ErrInvalidPath is returned when a path segment or document key cannot be stored.
	ErrInvalidPath = errors.New("docstore: invalid path")
	// ErrOverlappingUpdate is returned when two keys of one Update address
	// the same node or one is an ancestor of the other.
	ErrOverlappingUpdate = errors.New("docstore: overlapping update paths")
)

// Store is the contract shared by every backend.
type Store interface {
	// Get reads the subtree rooted at path. A missing path is not an error;
	// the returned snapshot reports Exists() == false.
	Get(ctx context.Context, path string) (Snapshot, error)
	// Set overwrites the subtree at path with value. A nil value removes it.
	Set(ctx context.Context, path string, value any) error
	// Update merges fields into the node at path. Keys may be relative
	// multi-segment paths ("teams/blue/slotCount"); a nil value clears the
	// field. All fields are applied atomically.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Remove deletes the subtree at path. Removing a missing path is a no-op.
	Remove(ctx context.Context, path string) error
	// Push reserves a new, globally unique, time-ordered child key under
	// parent and returns it. Nothing is written until the caller sets a value.
	Push(ctx context.Context, parent string) (string, error)
}

// Snapshot is the result of a read.
type Snapshot struct {
	path  string
	value any
}

// Path returns the path that was read.
func (s Snapshot) Path() string { return s.path }

// Key returns the last segment of the path, or "" for the root.
func (s Snapshot) Key() string {
	segs := Split(s.path)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Exists reports whether anything is stored at the path.
func (s Snapshot) Exists() bool { return s.value != nil }

// Value returns the raw value: map[string]any, string, json.Number or bool.
func (s Snapshot) Value() any { return s.value }

// Decode unmarshals the snapshot into v using JSON field rules.
func (s Snapshot) Decode(v any) error {
	if s.value == nil {
		return nil
	}
	b, err := json.Marshal(s.value)
	if err != nil {
		return fmt.Errorf("docstore: encode %q: %w", s.path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("docstore: decode %q: %w", s.path, err)
	}
	return nil
}

// Exists is a convenience for a point existence check.
func Exists(ctx context.Context, st Store, path string) (bool, error) {
	snap, err := st.Get(ctx, path)
	if err != nil {
		return false, err
	}
	return snap.Exists(), nil
}

// write is one normalized subtree replacement.
type write struct {
	path  string
	segs  []string
	value any
}

// planUpdate turns an Update call into a list of non-overlapping writes,
// ordered by path.
func planUpdate(base string, fields map[string]any) ([]write, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writes := make([]write, 0, len(keys))
	for _, k := range keys {
		p, segs, err := cleanPath(Join(base, k))
		if err != nil {
			return nil, err
		}
		if len(Split(k)) == 0 {
			return nil, fmt.Errorf("%w: empty update key", ErrInvalidPath)
		}
		v, err := normalize(fields[k])
		if err != nil {
			return nil, err
		}
		for _, w := range writes {
			if w.path == p || isAncestor(w.path, p) || isAncestor(p, w.path) {
				return nil, fmt.Errorf("%w: %q and %q", ErrOverlappingUpdate, w.path, p)
			}
		}
		writes = append(writes, write{path: p, segs: segs, value: v})
	}
	return writes, nil
}

// newPushKey returns a UUIDv7 string. Version 7 ids sort by creation time, so
// children pushed under one parent keep insertion order when listed.
func newPushKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("docstore: generate key: %w", err)
	}
	return id.String(), nil
}

package docstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps the whole tree in process memory. It is the default
// backend for development and the backend used by package tests.
type MemoryStore struct {
	mu   sync.RWMutex
	root map[string]any
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: make(map[string]any)}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	p, segs, err := cleanPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{path: p, value: cloneValue(getIn(s.root, segs))}, nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, segs, err := cleanPath(path)
	if err != nil {
		return err
	}
	v, err := normalize(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply([]write{{path: p, segs: segs, value: v}})
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	writes, err := planUpdate(path, fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(writes)
}

func (s *MemoryStore) Remove(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *MemoryStore) Push(ctx context.Context, parent string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, _, err := cleanPath(parent); err != nil {
		return "", err
	}
	return newPushKey()
}

// apply must be called with mu held.
func (s *MemoryStore) apply(writes []write) error {
	for _, w := range writes {
		if len(w.segs) == 0 {
			if w.value == nil {
				s.root = make(map[string]any)
				continue
			}
			m, ok := w.value.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: root must be an object", ErrInvalidPath)
			}
			s.root = m
			continue
		}
		setIn(s.root, w.segs, w.value)
	}
	return nil
}

package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrContention is returned by RedisStore when a write lost the optimistic
// transaction race more than MaxRetries times in a row.
var ErrContention = errors.New("docstore: write contention")

// RedisStore persists the tree in Redis. Every leaf is one field of the
// "<prefix>:leaves" hash (path -> JSON scalar) and one member of the
// "<prefix>:index" sorted set, all scored 0, so a subtree is a single
// ZRANGEBYLEX over "path/". Writes run under WATCH/MULTI and are applied
// atomically.
type RedisStore struct {
	rdb        *redis.Client
	leavesKey  string
	indexKey   string
	MaxRetries int
}

// NewRedisStore binds a store to rdb under the given key prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "docstore"
	}
	return &RedisStore{
		rdb:        rdb,
		leavesKey:  prefix + ":leaves",
		indexKey:   prefix + ":index",
		MaxRetries: 16,
	}
}

func (s *RedisStore) Get(ctx context.Context, path string) (Snapshot, error) {
	p, _, err := cleanPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	leaves, err := s.readLeaves(ctx, s.rdb, p)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{path: p, value: unflatten(p, leaves)}, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	p, segs, err := cleanPath(path)
	if err != nil {
		return err
	}
	v, err := normalize(value)
	if err != nil {
		return err
	}
	if len(segs) == 0 && v != nil {
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%w: root must be an object", ErrInvalidPath)
		}
	}
	return s.apply(ctx, []write{{path: p, segs: segs, value: v}})
}

func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	writes, err := planUpdate(path, fields)
	if err != nil {
		return err
	}
	return s.apply(ctx, writes)
}

func (s *RedisStore) Remove(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *RedisStore) Push(ctx context.Context, parent string) (string, error) {
	if _, _, err := cleanPath(parent); err != nil {
		return "", err
	}
	return newPushKey()
}

// subtreePaths lists the indexed leaf paths at or below p.
func (s *RedisStore) subtreePaths(ctx context.Context, c redis.Cmdable, p string) ([]string, error) {
	by := &redis.ZRangeBy{Min: "-", Max: "+"}
	if p != "" {
		// Every string starting with "p/" sorts in ["p/", "p0") because '0'
		// directly follows '/'.
		by = &redis.ZRangeBy{Min: "[" + p + "/", Max: "(" + p + "0"}
	}
	paths, err := c.ZRangeByLex(ctx, s.indexKey, by).Result()
	if err != nil {
		return nil, fmt.Errorf("docstore: range %q: %w", p, err)
	}
	if p != "" {
		paths = append(paths, p)
	}
	return paths, nil
}

func (s *RedisStore) readLeaves(ctx context.Context, c redis.Cmdable, p string) (map[string]any, error) {
	paths, err := s.subtreePaths(ctx, c, p)
	if err != nil {
		return nil, err
	}
	leaves := make(map[string]any, len(paths))
	if len(paths) == 0 {
		return leaves, nil
	}
	vals, err := c.HMGet(ctx, s.leavesKey, paths...).Result()
	if err != nil {
		return nil, fmt.Errorf("docstore: read %q: %w", p, err)
	}
	for i, raw := range vals {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		v, err := decodeLeaf(str)
		if err != nil {
			return nil, err
		}
		leaves[paths[i]] = v
	}
	return leaves, nil
}

// existingLeaves returns which of paths are currently stored leaves.
func (s *RedisStore) existingLeaves(ctx context.Context, c redis.Cmdable, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	vals, err := c.HMGet(ctx, s.leavesKey, paths...).Result()
	if err != nil {
		return nil, fmt.Errorf("docstore: read ancestors: %w", err)
	}
	var out []string
	for i, v := range vals {
		if v != nil {
			out = append(out, paths[i])
		}
	}
	return out, nil
}

func (s *RedisStore) apply(ctx context.Context, writes []write) error {
	txf := func(tx *redis.Tx) error {
		var dels []string
		adds := make(map[string]any)
		for _, w := range writes {
			old, err := s.subtreePaths(ctx, tx, w.path)
			if err != nil {
				return err
			}
			dels = append(dels, old...)

			// A leaf stored at an ancestor would shadow the new subtree.
			anc := make([]string, 0, len(w.segs))
			for i := 1; i < len(w.segs); i++ {
				anc = append(anc, Join(w.segs[:i]...))
			}
			shadow, err := s.existingLeaves(ctx, tx, anc)
			if err != nil {
				return err
			}
			dels = append(dels, shadow...)
			flatten(w.path, w.value, adds)
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(dels) > 0 {
				members := make([]any, len(dels))
				for i, d := range dels {
					members[i] = d
				}
				pipe.HDel(ctx, s.leavesKey, dels...)
				pipe.ZRem(ctx, s.indexKey, members...)
			}
			if len(adds) > 0 {
				fields := make(map[string]any, len(adds))
				members := make([]redis.Z, 0, len(adds))
				for p, v := range adds {
					enc, err := encodeLeaf(v)
					if err != nil {
						return err
					}
					fields[p] = enc
					members = append(members, redis.Z{Score: 0, Member: p})
				}
				pipe.HSet(ctx, s.leavesKey, fields)
				pipe.ZAdd(ctx, s.indexKey, members...)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.MaxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, s.indexKey, s.leavesKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("docstore: write: %w", err)
	}
	return ErrContention
}

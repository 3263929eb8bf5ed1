// Package cache holds the read-side cache for dashboard queries and the
// path-based invalidation signal emitted after invoice mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrEmptyKey        = errors.New("cache_empty_key")
	ErrVersionMismatch = errors.New("cache_version_mismatch")
)

// Store is a byte cache whose entries can be dropped by tag. Every
// invalidation bumps the tag's version.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	InvalidateTags(ctx context.Context, tags ...string) error

	// TagVersions returns the current version of each tag, in order.
	TagVersions(ctx context.Context, tags ...string) ([]int64, error)
	// SetIfCurrent stores value only while every tag is still at the given
	// version. It reports false when a tag was invalidated in between.
	SetIfCurrent(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string, versions []int64) (bool, error)
}

// Revalidator marks the data behind dashboard paths as stale.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

// StoreRevalidator treats each path as a tag on Store entries.
type StoreRevalidator struct {
	store Store
}

func NewStoreRevalidator(store Store) *StoreRevalidator {
	return &StoreRevalidator{store: store}
}

func (r *StoreRevalidator) Revalidate(ctx context.Context, paths ...string) error {
	if r == nil || r.store == nil {
		return nil
	}
	tags := make([]string, 0, len(paths))
	for _, path := range paths {
		if path = strings.TrimSpace(path); path != "" {
			tags = append(tags, path)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return r.store.InvalidateTags(ctx, tags...)
}

// Key joins parts into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Remember returns the cached value for key or loads, stores and returns it.
// Cache faults never fail the read; they are logged and the loader result is used.
// A load that overlaps an invalidation of one of its tags is returned but not stored.
func Remember[T any](ctx context.Context, store Store, log *zap.Logger, key string, ttl time.Duration, tags []string, load func(context.Context) (T, error)) (T, error) {
	var versions []int64
	if store != nil {
		raw, ok, err := store.Get(ctx, key)
		switch {
		case err != nil:
			warn(log, "cache get failed", key, err)
		case ok:
			var cached T
			decodeErr := json.Unmarshal(raw, &cached)
			if decodeErr == nil {
				return cached, nil
			}
			warn(log, "cache entry undecodable", key, decodeErr)
		}

		versions, err = store.TagVersions(ctx, tags...)
		if err != nil {
			warn(log, "cache tag versions failed", key, err)
			store = nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if store != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			warn(log, "cache encode failed", key, err)
			return value, nil
		}
		stored, err := store.SetIfCurrent(ctx, key, raw, ttl, tags, versions)
		switch {
		case err != nil:
			warn(log, "cache set failed", key, err)
		case !stored && log != nil:
			log.Debug("cache entry superseded by invalidation", zap.String("key", key))
		}
	}
	return value, nil
}

func warn(log *zap.Logger, msg, key string, err error) {
	if log == nil {
		return
	}
	log.Warn(msg, zap.String("key", key), zap.Error(err))
}

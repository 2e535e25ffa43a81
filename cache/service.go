package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a key-value cache with per-entry TTL. Get evicts and ignores
// entries past their TTL; Set overwrites unconditionally.
type Store interface {
	// Get returns the cached value when present and unexpired. A stale
	// entry is evicted on the way out and reported absent.
	Get(key string) (any, bool)

	// Set stores value under key. A non-positive ttl selects the store's
	// default TTL.
	Set(key string, value any, ttl time.Duration)

	// Invalidate removes a single entry.
	Invalidate(key string)

	// InvalidateAll clears the store.
	InvalidateAll()

	// InvalidatePrefix removes every entry whose key starts with prefix.
	InvalidatePrefix(prefix string)

	// Sweep evicts all expired entries and reports how many were removed.
	// The default implementation also runs this on a fixed interval.
	Sweep() int

	// Close stops background maintenance. The store stays usable as a
	// plain map afterwards.
	Close()
}

// GetTyped is a typed read from a Store. A cached value of the wrong dynamic
// type counts as a miss rather than a panic; the next Set replaces it.
func GetTyped[T any](s Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// FetchFn produces a fresh value from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// ReadThrough memoizes expensive derived values behind a single logical
// operation: return the cached value for key, or run the fetch function,
// store its result and return it.
type ReadThrough interface {
	GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error)
	Delete(ctx context.Context, key string) error
}

// GetOrFetch is the type-safe wrapper around ReadThrough.GetOrFetch. Unlike
// GetTyped there is no refetch path behind a typed miss, so a memoized value
// of the wrong dynamic type is an error rather than a silent zero value.
func GetOrFetch[T any](ctx context.Context, rt ReadThrough, key string, fetch FetchFn[T]) (T, error) {
	var zero T
	res, err := rt.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("cache: memoized value for key %q has type %T, want %T", key, res, zero)
	}
	return typed, nil
}

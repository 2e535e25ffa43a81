package cacheinfra

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// SturdycConfig holds the core sturdyc client parameters. All memoized
// values share the client-level TTL; callers needing per-entry TTLs belong
// on the TTLStore instead.
type SturdycConfig struct {
	// Capacity is the maximum number of entries the client can hold.
	Capacity int

	// NumShards controls shard fan-out for concurrent access.
	NumShards int

	// TTL is the uniform time-to-live for memoized entries.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the client
	// reaches capacity, between 1 and 100.
	EvictionPercentage int
}

// DefaultSturdycConfig returns settings sized for report memoization:
// a small hot set with a short freshness window.
func DefaultSturdycConfig() SturdycConfig {
	return SturdycConfig{
		Capacity:           1000,
		NumShards:          64,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks the configuration values.
func (c SturdycConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
	)
}

// SturdycService adapts a sturdyc client to the cache.ReadThrough interface.
// sturdyc also de-duplicates concurrent fetches for the same key, which suits
// expensive aggregate computations; the repository read path intentionally
// does not use this (no single-flight there).
type SturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService validates cfg and builds the adapter.
func NewSturdycService(cfg SturdycConfig) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[any](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage)
	return &SturdycService{client: client}, nil
}

// GetOrFetch implements cache.ReadThrough.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	return s.client.GetOrFetch(ctx, key, fetch)
}

// Delete implements cache.ReadThrough.
func (s *SturdycService) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

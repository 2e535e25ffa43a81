package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds cache tuning knobs shared by the TTL store and the key
// builder consumers.
type Config struct {
	// DefaultTTL applies to collection query entries and to Set calls that
	// do not specify a TTL. Collection results go stale quickly because any
	// write to the collection changes them.
	DefaultTTL time.Duration

	// DocumentTTL applies to single-document entries. Documents are more
	// cacheable than filtered queries, so they live longer.
	DocumentTTL time.Duration

	// SweepInterval is how often the background sweep evicts expired
	// entries independently of read traffic. Zero disables the sweeper;
	// lazy eviction on Get still applies.
	SweepInterval time.Duration
}

// DefaultConfig returns the standard cache configuration: 5 minute query
// TTL, 10 minute document TTL, 60 second sweep.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:    5 * time.Minute,
		DocumentTTL:   10 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultTTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.DocumentTTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.SweepInterval, validation.Min(time.Duration(0))),
	)
}

// Package cacheinfra contains the concrete cache backends: a per-entry TTL
// store used on the repository read path, and a sturdyc-backed read-through
// service for uniform-TTL memoization.
package cacheinfra

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/padocode/go-tenant-repository/cache"
)

// entry is a cached value with its own expiry horizon. An entry is valid iff
// now - writtenAt <= ttl; anything past that is logically absent.
type entry struct {
	value     any
	writtenAt time.Time
	ttl       time.Duration
}

// TTLStore implements cache.Store on a sharded concurrent map. Expired
// entries are evicted lazily on Get and eagerly by a background sweep so
// write-once keys cannot accumulate forever. The map is safe under real
// parallelism; no caller-side locking is required and racing writers resolve
// last-write-wins, which is sound because every entry is derivable from the
// document store.
type TTLStore struct {
	entries *xsync.MapOf[string, entry]
	clock   clockwork.Clock
	logger  *slog.Logger
	cfg     cache.Config

	stopOnce sync.Once
	stop     chan struct{}
}

var _ cache.Store = (*TTLStore)(nil)

// TTLOption configures a TTLStore.
type TTLOption func(*TTLStore)

// WithClock substitutes the wall clock, used by tests to control expiry.
func WithClock(clock clockwork.Clock) TTLOption {
	return func(s *TTLStore) { s.clock = clock }
}

// WithLogger sets the logger used by the background sweeper.
func WithLogger(logger *slog.Logger) TTLOption {
	return func(s *TTLStore) { s.logger = logger }
}

// NewTTLStore validates cfg and creates a store. When cfg.SweepInterval is
// positive a sweeper goroutine runs until Close is called.
func NewTTLStore(cfg cache.Config, opts ...TTLOption) (*TTLStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &TTLStore{
		entries: xsync.NewMapOf[string, entry](),
		clock:   clockwork.NewRealClock(),
		logger:  slog.Default(),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.SweepInterval > 0 {
		go s.sweepLoop(cfg.SweepInterval)
	}
	return s, nil
}

// Get implements cache.Store.
func (s *TTLStore) Get(key string) (any, bool) {
	e, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		s.entries.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set implements cache.Store.
func (s *TTLStore) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	s.entries.Store(key, entry{value: value, writtenAt: s.clock.Now(), ttl: ttl})
}

// Invalidate implements cache.Store.
func (s *TTLStore) Invalidate(key string) {
	s.entries.Delete(key)
}

// InvalidateAll implements cache.Store.
func (s *TTLStore) InvalidateAll() {
	s.entries.Clear()
}

// InvalidatePrefix implements cache.Store.
func (s *TTLStore) InvalidatePrefix(prefix string) {
	s.entries.Range(func(key string, _ entry) bool {
		if strings.HasPrefix(key, prefix) {
			s.entries.Delete(key)
		}
		return true
	})
}

// Sweep implements cache.Store.
func (s *TTLStore) Sweep() int {
	evicted := 0
	s.entries.Range(func(key string, e entry) bool {
		if s.expired(e) {
			s.entries.Delete(key)
			evicted++
		}
		return true
	})
	return evicted
}

// Len reports the number of entries currently held, expired or not.
func (s *TTLStore) Len() int {
	return s.entries.Size()
}

// Close implements cache.Store. Stops the sweeper; idempotent.
func (s *TTLStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *TTLStore) expired(e entry) bool {
	return s.clock.Now().Sub(e.writtenAt) > e.ttl
}

func (s *TTLStore) sweepLoop(interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("cache sweep evicted entries", "count", n)
			}
		case <-s.stop:
			return
		}
	}
}

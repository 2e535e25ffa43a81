// Package di wires the tenant-isolated repository stack together: document
// store, TTL cache, read-through memoization, key builder, tenant resolver
// and retry policies.
package di

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/padocode/go-tenant-repository/cache"
	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/internal/cacheinfra"
	"github.com/padocode/go-tenant-repository/tenant"
	"github.com/padocode/go-tenant-repository/tenantrepo"
)

// Container holds singleton instances of the data-access components and
// provides access to the wired repository.
type Container struct {
	store      docstore.Store
	cacheStore *cacheinfra.TTLStore
	memo       *cacheinfra.SturdycService
	repo       *tenantrepo.Repository
}

type settings struct {
	cacheCfg cache.Config
	memoCfg  cacheinfra.SturdycConfig
	resolver tenant.Resolver
	logger   *slog.Logger
	clock    clockwork.Clock
	repoOpts []tenantrepo.Option
}

// Option adjusts container construction.
type Option func(*settings)

// WithCacheConfig overrides TTL store settings.
func WithCacheConfig(cfg cache.Config) Option {
	return func(s *settings) { s.cacheCfg = cfg }
}

// WithMemoConfig overrides read-through memoization settings.
func WithMemoConfig(cfg cacheinfra.SturdycConfig) Option {
	return func(s *settings) { s.memoCfg = cfg }
}

// WithResolver overrides the tenant resolver.
func WithResolver(r tenant.Resolver) Option {
	return func(s *settings) { s.resolver = r }
}

// WithLogger sets the logger propagated to all components.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithClock substitutes the clock used by the cache sweeper, retry backoff
// and write timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) { s.clock = clock }
}

// WithRepositoryOptions appends extra repository options, applied last.
func WithRepositoryOptions(opts ...tenantrepo.Option) Option {
	return func(s *settings) { s.repoOpts = append(s.repoOpts, opts...) }
}

// New creates a container over the given document store.
func New(store docstore.Store, opts ...Option) (*Container, error) {
	s := settings{
		cacheCfg: cache.DefaultConfig(),
		memoCfg:  cacheinfra.DefaultSturdycConfig(),
		resolver: tenant.ContextResolver{},
		logger:   slog.Default(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	cacheStore, err := cacheinfra.NewTTLStore(s.cacheCfg,
		cacheinfra.WithClock(s.clock),
		cacheinfra.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	memo, err := cacheinfra.NewSturdycService(s.memoCfg)
	if err != nil {
		cacheStore.Close()
		return nil, err
	}

	repoOpts := append([]tenantrepo.Option{
		tenantrepo.WithResolver(s.resolver),
		tenantrepo.WithLogger(s.logger),
		tenantrepo.WithClock(s.clock),
		tenantrepo.WithCacheConfig(s.cacheCfg),
	}, s.repoOpts...)

	return &Container{
		store:      store,
		cacheStore: cacheStore,
		memo:       memo,
		repo:       tenantrepo.New(store, cacheStore, repoOpts...),
	}, nil
}

// Repository returns the wired tenant-isolated repository.
func (c *Container) Repository() *tenantrepo.Repository { return c.repo }

// Store returns the underlying document store.
func (c *Container) Store() docstore.Store { return c.store }

// CacheStore returns the TTL cache backing repository reads.
func (c *Container) CacheStore() cache.Store { return c.cacheStore }

// ReadThrough returns the memoization service for aggregate consumers.
func (c *Container) ReadThrough() cache.ReadThrough { return c.memo }

// Close stops background cache maintenance.
func (c *Container) Close() {
	c.cacheStore.Close()
}

// NewCollection creates a typed collection view over the container's
// repository. Go methods cannot have type parameters, so this is a
// package-level function.
func NewCollection[T any](c *Container, name string) *tenantrepo.Collection[T] {
	return tenantrepo.NewCollection[T](c.repo, name)
}

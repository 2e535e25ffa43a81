package tenantrepo

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/padocode/go-tenant-repository/cache"
	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/retry"
	"github.com/padocode/go-tenant-repository/tenant"
)

// DefaultQueryRetryPolicy is the retry policy for collection queries:
// up to 3 retries, 1s linear backoff, transient errors only.
func DefaultQueryRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:  3,
		BaseDelay:   time.Second,
		ShouldRetry: docstore.IsTransient,
	}
}

// DefaultDocumentRetryPolicy is the retry policy for single-document
// fetches: up to 2 retries, 500ms linear backoff. Document callers are more
// latency-sensitive, hence the tighter bound.
func DefaultDocumentRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:  2,
		BaseDelay:   500 * time.Millisecond,
		ShouldRetry: docstore.IsTransient,
	}
}

// Option configures a Repository at construction time.
type Option func(*Repository)

// WithResolver replaces the tenant resolver. The default reads the principal
// from the request context.
func WithResolver(r tenant.Resolver) Option {
	return func(repo *Repository) { repo.resolver = r }
}

// WithKeyBuilder replaces the cache key builder.
func WithKeyBuilder(kb cache.KeyBuilder) Option {
	return func(repo *Repository) { repo.keys = kb }
}

// WithLogger sets the logger used for store failures and ownership
// anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(repo *Repository) { repo.logger = logger }
}

// WithClock substitutes the clock used for write timestamps and retry
// backoff.
func WithClock(clock clockwork.Clock) Option {
	return func(repo *Repository) { repo.clock = clock }
}

// WithQueryRetryPolicy overrides the collection query retry policy.
func WithQueryRetryPolicy(p retry.Policy) Option {
	return func(repo *Repository) { repo.queryRetry = p }
}

// WithDocumentRetryPolicy overrides the document fetch retry policy.
func WithDocumentRetryPolicy(p retry.Policy) Option {
	return func(repo *Repository) { repo.docRetry = p }
}

// WithCacheConfig overrides the TTL classes applied on cache writes.
func WithCacheConfig(cfg cache.Config) Option {
	return func(repo *Repository) { repo.cacheCfg = cfg }
}

// fetchOptions are per-call read options.
type fetchOptions struct {
	useCache bool
	cacheTTL time.Duration
	retry    bool
}

func defaultFetchOptions() fetchOptions {
	return fetchOptions{useCache: true, retry: true}
}

// FetchOption tunes a single FetchCollection or FetchDocument call.
type FetchOption func(*fetchOptions)

// WithUseCache toggles cache lookup and population for this call.
// Defaults to true.
func WithUseCache(use bool) FetchOption {
	return func(o *fetchOptions) { o.useCache = use }
}

// WithCacheTTL overrides the TTL applied when this call populates the cache.
func WithCacheTTL(ttl time.Duration) FetchOption {
	return func(o *fetchOptions) { o.cacheTTL = ttl }
}

// WithRetry toggles the retry policy for this call. Defaults to true.
func WithRetry(enabled bool) FetchOption {
	return func(o *fetchOptions) { o.retry = enabled }
}

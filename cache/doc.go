// Package cache provides the caching surfaces used by the tenant-isolated
// repository: a TTL key-value store and a deterministic query-key builder.
//
// # Store
//
// Store is a key-value map with a per-entry time-to-live. Expiry is enforced
// lazily on Get (a stale entry is evicted and reported absent) and eagerly by
// a periodic sweep that bounds growth from keys written once and never read
// again. Entries are derivable from the source of truth, so concurrent Set
// calls for the same key race last-write-wins by design; the default
// implementation uses a sharded concurrent map and needs no external locking.
//
// # Keys
//
// KeyBuilder turns (tenant id, collection, query) tuples into cache keys.
// Two logically identical queries for the same tenant always normalize to the
// same key; two different tenants can never collide because the tenant id is
// a dedicated plaintext key segment, not part of a hash. That structural
// property is what prevents cross-tenant cache leakage: a cache hit is
// tenant-correct by construction and needs no re-filtering.
//
// Keys are namespaced as
//
//	<tenant>::<collection>::q::<digest>   collection queries
//	<tenant>::<collection>::d::<id>       document fetches
//
// which makes tenant+collection prefix invalidation after writes a cheap
// prefix scan. Segments are sanitized so caller-supplied collection names
// cannot smuggle the separator in and break prefix invalidation.
//
// # ReadThrough
//
// ReadThrough is a separate, uniform-TTL memoization surface for expensive
// derived values (aggregate reports). It is backed by sturdyc and is not used
// on the isolation-critical read path; see the tenantrepo package for that.
package cache

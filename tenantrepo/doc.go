// Package tenantrepo provides the tenant-isolated repository at the heart of
// this module.
//
// # Overview
//
// Repository composes three collaborators over an abstract document store:
//
//   - tenant.Resolver: derives the caller's tenant id from the request
//     context, failing closed when no principal is present
//   - cache.Store: memoizes query and document reads under tenant-prefixed
//     keys with per-entry TTLs
//   - retry.Policy: bounds retries of transient store failures with linear
//     backoff
//
// Every read follows the same state machine: cache check → (hit: done) |
// (miss: store query → retries → ownership check → cache write → done).
//
// # Isolation guarantees
//
// The tenant filter is pinned on the query by the repository itself, on a
// dedicated field caller constraints cannot reach; this is the single
// enforcement point for collection reads. Returned rows are additionally
// re-verified against the resolved tenant: the store-level filter is a
// performance optimization, not the security boundary. Document fetches by
// id are tenant-agnostic at the store, so ownership is checked after the
// fetch: a document owned by another tenant is reported absent, exactly like
// a document that does not exist, so callers cannot probe for foreign ids.
//
// Cache keys encode the tenant id as a plaintext segment, which makes a
// cache hit tenant-correct by construction; no re-filtering happens on hits.
//
// # Failure semantics
//
// tenant.ErrUnauthenticated surfaces immediately and is never retried.
// Transient store errors retry per policy and then surface wrapped in
// OperationError with the cause preserved; the underlying error is logged
// before the wrap. Permanent store errors wrap on first occurrence.
// Ownership violations on reads are not errors at all.
//
// # Writes
//
// Create stamps the server-resolved tenant id, a generated document id and
// timestamps; a caller-supplied tenant id is never trusted. Update and
// Delete re-fetch the target and verify ownership before mutating; foreign
// targets fail as not found. Every successful write invalidates the
// tenant+collection key prefix so stale query results cannot outlive the
// data they were derived from.
//
// # Concurrency
//
// Two concurrent reads for the same key may both miss and both hit the
// store; there is no single-flight de-duplication and the second cache write
// wins. Duplicate reads are cheap for the backing stores and the cache is
// derivable, so this trades redundant work for simplicity.
package tenantrepo

package tenantrepo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/padocode/go-tenant-repository/cache"
	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/retry"
	"github.com/padocode/go-tenant-repository/tenant"
)

// Repository is the tenant-isolated data-access layer. All reads and writes
// resolve the caller's tenant first and operate strictly inside it. The zero
// value is not usable; construct with New.
type Repository struct {
	store    docstore.Store
	cache    cache.Store
	keys     cache.KeyBuilder
	resolver tenant.Resolver
	logger   *slog.Logger
	clock    clockwork.Clock

	queryRetry retry.Policy
	docRetry   retry.Policy
	cacheCfg   cache.Config
}

// New builds a repository over the given store and cache. The resolver
// defaults to reading the principal from the request context; retry policies
// and TTL classes default to the documented values.
func New(store docstore.Store, cacheStore cache.Store, opts ...Option) *Repository {
	r := &Repository{
		store:      store,
		cache:      cacheStore,
		keys:       cache.NewKeyBuilder(),
		resolver:   tenant.ContextResolver{},
		logger:     slog.Default(),
		clock:      clockwork.NewRealClock(),
		queryRetry: DefaultQueryRetryPolicy(),
		docRetry:   DefaultDocumentRetryPolicy(),
		cacheCfg:   cache.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	// Retry backoff and write timestamps share the repository clock unless
	// a policy brought its own.
	if r.queryRetry.Clock == nil {
		r.queryRetry.Clock = r.clock
	}
	if r.docRetry.Clock == nil {
		r.docRetry.Clock = r.clock
	}
	return r
}

// TenantID resolves the caller's tenant id. Exposed so specializations can
// derive tenant-scoped keys of their own without re-implementing resolution.
func (r *Repository) TenantID(ctx context.Context) (string, error) {
	return r.resolver.TenantID(ctx)
}

// FetchCollection returns the caller-tenant documents of a collection that
// match the given constraints. Results are memoized per (tenant, collection,
// constraints); a cache hit is tenant-correct by construction and returns
// without touching the store.
func (r *Repository) FetchCollection(ctx context.Context, collection string, constraints []docstore.Constraint, opts ...FetchOption) ([]docstore.Document, error) {
	o := defaultFetchOptions()
	for _, opt := range opts {
		opt(&o)
	}

	tenantID, err := r.resolver.TenantID(ctx)
	if err != nil {
		return nil, err
	}

	q := docstore.BuildQuery(constraints...)
	// The tenant scope lives on a dedicated query field, out of reach of
	// caller constraints. This assignment is the enforcement point for
	// collection reads.
	q.TenantID = tenantID
	if err := q.Validate(); err != nil {
		return nil, &OperationError{Collection: collection, Op: "query", Err: err}
	}

	key := r.keys.CollectionKey(tenantID, collection, q)
	useCache := o.useCache && !cacheBypassed(ctx)
	if useCache {
		if docs, ok := cache.GetTyped[[]docstore.Document](r.cache, key); ok {
			return cloneDocuments(docs), nil
		}
	}

	docs, err := r.runQuery(ctx, o, collection, q)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		r.logger.Error("collection query failed",
			"collection", collection, "tenant", tenantID, "error", err)
		return nil, &OperationError{Collection: collection, Op: "query", Err: err}
	}

	docs = r.verifyOwnership(collection, tenantID, docs)

	if useCache {
		ttl := o.cacheTTL
		if ttl <= 0 {
			ttl = r.cacheCfg.DefaultTTL
		}
		r.cache.Set(key, cloneDocuments(docs), ttl)
	}
	return docs, nil
}

// FetchDocument returns a single caller-tenant document by id. The second
// return reports presence: a document that does not exist and a document
// owned by another tenant are both reported as absent, with no error, so
// foreign ids cannot be probed.
func (r *Repository) FetchDocument(ctx context.Context, collection, id string, opts ...FetchOption) (*docstore.Document, bool, error) {
	o := defaultFetchOptions()
	for _, opt := range opts {
		opt(&o)
	}

	tenantID, err := r.resolver.TenantID(ctx)
	if err != nil {
		return nil, false, err
	}

	key := r.keys.DocumentKey(tenantID, collection, id)
	useCache := o.useCache && !cacheBypassed(ctx)
	if useCache {
		if doc, ok := cache.GetTyped[docstore.Document](r.cache, key); ok {
			clone := doc.Clone()
			return &clone, true, nil
		}
	}

	doc, err := r.runGet(ctx, o, collection, id)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return nil, false, nil
	case err != nil:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, err
		}
		r.logger.Error("document fetch failed",
			"collection", collection, "id", id, "tenant", tenantID, "error", err)
		return nil, false, &OperationError{Collection: collection, Op: "get", Err: err}
	}

	// Ownership check: a foreign-tenant document must be indistinguishable
	// from an absent one, and must never reach the cache under this
	// tenant's key.
	if doc.TenantID != tenantID {
		return nil, false, nil
	}

	if useCache {
		ttl := o.cacheTTL
		if ttl <= 0 {
			ttl = r.cacheCfg.DocumentTTL
		}
		r.cache.Set(key, doc.Clone(), ttl)
	}
	return doc, true, nil
}

// Create stores a new document in the caller's tenant. The tenant id is
// stamped from resolution (a tenant id inside fields is discarded) and a
// document id is generated when none is supplied via the "id" field.
func (r *Repository) Create(ctx context.Context, collection string, fields map[string]any) (*docstore.Document, error) {
	tenantID, err := r.resolver.TenantID(ctx)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	doc := docstore.Document{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Collection: collection,
		Data:       sanitizeFields(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if id, ok := fields["id"].(string); ok && id != "" {
		doc.ID = id
	}

	if err := r.store.Insert(ctx, collection, doc); err != nil {
		r.logger.Error("document create failed",
			"collection", collection, "tenant", tenantID, "error", err)
		return nil, &OperationError{Collection: collection, Op: "create", Err: err}
	}

	r.invalidateCollection(tenantID, collection)
	return &doc, nil
}

// Update merges fields into an existing caller-tenant document. The target
// is re-fetched and ownership-verified before the mutation; a foreign or
// missing target fails as not found.
func (r *Repository) Update(ctx context.Context, collection, id string, fields map[string]any) (*docstore.Document, error) {
	tenantID, err := r.resolver.TenantID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := r.ownedDocument(ctx, collection, id, tenantID)
	if err != nil {
		return nil, &OperationError{Collection: collection, Op: "update", Err: err}
	}

	if existing.Data == nil {
		existing.Data = make(map[string]any, len(fields))
	}
	for k, v := range sanitizeFields(fields) {
		existing.Data[k] = v
	}
	existing.TenantID = tenantID
	existing.UpdatedAt = r.clock.Now()

	if err := r.store.Update(ctx, collection, *existing); err != nil {
		r.logger.Error("document update failed",
			"collection", collection, "id", id, "tenant", tenantID, "error", err)
		return nil, &OperationError{Collection: collection, Op: "update", Err: err}
	}

	r.invalidateCollection(tenantID, collection)
	return existing, nil
}

// Delete removes a caller-tenant document, verifying ownership first. A
// foreign or missing target fails as not found.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	tenantID, err := r.resolver.TenantID(ctx)
	if err != nil {
		return err
	}

	if _, err := r.ownedDocument(ctx, collection, id, tenantID); err != nil {
		return &OperationError{Collection: collection, Op: "delete", Err: err}
	}

	if err := r.store.Delete(ctx, collection, id); err != nil {
		r.logger.Error("document delete failed",
			"collection", collection, "id", id, "tenant", tenantID, "error", err)
		return &OperationError{Collection: collection, Op: "delete", Err: err}
	}

	r.invalidateCollection(tenantID, collection)
	return nil
}

// InvalidateCollection drops every cached read for the caller's tenant and
// the given collection.
func (r *Repository) InvalidateCollection(ctx context.Context, collection string) error {
	tenantID, err := r.resolver.TenantID(ctx)
	if err != nil {
		return err
	}
	r.invalidateCollection(tenantID, collection)
	return nil
}

func (r *Repository) runQuery(ctx context.Context, o fetchOptions, collection string, q docstore.Query) ([]docstore.Document, error) {
	op := func(ctx context.Context) ([]docstore.Document, error) {
		return r.store.Query(ctx, collection, q)
	}
	if !o.retry {
		return op(ctx)
	}
	return retry.Do(ctx, r.queryRetry, op)
}

func (r *Repository) runGet(ctx context.Context, o fetchOptions, collection, id string) (*docstore.Document, error) {
	op := func(ctx context.Context) (*docstore.Document, error) {
		return r.store.GetByID(ctx, collection, id)
	}
	if !o.retry {
		return op(ctx)
	}
	return retry.Do(ctx, r.docRetry, op)
}

// verifyOwnership re-checks every returned row against the resolved tenant.
// The store-level filter should already guarantee this; rows that slip
// through anyway are dropped and reported, never surfaced.
func (r *Repository) verifyOwnership(collection, tenantID string, docs []docstore.Document) []docstore.Document {
	owned := docs[:0]
	for _, doc := range docs {
		if doc.TenantID != tenantID {
			r.logger.Warn("dropping document from foreign tenant",
				"collection", collection, "id", doc.ID, "tenant", tenantID)
			continue
		}
		owned = append(owned, doc)
	}
	return owned
}

// ownedDocument fetches a document and verifies the caller's tenant owns it.
// Foreign ownership is reported as docstore.ErrNotFound.
func (r *Repository) ownedDocument(ctx context.Context, collection, id, tenantID string) (*docstore.Document, error) {
	doc, err := r.store.GetByID(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if doc.TenantID != tenantID {
		return nil, docstore.ErrNotFound
	}
	return doc, nil
}

func (r *Repository) invalidateCollection(tenantID, collection string) {
	r.cache.InvalidatePrefix(r.keys.CollectionPrefix(tenantID, collection))
}

// sanitizeFields copies the payload and strips managed field names so a
// caller can never smuggle a tenant id or timestamps into stored data.
func sanitizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "id", "tenantId", "createdAt", "updatedAt":
			continue
		}
		out[k] = v
	}
	return out
}

func cloneDocuments(docs []docstore.Document) []docstore.Document {
	out := make([]docstore.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

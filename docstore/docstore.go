// Package docstore defines the abstract document-store boundary the
// tenant-isolated repository sits on top of.
//
// Any backend offering equality/range filtered collection scans and id-based
// lookup satisfies the Store interface. Two implementations ship with this
// module: MemoryStore (tests, examples, tooling) and bunstore.Store (SQLite or
// Postgres through uptrace/bun).
//
// GetByID is deliberately tenant-agnostic: a primitive id lookup cannot apply
// a tenant filter, so ownership verification belongs to the layer above. Query
// always carries the tenant id as a dedicated field rather than an ordinary
// filter, which keeps it out of reach of caller-supplied constraints.
package docstore

import (
	"context"
	"time"
)

// Document is a tenant-owned record. Data holds the collection-specific
// payload; ID, TenantID and the timestamps are managed columns.
type Document struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenantId"`
	Collection string         `json:"collection"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy so cached documents cannot be mutated by
// callers. The payload is copied through the JSON value shapes (nested
// map[string]any and []any), which is what every write path in this module
// produces.
func (d Document) Clone() Document {
	out := d
	if d.Data != nil {
		out.Data = clonePayloadMap(d.Data)
	}
	return out
}

func clonePayloadMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = clonePayloadValue(v)
	}
	return out
}

func clonePayloadValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return clonePayloadMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clonePayloadValue(e)
		}
		return out
	default:
		return v
	}
}

// Field returns a data field value.
func (d Document) Field(name string) (any, bool) {
	v, ok := d.Data[name]
	return v, ok
}

// Store is the capability set expected from a document database.
type Store interface {
	// Query returns all documents in the collection matching q.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// GetByID returns the document with the given id regardless of tenant,
	// or ErrNotFound. Ownership checks happen above this boundary.
	GetByID(ctx context.Context, collection, id string) (*Document, error)

	// Insert stores a new document. ErrInvalidQuery when the id is empty.
	Insert(ctx context.Context, collection string, doc Document) error

	// Update replaces the stored document with the same id. ErrNotFound when
	// no such document exists.
	Update(ctx context.Context, collection string, doc Document) error

	// Delete removes the document with the given id. ErrNotFound when no
	// such document exists.
	Delete(ctx context.Context, collection, id string) error
}

package tenantrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/padocode/go-tenant-repository/docstore"
)

// Collection is a typed view over one collection of a Repository. Records
// are mapped to and from document payloads through their JSON tags; the
// document id is surfaced on the record's "id" field when it has one. The
// type parameter keeps cache consumers and entries in agreement; a decoding
// failure is an error, never a silently wrong shape.
type Collection[T any] struct {
	repo *Repository
	name string
}

// NewCollection creates a typed view over the named collection.
func NewCollection[T any](repo *Repository, name string) *Collection[T] {
	return &Collection[T]{repo: repo, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Repo exposes the underlying repository.
func (c *Collection[T]) Repo() *Repository { return c.repo }

// Fetch returns the typed caller-tenant records matching the constraints.
func (c *Collection[T]) Fetch(ctx context.Context, constraints ...docstore.Constraint) ([]T, error) {
	return c.FetchWithOptions(ctx, constraints)
}

// FetchWithOptions is Fetch with per-call read options.
func (c *Collection[T]) FetchWithOptions(ctx context.Context, constraints []docstore.Constraint, opts ...FetchOption) ([]T, error) {
	docs, err := c.repo.FetchCollection(ctx, c.name, constraints, opts...)
	if err != nil {
		return nil, err
	}
	records := make([]T, len(docs))
	for i, doc := range docs {
		rec, err := decodeDocument[T](doc)
		if err != nil {
			return nil, &OperationError{Collection: c.name, Op: "decode", Err: err}
		}
		records[i] = rec
	}
	return records, nil
}

// GetByID returns a single typed record. Absent and foreign-tenant documents
// both report (zero, false, nil).
func (c *Collection[T]) GetByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	doc, ok, err := c.repo.FetchDocument(ctx, c.name, id)
	if err != nil || !ok {
		return zero, false, err
	}
	rec, err := decodeDocument[T](*doc)
	if err != nil {
		return zero, false, &OperationError{Collection: c.name, Op: "decode", Err: err}
	}
	return rec, true, nil
}

// Create stores a new record in the caller's tenant and returns it with its
// assigned id.
func (c *Collection[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	fields, err := encodeRecord(record)
	if err != nil {
		return zero, &OperationError{Collection: c.name, Op: "encode", Err: err}
	}
	doc, err := c.repo.Create(ctx, c.name, fields)
	if err != nil {
		return zero, err
	}
	out, err := decodeDocument[T](*doc)
	if err != nil {
		return zero, &OperationError{Collection: c.name, Op: "decode", Err: err}
	}
	return out, nil
}

// Update merges the record's fields into the stored document.
func (c *Collection[T]) Update(ctx context.Context, id string, record T) (T, error) {
	var zero T
	fields, err := encodeRecord(record)
	if err != nil {
		return zero, &OperationError{Collection: c.name, Op: "encode", Err: err}
	}
	doc, err := c.repo.Update(ctx, c.name, id, fields)
	if err != nil {
		return zero, err
	}
	out, err := decodeDocument[T](*doc)
	if err != nil {
		return zero, &OperationError{Collection: c.name, Op: "decode", Err: err}
	}
	return out, nil
}

// Delete removes a record after the repository's ownership check.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.repo.Delete(ctx, c.name, id)
}

func decodeDocument[T any](doc docstore.Document) (T, error) {
	var out T
	payload := make(map[string]any, len(doc.Data)+1)
	for k, v := range doc.Data {
		payload[k] = v
	}
	payload["id"] = doc.ID

	raw, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("marshal document %q: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode document %q: %w", doc.ID, err)
	}
	return out, nil
}

func encodeRecord[T any](record T) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("record must encode to an object: %w", err)
	}
	return fields, nil
}

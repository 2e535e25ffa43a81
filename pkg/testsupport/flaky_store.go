package testsupport

import (
	"context"
	"sync"

	"github.com/padocode/go-tenant-repository/docstore"
)

// FlakyStore wraps a document store and fails the first N read operations
// with a configured error before delegating. It tracks invocation counts so
// retry behavior can be asserted precisely.
type FlakyStore struct {
	mu       sync.Mutex
	inner    docstore.Store
	failures int
	err      error
	queryN   int
	getN     int
}

var _ docstore.Store = (*FlakyStore)(nil)

// NewFlakyStore builds a wrapper that fails the first `failures` reads with
// err.
func NewFlakyStore(inner docstore.Store, failures int, err error) *FlakyStore {
	return &FlakyStore{inner: inner, failures: failures, err: err}
}

// QueryCalls reports how many times Query ran.
func (f *FlakyStore) QueryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryN
}

// GetCalls reports how many times GetByID ran.
func (f *FlakyStore) GetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getN
}

func (f *FlakyStore) consumeFailure() error {
	if f.failures > 0 {
		f.failures--
		return f.err
	}
	return nil
}

// Query implements docstore.Store.
func (f *FlakyStore) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	f.mu.Lock()
	f.queryN++
	err := f.consumeFailure()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.inner.Query(ctx, collection, q)
}

// GetByID implements docstore.Store.
func (f *FlakyStore) GetByID(ctx context.Context, collection, id string) (*docstore.Document, error) {
	f.mu.Lock()
	f.getN++
	err := f.consumeFailure()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.inner.GetByID(ctx, collection, id)
}

// Insert implements docstore.Store.
func (f *FlakyStore) Insert(ctx context.Context, collection string, doc docstore.Document) error {
	return f.inner.Insert(ctx, collection, doc)
}

// Update implements docstore.Store.
func (f *FlakyStore) Update(ctx context.Context, collection string, doc docstore.Document) error {
	return f.inner.Update(ctx, collection, doc)
}

// Delete implements docstore.Store.
func (f *FlakyStore) Delete(ctx context.Context, collection, id string) error {
	return f.inner.Delete(ctx, collection, id)
}

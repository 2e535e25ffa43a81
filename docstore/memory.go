package docstore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests, examples and tooling.
// It applies the same filter semantics a real document backend would:
// equality, ordered comparison on numbers/strings/timestamps, and membership.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

// Query implements Store.
func (m *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	docs := m.collections[collection]
	matched := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if q.TenantID != "" && doc.TenantID != q.TenantID {
			continue
		}
		if matchesFilters(doc, q.Filters) {
			matched = append(matched, doc.Clone())
		}
	}
	m.mu.RUnlock()

	sortDocuments(matched, q.Orders)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// GetByID implements Store.
func (m *MemoryStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	out := doc.Clone()
	return &out, nil
}

// Insert implements Store.
func (m *MemoryStore) Insert(ctx context.Context, collection string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" {
		return ErrInvalidQuery
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	m.collections[collection][doc.ID] = doc.Clone()
	return nil
}

// Update implements Store.
func (m *MemoryStore) Update(ctx context.Context, collection string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][doc.ID]; !ok {
		return ErrNotFound
	}
	m.collections[collection][doc.ID] = doc.Clone()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

// Len reports how many documents a collection holds, across all tenants.
func (m *MemoryStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func matchesFilters(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matchesFilter(doc, f) {
			return false
		}
	}
	return true
}

func matchesFilter(doc Document, f Filter) bool {
	actual, ok := fieldValue(doc, f.Field)
	if !ok {
		return false
	}

	if f.Op == OpIn {
		rv := reflect.ValueOf(f.Value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if cmp, comparable := compareValues(actual, rv.Index(i).Interface()); comparable && cmp == 0 {
				return true
			}
		}
		return false
	}

	cmp, comparable := compareValues(actual, f.Value)
	if !comparable {
		return false
	}
	switch f.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	}
	return false
}

func fieldValue(doc Document, field string) (any, bool) {
	switch field {
	case "id":
		return doc.ID, true
	case "createdAt":
		return doc.CreatedAt, true
	case "updatedAt":
		return doc.UpdatedAt, true
	}
	return doc.Field(field)
}

// compareValues compares two dynamic values the way a JSON document store
// would: numbers compare across integer/float representations, strings and
// timestamps compare naturally. The second return is false when the pair is
// not comparable.
func compareValues(a, b any) (int, bool) {
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1, true
			case at.After(bt):
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}

	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}

	if ab, aok := a.(bool); aok {
		bb, bok := b.(bool)
		if !bok {
			return 0, false
		}
		if ab == bb {
			return 0, true
		}
		if !ab {
			return -1, true
		}
		return 1, true
	}

	if reflect.DeepEqual(a, b) {
		return 0, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func sortDocuments(docs []Document, orders []Order) {
	if len(orders) == 0 {
		// Stable order for callers and cache keys even without an explicit
		// sort: fall back to id.
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range orders {
			av, aok := fieldValue(docs[i], o.Field)
			bv, bok := fieldValue(docs[j], o.Field)
			if !aok || !bok {
				continue
			}
			cmp, comparable := compareValues(av, bv)
			if !comparable || cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

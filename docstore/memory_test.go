package docstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedMemory(t *testing.T, store *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	docs := []Document{
		{ID: "p1", TenantID: "loja-1", Data: map[string]any{"name": "Pizza", "status": "ativo", "price": 49.9, "stock": 3}},
		{ID: "p2", TenantID: "loja-1", Data: map[string]any{"name": "Lasanha", "status": "ativo", "price": 39.9, "stock": 12}},
		{ID: "p3", TenantID: "loja-1", Data: map[string]any{"name": "Esfiha", "status": "inativo", "price": 9.9, "stock": 0}},
		{ID: "p4", TenantID: "loja-2", Data: map[string]any{"name": "Sushi", "status": "ativo", "price": 89.9, "stock": 7}},
	}
	for i, doc := range docs {
		doc.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		doc.UpdatedAt = doc.CreatedAt
		if err := store.Insert(ctx, "products", doc); err != nil {
			t.Fatalf("seed %s: %v", doc.ID, err)
		}
	}
}

func TestMemoryStore_QueryFilters(t *testing.T) {
	store := NewMemoryStore()
	seedMemory(t, store)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   Query
		wantIDs []string
	}{
		{
			"equality",
			BuildQuery(Where("status", OpEqual, "ativo")),
			[]string{"p1", "p2", "p4"},
		},
		{
			"inequality",
			BuildQuery(Where("status", OpNotEqual, "ativo")),
			[]string{"p3"},
		},
		{
			"numeric comparison crosses int and float",
			BuildQuery(Where("stock", OpLess, 5)),
			[]string{"p1", "p3"},
		},
		{
			"membership",
			BuildQuery(Where("name", OpIn, []string{"Pizza", "Sushi"})),
			[]string{"p1", "p4"},
		},
		{
			"combined filters",
			BuildQuery(Where("status", OpEqual, "ativo"), Where("price", OpGreaterEqual, 40.0)),
			[]string{"p1", "p4"},
		},
		{
			"missing field never matches",
			BuildQuery(Where("nope", OpEqual, "x")),
			nil,
		},
		{
			"tenant scope",
			Query{TenantID: "loja-2"},
			[]string{"p4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.Query(ctx, "products", tt.query)
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			gotIDs := make([]string, len(docs))
			for i, d := range docs {
				gotIDs[i] = d.ID
			}
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("expected ids %v, got %v", tt.wantIDs, gotIDs)
			}
			for i := range tt.wantIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Errorf("expected ids %v, got %v", tt.wantIDs, gotIDs)
					break
				}
			}
		})
	}
}

func TestMemoryStore_QueryOrderAndLimit(t *testing.T) {
	store := NewMemoryStore()
	seedMemory(t, store)
	ctx := context.Background()

	docs, err := store.Query(ctx, "products", BuildQuery(OrderByDesc("price"), Limit(2)))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "p4" || docs[1].ID != "p1" {
		t.Errorf("expected [p4 p1], got [%s %s]", docs[0].ID, docs[1].ID)
	}
}

func TestMemoryStore_QueryStableFallbackOrder(t *testing.T) {
	store := NewMemoryStore()
	seedMemory(t, store)
	ctx := context.Background()

	first, err := store.Query(ctx, "products", Query{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := store.Query(ctx, "products", Query{})
		if err != nil {
			t.Fatal(err)
		}
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("iteration order leaked into results: %v vs %v", again, first)
			}
		}
	}
}

func TestMemoryStore_QueryRejectsInvalidQuery(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Query(context.Background(), "products", Query{Limit: -1})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestMemoryStore_GetByID(t *testing.T) {
	store := NewMemoryStore()
	seedMemory(t, store)
	ctx := context.Background()

	doc, err := store.GetByID(ctx, "products", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.TenantID != "loja-1" {
		t.Errorf("expected loja-1, got %q", doc.TenantID)
	}

	if _, err := store.GetByID(ctx, "products", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ResultsAreClones(t *testing.T) {
	store := NewMemoryStore()
	seedMemory(t, store)
	ctx := context.Background()

	doc, err := store.GetByID(ctx, "products", "p1")
	if err != nil {
		t.Fatal(err)
	}
	doc.Data["name"] = "mutated"

	again, err := store.GetByID(ctx, "products", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Data["name"] != "Pizza" {
		t.Error("mutating a returned document leaked into the store")
	}
}

func TestMemoryStore_UpdateAndDelete(t *testing.T) {
	store := NewMemoryStore()
	seedMemory(t, store)
	ctx := context.Background()

	doc, err := store.GetByID(ctx, "products", "p1")
	if err != nil {
		t.Fatal(err)
	}
	doc.Data["stock"] = 99
	if err := store.Update(ctx, "products", *doc); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	updated, err := store.GetByID(ctx, "products", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := updated.Field("stock"); v != 99 {
		t.Errorf("expected stock 99, got %v", v)
	}

	if err := store.Update(ctx, "products", Document{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing doc, got %v", err)
	}

	if err := store.Delete(ctx, "products", "p1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, "products", "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "products", "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestMemoryStore_InsertRequiresID(t *testing.T) {
	store := NewMemoryStore()
	err := store.Insert(context.Background(), "products", Document{})
	if err == nil {
		t.Error("expected error inserting a document without an id")
	}
}

func TestMemoryStore_HonorsContextCancellation(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Query(ctx, "products", Query{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := store.GetByID(ctx, "products", "p1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

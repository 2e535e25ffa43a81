package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/padocode/go-tenant-repository/cache"
)

func newTestMemo(t *testing.T) *SturdycService {
	t.Helper()
	svc, err := NewSturdycService(SturdycConfig{
		Capacity:           100,
		NumShards:          2,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestSturdycConfig_Validate(t *testing.T) {
	if err := DefaultSturdycConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if err := (SturdycConfig{}).Validate(); err == nil {
		t.Error("zero config should fail validation")
	}
	bad := DefaultSturdycConfig()
	bad.EvictionPercentage = 150
	if err := bad.Validate(); err == nil {
		t.Error("eviction percentage above 100 should fail validation")
	}
}

func TestSturdycService_MemoizesFetch(t *testing.T) {
	svc := newTestMemo(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.GetOrFetch(ctx, svc, "report", fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single fetch, got %d", calls)
	}
}

func TestSturdycService_FetchErrorNotCached(t *testing.T) {
	svc := newTestMemo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 9, nil
	}

	if _, err := cache.GetOrFetch(ctx, svc, "report", fetch); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	got, err := cache.GetOrFetch(ctx, svc, "report", fetch)
	if err != nil {
		t.Fatalf("unexpected error on second fetch: %v", err)
	}
	if got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
}

func TestGetOrFetch_TypeMismatchIsAnError(t *testing.T) {
	svc := newTestMemo(t)
	ctx := context.Background()

	if _, err := cache.GetOrFetch(ctx, svc, "report", func(ctx context.Context) (int, error) {
		return 7, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The memoized value is an int; reading it as a string must fail loudly
	// instead of handing back a zero value.
	_, err := cache.GetOrFetch(ctx, svc, "report", func(ctx context.Context) (string, error) {
		return "never fetched", nil
	})
	if err == nil {
		t.Fatal("expected an error for a memoized value of the wrong type")
	}
}

func TestSturdycService_DeleteForcesRefetch(t *testing.T) {
	svc := newTestMemo(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	if _, err := cache.GetOrFetch(ctx, svc, "report", fetch); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "report"); err != nil {
		t.Fatal(err)
	}
	got, err := cache.GetOrFetch(ctx, svc, "report", fetch)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("expected refetch after delete, got %d", got)
	}
}

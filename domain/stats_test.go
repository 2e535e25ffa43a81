package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/domain"
	"github.com/padocode/go-tenant-repository/pkg/testsupport"
	"github.com/padocode/go-tenant-repository/tenant"
)

func newStats(env *domainEnv) *domain.Stats {
	return domain.NewStats(env.container.Repository(), env.container.ReadThrough())
}

func TestStats_Daily(t *testing.T) {
	env := newDomainEnv(t)
	env.loadFixture(t, "orders.json", "orders")
	stats := newStats(env)

	summary, err := stats.Daily(asTenant("loja-1"), "2026-03-14")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Day != "2026-03-14" {
		t.Errorf("expected day 2026-03-14, got %q", summary.Day)
	}
	if summary.Orders != 4 {
		t.Errorf("expected 4 orders, got %d", summary.Orders)
	}
	if summary.Delivered != 2 || summary.Cancelled != 1 {
		t.Errorf("expected 2 delivered / 1 cancelled, got %d / %d", summary.Delivered, summary.Cancelled)
	}
	if summary.Revenue != 150.0 {
		t.Errorf("expected revenue 150.0, got %v", summary.Revenue)
	}
	if math.Abs(summary.AverageTicket-75.0) > 1e-9 {
		t.Errorf("expected average ticket 75.0, got %v", summary.AverageTicket)
	}
}

func TestStats_DailyEmptyDay(t *testing.T) {
	env := newDomainEnv(t)
	env.loadFixture(t, "orders.json", "orders")
	stats := newStats(env)

	summary, err := stats.Daily(asTenant("loja-1"), "2026-07-01")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Orders != 0 || summary.Revenue != 0 || summary.AverageTicket != 0 {
		t.Errorf("expected an empty summary, got %+v", summary)
	}
}

func TestStats_DailyIsMemoized(t *testing.T) {
	env := newDomainEnv(t)
	env.loadFixture(t, "orders.json", "orders")
	stats := newStats(env)
	ctx := asTenant("loja-1")

	for i := 0; i < 3; i++ {
		if _, err := stats.Daily(ctx, "2026-03-14"); err != nil {
			t.Fatal(err)
		}
	}
	if env.store.QueryCalls() != 1 {
		t.Errorf("expected a single aggregate scan for repeated requests, got %d", env.store.QueryCalls())
	}
}

func TestStats_DailyIsTenantScoped(t *testing.T) {
	env := newDomainEnv(t)
	env.loadFixture(t, "orders.json", "orders")
	stats := newStats(env)

	forA, err := stats.Daily(asTenant("loja-1"), "2026-03-14")
	if err != nil {
		t.Fatal(err)
	}
	forB, err := stats.Daily(asTenant("loja-2"), "2026-03-14")
	if err != nil {
		t.Fatal(err)
	}
	if forA.Revenue == forB.Revenue {
		t.Error("tenants must not share memoized summaries")
	}
	if forB.Orders != 1 || forB.Revenue != 80.0 {
		t.Errorf("unexpected loja-2 summary: %+v", forB)
	}
}

func TestStats_InvalidateDailyForcesRecompute(t *testing.T) {
	env := newDomainEnv(t)
	env.loadFixture(t, "orders.json", "orders")
	stats := newStats(env)
	ctx := asTenant("loja-1")

	if _, err := stats.Daily(ctx, "2026-03-14"); err != nil {
		t.Fatal(err)
	}
	if err := stats.InvalidateDaily(ctx, "2026-03-14"); err != nil {
		t.Fatal(err)
	}
	if _, err := stats.Daily(ctx, "2026-03-14"); err != nil {
		t.Fatal(err)
	}
	if env.store.QueryCalls() != 2 {
		t.Errorf("expected a fresh scan after invalidation, got %d queries", env.store.QueryCalls())
	}
}

func TestStats_CraftedSegmentsDoNotCollide(t *testing.T) {
	env := newDomainEnv(t)
	// Raw concatenation would put both of these requests under the key
	// stats::t::daily::x::daily::y.
	testsupport.SeedDocuments(t, env.memory, "orders", docstore.Document{
		ID:       "o1",
		TenantID: "t",
		Data:     map[string]any{"status": domain.OrderDelivered, "total": 50.0, "day": "x::daily::y"},
	})
	stats := newStats(env)

	empty, err := stats.Daily(asTenant("t::daily::x"), "y")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Orders != 0 {
		t.Fatalf("expected an empty summary for the crafted tenant, got %+v", empty)
	}

	got, err := stats.Daily(asTenant("t"), "x::daily::y")
	if err != nil {
		t.Fatal(err)
	}
	if got.Orders != 1 || got.Revenue != 50.0 {
		t.Errorf("crafted segments were served another tenant's memoized summary: %+v", got)
	}
}

func TestStats_Unauthenticated(t *testing.T) {
	env := newDomainEnv(t)
	stats := newStats(env)

	if _, err := stats.Daily(asTenant(""), "2026-03-14"); !errors.Is(err, tenant.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

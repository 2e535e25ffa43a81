package domain

import (
	"context"

	"github.com/padocode/go-tenant-repository/cache"
	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/tenantrepo"
)

// DailySummary aggregates one tenant's orders for a calendar day.
type DailySummary struct {
	Day           string  `json:"day"`
	Orders        int     `json:"orders"`
	Delivered     int     `json:"delivered"`
	Cancelled     int     `json:"cancelled"`
	Revenue       float64 `json:"revenue"`
	AverageTicket float64 `json:"averageTicket"`
}

// Stats computes dashboard aggregates. Results are memoized through a
// read-through cache with a uniform short TTL: aggregate scans are the most
// expensive reads in the system and are re-requested on every dashboard
// refresh, so concurrent requests for the same day collapse into one scan.
type Stats struct {
	col  *tenantrepo.Collection[Order]
	memo cache.ReadThrough
}

// NewStats builds the statistics view over a repository.
func NewStats(repo *tenantrepo.Repository, memo cache.ReadThrough) *Stats {
	return &Stats{
		col:  tenantrepo.NewCollection[Order](repo, "orders"),
		memo: memo,
	}
}

// Daily returns the tenant's summary for a calendar day (2006-01-02).
func (s *Stats) Daily(ctx context.Context, day string) (DailySummary, error) {
	tenantID, err := s.col.Repo().TenantID(ctx)
	if err != nil {
		return DailySummary{}, err
	}

	return cache.GetOrFetch(ctx, s.memo, dailyKey(tenantID, day), func(ctx context.Context) (DailySummary, error) {
		return s.computeDaily(ctx, day)
	})
}

// InvalidateDaily drops the memoized summary for a day, for use after
// backfills or corrections.
func (s *Stats) InvalidateDaily(ctx context.Context, day string) error {
	tenantID, err := s.col.Repo().TenantID(ctx)
	if err != nil {
		return err
	}
	return s.memo.Delete(ctx, dailyKey(tenantID, day))
}

// dailyKey builds the memo key from sanitized segments, so a crafted tenant
// id or day string cannot splice itself into another tenant's key.
func dailyKey(tenantID, day string) string {
	return cache.Key("stats", tenantID, "daily", day)
}

func (s *Stats) computeDaily(ctx context.Context, day string) (DailySummary, error) {
	// The repository cache is skipped here: memoization happens at this
	// layer with its own freshness window, and stacking the two would let
	// a summary go stale for the sum of both TTLs.
	orders, err := s.col.FetchWithOptions(ctx,
		[]docstore.Constraint{docstore.Where("day", docstore.OpEqual, day)},
		tenantrepo.WithUseCache(false),
	)
	if err != nil {
		return DailySummary{}, err
	}

	summary := DailySummary{Day: day, Orders: len(orders)}
	for _, order := range orders {
		switch order.Status {
		case OrderDelivered:
			summary.Delivered++
			summary.Revenue += order.Total
		case OrderCancelled:
			summary.Cancelled++
		}
	}
	if summary.Delivered > 0 {
		summary.AverageTicket = summary.Revenue / float64(summary.Delivered)
	}
	return summary, nil
}

package domain

import (
	"context"

	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/tenantrepo"
)

// Coupon is a discount code with a validity window expressed in calendar
// days (2006-01-02), matching how the back office configures promotions.
type Coupon struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Percent    float64 `json:"percent"`
	Status     string  `json:"status"`
	ValidFrom  string  `json:"validFrom"`
	ValidUntil string  `json:"validUntil"`
}

// Coupons is the coupon repository specialization.
type Coupons struct {
	col *tenantrepo.Collection[Coupon]
}

// NewCoupons builds the coupons view over a repository.
func NewCoupons(repo *tenantrepo.Repository) *Coupons {
	return &Coupons{col: tenantrepo.NewCollection[Coupon](repo, "coupons")}
}

// ValidOn lists active coupons whose validity window covers the given day.
func (c *Coupons) ValidOn(ctx context.Context, day string) ([]Coupon, error) {
	return c.col.Fetch(ctx,
		docstore.Where("status", docstore.OpEqual, ProductActive),
		docstore.Where("validFrom", docstore.OpLessEqual, day),
		docstore.Where("validUntil", docstore.OpGreaterEqual, day),
		docstore.OrderBy("code"),
	)
}

// ByCode returns the tenant's coupon with the given code, if any.
func (c *Coupons) ByCode(ctx context.Context, code string) (Coupon, bool, error) {
	coupons, err := c.col.Fetch(ctx,
		docstore.Where("code", docstore.OpEqual, code),
		docstore.Limit(1),
	)
	if err != nil {
		return Coupon{}, false, err
	}
	if len(coupons) == 0 {
		return Coupon{}, false, nil
	}
	return coupons[0], true, nil
}

// Create stores a new coupon.
func (c *Coupons) Create(ctx context.Context, coupon Coupon) (Coupon, error) {
	if coupon.Status == "" {
		coupon.Status = ProductActive
	}
	return c.col.Create(ctx, coupon)
}

// Deactivate retires a coupon without deleting its history.
func (c *Coupons) Deactivate(ctx context.Context, id string) error {
	_, err := c.col.Repo().Update(ctx, c.col.Name(), id, map[string]any{"status": ProductInactive})
	return err
}

package domain

import (
	"context"

	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/tenantrepo"
)

// Product visibility statuses.
const (
	ProductActive   = "ativo"
	ProductInactive = "inativo"
)

// Product is a menu item.
type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	CategoryID string  `json:"categoryId"`
}

// Products is the product repository specialization.
type Products struct {
	col *tenantrepo.Collection[Product]
}

// NewProducts builds the products view over a repository.
func NewProducts(repo *tenantrepo.Repository) *Products {
	return &Products{col: tenantrepo.NewCollection[Product](repo, "products")}
}

// Get returns one product; absent and foreign-tenant ids both report !ok.
func (p *Products) Get(ctx context.Context, id string) (Product, bool, error) {
	return p.col.GetByID(ctx, id)
}

// Active lists the tenant's sellable menu, alphabetically.
func (p *Products) Active(ctx context.Context) ([]Product, error) {
	return p.col.Fetch(ctx,
		docstore.Where("status", docstore.OpEqual, ProductActive),
		docstore.OrderBy("name"),
	)
}

// ByCategory lists the active products of one category.
func (p *Products) ByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	return p.col.Fetch(ctx,
		docstore.Where("categoryId", docstore.OpEqual, categoryID),
		docstore.Where("status", docstore.OpEqual, ProductActive),
		docstore.OrderBy("name"),
	)
}

// LowStock lists active products whose stock fell below threshold.
func (p *Products) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	return p.col.Fetch(ctx,
		docstore.Where("status", docstore.OpEqual, ProductActive),
		docstore.Where("stock", docstore.OpLess, threshold),
		docstore.OrderBy("stock"),
	)
}

// Create stores a new product.
func (p *Products) Create(ctx context.Context, product Product) (Product, error) {
	if product.Status == "" {
		product.Status = ProductActive
	}
	return p.col.Create(ctx, product)
}

// AdjustStock sets a product's stock level.
func (p *Products) AdjustStock(ctx context.Context, id string, stock int) error {
	_, err := p.col.Repo().Update(ctx, p.col.Name(), id, map[string]any{"stock": stock})
	return err
}

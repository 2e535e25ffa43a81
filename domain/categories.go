package domain

import (
	"context"

	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/tenantrepo"
)

// Category groups menu items for display ordering.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Categories is the category repository specialization.
type Categories struct {
	col *tenantrepo.Collection[Category]
}

// NewCategories builds the categories view over a repository.
func NewCategories(repo *tenantrepo.Repository) *Categories {
	return &Categories{col: tenantrepo.NewCollection[Category](repo, "categories")}
}

// List returns the tenant's categories in display order.
func (c *Categories) List(ctx context.Context) ([]Category, error) {
	return c.col.Fetch(ctx, docstore.OrderBy("position"))
}

// Create stores a new category.
func (c *Categories) Create(ctx context.Context, category Category) (Category, error) {
	return c.col.Create(ctx, category)
}

// Rename updates a category's display name.
func (c *Categories) Rename(ctx context.Context, id, name string) error {
	_, err := c.col.Repo().Update(ctx, c.col.Name(), id, map[string]any{"name": name})
	return err
}

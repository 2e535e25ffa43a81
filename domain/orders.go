package domain

import (
	"context"
	"time"

	"github.com/padocode/go-tenant-repository/docstore"
	"github.com/padocode/go-tenant-repository/tenantrepo"
)

// Order lifecycle statuses, as shown on the kitchen display.
const (
	OrderPending    = "pendente"
	OrderPreparing  = "preparando"
	OrderDelivering = "em_entrega"
	OrderDelivered  = "entregue"
	OrderCancelled  = "cancelado"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Order is a customer order inside one store ("loja").
type Order struct {
	ID           string      `json:"id"`
	Status       string      `json:"status"`
	CustomerName string      `json:"customerName"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
	// Day is the order's calendar day (2006-01-02), denormalized so daily
	// dashboards can filter without range scans.
	Day      string    `json:"day"`
	PlacedAt time.Time `json:"placedAt"`
}

// Orders is the order repository specialization.
type Orders struct {
	col *tenantrepo.Collection[Order]
}

// NewOrders builds the orders view over a repository.
func NewOrders(repo *tenantrepo.Repository) *Orders {
	return &Orders{col: tenantrepo.NewCollection[Order](repo, "orders")}
}

// Get returns one order; absent and foreign-tenant ids both report !ok.
func (o *Orders) Get(ctx context.Context, id string) (Order, bool, error) {
	return o.col.GetByID(ctx, id)
}

// ByStatus lists the tenant's orders in one status, most recent first.
func (o *Orders) ByStatus(ctx context.Context, status string) ([]Order, error) {
	return o.col.Fetch(ctx,
		docstore.Where("status", docstore.OpEqual, status),
		docstore.OrderByDesc("placedAt"),
	)
}

// Open lists every order still moving through the kitchen flow.
func (o *Orders) Open(ctx context.Context) ([]Order, error) {
	return o.col.Fetch(ctx,
		docstore.Where("status", docstore.OpIn, []string{OrderPending, OrderPreparing, OrderDelivering}),
		docstore.OrderByDesc("placedAt"),
	)
}

// ByDay lists the tenant's orders placed on a calendar day (2006-01-02).
func (o *Orders) ByDay(ctx context.Context, day string) ([]Order, error) {
	return o.col.Fetch(ctx, docstore.Where("day", docstore.OpEqual, day))
}

// Place stores a new order. Status defaults to pending and the day field is
// derived from the placement time.
func (o *Orders) Place(ctx context.Context, order Order) (Order, error) {
	if order.Status == "" {
		order.Status = OrderPending
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now().UTC()
	}
	order.Day = order.PlacedAt.UTC().Format("2006-01-02")
	return o.col.Create(ctx, order)
}

// UpdateStatus moves an order through the kitchen flow.
func (o *Orders) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := o.col.Repo().Update(ctx, o.col.Name(), id, map[string]any{"status": status})
	return err
}

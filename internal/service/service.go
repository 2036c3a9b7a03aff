package service

import (
	"context"

	"atelier-store/internal/model"
)

// OrderService defines operations for order placement and retrieval.
type OrderService interface {
	// PlaceOrder validates the cart, snapshots product name and price,
	// computes totals and the shipping fee, and persists the order, its
	// items, and the stock decrements as one atomic unit.
	PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByOrderNumber retrieves an order with its item snapshots. Returns
	// nil when no such order exists.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.OrderResponse, error)

	// ListOrders retrieves orders newest first, optionally filtered to one
	// user.
	ListOrders(ctx context.Context, userID *string) ([]model.Order, error)
}

// AdminService is the façade for every privileged mutation. Each operation
// requires a non-empty reason and writes exactly one audit entry in the same
// transaction as the mutation it documents.
type AdminService interface {
	// SuspendUser suspends a user account. Actors cannot suspend themselves.
	SuspendUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) (*model.User, error)

	// ActivateUser lifts a suspension.
	ActivateUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) (*model.User, error)

	// DeleteUser removes a user account. Actors cannot delete themselves.
	DeleteUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) error

	// UpdateOrderStatus moves an order through its lifecycle, rejecting
	// illegal transitions.
	UpdateOrderStatus(ctx context.Context, actor model.Actor, orderNumber string, status model.OrderStatus, reason string, meta model.RequestMeta) (*model.OrderResponse, error)

	// UpdateProduct applies an admin catalog edit.
	UpdateProduct(ctx context.Context, actor model.Actor, productID string, changes model.ProductUpdate, reason string, meta model.RequestMeta) (*model.Product, error)

	// DeleteProduct removes a product from the catalog.
	DeleteProduct(ctx context.Context, actor model.Actor, productID, reason string, meta model.RequestMeta) error

	// ListAuditLogs retrieves audit entries newest first.
	ListAuditLogs(ctx context.Context, filter model.AuditLogFilter) (*model.AuditLogPage, error)
}

package repository

import (
	"context"
	"time"

	"atelier-store/internal/model"

	"github.com/jackc/pgx/v5"
)

// TxManager hands out database transactions to services that need
// multi-statement atomicity.
type TxManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines read access to the catalog plus the admin edit
// operations. Stock decrements are NOT here: every stock decrement goes
// through the inventory guard.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID. Returns nil when the
	// product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Update applies an admin edit within the provided transaction and
	// returns the updated product. Returns nil when the product does not
	// exist.
	Update(ctx context.Context, tx pgx.Tx, id string, changes model.ProductUpdate) (*model.Product, error)

	// Delete removes a product within the provided transaction.
	Delete(ctx context.Context, tx pgx.Tx, id string) error
}

// OrderRepository defines the interface for order data access operations.
// Orders are never deleted; the only post-creation mutation is the status
// update.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByOrderNumber retrieves an order by its order number along with its
	// items. Returns nil when no such order exists.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, []model.OrderItem, error)

	// List retrieves orders in reverse-chronological order, optionally
	// filtered to one user.
	List(ctx context.Context, userID *string) ([]model.Order, error)

	// UpdateStatus sets the order status within the provided transaction,
	// conditional on the current status still being from. Returns
	// model.ErrOrderNotFound when the order does not exist and
	// model.ErrInvalidTransition when the status changed underneath.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderNumber string, from, to model.OrderStatus) error
}

// UserRepository defines the slice of the identity directory the admin
// façade mutates.
type UserRepository interface {
	// GetByID retrieves a user by ID. Returns nil when the user does not exist.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// Suspend marks a user suspended within the provided transaction and
	// returns the updated user. The write is conditional on the user still
	// being active; a concurrent suspension surfaces as
	// model.ErrAlreadySuspended.
	Suspend(ctx context.Context, tx pgx.Tx, id, reason string, at time.Time) (*model.User, error)

	// Activate clears a user's suspension within the provided transaction
	// and returns the updated user. The write is conditional on the user
	// still being suspended; a concurrent activation surfaces as
	// model.ErrAlreadyActive.
	Activate(ctx context.Context, tx pgx.Tx, id string) (*model.User, error)

	// Delete removes a user within the provided transaction.
	Delete(ctx context.Context, tx pgx.Tx, id string) error
}

// AuditLogRepository persists and queries the append-only audit trail.
// There is deliberately no update or delete operation.
type AuditLogRepository interface {
	// Insert writes one audit entry within the provided transaction.
	Insert(ctx context.Context, tx pgx.Tx, entry *model.AuditLogEntry) error

	// List retrieves entries matching the filter in reverse-chronological
	// order, plus the unpaged total.
	List(ctx context.Context, filter model.AuditLogFilter) ([]model.AuditLogEntry, int, error)
}

package repository

import (
	"context"
	"fmt"

	"atelier-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `
	id, order_number, status, total, shipping_fee, payment_method,
	card_last4, card_expiry_month, card_expiry_year, user_id,
	last_name, first_name, last_name_kana, first_name_kana,
	postal_code, prefecture, city, address, building, phone, email,
	notes, created_at, updated_at
`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.Total, &o.ShippingFee, &o.PaymentMethod,
		&o.CardLast4, &o.CardExpiryMonth, &o.CardExpiryYear, &o.UserID,
		&o.LastName, &o.FirstName, &o.LastNameKana, &o.FirstNameKana,
		&o.PostalCode, &o.Prefecture, &o.City, &o.Address, &o.Building, &o.Phone, &o.Email,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, status, total, shipping_fee, payment_method,
			card_last4, card_expiry_month, card_expiry_year, user_id,
			last_name, first_name, last_name_kana, first_name_kana,
			postal_code, prefecture, city, address, building, phone, email,
			notes, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.Status, order.Total, order.ShippingFee, order.PaymentMethod,
		order.CardLast4, order.CardExpiryMonth, order.CardExpiryYear, order.UserID,
		order.LastName, order.FirstName, order.LastNameKana, order.FirstNameKana,
		order.PostalCode, order.Prefecture, order.City, order.Address, order.Building, order.Phone, order.Email,
		order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, name)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Name)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByOrderNumber retrieves an order by its order number along with its items.
func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, []model.OrderItem, error) {
	orderQuery := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, orderQuery, orderNumber), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, price, name
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, order.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", orderNumber).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.Name)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, items, nil
}

// List retrieves orders in reverse-chronological order, optionally filtered
// to one user.
func (r *orderRepository) List(ctx context.Context, userID *string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the order status within the provided transaction. The
// update is conditional on the current status still being from, so the
// legality check cannot be defeated by a concurrent transition: the loser
// of the race matches no row and gets a conflict error.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderNumber string, from, to model.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE order_number = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, orderNumber, from, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_number", orderNumber).
			Str("status", string(to)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var current model.OrderStatus
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE order_number = $1`, orderNumber).Scan(&current)
		if err == pgx.ErrNoRows {
			return model.ErrOrderNotFound
		}
		if err != nil {
			r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to re-read order status")
			return fmt.Errorf("failed to re-read order status: %w", err)
		}
		r.logger.Warn().
			Str("order_number", orderNumber).
			Str("expected", string(from)).
			Str("current", string(current)).
			Msg("order status changed concurrently")
		return model.ErrInvalidTransition
	}

	r.logger.Debug().
		Str("order_number", orderNumber).
		Str("status", string(to)).
		Msg("order status updated")

	return nil
}

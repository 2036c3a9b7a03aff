// Package inventory is the single writer of product stock. Every decrement,
// whether from checkout or from a manual flow, goes through the Guard so the
// check-and-decrement is one conditional update and overselling cannot
// happen, no matter how many requests race for the last unit.
package inventory

import (
	"context"
	"fmt"
	"sort"

	"atelier-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Line is one requested stock reservation.
type Line struct {
	ProductID string
	Quantity  int
}

// Guard validates requested quantities against current stock and performs
// the decrement. GetStock and HasSufficientStock are advisory reads for the
// presentation layer; only ReserveAndDecrement and Decrement are
// authoritative.
type Guard interface {
	// ReserveAndDecrement decrements stock for every line inside the
	// caller's transaction. If any line cannot be satisfied the returned
	// error identifies the offending product and its available stock, and
	// the caller's rollback undoes every earlier line.
	ReserveAndDecrement(ctx context.Context, tx pgx.Tx, lines []Line) error

	// Decrement performs a single decrement in its own transaction, for
	// flows outside checkout. Returns the remaining stock.
	Decrement(ctx context.Context, productID string, quantity int) (int, error)

	// GetStock returns the current stock count. Advisory only.
	GetStock(ctx context.Context, productID string) (int, error)

	// HasSufficientStock reports whether stock covers the quantity at the
	// moment of the read. Advisory only.
	HasSufficientStock(ctx context.Context, productID string, quantity int) (bool, error)
}

// pgGuard implements Guard against PostgreSQL.
type pgGuard struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewGuard creates a PostgreSQL-backed inventory guard.
func NewGuard(pool *pgxpool.Pool, logger zerolog.Logger) Guard {
	return &pgGuard{
		pool:   pool,
		logger: logger.With().Str("component", "inventory_guard").Logger(),
	}
}

// decrementQuery is the whole oversell defence: the stock check and the
// decrement are one statement, so two checkouts racing for the last unit
// serialize on the row and the loser matches zero rows.
const decrementQuery = `
	UPDATE products
	SET stock = stock - $2, updated_at = now()
	WHERE id = $1 AND stock >= $2
`

// ReserveAndDecrement decrements stock for every line inside the caller's
// transaction. Lines are processed in ProductID order so two carts holding
// the same products always lock rows in the same order and cannot deadlock
// each other.
func (g *pgGuard) ReserveAndDecrement(ctx context.Context, tx pgx.Tx, lines []Line) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}

	ordered := make([]Line, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	for _, line := range ordered {
		tag, err := tx.Exec(ctx, decrementQuery, line.ProductID, line.Quantity)
		if err != nil {
			g.logger.Error().
				Err(err).
				Str("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("failed to decrement stock")
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		if tag.RowsAffected() == 0 {
			available, err := g.stockInTx(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			g.logger.Warn().
				Str("product_id", line.ProductID).
				Int("requested", line.Quantity).
				Int("available", available).
				Msg("insufficient stock")
			return &model.InsufficientStockError{
				ProductID: line.ProductID,
				Available: available,
			}
		}
	}

	return nil
}

// Decrement performs a single decrement in its own transaction.
func (g *pgGuard) Decrement(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, model.ErrInvalidQuantity
	}

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				g.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = g.ReserveAndDecrement(ctx, tx, []Line{{ProductID: productID, Quantity: quantity}}); err != nil {
		return 0, err
	}

	var remaining int
	remaining, err = g.stockInTx(ctx, tx, productID)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		g.logger.Error().Err(err).Str("product_id", productID).Msg("failed to commit decrement")
		return 0, fmt.Errorf("failed to commit decrement: %w", err)
	}

	g.logger.Info().
		Str("product_id", productID).
		Int("quantity", quantity).
		Int("remaining", remaining).
		Msg("stock decremented")

	return remaining, nil
}

// GetStock returns the current stock count.
func (g *pgGuard) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := g.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, model.ErrProductNotFound
		}
		g.logger.Error().Err(err).Str("product_id", productID).Msg("failed to read stock")
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return stock, nil
}

// HasSufficientStock reports whether stock covers the quantity at the moment
// of the read.
func (g *pgGuard) HasSufficientStock(ctx context.Context, productID string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, model.ErrInvalidQuantity
	}

	stock, err := g.GetStock(ctx, productID)
	if err != nil {
		return false, err
	}
	return stock >= quantity, nil
}

// stockInTx reads the stock for one product inside tx, mapping a missing row
// to ErrProductNotFound.
func (g *pgGuard) stockInTx(ctx context.Context, tx pgx.Tx, productID string) (int, error) {
	var stock int
	err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, model.ErrProductNotFound
		}
		g.logger.Error().Err(err).Str("product_id", productID).Msg("failed to read stock")
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return stock, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"atelier-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

const userColumns = `
	id, email, name, role, is_suspended, suspended_at, suspended_reason,
	created_at, updated_at
`

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.IsSuspended, &u.SuspendedAt,
		&u.SuspendedReason, &u.CreatedAt, &u.UpdatedAt,
	)
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := scanUser(r.pool.QueryRow(ctx, query, id), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// Suspend marks a user suspended within the provided transaction. The
// update is conditional on the user still being active, so two admins
// racing to suspend the same account cannot both succeed.
func (r *userRepository) Suspend(ctx context.Context, tx pgx.Tx, id, reason string, at time.Time) (*model.User, error) {
	query := `
		UPDATE users
		SET is_suspended = TRUE,
		    suspended_at = $2,
		    suspended_reason = $3,
		    updated_at = now()
		WHERE id = $1 AND is_suspended = FALSE
		RETURNING ` + userColumns

	var u model.User
	err := scanUser(tx.QueryRow(ctx, query, id, at, reason), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, r.suspensionConflict(ctx, tx, id, model.ErrAlreadySuspended)
		}
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to suspend user")
		return nil, fmt.Errorf("failed to suspend user: %w", err)
	}

	r.logger.Debug().Str("user_id", id).Msg("user suspended")

	return &u, nil
}

// Activate clears a user's suspension within the provided transaction. The
// update is conditional on the user still being suspended.
func (r *userRepository) Activate(ctx context.Context, tx pgx.Tx, id string) (*model.User, error) {
	query := `
		UPDATE users
		SET is_suspended = FALSE,
		    suspended_at = NULL,
		    suspended_reason = NULL,
		    updated_at = now()
		WHERE id = $1 AND is_suspended = TRUE
		RETURNING ` + userColumns

	var u model.User
	err := scanUser(tx.QueryRow(ctx, query, id), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, r.suspensionConflict(ctx, tx, id, model.ErrAlreadyActive)
		}
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to activate user")
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	r.logger.Debug().Str("user_id", id).Msg("user activated")

	return &u, nil
}

// suspensionConflict resolves why a conditional suspension update matched no
// row: the user is gone, or its suspension state changed underneath.
func (r *userRepository) suspensionConflict(ctx context.Context, tx pgx.Tx, id string, conflict error) error {
	var suspended bool
	err := tx.QueryRow(ctx, `SELECT is_suspended FROM users WHERE id = $1`, id).Scan(&suspended)
	if err == pgx.ErrNoRows {
		return model.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to re-read suspension state")
		return fmt.Errorf("failed to re-read suspension state: %w", err)
	}
	r.logger.Warn().Str("user_id", id).Bool("is_suspended", suspended).Msg("suspension state changed concurrently")
	return conflict
}

// Delete removes a user within the provided transaction.
func (r *userRepository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	r.logger.Debug().Str("user_id", id).Msg("user deleted")

	return nil
}

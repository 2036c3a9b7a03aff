package repository

import (
	"context"
	"fmt"
	"strings"

	"atelier-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// auditLogRepository implements the AuditLogRepository interface using
// PostgreSQL. The table is append-only; this type deliberately has no
// update or delete method.
type auditLogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAuditLogRepository creates a new PostgreSQL-backed audit log repository.
func NewAuditLogRepository(pool *pgxpool.Pool, logger zerolog.Logger) AuditLogRepository {
	return &auditLogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "audit_log").Logger(),
	}
}

// Insert writes one audit entry within the provided transaction.
func (r *auditLogRepository) Insert(ctx context.Context, tx pgx.Tx, entry *model.AuditLogEntry) error {
	query := `
		INSERT INTO audit_logs (
			id, action, target_type, target_id, target_email, reason, details,
			performed_by, performed_by_email, ip_address, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.Action, entry.TargetType, entry.TargetID, entry.TargetEmail,
		entry.Reason, entry.Details, entry.PerformedBy, entry.PerformedByEmail,
		entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("action", string(entry.Action)).
			Str("target_type", string(entry.TargetType)).
			Str("target_id", entry.TargetID).
			Msg("failed to insert audit log entry")
		return fmt.Errorf("failed to insert audit log entry: %w", err)
	}

	r.logger.Debug().
		Str("action", string(entry.Action)).
		Str("target_type", string(entry.TargetType)).
		Str("target_id", entry.TargetID).
		Msg("audit log entry recorded")

	return nil
}

// escapeLike neutralises LIKE wildcards in a user-supplied filter so an
// email search matches the literal substring, underscores included.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List retrieves entries matching the filter in reverse-chronological order,
// plus the unpaged total.
func (r *auditLogRepository) List(ctx context.Context, filter model.AuditLogFilter) ([]model.AuditLogEntry, int, error) {
	filter.Normalize()

	var conditions []string
	var args []any

	if filter.Action != nil {
		args = append(args, *filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.TargetType != nil {
		args = append(args, *filter.TargetType)
		conditions = append(conditions, fmt.Sprintf("target_type = $%d", len(args)))
	}
	if filter.TargetEmail != "" {
		args = append(args, escapeLike(filter.TargetEmail))
		conditions = append(conditions, fmt.Sprintf("target_email ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if filter.PerformedByEmail != "" {
		args = append(args, escapeLike(filter.PerformedByEmail))
		conditions = append(conditions, fmt.Sprintf("performed_by_email ILIKE '%%' || $%d || '%%'", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM audit_logs` + where

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count audit log entries")
		return nil, 0, fmt.Errorf("failed to count audit log entries: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	listQuery := fmt.Sprintf(`
		SELECT id, action, target_type, target_id, target_email, reason, details,
		       performed_by, performed_by_email, ip_address, user_agent, created_at
		FROM audit_logs%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query audit log entries")
		return nil, 0, fmt.Errorf("failed to query audit log entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditLogEntry
	for rows.Next() {
		var e model.AuditLogEntry
		err := rows.Scan(
			&e.ID, &e.Action, &e.TargetType, &e.TargetID, &e.TargetEmail, &e.Reason,
			&e.Details, &e.PerformedBy, &e.PerformedByEmail, &e.IPAddress, &e.UserAgent,
			&e.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan audit log row")
			return nil, 0, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating audit log rows")
		return nil, 0, fmt.Errorf("error iterating audit log entries: %w", err)
	}

	return entries, total, nil
}

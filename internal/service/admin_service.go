package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier-store/internal/audit"
	"atelier-store/internal/model"
	"atelier-store/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// adminService implements AdminService. Every mutation and its audit entry
// are committed in one transaction: if the audit write fails, the mutation
// is rolled back and the operation reports failure.
type adminService struct {
	tx          repository.TxManager
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	auditRepo   repository.AuditLogRepository
	logger      zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(
	tx repository.TxManager,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditLogRepository,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		tx:          tx,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		auditRepo:   auditRepo,
		logger:      logger.With().Str("service", "admin").Logger(),
	}
}

// requireReason trims and validates the operator-supplied reason.
func requireReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", model.ErrMissingReason
	}
	return trimmed, nil
}

// recordAudit writes one audit entry inside tx, masking the details first.
func (s *adminService) recordAudit(
	ctx context.Context,
	tx pgx.Tx,
	action model.AuditAction,
	targetType model.AuditTargetType,
	targetID string,
	targetEmail *string,
	reason string,
	details map[string]any,
	actor model.Actor,
	meta model.RequestMeta,
) error {
	entry := &model.AuditLogEntry{
		ID:               uuid.New(),
		Action:           action,
		TargetType:       targetType,
		TargetID:         targetID,
		TargetEmail:      targetEmail,
		Reason:           reason,
		Details:          audit.MaskDetails(details),
		PerformedBy:      actor.ID,
		PerformedByEmail: actor.Email,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		CreatedAt:        time.Now(),
	}
	return s.auditRepo.Insert(ctx, tx, entry)
}

// rollbackOnErr is the shared deferred-rollback helper for the façade's
// transactional operations.
func (s *adminService) rollbackOnErr(ctx context.Context, tx pgx.Tx, err *error) {
	if *err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}
}

// SuspendUser suspends a user account.
func (s *adminService) SuspendUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) (*model.User, error) {
	reason, err := requireReason(reason)
	if err != nil {
		return nil, err
	}

	if userID == actor.ID {
		s.logger.Warn().Str("actor_id", actor.ID).Msg("actor attempted to suspend own account")
		return nil, model.ErrSelfActionForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to suspend user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	if user.IsSuspended {
		return nil, model.ErrAlreadySuspended
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suspend user: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	suspended, err := s.userRepo.Suspend(ctx, tx, userID, reason, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to suspend user: %w", err)
	}

	err = s.recordAudit(ctx, tx, model.AuditActionSuspend, model.AuditTargetUser,
		user.ID, &user.Email, reason,
		map[string]any{
			"suspendedUser": map[string]any{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
			},
		},
		actor, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to suspend user: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("actor_id", actor.ID).
		Msg("user suspended")

	return suspended, nil
}

// ActivateUser lifts a suspension.
func (s *adminService) ActivateUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) (*model.User, error) {
	reason, err := requireReason(reason)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	if !user.IsSuspended {
		return nil, model.ErrAlreadyActive
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	activated, err := s.userRepo.Activate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	err = s.recordAudit(ctx, tx, model.AuditActionActivate, model.AuditTargetUser,
		user.ID, &user.Email, reason,
		map[string]any{
			"activatedUser": map[string]any{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
			},
			"previousSuspension": map[string]any{
				"suspendedAt":     user.SuspendedAt,
				"suspendedReason": user.SuspendedReason,
			},
		},
		actor, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("actor_id", actor.ID).
		Msg("user activated")

	return activated, nil
}

// DeleteUser removes a user account.
func (s *adminService) DeleteUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}

	if userID == actor.ID {
		s.logger.Warn().Str("actor_id", actor.ID).Msg("actor attempted to delete own account")
		return model.ErrSelfActionForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if user == nil {
		return model.ErrUserNotFound
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	if err = s.userRepo.Delete(ctx, tx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	err = s.recordAudit(ctx, tx, model.AuditActionDelete, model.AuditTargetUser,
		user.ID, &user.Email, reason,
		map[string]any{
			"deletedUser": map[string]any{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
				"role":  user.Role,
			},
		},
		actor, meta)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("actor_id", actor.ID).
		Msg("user deleted")

	return nil
}

// UpdateOrderStatus moves an order through its lifecycle.
func (s *adminService) UpdateOrderStatus(ctx context.Context, actor model.Actor, orderNumber string, status model.OrderStatus, reason string, meta model.RequestMeta) (*model.OrderResponse, error) {
	reason, err := requireReason(reason)
	if err != nil {
		return nil, err
	}

	if !model.ValidOrderStatus(status) {
		return nil, model.ErrInvalidStatus
	}

	order, _, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(status) {
		s.logger.Warn().
			Str("order_number", orderNumber).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("illegal status transition rejected")
		return nil, model.ErrInvalidTransition
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	if err = s.orderRepo.UpdateStatus(ctx, tx, orderNumber, order.Status, status); err != nil {
		if errors.Is(err, model.ErrInvalidTransition) || errors.Is(err, model.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	err = s.recordAudit(ctx, tx, model.AuditActionUpdate, model.AuditTargetOrder,
		order.ID.String(), &order.Email, reason,
		map[string]any{
			"before":      map[string]any{"status": string(order.Status)},
			"after":       map[string]any{"status": string(status)},
			"orderNumber": order.OrderNumber,
		},
		actor, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("from", string(order.Status)).
		Str("to", string(status)).
		Str("actor_id", actor.ID).
		Msg("order status updated")

	updated, items, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	return &model.OrderResponse{
		OrderNumber: updated.OrderNumber,
		Order:       *updated,
		Items:       items,
	}, nil
}

// UpdateProduct applies an admin catalog edit.
func (s *adminService) UpdateProduct(ctx context.Context, actor model.Actor, productID string, changes model.ProductUpdate, reason string, meta model.RequestMeta) (*model.Product, error) {
	reason, err := requireReason(reason)
	if err != nil {
		return nil, err
	}

	if changes.Stock != nil && *changes.Stock < 0 {
		return nil, model.ErrInvalidQuantity
	}

	before, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if before == nil {
		return nil, model.ErrProductNotFound
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	after, err := s.productRepo.Update(ctx, tx, productID, changes)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if after == nil {
		return nil, model.ErrProductNotFound
	}

	err = s.recordAudit(ctx, tx, model.AuditActionUpdate, model.AuditTargetProduct,
		before.ID, nil, reason,
		map[string]any{
			"before": map[string]any{
				"name":  before.Name,
				"price": before.Price,
				"stock": before.Stock,
			},
			"after": map[string]any{
				"name":  after.Name,
				"price": after.Price,
				"stock": after.Stock,
			},
		},
		actor, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID).
		Str("actor_id", actor.ID).
		Msg("product updated")

	return after, nil
}

// DeleteProduct removes a product from the catalog. Historical order items
// keep their snapshots; only the catalog row goes away.
func (s *adminService) DeleteProduct(ctx context.Context, actor model.Actor, productID, reason string, meta model.RequestMeta) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	if err = s.productRepo.Delete(ctx, tx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	err = s.recordAudit(ctx, tx, model.AuditActionDelete, model.AuditTargetProduct,
		product.ID, nil, reason,
		map[string]any{
			"deletedProduct": map[string]any{
				"id":    product.ID,
				"name":  product.Name,
				"price": product.Price,
				"stock": product.Stock,
			},
		},
		actor, meta)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID).
		Str("actor_id", actor.ID).
		Msg("product deleted")

	return nil
}

// ListAuditLogs retrieves audit entries newest first.
func (s *adminService) ListAuditLogs(ctx context.Context, filter model.AuditLogFilter) (*model.AuditLogPage, error) {
	filter.Normalize()

	entries, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list audit logs")
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	if entries == nil {
		entries = []model.AuditLogEntry{}
	}

	return &model.AuditLogPage{
		Logs:   entries,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

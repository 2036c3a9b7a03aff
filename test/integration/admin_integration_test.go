package integration

import (
	"context"
	"testing"
	"time"

	"atelier-store/internal/inventory"
	"atelier-store/internal/model"
	"atelier-store/internal/repository"
	"atelier-store/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminActor = model.Actor{ID: "admin-1", Email: "admin@example.com"}
	noMeta     = model.RequestMeta{}
)

func newAdminService(testDB *TestDB) service.AdminService {
	logger := zerolog.Nop()
	return service.NewAdminService(
		repository.NewTxManager(testDB.Pool, logger),
		repository.NewUserRepository(testDB.Pool, logger),
		repository.NewOrderRepository(testDB.Pool, logger),
		repository.NewProductRepository(testDB.Pool, logger),
		repository.NewAuditLogRepository(testDB.Pool, logger),
		logger,
	)
}

func TestAdminService_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	admin := newAdminService(testDB)
	ctx := context.Background()

	auditCount := func() int {
		var n int
		require.NoError(t, testDB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs").Scan(&n))
		return n
	}

	t.Run("suspend writes user row and audit entry together", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUsers(t, testDB.Pool)

		user, err := admin.SuspendUser(ctx, adminActor, "cust-1", "refund abuse", noMeta)
		require.NoError(t, err)
		assert.True(t, user.IsSuspended)
		require.NotNil(t, user.SuspendedReason)
		assert.Equal(t, "refund abuse", *user.SuspendedReason)

		page, err := admin.ListAuditLogs(ctx, model.AuditLogFilter{})
		require.NoError(t, err)
		require.Len(t, page.Logs, 1)

		entry := page.Logs[0]
		assert.Equal(t, model.AuditActionSuspend, entry.Action)
		assert.Equal(t, model.AuditTargetUser, entry.TargetType)
		assert.Equal(t, "cust-1", entry.TargetID)
		require.NotNil(t, entry.TargetEmail)
		assert.Equal(t, "ichiro@example.com", *entry.TargetEmail)
		assert.Equal(t, adminActor.ID, entry.PerformedBy)
		assert.Equal(t, "refund abuse", entry.Reason)
	})

	t.Run("failed suspension writes no audit entry", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUsers(t, testDB.Pool)

		_, err := admin.SuspendUser(ctx, adminActor, "ghost", "cleanup", noMeta)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		assert.Equal(t, 0, auditCount())

		_, err = admin.SuspendUser(ctx, adminActor, adminActor.ID, "cleanup", noMeta)
		assert.ErrorIs(t, err, model.ErrSelfActionForbidden)
		assert.Equal(t, 0, auditCount())

		_, err = admin.SuspendUser(ctx, adminActor, "cust-1", "fraud report", noMeta)
		require.NoError(t, err)
		_, err = admin.SuspendUser(ctx, adminActor, "cust-1", "fraud report again", noMeta)
		assert.ErrorIs(t, err, model.ErrAlreadySuspended)
		assert.Equal(t, 1, auditCount())
	})

	t.Run("audit entry survives deletion of its target", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUsers(t, testDB.Pool)

		require.NoError(t, admin.DeleteUser(ctx, adminActor, "cust-2", "account closure request", noMeta))

		var userCount int
		require.NoError(t, testDB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE id = 'cust-2'").Scan(&userCount))
		assert.Equal(t, 0, userCount)

		page, err := admin.ListAuditLogs(ctx, model.AuditLogFilter{})
		require.NoError(t, err)
		require.Len(t, page.Logs, 1)
		assert.Equal(t, model.AuditActionDelete, page.Logs[0].Action)
		assert.Equal(t, "cust-2", page.Logs[0].TargetID)
		// Snapshot keeps identifying the deleted user
		assert.Equal(t, "hanako@example.com", *page.Logs[0].TargetEmail)
	})

	t.Run("order status transitions are enforced", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)
		SeedUsers(t, testDB.Pool)

		orderSvc := newOrderService(testDB)
		placed, err := orderSvc.PlaceOrder(ctx, orderRequest(
			model.OrderItemRequest{ProductID: "P001", Quantity: 1},
		))
		require.NoError(t, err)

		// pending cannot ship directly
		_, err = admin.UpdateOrderStatus(ctx, adminActor, placed.OrderNumber, model.OrderStatusShipped, "premature", noMeta)
		assert.ErrorIs(t, err, model.ErrInvalidTransition)

		resp, err := admin.UpdateOrderStatus(ctx, adminActor, placed.OrderNumber, model.OrderStatusConfirmed, "payment received", noMeta)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, resp.Order.Status)

		resp, err = admin.UpdateOrderStatus(ctx, adminActor, placed.OrderNumber, model.OrderStatusShipped, "handed to carrier", noMeta)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusShipped, resp.Order.Status)

		resp, err = admin.UpdateOrderStatus(ctx, adminActor, placed.OrderNumber, model.OrderStatusCompleted, "delivered", noMeta)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCompleted, resp.Order.Status)

		// completed is terminal
		_, err = admin.UpdateOrderStatus(ctx, adminActor, placed.OrderNumber, model.OrderStatusCancelled, "too late", noMeta)
		assert.ErrorIs(t, err, model.ErrInvalidTransition)

		// One audit entry per successful transition
		page, err := admin.ListAuditLogs(ctx, model.AuditLogFilter{})
		require.NoError(t, err)
		assert.Len(t, page.Logs, 3)
	})

	t.Run("product update masks nothing but records the diff", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		newStock := 50
		product, err := admin.UpdateProduct(ctx, adminActor, "P001", model.ProductUpdate{Stock: &newStock}, "restock", noMeta)
		require.NoError(t, err)
		assert.Equal(t, 50, product.Stock)

		page, err := admin.ListAuditLogs(ctx, model.AuditLogFilter{})
		require.NoError(t, err)
		require.Len(t, page.Logs, 1)
		assert.Equal(t, model.AuditTargetProduct, page.Logs[0].TargetType)
		require.NotNil(t, page.Logs[0].Details)
	})

	t.Run("audit listing filters and paginates", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUsers(t, testDB.Pool)

		_, err := admin.SuspendUser(ctx, adminActor, "cust-1", "first strike", noMeta)
		require.NoError(t, err)
		_, err = admin.ActivateUser(ctx, adminActor, "cust-1", "appeal accepted", noMeta)
		require.NoError(t, err)
		require.NoError(t, admin.DeleteUser(ctx, adminActor, "cust-2", "closure", noMeta))

		suspend := model.AuditActionSuspend
		page, err := admin.ListAuditLogs(ctx, model.AuditLogFilter{Action: &suspend})
		require.NoError(t, err)
		require.Len(t, page.Logs, 1)
		assert.Equal(t, "first strike", page.Logs[0].Reason)

		// Email filter matches substrings case-insensitively
		page, err = admin.ListAuditLogs(ctx, model.AuditLogFilter{TargetEmail: "ICHIRO"})
		require.NoError(t, err)
		assert.Len(t, page.Logs, 2)

		// Pagination clamps and reports the unpaged total
		page, err = admin.ListAuditLogs(ctx, model.AuditLogFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page.Logs, 2)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.Limit)

		page, err = admin.ListAuditLogs(ctx, model.AuditLogFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, page.Logs, 1)
		assert.Equal(t, 3, page.Total)
	})
}

func TestRepositoryConditionalWrites_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("status update with stale expectation is rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		placed, err := newOrderService(testDB).PlaceOrder(ctx, orderRequest(
			model.OrderItemRequest{ProductID: "P001", Quantity: 1},
		))
		require.NoError(t, err)

		// The order is pending; a write that still believes it is
		// confirmed must match nothing and report the conflict.
		orders := repository.NewOrderRepository(testDB.Pool, logger)
		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		err = orders.UpdateStatus(ctx, tx, placed.OrderNumber, model.OrderStatusConfirmed, model.OrderStatusShipped)
		assert.ErrorIs(t, err, model.ErrInvalidTransition)
		require.NoError(t, tx.Rollback(ctx))

		var status string
		require.NoError(t, testDB.Pool.QueryRow(ctx,
			"SELECT status FROM orders WHERE order_number = $1", placed.OrderNumber).Scan(&status))
		assert.Equal(t, "pending", status)
	})

	t.Run("second suspension loses cleanly", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUsers(t, testDB.Pool)

		users := repository.NewUserRepository(testDB.Pool, logger)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		_, err = users.Suspend(ctx, tx, "cust-1", "first strike", time.Now())
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		tx, err = testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		_, err = users.Suspend(ctx, tx, "cust-1", "second strike", time.Now())
		assert.ErrorIs(t, err, model.ErrAlreadySuspended)
		require.NoError(t, tx.Rollback(ctx))

		tx, err = testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		_, err = users.Suspend(ctx, tx, "ghost", "cleanup", time.Now())
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		require.NoError(t, tx.Rollback(ctx))

		var reason string
		require.NoError(t, testDB.Pool.QueryRow(ctx,
			"SELECT suspended_reason FROM users WHERE id = 'cust-1'").Scan(&reason))
		assert.Equal(t, "first strike", reason)
	})

	t.Run("activation of an active user loses cleanly", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedUsers(t, testDB.Pool)

		users := repository.NewUserRepository(testDB.Pool, logger)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		_, err = users.Activate(ctx, tx, "cust-1")
		assert.ErrorIs(t, err, model.ErrAlreadyActive)
		require.NoError(t, tx.Rollback(ctx))
	})

	t.Run("audit email filter matches underscores literally", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		audits := repository.NewAuditLogRepository(testDB.Pool, logger)
		insert := func(targetEmail string) {
			email := targetEmail
			tx, err := testDB.Pool.Begin(ctx)
			require.NoError(t, err)
			err = audits.Insert(ctx, tx, &model.AuditLogEntry{
				ID:               uuid.New(),
				Action:           model.AuditActionSuspend,
				TargetType:       model.AuditTargetUser,
				TargetID:         "u-" + targetEmail,
				TargetEmail:      &email,
				Reason:           "test",
				PerformedBy:      adminActor.ID,
				PerformedByEmail: adminActor.Email,
				CreatedAt:        time.Now(),
			})
			require.NoError(t, err)
			require.NoError(t, tx.Commit(ctx))
		}
		insert("jane_doe@example.com")
		insert("janexdoe@example.com")

		entries, total, err := audits.List(ctx, model.AuditLogFilter{TargetEmail: "jane_doe"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, entries, 1)
		assert.Equal(t, "jane_doe@example.com", *entries[0].TargetEmail)

		entries, total, err = audits.List(ctx, model.AuditLogFilter{TargetEmail: "100%"})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, entries)
	})
}

func TestInventoryGuardWithinTransaction_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	guard := inventory.NewGuard(testDB.Pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("rollback restores every decremented line", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)

		err = guard.ReserveAndDecrement(ctx, tx, []inventory.Line{
			{ProductID: "P001", Quantity: 5},
			{ProductID: "P002", Quantity: 2},
		})
		require.NoError(t, err)
		require.NoError(t, tx.Rollback(ctx))

		var stock int
		require.NoError(t, testDB.Pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = 'P001'").Scan(&stock))
		assert.Equal(t, 10, stock)
		require.NoError(t, testDB.Pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = 'P002'").Scan(&stock))
		assert.Equal(t, 5, stock)
	})
}

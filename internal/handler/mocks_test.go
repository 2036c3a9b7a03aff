package handler

import (
	"context"

	"atelier-store/internal/inventory"
	"atelier-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.OrderResponse, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID *string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) SuspendUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) (*model.User, error) {
	args := m.Called(ctx, actor, userID, reason, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAdminService) ActivateUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) (*model.User, error) {
	args := m.Called(ctx, actor, userID, reason, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, actor model.Actor, userID, reason string, meta model.RequestMeta) error {
	args := m.Called(ctx, actor, userID, reason, meta)
	return args.Error(0)
}

func (m *MockAdminService) UpdateOrderStatus(ctx context.Context, actor model.Actor, orderNumber string, status model.OrderStatus, reason string, meta model.RequestMeta) (*model.OrderResponse, error) {
	args := m.Called(ctx, actor, orderNumber, status, reason, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockAdminService) UpdateProduct(ctx context.Context, actor model.Actor, productID string, changes model.ProductUpdate, reason string, meta model.RequestMeta) (*model.Product, error) {
	args := m.Called(ctx, actor, productID, changes, reason, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockAdminService) DeleteProduct(ctx context.Context, actor model.Actor, productID, reason string, meta model.RequestMeta) error {
	args := m.Called(ctx, actor, productID, reason, meta)
	return args.Error(0)
}

func (m *MockAdminService) ListAuditLogs(ctx context.Context, filter model.AuditLogFilter) (*model.AuditLogPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditLogPage), args.Error(1)
}

type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) ReserveAndDecrement(ctx context.Context, tx pgx.Tx, lines []inventory.Line) error {
	args := m.Called(ctx, tx, lines)
	return args.Error(0)
}

func (m *MockGuard) Decrement(ctx context.Context, productID string, quantity int) (int, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockGuard) GetStock(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockGuard) HasSufficientStock(ctx context.Context, productID string, quantity int) (bool, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Bool(0), args.Error(1)
}

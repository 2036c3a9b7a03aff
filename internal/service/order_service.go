package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atelier-store/internal/config"
	"atelier-store/internal/inventory"
	"atelier-store/internal/model"
	"atelier-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	tx          repository.TxManager
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	guard       inventory.Guard
	shipping    config.ShippingConfig
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	tx repository.TxManager,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	guard inventory.Guard,
	shipping config.ShippingConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		tx:          tx,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		guard:       guard,
		shipping:    shipping,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder validates the cart and persists the order, its items, and the
// stock decrements in one transaction. If any line's stock cannot be
// reserved the rollback removes the order and every earlier decrement, so
// no partial checkout is ever observable.
func (s *orderService) PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve products")
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	productByID := make(map[string]model.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	for _, item := range req.Items {
		if _, ok := productByID[item.ProductID]; !ok {
			s.logger.Warn().Str("product_id", item.ProductID).Msg("unknown product in cart")
			return nil, model.ErrProductNotFound
		}
	}

	// Subtotal comes from the snapshot prices being stored on the line
	// items, never from whatever the catalog says later.
	subtotal := 0
	for _, item := range req.Items {
		unit, err := model.ParsePrice(productByID[item.ProductID].Price)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("product_id", item.ProductID).
				Msg("catalog price is unparseable")
			return nil, fmt.Errorf("failed to compute order total: %w", err)
		}
		subtotal += unit * item.Quantity
	}

	shippingFee := s.shipping.FlatFee
	if subtotal >= s.shipping.FreeThreshold {
		shippingFee = 0
	}

	tx, err := s.tx.Begin(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     generateOrderNumber(now),
		Status:          model.OrderStatusPending,
		Total:           subtotal + shippingFee,
		ShippingFee:     shippingFee,
		PaymentMethod:   req.Payment.Method,
		CardLast4:       req.Payment.CardLast4,
		CardExpiryMonth: req.Payment.CardExpiryMonth,
		CardExpiryYear:  req.Payment.CardExpiryYear,
		UserID:          req.UserID,
		LastName:        req.Shipping.LastName,
		FirstName:       req.Shipping.FirstName,
		LastNameKana:    req.Shipping.LastNameKana,
		FirstNameKana:   req.Shipping.FirstNameKana,
		PostalCode:      req.Shipping.PostalCode,
		Prefecture:      req.Shipping.Prefecture,
		City:            req.Shipping.City,
		Address:         req.Shipping.Address,
		Building:        req.Shipping.Building,
		Phone:           req.Shipping.Phone,
		Email:           req.Shipping.Email,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create order")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	lines := make([]inventory.Line, len(req.Items))
	for i, item := range req.Items {
		product := productByID[item.ProductID]
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Name:      product.Name,
		}
		lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = s.guard.ReserveAndDecrement(ctx, tx, lines); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("stock reservation failed, rolling back order")
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Int("item_count", len(orderItems)).
		Int("total", order.Total).
		Msg("order placed successfully")

	return &model.OrderResponse{
		OrderNumber: order.OrderNumber,
		Order:       *order,
		Items:       orderItems,
	}, nil
}

// GetByOrderNumber retrieves an order with its item snapshots.
func (s *orderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
		return nil, nil
	}

	return &model.OrderResponse{
		OrderNumber: order.OrderNumber,
		Order:       *order,
		Items:       items,
	}, nil
}

// ListOrders retrieves orders newest first.
func (s *orderService) ListOrders(ctx context.Context, userID *string) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if len(req.Items) == 0 {
		return model.ErrEmptyCart
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return fmt.Errorf("item %d: product ID is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

// generateOrderNumber builds a human-readable order number. The millisecond
// timestamp keeps numbers roughly sortable; the random suffix keeps two
// checkouts in the same millisecond from colliding.
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// statusTransitions encodes the admin-driven lifecycle. completed and
// cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// CanTransitionTo reports whether next is a legal transition from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order represents a placed order. Orders are never deleted; after creation
// only the status (and updated_at) changes, and only through the admin
// status-update operation.
type Order struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	OrderNumber     string      `json:"orderNumber" db:"order_number"`
	Status          OrderStatus `json:"status" db:"status"`
	Total           int         `json:"total" db:"total"`
	ShippingFee     int         `json:"shippingFee" db:"shipping_fee"`
	PaymentMethod   string      `json:"paymentMethod" db:"payment_method"`
	CardLast4       *string     `json:"cardLast4,omitempty" db:"card_last4"`
	CardExpiryMonth *string     `json:"cardExpiryMonth,omitempty" db:"card_expiry_month"`
	CardExpiryYear  *string     `json:"cardExpiryYear,omitempty" db:"card_expiry_year"`
	UserID          *string     `json:"userId,omitempty" db:"user_id"`
	LastName        string      `json:"lastName" db:"last_name"`
	FirstName       string      `json:"firstName" db:"first_name"`
	LastNameKana    string      `json:"lastNameKana" db:"last_name_kana"`
	FirstNameKana   string      `json:"firstNameKana" db:"first_name_kana"`
	PostalCode      string      `json:"postalCode" db:"postal_code"`
	Prefecture      string      `json:"prefecture" db:"prefecture"`
	City            string      `json:"city" db:"city"`
	Address         string      `json:"address" db:"address"`
	Building        *string     `json:"building,omitempty" db:"building"`
	Phone           string      `json:"phone" db:"phone"`
	Email           string      `json:"email" db:"email"`
	Notes           *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. Name and price are
// snapshots taken at purchase time; later catalog edits never touch them.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     string    `json:"price" db:"price"`
	Name      string    `json:"name" db:"name"`
}

// ShippingInfo is the delivery address block of an order request.
type ShippingInfo struct {
	LastName      string  `json:"lastName"`
	FirstName     string  `json:"firstName"`
	LastNameKana  string  `json:"lastNameKana"`
	FirstNameKana string  `json:"firstNameKana"`
	PostalCode    string  `json:"postalCode"`
	Prefecture    string  `json:"prefecture"`
	City          string  `json:"city"`
	Address       string  `json:"address"`
	Building      *string `json:"building,omitempty"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
}

// PaymentInfo is the payment block of an order request. Card data arrives
// already masked; the core never sees a full card number.
type PaymentInfo struct {
	Method          string  `json:"method"`
	CardLast4       *string `json:"cardLast4,omitempty"`
	CardExpiryMonth *string `json:"cardExpiryMonth,omitempty"`
	CardExpiryYear  *string `json:"cardExpiryYear,omitempty"`
}

// OrderRequest represents the request payload for placing an order.
type OrderRequest struct {
	Items    []OrderItemRequest `json:"items"`
	Shipping ShippingInfo       `json:"shipping"`
	Payment  PaymentInfo        `json:"payment"`
	Notes    *string            `json:"notes,omitempty"`
	UserID   *string            `json:"userId,omitempty"`
}

// OrderItemRequest represents a single line in an order request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderResponse represents the response payload for a placed or fetched
// order, with line-item snapshots for receipt rendering.
type OrderResponse struct {
	OrderNumber string      `json:"orderNumber"`
	Order       Order       `json:"order"`
	Items       []OrderItem `json:"items"`
}

// StatusUpdateRequest is the payload of an admin status change.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
	Reason string      `json:"reason"`
}

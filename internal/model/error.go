package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeEmptyCart               = "EMPTY_CART"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound            = "USER_NOT_FOUND"
	ErrCodeMissingReason           = "MISSING_REASON"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeInvalidTransition       = "INVALID_STATUS_TRANSITION"
	ErrCodeAlreadySuspended        = "ALREADY_SUSPENDED"
	ErrCodeAlreadyActive           = "ALREADY_ACTIVE"
	ErrCodeSelfActionForbidden     = "SELF_ACTION_FORBIDDEN"
	ErrCodeInvalidFilter           = "INVALID_FILTER"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Order must contain at least one item")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound        = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrMissingReason       = NewDomainError(ErrCodeMissingReason, "A reason is required for this operation")
	ErrInvalidStatus       = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Order status transition is not allowed")
	ErrAlreadySuspended    = NewDomainError(ErrCodeAlreadySuspended, "User is already suspended")
	ErrAlreadyActive       = NewDomainError(ErrCodeAlreadyActive, "User is not suspended")
	ErrSelfActionForbidden = NewDomainError(ErrCodeSelfActionForbidden, "You cannot perform this action on your own account")
)

// InsufficientStockError reports a failed stock reservation, identifying the
// offending product and how many units were actually available so the
// presentation layer can re-render its quantity steppers.
type InsufficientStockError struct {
	ProductID string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d remaining", e.ProductID, e.Available)
}

package model

import "time"

// Product represents a catalog product. The core only reads name/price
// snapshots and mutates the stock count; everything else about a product
// belongs to the catalog screens.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     string    `json:"price" db:"price"` // display-formatted, e.g. "¥28,000"
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// StockLevel is the advisory stock reading returned to the presentation
// layer. It may be stale the moment it is read; the authoritative check
// happens inside the conditional decrement.
type StockLevel struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

// ProductUpdate carries the editable product fields for an admin edit.
// Nil fields are left unchanged.
type ProductUpdate struct {
	Name  *string `json:"name,omitempty"`
	Price *string `json:"price,omitempty"`
	Stock *int    `json:"stock,omitempty"`
}

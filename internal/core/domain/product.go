// internal/core/domain/product.go
package domain

import (
	"fmt"
	"time"
)

// Product is a row in the product ledger. Price and CostPrice are integer
// minor currency units (cents). Stock may be driven negative by an invoice
// reversal, but never by a sale.
type Product struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Barcode      string     `json:"barcode,omitempty"`
	Price        int64      `json:"price"`
	CostPrice    int64      `json:"cost_price"`
	Stock        int        `json:"stock"`
	ReorderLevel int        `json:"reorder_level"`
	SupplierID   *int64     `json:"supplier_id,omitempty"`
	CategoryID   *int64     `json:"category_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Validate performs domain validation on a catalog product.
func (p *Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if p.Price < 0 {
		return &ValidationError{Field: "price", Reason: "price cannot be negative"}
	}
	if p.CostPrice < 0 {
		return &ValidationError{Field: "cost_price", Reason: "cost_price cannot be negative"}
	}
	return nil
}

// BelowReorderLevel reports whether the product's stock is at or under its
// reorder threshold. Products without a configured threshold never alert.
func (p *Product) BelowReorderLevel() bool {
	return p.ReorderLevel > 0 && p.Stock <= p.ReorderLevel
}

func (p *Product) String() string {
	return fmt.Sprintf("product %d (%s)", p.ID, p.Name)
}

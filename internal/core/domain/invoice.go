// internal/core/domain/invoice.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseInvoice is a committed supplier invoice header.
type PurchaseInvoice struct {
	ID            int64                 `json:"id"`
	SupplierID    int64                 `json:"supplier_id"`
	InvoiceNumber string                `json:"invoice_number"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	TotalAmount   int64                 `json:"total_amount"`
	IsPaid        bool                  `json:"is_paid"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Items         []PurchaseInvoiceItem `json:"items,omitempty"`
}

// PurchaseInvoiceItem records one invoice line together with the cost the
// product carried before this invoice was applied. PreviousCostPrice is an
// audit trace only; reversal does not restore it.
type PurchaseInvoiceItem struct {
	InvoiceID           int64           `json:"invoice_id"`
	ProductID           int64           `json:"product_id"`
	PreviousCostPrice   int64           `json:"previous_cost_price"`
	NewCostPrice        int64           `json:"new_cost_price"`
	MarginPercentage    decimal.Decimal `json:"margin_percentage"`
	CalculatedSalePrice int64           `json:"calculated_sale_price"`
	Quantity            int             `json:"quantity"`
	CreatedAt           time.Time       `json:"created_at"`
}

// InvoiceItemKind discriminates the two invoice item variants.
type InvoiceItemKind string

const (
	// ItemExistingProduct references a product already in the ledger.
	ItemExistingProduct InvoiceItemKind = "existing"
	// ItemNewProduct creates the product as part of the invoice.
	ItemNewProduct InvoiceItemKind = "new"
)

// InvoiceItemInput is the wire shape of one invoice item. Callers submit
// either a product_id (existing product) or a barcode+name pair (new
// product); Normalize resolves the variant once at the boundary.
type InvoiceItemInput struct {
	ProductID    *int64 `json:"product_id,omitempty"`
	Barcode      string `json:"barcode,omitempty"`
	Name         string `json:"name,omitempty"`
	CostPriceNet int64  `json:"cost_price_net"`
	NewSalePrice int64  `json:"new_sale_price"`
	Quantity     int    `json:"quantity"`
}

// NormalizedInvoiceItem is the internal representation after variant
// resolution and validation.
type NormalizedInvoiceItem struct {
	Kind         InvoiceItemKind
	ProductID    int64 // zero for new products until insertion
	Barcode      string
	Name         string
	CostPriceNet int64
	NewSalePrice int64
	Quantity     int
}

// Label identifies the item in error messages without requiring the caller
// to re-derive which line failed.
func (in *InvoiceItemInput) Label() string {
	if in.ProductID != nil {
		return "existing product"
	}
	if in.Name != "" {
		return in.Name
	}
	return in.Barcode
}

// Normalize validates the item and resolves its variant. The whole invoice
// is rejected on the first invalid item; the caller wraps the returned error
// with the item's position.
func (in *InvoiceItemInput) Normalize() (NormalizedInvoiceItem, error) {
	if in.CostPriceNet <= 0 {
		return NormalizedInvoiceItem{}, &ValidationError{Field: "cost_price_net", Reason: "must be strictly positive"}
	}
	if in.NewSalePrice <= 0 {
		return NormalizedInvoiceItem{}, &ValidationError{Field: "new_sale_price", Reason: "must be strictly positive"}
	}
	if in.Quantity <= 0 {
		return NormalizedInvoiceItem{}, &ValidationError{Field: "quantity", Reason: "must be strictly positive"}
	}

	if in.ProductID != nil {
		if *in.ProductID <= 0 {
			return NormalizedInvoiceItem{}, &ValidationError{Field: "product_id", Reason: "must be a positive id"}
		}
		return NormalizedInvoiceItem{
			Kind:         ItemExistingProduct,
			ProductID:    *in.ProductID,
			CostPriceNet: in.CostPriceNet,
			NewSalePrice: in.NewSalePrice,
			Quantity:     in.Quantity,
		}, nil
	}

	if in.Name == "" {
		return NormalizedInvoiceItem{}, &ValidationError{Field: "name", Reason: "required for new products"}
	}
	return NormalizedInvoiceItem{
		Kind:         ItemNewProduct,
		Barcode:      in.Barcode,
		Name:         in.Name,
		CostPriceNet: in.CostPriceNet,
		NewSalePrice: in.NewSalePrice,
		Quantity:     in.Quantity,
	}, nil
}

// MarginPercentage computes (sale - cost) / sale * 100 rounded to two
// decimal places. Both prices are minor currency units and must be strictly
// positive; invoice validation guarantees that before this runs.
func MarginPercentage(costPrice, salePrice int64) decimal.Decimal {
	sale := decimal.NewFromInt(salePrice)
	cost := decimal.NewFromInt(costPrice)
	return sale.Sub(cost).Div(sale).Mul(decimal.NewFromInt(100)).Round(2)
}

// internal/core/domain/sale.go
package domain

import (
	"time"
)

// PaymentMethod represents how a sale was settled
type PaymentMethod string

// Payment method constants
const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentVoucher  PaymentMethod = "voucher"
)

// CartLine is a single requested sale line as submitted by the caller.
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Sale is a committed sale header. All amounts are minor currency units.
// Sales are immutable once committed; there is no update path.
type Sale struct {
	ID            int64         `json:"id"`
	Total         int64         `json:"total"`
	Paid          int64         `json:"paid"`
	ChangeDue     int64         `json:"change_due"`
	Method        PaymentMethod `json:"method"`
	ReceiptNumber string        `json:"receipt_number,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	Items         []SaleItem    `json:"items,omitempty"`
}

// SaleItem records the price of one product at the moment of sale.
type SaleItem struct {
	SaleID    int64 `json:"sale_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Subtotal  int64 `json:"subtotal"`
}

// NormalizeQuantity floors a cart quantity to at least one unit. Registers
// in the field submit zero and negative quantities and expect them to mean
// one; the returned flag reports when flooring happened so the caller can
// log it rather than silently absorb it.
func NormalizeQuantity(qty int) (int, bool) {
	if qty < 1 {
		return 1, true
	}
	return qty, false
}

// ChangeDue computes the change owed for a paid amount against a total,
// never negative.
func ChangeDue(paid, total int64) int64 {
	if paid > total {
		return paid - total
	}
	return 0
}

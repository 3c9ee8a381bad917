// internal/core/ports/settlement_service.go
package ports

import (
	"context"
	"time"

	"github.com/ovalles/posledger-be/internal/core/domain"
)

// SettlementService is the application port exposed to the web layer. Each
// operation is atomic: it either commits all of its writes or none of them,
// and any mid-operation failure surfaces as a typed domain error after the
// rollback has already happened.
type SettlementService interface {
	FinalizeSale(ctx context.Context, req SaleRequest) (*SaleReceipt, error)
	ProcessPurchaseInvoice(ctx context.Context, req PurchaseInvoiceRequest) (*InvoiceReceipt, error)
	ReversePurchaseInvoice(ctx context.Context, invoiceID int64) (*ReversalResult, error)
}

// SaleRequest carries one cart through settlement. Paid is minor currency
// units.
type SaleRequest struct {
	Items  []domain.CartLine    `json:"items"`
	Paid   int64                `json:"paid"`
	Method domain.PaymentMethod `json:"method"`
}

// SaleReceipt is the committed outcome of a sale.
type SaleReceipt struct {
	SaleID        int64  `json:"sale_id"`
	Total         int64  `json:"total"`
	Paid          int64  `json:"paid"`
	Change        int64  `json:"change"`
	ReceiptNumber string `json:"receipt_number"`
}

// PurchaseInvoiceRequest carries a supplier invoice through ingestion.
type PurchaseInvoiceRequest struct {
	SupplierID    int64                     `json:"supplier_id"`
	InvoiceNumber string                    `json:"invoice_number"`
	InvoiceDate   time.Time                 `json:"invoice_date"`
	TotalAmount   int64                     `json:"total_amount"`
	Items         []domain.InvoiceItemInput `json:"items"`
}

// InvoiceReceipt is the committed outcome of invoice ingestion.
type InvoiceReceipt struct {
	InvoiceID int64 `json:"invoice_id"`
}

// ReversalResult reports a committed invoice reversal. Warnings carry
// non-fatal anomalies, e.g. products whose stock went negative because units
// from the invoice were already resold.
type ReversalResult struct {
	Reverted bool     `json:"reverted"`
	Warnings []string `json:"warnings,omitempty"`
}

// internal/core/ports/ledger_repository.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ovalles/posledger-be/internal/core/domain"
)

// LedgerRepository is the persistence port for the product stock ledger and
// the settlement records that mutate it. Every method runs against the
// supplied transaction; locks taken by LockProducts are held until that
// transaction commits or rolls back.
type LedgerRepository interface {
	// LockProducts acquires exclusive row locks on the given products and
	// returns their current state keyed by id. Ids are locked in ascending
	// order regardless of input order, so two overlapping settlements can
	// never deadlock on each other. Missing ids are simply absent from the
	// result; the caller decides whether that is an error.
	LockProducts(ctx context.Context, tx pgx.Tx, productIDs []int64) (map[int64]domain.Product, error)

	// AdjustStock applies a signed stock delta to a product the caller has
	// already locked in this transaction.
	AdjustStock(ctx context.Context, tx pgx.Tx, productID int64, delta int) error

	// CreateProduct inserts a new product row and fills in its generated id.
	CreateProduct(ctx context.Context, tx pgx.Tx, product *domain.Product) error

	// UpdateProductPricing overwrites a locked product's cost and sale price.
	UpdateProductPricing(ctx context.Context, tx pgx.Tx, productID int64, costPrice, salePrice int64) error

	InsertSale(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error
	InsertSaleItems(ctx context.Context, tx pgx.Tx, saleID int64, items []domain.SaleItem) error

	InsertInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.PurchaseInvoice) error
	InsertInvoiceItem(ctx context.Context, tx pgx.Tx, item *domain.PurchaseInvoiceItem) error

	// FindInvoiceItems returns the line items of an invoice, ordered by
	// product id.
	FindInvoiceItems(ctx context.Context, tx pgx.Tx, invoiceID int64) ([]domain.PurchaseInvoiceItem, error)

	// DeleteInvoice removes the invoice header and reports whether a row was
	// actually deleted, so a concurrent double-reversal surfaces as not-found
	// instead of silently succeeding.
	DeleteInvoice(ctx context.Context, tx pgx.Tx, invoiceID int64) (bool, error)
	DeleteInvoiceItems(ctx context.Context, tx pgx.Tx, invoiceID int64) error
}

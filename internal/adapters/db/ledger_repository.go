// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// ledgerRepository implements ports.LedgerRepository
type ledgerRepository struct {
	logger *slog.Logger
}

// NewLedgerRepository creates the settlement-side repository. It carries no
// connection of its own: every method operates on the transaction the
// coordinator hands it.
func NewLedgerRepository(logger *slog.Logger) ports.LedgerRepository {
	return &ledgerRepository{
		logger: logger.With(slog.String("repository", "ledger")),
	}
}

// LockProducts acquires FOR UPDATE locks on the given product rows. Ids are
// deduplicated and sorted ascending before locking; two settlements that
// overlap on any product subset therefore always acquire locks in the same
// order and cannot deadlock on each other.
func (r *ledgerRepository) LockProducts(ctx context.Context, tx pgx.Tx, productIDs []int64) (map[int64]domain.Product, error) {
	ids := dedupeSorted(productIDs)
	if len(ids) == 0 {
		return map[int64]domain.Product{}, nil
	}

	query := `
		SELECT id, name, barcode, price, cost_price, stock, reorder_level,
		       supplier_id, category_id, created_at, updated_at
		FROM products
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	products := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked product: %w", err)
		}
		products[p.ID] = *p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked products: %w", err)
	}

	r.logger.DebugContext(ctx, "product rows locked",
		slog.Int("requested", len(ids)),
		slog.Int("locked", len(products)))

	return products, nil
}

// AdjustStock applies a signed delta to a product's stock. The caller must
// hold the row lock; this is never called outside a settlement transaction.
func (r *ledgerRepository) AdjustStock(ctx context.Context, tx pgx.Tx, productID int64, delta int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		productID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ProductNotFoundError{ProductID: productID}
	}
	return nil
}

// CreateProduct inserts a new product row, typically from a new-product
// invoice item. A barcode collision maps to a domain conflict error.
func (r *ledgerRepository) CreateProduct(ctx context.Context, tx pgx.Tx, product *domain.Product) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO products (name, barcode, price, cost_price, stock, reorder_level, supplier_id, category_id, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, created_at, updated_at`,
		product.Name, product.Barcode, product.Price, product.CostPrice,
		product.Stock, product.ReorderLevel, product.SupplierID, product.CategoryID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &domain.ConflictError{Resource: "product barcode", Value: product.Barcode}
		}
		return fmt.Errorf("failed to create product %q: %w", product.Name, err)
	}

	r.logger.DebugContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name))

	return nil
}

// UpdateProductPricing overwrites cost and sale price. The latest invoice
// always wins; prices are not merged.
func (r *ledgerRepository) UpdateProductPricing(ctx context.Context, tx pgx.Tx, productID int64, costPrice, salePrice int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products SET cost_price = $2, price = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		productID, costPrice, salePrice)
	if err != nil {
		return fmt.Errorf("failed to update pricing for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ProductNotFoundError{ProductID: productID}
	}
	return nil
}

// InsertSale writes the sale header and fills in the generated id and
// timestamp.
func (r *ledgerRepository) InsertSale(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO sales (total, paid, change_due, method, receipt_number, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, created_at`,
		sale.Total, sale.Paid, sale.ChangeDue, sale.Method, sale.ReceiptNumber,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

// InsertSaleItems batches the sale's line items in request order.
func (r *ledgerRepository) InsertSaleItems(ctx context.Context, tx pgx.Tx, saleID int64, items []domain.SaleItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)`

	for i := range items {
		batch.Queue(query, saleID, items[i].ProductID, items[i].Quantity,
			items[i].UnitPrice, items[i].Subtotal)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for i := range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert sale item %d: %w", i, err)
		}
	}

	return nil
}

// InsertInvoice writes the purchase invoice header with is_paid false.
func (r *ledgerRepository) InsertInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.PurchaseInvoice) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO purchase_invoices (supplier_id, invoice_number, invoice_date, total_amount, is_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, now(), now())
		RETURNING id, created_at, updated_at`,
		invoice.SupplierID, invoice.InvoiceNumber, invoice.InvoiceDate, invoice.TotalAmount,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert purchase invoice %q: %w", invoice.InvoiceNumber, err)
	}
	return nil
}

// InsertInvoiceItem writes one invoice line with its cost audit trail.
func (r *ledgerRepository) InsertInvoiceItem(ctx context.Context, tx pgx.Tx, item *domain.PurchaseInvoiceItem) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO purchase_invoice_items (invoice_id, product_id, previous_cost_price, new_cost_price, margin_percentage, calculated_sale_price, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING created_at`,
		item.InvoiceID, item.ProductID, item.PreviousCostPrice, item.NewCostPrice,
		item.MarginPercentage, item.CalculatedSalePrice, item.Quantity,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice item for product %d: %w", item.ProductID, err)
	}
	return nil
}

// FindInvoiceItems returns an invoice's line items ordered by product id,
// matching the order the reversal will lock the products in.
func (r *ledgerRepository) FindInvoiceItems(ctx context.Context, tx pgx.Tx, invoiceID int64) ([]domain.PurchaseInvoiceItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT invoice_id, product_id, previous_cost_price, new_cost_price,
		       margin_percentage, calculated_sale_price, quantity, created_at
		FROM purchase_invoice_items
		WHERE invoice_id = $1
		ORDER BY product_id`,
		invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []domain.PurchaseInvoiceItem
	for rows.Next() {
		var it domain.PurchaseInvoiceItem
		err := rows.Scan(&it.InvoiceID, &it.ProductID, &it.PreviousCostPrice, &it.NewCostPrice,
			&it.MarginPercentage, &it.CalculatedSalePrice, &it.Quantity, &it.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}

	return items, nil
}

// DeleteInvoiceItems removes all line items of an invoice.
func (r *ledgerRepository) DeleteInvoiceItems(ctx context.Context, tx pgx.Tx, invoiceID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM purchase_invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("failed to delete invoice items: %w", err)
	}
	return nil
}

// DeleteInvoice removes the invoice header. Reports false when no row was
// deleted so the caller can roll back instead of silently succeeding.
func (r *ledgerRepository) DeleteInvoice(ctx context.Context, tx pgx.Tx, invoiceID int64) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM purchase_invoices WHERE id = $1`, invoiceID)
	if err != nil {
		return false, fmt.Errorf("failed to delete invoice %d: %w", invoiceID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanProduct scans one product row in ledger column order.
func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var barcode *string
	var supplierID, categoryID *int64
	var createdAt, updatedAt time.Time

	err := row.Scan(&p.ID, &p.Name, &barcode, &p.Price, &p.CostPrice, &p.Stock,
		&p.ReorderLevel, &supplierID, &categoryID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if barcode != nil {
		p.Barcode = *barcode
	}
	p.SupplierID = supplierID
	p.CategoryID = categoryID
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return &p, nil
}

// dedupeSorted returns the distinct ids in ascending order.
func dedupeSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

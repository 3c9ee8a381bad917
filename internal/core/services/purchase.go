// internal/core/services/purchase.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

// ProcessPurchaseInvoice ingests a supplier invoice: creates or locks each
// referenced product, records the pre-invoice cost for audit, recomputes the
// margin, and commits the invoice atomically with the stock increment. The
// sale price of every touched product is unconditionally overwritten by the
// invoice; the latest invoice always wins.
func (s *Settlement) ProcessPurchaseInvoice(ctx context.Context, req ports.PurchaseInvoiceRequest) (*ports.InvoiceReceipt, error) {
	if err := validateInvoiceHeader(req); err != nil {
		return nil, err
	}

	// Normalize the tagged-union items once at the boundary. The whole
	// invoice is rejected on the first invalid item, before any lock is
	// taken.
	normalized := make([]domain.NormalizedInvoiceItem, len(req.Items))
	for i := range req.Items {
		item, err := req.Items[i].Normalize()
		if err != nil {
			return nil, &domain.InvoiceItemError{Index: i, Name: req.Items[i].Label(), Err: err}
		}
		normalized[i] = item
	}

	var receipt *ports.InvoiceReceipt

	err := s.tx.Transaction(ctx, func(tx pgx.Tx) error {
		invoice := &domain.PurchaseInvoice{
			SupplierID:    req.SupplierID,
			InvoiceNumber: req.InvoiceNumber,
			InvoiceDate:   req.InvoiceDate,
			TotalAmount:   req.TotalAmount,
		}
		if err := s.repo.InsertInvoice(ctx, tx, invoice); err != nil {
			return err
		}

		// Lock every existing product up front, in ascending id order, so
		// validation never runs against a partially locked set.
		var existingIDs []int64
		for _, item := range normalized {
			if item.Kind == domain.ItemExistingProduct {
				existingIDs = append(existingIDs, item.ProductID)
			}
		}
		products, err := s.repo.LockProducts(ctx, tx, existingIDs)
		if err != nil {
			return err
		}

		for i := range normalized {
			item := &normalized[i]
			var previousCost int64

			switch item.Kind {
			case domain.ItemNewProduct:
				product := &domain.Product{
					Name:       item.Name,
					Barcode:    item.Barcode,
					Price:      item.NewSalePrice,
					CostPrice:  item.CostPriceNet,
					Stock:      0,
					SupplierID: &req.SupplierID,
				}
				if err := s.repo.CreateProduct(ctx, tx, product); err != nil {
					return wrapItemError(i, item.Name, err)
				}
				item.ProductID = product.ID
				previousCost = 0

			case domain.ItemExistingProduct:
				product, ok := products[item.ProductID]
				if !ok {
					return wrapItemError(i, fmt.Sprintf("product %d", item.ProductID),
						&domain.ProductNotFoundError{ProductID: item.ProductID})
				}
				previousCost = product.CostPrice
			}

			line := &domain.PurchaseInvoiceItem{
				InvoiceID:           invoice.ID,
				ProductID:           item.ProductID,
				PreviousCostPrice:   previousCost,
				NewCostPrice:        item.CostPriceNet,
				MarginPercentage:    domain.MarginPercentage(item.CostPriceNet, item.NewSalePrice),
				CalculatedSalePrice: item.NewSalePrice,
				Quantity:            item.Quantity,
			}
			if err := s.repo.InsertInvoiceItem(ctx, tx, line); err != nil {
				return err
			}

			if err := s.repo.UpdateProductPricing(ctx, tx, item.ProductID, item.CostPriceNet, item.NewSalePrice); err != nil {
				return err
			}
			if err := s.repo.AdjustStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		receipt = &ports.InvoiceReceipt{InvoiceID: invoice.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "purchase invoice processed",
		slog.Int64("invoice_id", receipt.InvoiceID),
		slog.Int64("supplier_id", req.SupplierID),
		slog.Int("items", len(normalized)))

	s.invalidateCatalog(ctx)

	return receipt, nil
}

// ReversePurchaseInvoice deletes a committed invoice and atomically removes
// the stock its items had added. Cost and sale price are deliberately left
// at their post-invoice values: pricing history is append-only and only the
// quantity effect is undone. Stock may go negative when units from the
// invoice were already resold; that is reported as a warning, not a
// failure, since refusing the reversal would block legitimate corrections.
func (s *Settlement) ReversePurchaseInvoice(ctx context.Context, invoiceID int64) (*ports.ReversalResult, error) {
	if invoiceID <= 0 {
		return nil, &domain.ValidationError{Field: "invoice_id", Reason: "must be a positive id"}
	}

	result := &ports.ReversalResult{}

	err := s.tx.Transaction(ctx, func(tx pgx.Tx) error {
		items, err := s.repo.FindInvoiceItems(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		ids := make([]int64, len(items))
		for i, item := range items {
			ids[i] = item.ProductID
		}
		products, err := s.repo.LockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}

		// Remaining stock is tracked across lines so an invoice with several
		// lines for the same product warns on the cumulative decrement.
		remaining := make(map[int64]int, len(products))
		for id, p := range products {
			remaining[id] = p.Stock
		}

		for _, item := range items {
			if err := s.repo.AdjustStock(ctx, tx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
			if p, ok := products[item.ProductID]; ok {
				if remaining[item.ProductID] < item.Quantity {
					result.Warnings = append(result.Warnings, fmt.Sprintf(
						"product %d (%s) stock went negative: %d units reverted, %d were on hand",
						p.ID, p.Name, item.Quantity, remaining[item.ProductID]))
				}
				remaining[item.ProductID] -= item.Quantity
			}
		}

		if err := s.repo.DeleteInvoiceItems(ctx, tx, invoiceID); err != nil {
			return err
		}

		deleted, err := s.repo.DeleteInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if !deleted {
			// Rolls back the stock restoration above rather than silently
			// succeeding on an already-reversed invoice.
			return domain.ErrInvoiceNotFound
		}

		result.Reverted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "purchase invoice reversed",
		slog.Int64("invoice_id", invoiceID),
		slog.Int("warnings", len(result.Warnings)))

	for _, w := range result.Warnings {
		s.logger.WarnContext(ctx, "reversal drove stock negative", slog.String("detail", w))
	}

	s.invalidateCatalog(ctx)

	return result, nil
}

func validateInvoiceHeader(req ports.PurchaseInvoiceRequest) error {
	if req.SupplierID <= 0 {
		return &domain.ValidationError{Field: "supplier_id", Reason: "is required"}
	}
	if req.InvoiceNumber == "" {
		return &domain.ValidationError{Field: "invoice_number", Reason: "is required"}
	}
	if req.InvoiceDate.IsZero() {
		return &domain.ValidationError{Field: "invoice_date", Reason: "is required"}
	}
	if req.TotalAmount <= 0 {
		return &domain.ValidationError{Field: "total_amount", Reason: "must be strictly positive"}
	}
	if len(req.Items) == 0 {
		return &domain.ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	return nil
}

// wrapItemError attaches item position unless the error already carries it.
func wrapItemError(index int, name string, err error) error {
	if _, ok := err.(*domain.InvoiceItemError); ok {
		return err
	}
	return &domain.InvoiceItemError{Index: index, Name: name, Err: err}
}

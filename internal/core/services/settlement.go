// internal/core/services/settlement.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

// Task type names shared between the settlement service and the workers.
const (
	TaskLowStockAlert = "stock:alert"
)

// LowStockAlertPayload is the task payload for low-stock alerts.
type LowStockAlertPayload struct {
	ProductIDs []int64 `json:"product_ids"`
}

// TaskEnqueuer is the slice of asynq.Client the service needs; nil disables
// background task dispatch (tests, seeder).
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Settlement implements ports.SettlementService. All three operations share
// the same contract: lock the affected product rows, validate, write, and
// commit everything or nothing through the transaction coordinator.
type Settlement struct {
	repo   ports.LedgerRepository
	tx     ports.Transactor
	cache  ports.CacheRepository
	tasks  TaskEnqueuer
	logger *slog.Logger
}

// Statically assert that *Settlement implements the SettlementService port.
var _ ports.SettlementService = (*Settlement)(nil)

// NewSettlement creates the settlement service. cache and tasks may be nil;
// cache invalidation and alert dispatch are then skipped.
func NewSettlement(repo ports.LedgerRepository, tx ports.Transactor, cache ports.CacheRepository, tasks TaskEnqueuer, logger *slog.Logger) *Settlement {
	return &Settlement{
		repo:   repo,
		tx:     tx,
		cache:  cache,
		tasks:  tasks,
		logger: logger.With(slog.String("service", "settlement")),
	}
}

// FinalizeSale validates a cart against current stock under row locks,
// computes totals and change, and commits the sale atomically with the
// stock decrement. Any failure after the transaction opens rolls back every
// write, so no partial sale is ever visible.
func (s *Settlement) FinalizeSale(ctx context.Context, req ports.SaleRequest) (*ports.SaleReceipt, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if req.Paid < 0 {
		return nil, &domain.ValidationError{Field: "paid", Reason: "cannot be negative"}
	}
	if req.Method == "" {
		req.Method = domain.PaymentCash
	}

	lines := make([]domain.CartLine, len(req.Items))
	for i, line := range req.Items {
		if line.ProductID <= 0 {
			return nil, &domain.ValidationError{Field: "product_id", Reason: "must be a positive id"}
		}
		qty, floored := domain.NormalizeQuantity(line.Quantity)
		if floored {
			s.logger.WarnContext(ctx, "cart quantity floored to one",
				slog.Int64("product_id", line.ProductID),
				slog.Int("submitted", line.Quantity))
		}
		lines[i] = domain.CartLine{ProductID: line.ProductID, Quantity: qty}
	}

	var receipt *ports.SaleReceipt
	var lowStock []int64

	err := s.tx.Transaction(ctx, func(tx pgx.Tx) error {
		ids := make([]int64, len(lines))
		for i, line := range lines {
			ids[i] = line.ProductID
		}

		products, err := s.repo.LockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}

		// Remaining stock is tracked across lines so two lines of the same
		// product cannot jointly oversell it.
		remaining := make(map[int64]int, len(products))
		for id, p := range products {
			remaining[id] = p.Stock
		}

		var total int64
		items := make([]domain.SaleItem, len(lines))
		for i, line := range lines {
			product, ok := products[line.ProductID]
			if !ok {
				return &domain.ProductNotFoundError{ProductID: line.ProductID}
			}
			if remaining[line.ProductID] < line.Quantity {
				return &domain.InsufficientStockError{
					ProductID: product.ID,
					Name:      product.Name,
					Requested: line.Quantity,
					Available: remaining[line.ProductID],
				}
			}
			remaining[line.ProductID] -= line.Quantity

			subtotal := int64(line.Quantity) * product.Price
			total += subtotal
			items[i] = domain.SaleItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Subtotal:  subtotal,
			}
		}

		sale := &domain.Sale{
			Total:         total,
			Paid:          req.Paid,
			ChangeDue:     domain.ChangeDue(req.Paid, total),
			Method:        req.Method,
			ReceiptNumber: newReceiptNumber(),
		}
		if err := s.repo.InsertSale(ctx, tx, sale); err != nil {
			return err
		}
		if err := s.repo.InsertSaleItems(ctx, tx, sale.ID, items); err != nil {
			return err
		}

		for _, line := range lines {
			if err := s.repo.AdjustStock(ctx, tx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}

		for id, p := range products {
			if p.ReorderLevel > 0 && remaining[id] <= p.ReorderLevel {
				lowStock = append(lowStock, id)
			}
		}

		receipt = &ports.SaleReceipt{
			SaleID:        sale.ID,
			Total:         sale.Total,
			Paid:          sale.Paid,
			Change:        sale.ChangeDue,
			ReceiptNumber: sale.ReceiptNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sale finalized",
		slog.Int64("sale_id", receipt.SaleID),
		slog.Int64("total", receipt.Total),
		slog.Int("lines", len(lines)))

	s.invalidateCatalog(ctx)
	s.dispatchLowStockAlert(ctx, lowStock)

	return receipt, nil
}

// invalidateCatalog drops cached catalog reads after a committed stock
// mutation.
func (s *Settlement) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "catalog:*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate catalog cache",
			slog.String("error", err.Error()))
	}
}

// dispatchLowStockAlert queues a background alert for products that fell to
// or below their reorder level during this settlement.
func (s *Settlement) dispatchLowStockAlert(ctx context.Context, productIDs []int64) {
	if s.tasks == nil || len(productIDs) == 0 {
		return
	}

	payload, err := json.Marshal(LowStockAlertPayload{ProductIDs: productIDs})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to marshal low-stock payload",
			slog.String("error", err.Error()))
		return
	}

	if _, err := s.tasks.EnqueueContext(ctx, asynq.NewTask(TaskLowStockAlert, payload)); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue low-stock alert",
			slog.String("error", err.Error()))
		return
	}

	s.logger.DebugContext(ctx, "low-stock alert queued",
		slog.Int("products", len(productIDs)))
}

// newReceiptNumber produces a short printable receipt reference.
func newReceiptNumber() string {
	return fmt.Sprintf("R-%s", strings.ToUpper(uuid.New().String()[:8]))
}

// internal/workers/stock_alert_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/internal/core/services"
)

// alertDedupeTTL suppresses repeat alerts for the same product. A busy till
// can trip the reorder level on every sale; purchasing only needs one ping.
const alertDedupeTTL = 6 * time.Hour

// StockAlertProcessor handles stock:alert tasks queued by settlement when a
// sale drops a product to or below its reorder level.
type StockAlertProcessor struct {
	catalog ports.CatalogRepository
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewStockAlertProcessor creates a new stock alert processor
func NewStockAlertProcessor(catalog ports.CatalogRepository, cache ports.CacheRepository, logger *slog.Logger) *StockAlertProcessor {
	return &StockAlertProcessor{
		catalog: catalog,
		cache:   cache,
		logger:  logger.With(slog.String("processor", "stock_alert")),
	}
}

// ProcessStockAlert handles a stock:alert task
func (p *StockAlertProcessor) ProcessStockAlert(ctx context.Context, t *asynq.Task) error {
	var payload services.LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	for _, productID := range payload.ProductIDs {
		if err := p.alertProduct(ctx, productID); err != nil {
			p.logger.WarnContext(ctx, "stock alert skipped",
				slog.Int64("product_id", productID),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func (p *StockAlertProcessor) alertProduct(ctx context.Context, productID int64) error {
	if p.cache != nil {
		key := fmt.Sprintf("alert:low_stock:%d", productID)
		fresh, err := p.cache.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), alertDedupeTTL)
		if err != nil {
			p.logger.WarnContext(ctx, "alert dedupe unavailable",
				slog.String("error", err.Error()))
		} else if !fresh {
			return nil
		}
	}

	product, err := p.catalog.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	// Product may have been restocked or removed since the sale settled.
	if product == nil || product.Stock > product.ReorderLevel {
		return nil
	}

	p.logger.WarnContext(ctx, "product below reorder level",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name),
		slog.Int("stock", product.Stock),
		slog.Int("reorder_level", product.ReorderLevel))

	return nil
}

// internal/workers/pricelist_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

// PriceListPayload is the task payload for supplier price list imports.
type PriceListPayload struct {
	JobID      string `json:"job_id"`
	FilePath   string `json:"file_path"`
	SupplierID int64  `json:"supplier_id"`
}

// PriceListProcessor imports supplier price lists from Excel. A price list
// only updates catalog pricing and reorder levels; stock moves exclusively
// through settled invoices.
type PriceListProcessor struct {
	catalog ports.CatalogRepository
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewPriceListProcessor creates a new price list processor
func NewPriceListProcessor(catalog ports.CatalogRepository, cache ports.CacheRepository, logger *slog.Logger) *PriceListProcessor {
	return &PriceListProcessor{
		catalog: catalog,
		cache:   cache,
		logger:  logger.With(slog.String("processor", "pricelist")),
	}
}

// ProcessPriceList handles a pricelist:import task
func (p *PriceListProcessor) ProcessPriceList(ctx context.Context, t *asynq.Task) error {
	var payload PriceListPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing price list",
		slog.String("job_id", payload.JobID),
		slog.String("file_path", payload.FilePath))

	file, err := xlsx.OpenFile(payload.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open Excel file: %w", err)
	}

	var updated, skipped int

	if len(file.Sheets) > 0 {
		sheet := file.Sheets[0]
		rowIdx := 0

		err = sheet.ForEachRow(func(r *xlsx.Row) error {
			if rowIdx == 0 {
				rowIdx++
				return nil
			}
			rowIdx++

			row := p.parseRow(r)
			if row == nil {
				skipped++
				return nil
			}

			if err := p.applyRow(ctx, payload.SupplierID, row); err != nil {
				p.logger.WarnContext(ctx, "price list row skipped",
					slog.String("barcode", row.barcode),
					slog.String("error", err.Error()))
				skipped++
				return nil
			}

			updated++
			return nil
		})

		if err != nil {
			return fmt.Errorf("failed to process Excel rows: %w", err)
		}
	}

	if updated > 0 && p.cache != nil {
		if err := p.cache.DeletePattern(ctx, "catalog:*"); err != nil {
			p.logger.WarnContext(ctx, "failed to invalidate catalog cache",
				slog.String("error", err.Error()))
		}
	}

	if strings.HasPrefix(payload.FilePath, os.TempDir()) {
		os.Remove(payload.FilePath)
	}

	p.logger.InfoContext(ctx, "price list processing completed",
		slog.String("job_id", payload.JobID),
		slog.Int("updated", updated),
		slog.Int("skipped", skipped))

	return nil
}

type priceListRow struct {
	barcode      string
	name         string
	costPrice    int64
	salePrice    int64
	reorderLevel *int
}

func (p *PriceListProcessor) parseRow(r *xlsx.Row) *priceListRow {
	get := func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.String())
	}

	getMinorUnits := func(i int) int64 {
		s := get(i)
		if s == "" {
			return 0
		}
		d, err := decimal.NewFromString(strings.TrimPrefix(s, "$"))
		if err != nil {
			return 0
		}
		return d.Mul(decimal.NewFromInt(100)).IntPart()
	}

	// Columns: A barcode, B name, C cost price, D sale price, E reorder level
	barcode := get(0)
	if barcode == "" {
		return nil
	}

	row := &priceListRow{
		barcode:   barcode,
		name:      get(1),
		costPrice: getMinorUnits(2),
		salePrice: getMinorUnits(3),
	}

	if s := get(4); s != "" {
		if level, err := strconv.Atoi(s); err == nil && level >= 0 {
			row.reorderLevel = &level
		}
	}

	return row
}

func (p *PriceListProcessor) applyRow(ctx context.Context, supplierID int64, row *priceListRow) error {
	product, err := p.catalog.FindByBarcode(ctx, row.barcode)
	if err != nil {
		return err
	}

	if product == nil {
		if row.name == "" || row.salePrice <= 0 {
			return fmt.Errorf("unknown barcode %s needs a name and sale price", row.barcode)
		}
		product = &domain.Product{
			Name:    row.name,
			Barcode: row.barcode,
		}
		if supplierID > 0 {
			product.SupplierID = &supplierID
		}
	}

	if row.name != "" {
		product.Name = row.name
	}
	if row.costPrice > 0 {
		product.CostPrice = row.costPrice
	}
	if row.salePrice > 0 {
		product.Price = row.salePrice
	}
	if row.reorderLevel != nil {
		product.ReorderLevel = *row.reorderLevel
	}

	if err := product.Validate(); err != nil {
		return err
	}

	return p.catalog.Save(ctx, product)
}

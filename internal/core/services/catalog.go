// internal/core/services/catalog.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

const catalogCacheTTL = 5 * time.Minute

// Catalog serves read access to the product ledger for the web layer and
// the document importers. It never mutates stock; settlement owns that.
type Catalog struct {
	repo   ports.CatalogRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewCatalog creates the catalog read service. cache may be nil.
func NewCatalog(repo ports.CatalogRepository, cache ports.CacheRepository, logger *slog.Logger) *Catalog {
	return &Catalog{
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

// GetByID retrieves a product by id.
func (c *Catalog) GetByID(ctx context.Context, productID int64) (*domain.Product, error) {
	if c.cache != nil {
		var cached domain.Product
		key := fmt.Sprintf("catalog:product:%d", productID)
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := c.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: productID}
	}

	if c.cache != nil {
		key := fmt.Sprintf("catalog:product:%d", productID)
		if err := c.cache.SetWithTTL(ctx, key, product, catalogCacheTTL); err != nil {
			c.logger.DebugContext(ctx, "failed to cache product",
				slog.Int64("product_id", productID),
				slog.String("error", err.Error()))
		}
	}

	return product, nil
}

// GetByBarcode retrieves a product by barcode; used by the POS scanner flow
// and by the supplier document importers to match invoice lines.
func (c *Catalog) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	if barcode == "" {
		return nil, &domain.ValidationError{Field: "barcode", Reason: "is required"}
	}

	product, err := c.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by barcode: %w", err)
	}
	return product, nil
}

// List retrieves catalog products with filtering and pagination.
func (c *Catalog) List(ctx context.Context, params ports.CatalogListParams) (*ports.CatalogListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 200 {
		params.PageSize = 50
	}

	products, totalCount, err := c.repo.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	totalPages := int(totalCount) / params.PageSize
	if int(totalCount)%params.PageSize > 0 {
		totalPages++
	}

	return &ports.CatalogListResult{
		Products:   products,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// LowStock returns products at or below their reorder threshold.
func (c *Catalog) LowStock(ctx context.Context) ([]*domain.Product, error) {
	products, err := c.repo.FindBelowReorderLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock products: %w", err)
	}
	return products, nil
}

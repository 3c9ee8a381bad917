// internal/core/ports/catalog_repository.go
package ports

import (
	"context"

	"github.com/ovalles/posledger-be/internal/core/domain"
)

// CatalogRepository is the read-side port over the product ledger used by
// the catalog API, the importers, and the seeder. Settlement never goes
// through it; all settlement writes take row locks via LedgerRepository.
type CatalogRepository interface {
	FindByID(ctx context.Context, productID int64) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	FindAll(ctx context.Context, params CatalogListParams) ([]*domain.Product, int64, error)
	FindBelowReorderLevel(ctx context.Context) ([]*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
	Count(ctx context.Context) (int64, error)
}

// CatalogListParams holds filters for listing catalog products.
type CatalogListParams struct {
	Search     string
	Barcode    string
	SupplierID *int64
	CategoryID *int64
	LowStock   bool
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// CatalogListResult represents paginated catalog results.
type CatalogListResult struct {
	Products   []*domain.Product `json:"products"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

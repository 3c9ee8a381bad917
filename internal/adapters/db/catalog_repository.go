// internal/adapters/db/catalog_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

// catalogRepository implements ports.CatalogRepository
type catalogRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewCatalogRepository creates the read-side product repository used by the
// catalog API, importers, and seeder.
func NewCatalogRepository(db *Database, logger *slog.Logger) ports.CatalogRepository {
	return &catalogRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "catalog")),
	}
}

const productColumns = `id, name, barcode, price, cost_price, stock, reorder_level,
	supplier_id, category_id, created_at, updated_at`

// FindByID retrieves a product by id. Returns nil, nil when absent.
func (r *catalogRepository) FindByID(ctx context.Context, productID int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`

	p, err := scanProduct(r.db.QueryRow(ctx, query, productID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return p, nil
}

// FindByBarcode retrieves a product by barcode. Returns nil, nil when absent.
func (r *catalogRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1 AND deleted_at IS NULL`

	p, err := scanProduct(r.db.QueryRow(ctx, query, barcode))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by barcode: %w", err)
	}
	return p, nil
}

// FindAll retrieves catalog products with filtering and pagination.
func (r *catalogRepository) FindAll(ctx context.Context, params ports.CatalogListParams) ([]*domain.Product, int64, error) {
	applyFilters := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		qb = qb.Where("deleted_at IS NULL")
		if params.Search != "" {
			qb = qb.Where("name ILIKE ?", "%"+params.Search+"%")
		}
		if params.Barcode != "" {
			qb = qb.Where(squirrel.Eq{"barcode": params.Barcode})
		}
		if params.SupplierID != nil {
			qb = qb.Where(squirrel.Eq{"supplier_id": *params.SupplierID})
		}
		if params.CategoryID != nil {
			qb = qb.Where(squirrel.Eq{"category_id": *params.CategoryID})
		}
		if params.LowStock {
			qb = qb.Where("reorder_level > 0 AND stock <= reorder_level")
		}
		return qb
	}

	countSQL, countArgs, err := applyFilters(
		squirrel.Select("COUNT(*)").From("products").PlaceholderFormat(squirrel.Dollar),
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	qb := applyFilters(squirrel.Select(
		"id", "name", "barcode", "price", "cost_price", "stock", "reorder_level",
		"supplier_id", "category_id", "created_at", "updated_at",
	).From("products").PlaceholderFormat(squirrel.Dollar))

	orderBy := "name ASC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}
		switch params.SortBy {
		case "stock":
			orderBy = fmt.Sprintf("stock %s", direction)
		case "price":
			orderBy = fmt.Sprintf("price %s", direction)
		case "updated":
			orderBy = fmt.Sprintf("updated_at %s", direction)
		default:
			orderBy = fmt.Sprintf("name %s", direction)
		}
	}
	qb = qb.OrderBy(orderBy)

	if params.PageSize > 0 {
		qb = qb.Limit(uint64(params.PageSize))
		if params.Page > 1 {
			qb = qb.Offset(uint64((params.Page - 1) * params.PageSize))
		}
	}

	sqlQuery, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, totalCount, nil
}

// FindBelowReorderLevel returns products whose stock is at or under their
// reorder threshold; consumed by the low-stock alert worker.
func (r *catalogRepository) FindBelowReorderLevel(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL AND reorder_level > 0 AND stock <= reorder_level
		ORDER BY stock ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query low-stock products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// Save persists a catalog product outside any settlement flow (seeder,
// price list imports, catalog management). Products with an ID are updated
// in place; settlement-owned columns such as stock are left alone on update.
func (r *catalogRepository) Save(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	if product.ID > 0 {
		err := r.db.QueryRow(ctx, `
			UPDATE products
			SET name = $2, barcode = NULLIF($3, ''), price = $4, cost_price = $5,
			    reorder_level = $6, supplier_id = $7, category_id = $8, updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING updated_at`,
			product.ID, product.Name, product.Barcode, product.Price,
			product.CostPrice, product.ReorderLevel, product.SupplierID, product.CategoryID,
		).Scan(&product.UpdatedAt)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &domain.ProductNotFoundError{ProductID: product.ID}
			}
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return &domain.ConflictError{Resource: "product barcode", Value: product.Barcode}
			}
			return fmt.Errorf("failed to update product %d: %w", product.ID, err)
		}

		r.logger.DebugContext(ctx, "product updated",
			slog.Int64("product_id", product.ID),
			slog.String("name", product.Name))

		return nil
	}

	err := r.db.QueryRow(ctx, `
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
		return fmt.Errorf("failed to save product %q: %w", product.Name, err)
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name))

	return nil
}

// Count returns the number of active catalog products.
func (r *catalogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

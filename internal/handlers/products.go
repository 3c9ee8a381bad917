// internal/handlers/products.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/internal/core/services"
)

// ProductHandler handles catalog read requests
type ProductHandler struct {
	catalog *services.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog *services.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("handler", "products")),
	}
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || productID <= 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.catalog.GetByID(ctx, productID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()))
		h.respondDomainError(w, err, "Failed to retrieve product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// GetProductByBarcode handles GET /api/v1/products/barcode/{barcode}
func (h *ProductHandler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	barcode := r.PathValue("barcode")

	product, err := h.catalog.GetByBarcode(ctx, barcode)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product by barcode",
			slog.String("barcode", barcode),
			slog.String("error", err.Error()))
		h.respondDomainError(w, err, "Failed to retrieve product")
		return
	}
	if product == nil {
		h.respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.catalog.List(ctx, h.parseListParams(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ListLowStock handles GET /api/v1/products/low-stock
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.catalog.LowStock(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list low-stock products",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list low-stock products")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// parseListParams parses query parameters for listing products
func (h *ProductHandler) parseListParams(r *http.Request) ports.CatalogListParams {
	params := ports.CatalogListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "name",
		SortOrder: "asc",
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 200 {
				params.PageSize = 200
			} else {
				params.PageSize = l
			}
		}
	}

	params.Search = r.URL.Query().Get("search")
	params.Barcode = r.URL.Query().Get("barcode")

	if supplier := r.URL.Query().Get("supplier_id"); supplier != "" {
		if id, err := strconv.ParseInt(supplier, 10, 64); err == nil && id > 0 {
			params.SupplierID = &id
		}
	}
	if category := r.URL.Query().Get("category_id"); category != "" {
		if id, err := strconv.ParseInt(category, 10, 64); err == nil && id > 0 {
			params.CategoryID = &id
		}
	}
	if lowStock := r.URL.Query().Get("low_stock"); lowStock != "" {
		if val, err := strconv.ParseBool(lowStock); err == nil {
			params.LowStock = val
		}
	}

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// Helper methods

func (h *ProductHandler) respondDomainError(w http.ResponseWriter, err error, fallback string) {
	status, message := domainErrorStatus(err, fallback)
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *ProductHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *ProductHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

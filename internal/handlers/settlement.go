// internal/handlers/settlement.go
package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
)

// SettlementHandler exposes the settlement operations over HTTP.
type SettlementHandler struct {
	service    ports.SettlementService
	adminToken string
	logger     *slog.Logger
}

// NewSettlementHandler creates a new settlement handler. adminToken guards
// invoice reversal; an empty token disables the endpoint entirely.
func NewSettlementHandler(service ports.SettlementService, adminToken string, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{
		service:    service,
		adminToken: adminToken,
		logger:     logger.With(slog.String("handler", "settlement")),
	}
}

// FinalizeSale handles POST /api/v1/sales
func (h *SettlementHandler) FinalizeSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ports.SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := h.service.FinalizeSale(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to finalize sale",
			slog.Int("lines", len(req.Items)),
			slog.String("error", err.Error()))
		h.respondDomainError(w, err, "Failed to finalize sale")
		return
	}

	h.respondJSON(w, http.StatusCreated, receipt)
}

// ProcessInvoice handles POST /api/v1/purchase-invoices
func (h *SettlementHandler) ProcessInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ports.PurchaseInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := h.service.ProcessPurchaseInvoice(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to process purchase invoice",
			slog.String("invoice_number", req.InvoiceNumber),
			slog.String("error", err.Error()))
		h.respondDomainError(w, err, "Failed to process purchase invoice")
		return
	}

	h.respondJSON(w, http.StatusCreated, receipt)
}

// ReverseInvoice handles DELETE /api/v1/purchase-invoices/{id}
func (h *SettlementHandler) ReverseInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorized(r) {
		h.respondError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	invoiceID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || invoiceID <= 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	result, err := h.service.ReversePurchaseInvoice(ctx, invoiceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reverse purchase invoice",
			slog.Int64("invoice_id", invoiceID),
			slog.String("error", err.Error()))
		h.respondDomainError(w, err, "Failed to reverse purchase invoice")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// authorized checks the shared admin token on destructive endpoints.
func (h *SettlementHandler) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return false
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}

// respondDomainError maps domain errors onto HTTP status codes.
func (h *SettlementHandler) respondDomainError(w http.ResponseWriter, err error, fallback string) {
	status, message := domainErrorStatus(err, fallback)
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *SettlementHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *SettlementHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// domainErrorStatus translates the typed domain errors every handler shares.
func domainErrorStatus(err error, fallback string) (int, string) {
	var (
		validation   *domain.ValidationError
		itemErr      *domain.InvoiceItemError
		notFound     *domain.ProductNotFoundError
		insufficient *domain.InsufficientStockError
		conflict     *domain.ConflictError
	)

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.As(err, &insufficient):
		return http.StatusConflict, err.Error()
	case errors.As(err, &conflict):
		return http.StatusConflict, err.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &itemErr):
		return http.StatusBadRequest, itemErr.Error()
	case errors.As(err, &validation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, fallback
	}
}

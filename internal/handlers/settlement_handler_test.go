// internal/handlers/settlement_handler_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/internal/handlers"
	"github.com/ovalles/posledger-be/test/helpers"
	"github.com/ovalles/posledger-be/test/mocks"
)

const testAdminToken = "test-admin-token"

func TestSettlementHandler_FinalizeSale(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(*mocks.MockSettlementService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name: "successfully_finalizes_sale",
			requestBody: ports.SaleRequest{
				Items:  []domain.CartLine{{ProductID: 1, Quantity: 3}},
				Paid:   5000,
				Method: domain.PaymentCash,
			},
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					FinalizeSale(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req ports.SaleRequest) (*ports.SaleReceipt, error) {
						assert.Equal(t, int64(5000), req.Paid)
						assert.Equal(t, domain.PaymentCash, req.Method)
						return &ports.SaleReceipt{
							SaleID:        42,
							Total:         3000,
							Paid:          5000,
							Change:        2000,
							ReceiptNumber: "R-1A2B3C4D",
						}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var receipt ports.SaleReceipt
				require.NoError(t, json.Unmarshal(body, &receipt))
				assert.Equal(t, int64(42), receipt.SaleID)
				assert.Equal(t, int64(2000), receipt.Change)
			},
		},
		{
			name:           "invalid_json_body",
			requestBody:    "not json",
			setupMocks:     func(m *mocks.MockSettlementService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Invalid request body", response["error"])
			},
		},
		{
			name: "empty_cart_maps_to_bad_request",
			requestBody: ports.SaleRequest{
				Paid:   1000,
				Method: domain.PaymentCash,
			},
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					FinalizeSale(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrEmptyCart)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "insufficient_stock_maps_to_conflict",
			requestBody: ports.SaleRequest{
				Items:  []domain.CartLine{{ProductID: 1, Quantity: 10}},
				Paid:   20000,
				Method: domain.PaymentCash,
			},
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					FinalizeSale(gomock.Any(), gomock.Any()).
					Return(nil, &domain.InsufficientStockError{
						ProductID: 1,
						Name:      "Test Espresso Beans 1kg",
						Requested: 10,
						Available: 5,
					})
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Contains(t, response["error"], "requested 10, available 5")
			},
		},
		{
			name: "unknown_product_maps_to_not_found",
			requestBody: ports.SaleRequest{
				Items:  []domain.CartLine{{ProductID: 99, Quantity: 1}},
				Paid:   1000,
				Method: domain.PaymentCash,
			},
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					FinalizeSale(gomock.Any(), gomock.Any()).
					Return(nil, &domain.ProductNotFoundError{ProductID: 99})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "service_error_stays_opaque",
			requestBody: ports.SaleRequest{
				Items:  []domain.CartLine{{ProductID: 1, Quantity: 1}},
				Paid:   1000,
				Method: domain.PaymentCash,
			},
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					FinalizeSale(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database connection failed"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Failed to finalize sale", response["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockSettlementService(ctrl)
			logger := helpers.TestLogger()
			handler := handlers.NewSettlementHandler(mockService, testAdminToken, logger)

			tt.setupMocks(mockService)

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/api/v1/sales", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.FinalizeSale(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestSettlementHandler_ProcessInvoice(t *testing.T) {
	productID := int64(1)
	validRequest := ports.PurchaseInvoiceRequest{
		SupplierID:    3,
		InvoiceNumber: "INV-2026-0144",
		InvoiceDate:   time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		TotalAmount:   9000,
		Items: []domain.InvoiceItemInput{
			{
				ProductID:    &productID,
				CostPriceNet: 500,
				NewSalePrice: 1000,
				Quantity:     10,
			},
		},
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(*mocks.MockSettlementService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:        "successfully_processes_invoice",
			requestBody: validRequest,
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					ProcessPurchaseInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req ports.PurchaseInvoiceRequest) (*ports.InvoiceReceipt, error) {
						assert.Equal(t, "INV-2026-0144", req.InvoiceNumber)
						return &ports.InvoiceReceipt{InvoiceID: 5}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var receipt ports.InvoiceReceipt
				require.NoError(t, json.Unmarshal(body, &receipt))
				assert.Equal(t, int64(5), receipt.InvoiceID)
			},
		},
		{
			name:        "invalid_item_keeps_its_index",
			requestBody: validRequest,
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					ProcessPurchaseInvoice(gomock.Any(), gomock.Any()).
					Return(nil, &domain.InvoiceItemError{
						Index: 1,
						Name:  "Oat Milk 1L",
						Err:   errors.New("cost_price_net must be positive"),
					})
			},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Contains(t, response["error"], "invoice item 2")
				assert.Contains(t, response["error"], "Oat Milk 1L")
			},
		},
		{
			name:        "duplicate_invoice_maps_to_conflict",
			requestBody: validRequest,
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					ProcessPurchaseInvoice(gomock.Any(), gomock.Any()).
					Return(nil, &domain.ConflictError{Resource: "invoice number", Value: "INV-2026-0144"})
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockSettlementService(ctrl)
			logger := helpers.TestLogger()
			handler := handlers.NewSettlementHandler(mockService, testAdminToken, logger)

			tt.setupMocks(mockService)

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/api/v1/purchase-invoices", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ProcessInvoice(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestSettlementHandler_ReverseInvoice(t *testing.T) {
	tests := []struct {
		name           string
		invoiceID      string
		token          string
		setupMocks     func(*mocks.MockSettlementService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:      "successfully_reverses_invoice",
			invoiceID: "5",
			token:     testAdminToken,
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					ReversePurchaseInvoice(gomock.Any(), int64(5)).
					Return(&ports.ReversalResult{Reverted: true}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var result ports.ReversalResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.True(t, result.Reverted)
			},
		},
		{
			name:      "reversal_warnings_are_reported",
			invoiceID: "5",
			token:     testAdminToken,
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					ReversePurchaseInvoice(gomock.Any(), int64(5)).
					Return(&ports.ReversalResult{
						Reverted: true,
						Warnings: []string{"product 1 stock went negative"},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var result ports.ReversalResult
				require.NoError(t, json.Unmarshal(body, &result))
				require.Len(t, result.Warnings, 1)
				assert.Contains(t, result.Warnings[0], "stock went negative")
			},
		},
		{
			name:           "missing_token_is_unauthorized",
			invoiceID:      "5",
			token:          "",
			setupMocks:     func(m *mocks.MockSettlementService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong_token_is_unauthorized",
			invoiceID:      "5",
			token:          "wrong-token",
			setupMocks:     func(m *mocks.MockSettlementService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid_invoice_id",
			invoiceID:      "not-a-number",
			token:          testAdminToken,
			setupMocks:     func(m *mocks.MockSettlementService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "missing_invoice_maps_to_not_found",
			invoiceID: "99",
			token:     testAdminToken,
			setupMocks: func(m *mocks.MockSettlementService) {
				m.EXPECT().
					ReversePurchaseInvoice(gomock.Any(), int64(99)).
					Return(nil, domain.ErrInvoiceNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockSettlementService(ctrl)
			logger := helpers.TestLogger()
			handler := handlers.NewSettlementHandler(mockService, testAdminToken, logger)

			tt.setupMocks(mockService)

			req := httptest.NewRequest("DELETE", "/api/v1/purchase-invoices/"+tt.invoiceID, nil)
			req.SetPathValue("id", tt.invoiceID)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()

			handler.ReverseInvoice(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestSettlementHandler_ReversalDisabledWithoutToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockSettlementService(ctrl)
	handler := handlers.NewSettlementHandler(mockService, "", helpers.TestLogger())

	req := httptest.NewRequest("DELETE", "/api/v1/purchase-invoices/5", nil)
	req.SetPathValue("id", "5")
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()

	handler.ReverseInvoice(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

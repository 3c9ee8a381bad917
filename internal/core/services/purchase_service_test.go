// internal/core/services/purchase_service_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/internal/core/services"
	"github.com/ovalles/posledger-be/test/helpers"
	"github.com/ovalles/posledger-be/test/mocks"
)

func validInvoiceRequest(items ...domain.InvoiceItemInput) ports.PurchaseInvoiceRequest {
	return ports.PurchaseInvoiceRequest{
		SupplierID:    3,
		InvoiceNumber: "INV-2026-0144",
		InvoiceDate:   time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		TotalAmount:   9000,
		Items:         items,
	}
}

func existingItem(productID int64, cost, sale int64, qty int) domain.InvoiceItemInput {
	return domain.InvoiceItemInput{
		ProductID:    &productID,
		CostPriceNet: cost,
		NewSalePrice: sale,
		Quantity:     qty,
	}
}

func TestSettlement_ProcessPurchaseInvoice(t *testing.T) {
	t.Run("existing_and_new_items_committed_together", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		req := validInvoiceRequest(
			existingItem(1, 500, 1000, 10),
			domain.InvoiceItemInput{
				Name:         "Oat Milk 1L",
				Barcode:      "7501031319998",
				CostPriceNet: 800,
				NewSalePrice: 1200,
				Quantity:     4,
			},
		)

		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		mockRepo.EXPECT().
			InsertInvoice(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ pgx.Tx, invoice *domain.PurchaseInvoice) error {
				assert.Equal(t, int64(3), invoice.SupplierID)
				assert.Equal(t, "INV-2026-0144", invoice.InvoiceNumber)
				invoice.ID = 5
				return nil
			})
		mockRepo.EXPECT().
			LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
			Return(map[int64]domain.Product{
				1: {ID: 1, Name: "Espresso Beans 1kg", Price: 900, CostPrice: 400, Stock: 2},
			}, nil)
		mockRepo.EXPECT().
			CreateProduct(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ pgx.Tx, product *domain.Product) error {
				assert.Equal(t, "Oat Milk 1L", product.Name)
				assert.Equal(t, 0, product.Stock)
				require.NotNil(t, product.SupplierID)
				assert.Equal(t, int64(3), *product.SupplierID)
				product.ID = 7
				return nil
			})

		var lines []domain.PurchaseInvoiceItem
		mockRepo.EXPECT().
			InsertInvoiceItem(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ pgx.Tx, item *domain.PurchaseInvoiceItem) error {
				lines = append(lines, *item)
				return nil
			}).
			Times(2)

		mockRepo.EXPECT().
			UpdateProductPricing(gomock.Any(), gomock.Any(), int64(1), int64(500), int64(1000)).
			Return(nil)
		mockRepo.EXPECT().
			UpdateProductPricing(gomock.Any(), gomock.Any(), int64(7), int64(800), int64(1200)).
			Return(nil)
		mockRepo.EXPECT().
			AdjustStock(gomock.Any(), gomock.Any(), int64(1), 10).
			Return(nil)
		mockRepo.EXPECT().
			AdjustStock(gomock.Any(), gomock.Any(), int64(7), 4).
			Return(nil)

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		receipt, err := service.ProcessPurchaseInvoice(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, int64(5), receipt.InvoiceID)

		require.Len(t, lines, 2)
		assert.Equal(t, int64(5), lines[0].InvoiceID)
		assert.Equal(t, int64(400), lines[0].PreviousCostPrice)
		assert.True(t, lines[0].MarginPercentage.Equal(decimal.NewFromInt(50)),
			"margin for 500/1000 should be 50, got %s", lines[0].MarginPercentage)
		assert.Equal(t, int64(0), lines[1].PreviousCostPrice)
		assert.True(t, lines[1].MarginPercentage.Equal(decimal.RequireFromString("33.33")),
			"margin for 800/1200 should be 33.33, got %s", lines[1].MarginPercentage)
	})

	t.Run("invalid_item_rejects_whole_invoice_before_any_write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		req := validInvoiceRequest(
			existingItem(1, 500, 1000, 10),
			existingItem(2, 0, 1000, 5), // zero cost
		)

		mockRepo := mocks.NewMockLedgerRepository(ctrl)

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		receipt, err := service.ProcessPurchaseInvoice(context.Background(), req)

		require.Error(t, err)
		var itemErr *domain.InvoiceItemError
		require.ErrorAs(t, err, &itemErr)
		assert.Equal(t, 1, itemErr.Index)
		assert.Contains(t, err.Error(), "cost_price_net")
		assert.Nil(t, receipt)
	})

	t.Run("missing_existing_product_rolls_back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		req := validInvoiceRequest(existingItem(99, 500, 1000, 10))

		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		mockRepo.EXPECT().
			InsertInvoice(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		mockRepo.EXPECT().
			LockProducts(gomock.Any(), gomock.Any(), []int64{99}).
			Return(map[int64]domain.Product{}, nil)

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		receipt, err := service.ProcessPurchaseInvoice(context.Background(), req)

		require.Error(t, err)
		var notFound *domain.ProductNotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Nil(t, receipt)
	})

	t.Run("duplicate_barcode_surfaces_as_item_conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		req := validInvoiceRequest(domain.InvoiceItemInput{
			Name:         "Oat Milk 1L",
			Barcode:      "7501031319998",
			CostPriceNet: 800,
			NewSalePrice: 1200,
			Quantity:     4,
		})

		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		mockRepo.EXPECT().
			InsertInvoice(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		mockRepo.EXPECT().
			LockProducts(gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(map[int64]domain.Product{}, nil)
		mockRepo.EXPECT().
			CreateProduct(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&domain.ConflictError{Resource: "barcode", Value: "7501031319998"})

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		_, err := service.ProcessPurchaseInvoice(context.Background(), req)

		require.Error(t, err)
		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Contains(t, err.Error(), "Oat Milk 1L")
	})

	t.Run("header_validation", func(t *testing.T) {
		tests := []struct {
			name     string
			mutate   func(*ports.PurchaseInvoiceRequest)
			contains string
		}{
			{"missing_supplier", func(r *ports.PurchaseInvoiceRequest) { r.SupplierID = 0 }, "supplier_id"},
			{"missing_invoice_number", func(r *ports.PurchaseInvoiceRequest) { r.InvoiceNumber = "" }, "invoice_number"},
			{"missing_invoice_date", func(r *ports.PurchaseInvoiceRequest) { r.InvoiceDate = time.Time{} }, "invoice_date"},
			{"zero_total", func(r *ports.PurchaseInvoiceRequest) { r.TotalAmount = 0 }, "total_amount"},
			{"no_items", func(r *ports.PurchaseInvoiceRequest) { r.Items = nil }, "items"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				req := validInvoiceRequest(existingItem(1, 500, 1000, 10))
				tt.mutate(&req)

				mockRepo := mocks.NewMockLedgerRepository(ctrl)
				service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

				_, err := service.ProcessPurchaseInvoice(context.Background(), req)

				require.Error(t, err)
				var vErr *domain.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Contains(t, err.Error(), tt.contains)
			})
		}
	})
}

func TestSettlement_ReversePurchaseInvoice(t *testing.T) {
	t.Run("removes_stock_and_deletes_invoice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		mockRepo.EXPECT().
			FindInvoiceItems(gomock.Any(), gomock.Any(), int64(5)).
			Return([]domain.PurchaseInvoiceItem{
				{InvoiceID: 5, ProductID: 1, Quantity: 10},
			}, nil)
		mockRepo.EXPECT().
			LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
			Return(map[int64]domain.Product{
				1: {ID: 1, Name: "Espresso Beans 1kg", Stock: 12},
			}, nil)
		mockRepo.EXPECT().
			AdjustStock(gomock.Any(), gomock.Any(), int64(1), -10).
			Return(nil)
		mockRepo.EXPECT().
			DeleteInvoiceItems(gomock.Any(), gomock.Any(), int64(5)).
			Return(nil)
		mockRepo.EXPECT().
			DeleteInvoice(gomock.Any(), gomock.Any(), int64(5)).
			Return(true, nil)

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		result, err := service.ReversePurchaseInvoice(context.Background(), 5)

		require.NoError(t, err)
		assert.True(t, result.Reverted)
		assert.Empty(t, result.Warnings)
	})

	t.Run("warns_when_stock_goes_negative", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		mockRepo.EXPECT().
			FindInvoiceItems(gomock.Any(), gomock.Any(), int64(5)).
			Return([]domain.PurchaseInvoiceItem{
				{InvoiceID: 5, ProductID: 1, Quantity: 10},
			}, nil)
		mockRepo.EXPECT().
			LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
			Return(map[int64]domain.Product{
				1: {ID: 1, Name: "Espresso Beans 1kg", Stock: 4},
			}, nil)
		mockRepo.EXPECT().
			AdjustStock(gomock.Any(), gomock.Any(), int64(1), -10).
			Return(nil)
		mockRepo.EXPECT().
			DeleteInvoiceItems(gomock.Any(), gomock.Any(), int64(5)).
			Return(nil)
		mockRepo.EXPECT().
			DeleteInvoice(gomock.Any(), gomock.Any(), int64(5)).
			Return(true, nil)

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		result, err := service.ReversePurchaseInvoice(context.Background(), 5)

		require.NoError(t, err)
		assert.True(t, result.Reverted)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "stock went negative")
	})

	t.Run("repeated_lines_warn_on_the_cumulative_decrement", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// 12 on hand, two lines of 8 each: the first leaves 4, the second
		// is what drives stock negative and must warn.
		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		mockRepo.EXPECT().
			FindInvoiceItems(gomock.Any(), gomock.Any(), int64(5)).
			Return([]domain.PurchaseInvoiceItem{
				{InvoiceID: 5, ProductID: 1, Quantity: 8},
				{InvoiceID: 5, ProductID: 1, Quantity: 8},
			}, nil)
		mockRepo.EXPECT().
			LockProducts(gomock.Any(), gomock.Any(), []int64{1, 1}).
			Return(map[int64]domain.Product{
				1: {ID: 1, Name: "Espresso Beans 1kg", Stock: 12},
			}, nil)
		mockRepo.EXPECT().
			AdjustStock(gomock.Any(), gomock.Any(), int64(1), -8).
			Return(nil).
			Times(2)
		mockRepo.EXPECT().
			DeleteInvoiceItems(gomock.Any(), gomock.Any(), int64(5)).
			Return(nil)
		mockRepo.EXPECT().
			DeleteInvoice(gomock.Any(), gomock.Any(), int64(5)).
			Return(true, nil)

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		result, err := service.ReversePurchaseInvoice(context.Background(), 5)

		require.NoError(t, err)
		assert.True(t, result.Reverted)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "stock went negative")
		assert.Contains(t, result.Warnings[0], "4 were on hand")
	})

	t.Run("missing_invoice_returns_not_found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		mockRepo.EXPECT().
			FindInvoiceItems(gomock.Any(), gomock.Any(), int64(404)).
			Return(nil, nil)
		mockRepo.EXPECT().
			LockProducts(gomock.Any(), gomock.Any(), []int64{}).
			Return(map[int64]domain.Product{}, nil)
		mockRepo.EXPECT().
			DeleteInvoiceItems(gomock.Any(), gomock.Any(), int64(404)).
			Return(nil)
		mockRepo.EXPECT().
			DeleteInvoice(gomock.Any(), gomock.Any(), int64(404)).
			Return(false, nil)

		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		result, err := service.ReversePurchaseInvoice(context.Background(), 404)

		require.ErrorIs(t, err, domain.ErrInvoiceNotFound)
		assert.Nil(t, result)
	})

	t.Run("rejects_non_positive_id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockLedgerRepository(ctrl)
		service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

		_, err := service.ReversePurchaseInvoice(context.Background(), 0)

		require.Error(t, err)
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

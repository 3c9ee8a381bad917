// internal/core/services/settlement_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/internal/core/services"
	"github.com/ovalles/posledger-be/test/helpers"
	"github.com/ovalles/posledger-be/test/mocks"
)

// captureEnqueuer records enqueued tasks without a Redis connection.
type captureEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (c *captureEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestSettlement_FinalizeSale(t *testing.T) {
	inStock := map[int64]domain.Product{
		1: {ID: 1, Name: "Espresso Beans 1kg", Price: 1000, Stock: 5},
	}

	tests := []struct {
		name          string
		req           ports.SaleRequest
		setupMocks    func(*mocks.MockLedgerRepository)
		check         func(*testing.T, *ports.SaleReceipt)
		expectedError error
		errorContains string
	}{
		{
			name: "successful_sale_with_change",
			req: ports.SaleRequest{
				Items: []domain.CartLine{{ProductID: 1, Quantity: 3}},
				Paid:  5000,
			},
			setupMocks: func(m *mocks.MockLedgerRepository) {
				m.EXPECT().
					LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
					Return(inStock, nil)
				m.EXPECT().
					InsertSale(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ pgx.Tx, sale *domain.Sale) error {
						assert.Equal(t, int64(3000), sale.Total)
						assert.Equal(t, int64(5000), sale.Paid)
						assert.Equal(t, int64(2000), sale.ChangeDue)
						assert.Equal(t, domain.PaymentCash, sale.Method)
						assert.NotEmpty(t, sale.ReceiptNumber)
						sale.ID = 42
						return nil
					})
				m.EXPECT().
					InsertSaleItems(gomock.Any(), gomock.Any(), int64(42), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ pgx.Tx, _ int64, items []domain.SaleItem) error {
						require.Len(t, items, 1)
						assert.Equal(t, int64(1000), items[0].UnitPrice)
						assert.Equal(t, int64(3000), items[0].Subtotal)
						return nil
					})
				m.EXPECT().
					AdjustStock(gomock.Any(), gomock.Any(), int64(1), -3).
					Return(nil)
			},
			check: func(t *testing.T, receipt *ports.SaleReceipt) {
				assert.Equal(t, int64(42), receipt.SaleID)
				assert.Equal(t, int64(3000), receipt.Total)
				assert.Equal(t, int64(2000), receipt.Change)
			},
		},
		{
			name: "insufficient_stock_rejects_sale",
			req: ports.SaleRequest{
				Items: []domain.CartLine{{ProductID: 1, Quantity: 3}},
				Paid:  5000,
			},
			setupMocks: func(m *mocks.MockLedgerRepository) {
				m.EXPECT().
					LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
					Return(map[int64]domain.Product{
						1: {ID: 1, Name: "Espresso Beans 1kg", Price: 1000, Stock: 2},
					}, nil)
			},
			expectedError: &domain.InsufficientStockError{},
			errorContains: "requested 3, available 2",
		},
		{
			name: "duplicate_lines_cannot_jointly_oversell",
			req: ports.SaleRequest{
				Items: []domain.CartLine{
					{ProductID: 1, Quantity: 3},
					{ProductID: 1, Quantity: 3},
				},
				Paid: 10000,
			},
			setupMocks: func(m *mocks.MockLedgerRepository) {
				m.EXPECT().
					LockProducts(gomock.Any(), gomock.Any(), []int64{1, 1}).
					Return(inStock, nil)
			},
			expectedError: &domain.InsufficientStockError{},
			errorContains: "requested 3, available 2",
		},
		{
			name:          "empty_cart_rejected",
			req:           ports.SaleRequest{Paid: 1000},
			setupMocks:    func(m *mocks.MockLedgerRepository) {},
			expectedError: domain.ErrEmptyCart,
		},
		{
			name: "negative_paid_rejected",
			req: ports.SaleRequest{
				Items: []domain.CartLine{{ProductID: 1, Quantity: 1}},
				Paid:  -1,
			},
			setupMocks:    func(m *mocks.MockLedgerRepository) {},
			expectedError: &domain.ValidationError{},
			errorContains: "paid",
		},
		{
			name: "unknown_product_rejected",
			req: ports.SaleRequest{
				Items: []domain.CartLine{{ProductID: 99, Quantity: 1}},
				Paid:  1000,
			},
			setupMocks: func(m *mocks.MockLedgerRepository) {
				m.EXPECT().
					LockProducts(gomock.Any(), gomock.Any(), []int64{99}).
					Return(map[int64]domain.Product{}, nil)
			},
			expectedError: &domain.ProductNotFoundError{},
			errorContains: "product 99 not found",
		},
		{
			name: "zero_quantity_floored_to_one",
			req: ports.SaleRequest{
				Items: []domain.CartLine{{ProductID: 1, Quantity: 0}},
				Paid:  1000,
			},
			setupMocks: func(m *mocks.MockLedgerRepository) {
				m.EXPECT().
					LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
					Return(inStock, nil)
				m.EXPECT().
					InsertSale(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ pgx.Tx, sale *domain.Sale) error {
						assert.Equal(t, int64(1000), sale.Total)
						sale.ID = 7
						return nil
					})
				m.EXPECT().
					InsertSaleItems(gomock.Any(), gomock.Any(), int64(7), gomock.Any()).
					Return(nil)
				m.EXPECT().
					AdjustStock(gomock.Any(), gomock.Any(), int64(1), -1).
					Return(nil)
			},
			check: func(t *testing.T, receipt *ports.SaleReceipt) {
				assert.Equal(t, int64(1000), receipt.Total)
			},
		},
		{
			name: "repository_error_aborts_sale",
			req: ports.SaleRequest{
				Items: []domain.CartLine{{ProductID: 1, Quantity: 1}},
				Paid:  1000,
			},
			setupMocks: func(m *mocks.MockLedgerRepository) {
				m.EXPECT().
					LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
					Return(nil, errors.New("database connection failed"))
			},
			errorContains: "database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := mocks.NewMockLedgerRepository(ctrl)
			tt.setupMocks(mockRepo)

			service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

			receipt, err := service.FinalizeSale(context.Background(), tt.req)

			if tt.expectedError != nil || tt.errorContains != "" {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				switch want := tt.expectedError.(type) {
				case nil:
				case *domain.InsufficientStockError:
					var got *domain.InsufficientStockError
					assert.ErrorAs(t, err, &got)
				case *domain.ProductNotFoundError:
					var got *domain.ProductNotFoundError
					assert.ErrorAs(t, err, &got)
				case *domain.ValidationError:
					var got *domain.ValidationError
					assert.ErrorAs(t, err, &got)
				default:
					assert.ErrorIs(t, err, want)
				}
				assert.Nil(t, receipt)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, receipt)
			if tt.check != nil {
				tt.check(t, receipt)
			}
		})
	}
}

func TestSettlement_FinalizeSale_PaymentMethodPreserved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockLedgerRepository(ctrl)
	mockRepo.EXPECT().
		LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
		Return(map[int64]domain.Product{1: {ID: 1, Name: "Milk 1L", Price: 250, Stock: 10}}, nil)
	mockRepo.EXPECT().
		InsertSale(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, sale *domain.Sale) error {
			assert.Equal(t, domain.PaymentCard, sale.Method)
			assert.Equal(t, int64(0), sale.ChangeDue)
			sale.ID = 1
			return nil
		})
	mockRepo.EXPECT().
		InsertSaleItems(gomock.Any(), gomock.Any(), int64(1), gomock.Any()).
		Return(nil)
	mockRepo.EXPECT().
		AdjustStock(gomock.Any(), gomock.Any(), int64(1), -2).
		Return(nil)

	service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, nil, nil, helpers.TestLogger())

	receipt, err := service.FinalizeSale(context.Background(), ports.SaleRequest{
		Items:  []domain.CartLine{{ProductID: 1, Quantity: 2}},
		Paid:   500,
		Method: domain.PaymentCard,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(500), receipt.Total)
	assert.Equal(t, int64(0), receipt.Change)
}

func TestSettlement_FinalizeSale_SideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockLedgerRepository(ctrl)
	mockRepo.EXPECT().
		LockProducts(gomock.Any(), gomock.Any(), []int64{1}).
		Return(map[int64]domain.Product{
			1: {ID: 1, Name: "Espresso Beans 1kg", Price: 1000, Stock: 4, ReorderLevel: 3},
		}, nil)
	mockRepo.EXPECT().
		InsertSale(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, sale *domain.Sale) error {
			sale.ID = 9
			return nil
		})
	mockRepo.EXPECT().
		InsertSaleItems(gomock.Any(), gomock.Any(), int64(9), gomock.Any()).
		Return(nil)
	mockRepo.EXPECT().
		AdjustStock(gomock.Any(), gomock.Any(), int64(1), -2).
		Return(nil)

	mockCache := mocks.NewMockCacheRepository(ctrl)
	mockCache.EXPECT().
		DeletePattern(gomock.Any(), "catalog:*").
		Return(nil)

	enqueuer := &captureEnqueuer{}

	service := services.NewSettlement(mockRepo, &helpers.StubTransactor{}, mockCache, enqueuer, helpers.TestLogger())

	_, err := service.FinalizeSale(context.Background(), ports.SaleRequest{
		Items: []domain.CartLine{{ProductID: 1, Quantity: 2}},
		Paid:  2000,
	})

	require.NoError(t, err)
	// Stock fell from 4 to 2, at or below the reorder level of 3.
	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, services.TaskLowStockAlert, enqueuer.tasks[0].Type())
}

func TestSettlement_FinalizeSale_TransactionFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockLedgerRepository(ctrl)
	tx := &helpers.StubTransactor{Err: errors.New("could not acquire connection")}

	service := services.NewSettlement(mockRepo, tx, nil, nil, helpers.TestLogger())

	receipt, err := service.FinalizeSale(context.Background(), ports.SaleRequest{
		Items: []domain.CartLine{{ProductID: 1, Quantity: 1}},
		Paid:  1000,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not acquire connection")
	assert.Nil(t, receipt)
}

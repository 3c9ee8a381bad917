// internal/workers/stock_alert_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/services"
	"github.com/ovalles/posledger-be/internal/workers"
	"github.com/ovalles/posledger-be/test/helpers"
	"github.com/ovalles/posledger-be/test/mocks"
)

func stockAlertTask(t *testing.T, productIDs ...int64) *asynq.Task {
	t.Helper()

	payload, err := json.Marshal(services.LowStockAlertPayload{ProductIDs: productIDs})
	require.NoError(t, err)

	return asynq.NewTask(services.TaskLowStockAlert, payload)
}

func TestStockAlertProcessor_ProcessStockAlert(t *testing.T) {
	t.Run("alerts_once_per_product_within_the_dedupe_window", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		catalog := mocks.NewMockCatalogRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)

		// first product is fresh, second was already alerted
		cache.EXPECT().
			SetNX(gomock.Any(), "alert:low_stock:1", gomock.Any(), gomock.Any()).
			Return(true, nil)
		cache.EXPECT().
			SetNX(gomock.Any(), "alert:low_stock:2", gomock.Any(), gomock.Any()).
			Return(false, nil)

		catalog.EXPECT().
			FindByID(gomock.Any(), int64(1)).
			Return(helpers.CreateTestProduct(func(p *domain.Product) {
				p.Stock = 2
				p.ReorderLevel = 3
			}), nil)

		processor := workers.NewStockAlertProcessor(catalog, cache, helpers.TestLogger())

		err := processor.ProcessStockAlert(context.Background(), stockAlertTask(t, 1, 2))
		require.NoError(t, err)
	})

	t.Run("restocked_product_does_not_alert", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		catalog := mocks.NewMockCatalogRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)

		cache.EXPECT().
			SetNX(gomock.Any(), "alert:low_stock:1", gomock.Any(), gomock.Any()).
			Return(true, nil)

		catalog.EXPECT().
			FindByID(gomock.Any(), int64(1)).
			Return(helpers.CreateTestProduct(func(p *domain.Product) {
				p.Stock = 50
				p.ReorderLevel = 3
			}), nil)

		processor := workers.NewStockAlertProcessor(catalog, cache, helpers.TestLogger())

		err := processor.ProcessStockAlert(context.Background(), stockAlertTask(t, 1))
		require.NoError(t, err)
	})

	t.Run("deleted_product_does_not_alert", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		catalog := mocks.NewMockCatalogRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)

		cache.EXPECT().
			SetNX(gomock.Any(), "alert:low_stock:1", gomock.Any(), gomock.Any()).
			Return(true, nil)

		// FindByID reports an absent product as (nil, nil).
		catalog.EXPECT().
			FindByID(gomock.Any(), int64(1)).
			Return(nil, nil)

		processor := workers.NewStockAlertProcessor(catalog, cache, helpers.TestLogger())

		err := processor.ProcessStockAlert(context.Background(), stockAlertTask(t, 1))
		require.NoError(t, err)
	})

	t.Run("catalog_errors_do_not_fail_the_task", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		catalog := mocks.NewMockCatalogRepository(ctrl)
		cache := mocks.NewMockCacheRepository(ctrl)

		cache.EXPECT().
			SetNX(gomock.Any(), "alert:low_stock:7", gomock.Any(), gomock.Any()).
			Return(true, nil)

		catalog.EXPECT().
			FindByID(gomock.Any(), int64(7)).
			Return(nil, &domain.ProductNotFoundError{ProductID: 7})

		processor := workers.NewStockAlertProcessor(catalog, cache, helpers.TestLogger())

		err := processor.ProcessStockAlert(context.Background(), stockAlertTask(t, 7))
		require.NoError(t, err)
	})
}

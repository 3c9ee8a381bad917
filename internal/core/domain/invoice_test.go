package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovalles/posledger-be/internal/core/domain"
)

func TestMarginPercentage(t *testing.T) {
	tests := []struct {
		name      string
		costPrice int64
		salePrice int64
		want      string
	}{
		{
			name:      "twenty_percent_margin",
			costPrice: 80,
			salePrice: 100,
			want:      "20",
		},
		{
			name:      "rounds_to_two_decimals",
			costPrice: 100,
			salePrice: 300,
			want:      "66.67",
		},
		{
			name:      "zero_margin",
			costPrice: 500,
			salePrice: 500,
			want:      "0",
		},
		{
			name:      "negative_margin_when_sold_below_cost",
			costPrice: 120,
			salePrice: 100,
			want:      "-20",
		},
		{
			name:      "minor_units_do_not_drift",
			costPrice: 8000,
			salePrice: 10000,
			want:      "20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.MarginPercentage(tt.costPrice, tt.salePrice)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestInvoiceItemInput_Normalize(t *testing.T) {
	productID := int64(7)

	tests := []struct {
		name      string
		input     domain.InvoiceItemInput
		wantKind  domain.InvoiceItemKind
		wantError bool
		errorMsg  string
	}{
		{
			name: "existing_product_item",
			input: domain.InvoiceItemInput{
				ProductID:    &productID,
				CostPriceNet: 80,
				NewSalePrice: 100,
				Quantity:     5,
			},
			wantKind: domain.ItemExistingProduct,
		},
		{
			name: "new_product_item",
			input: domain.InvoiceItemInput{
				Barcode:      "4006381333931",
				Name:         "Mineral Water 500ml",
				CostPriceNet: 300,
				NewSalePrice: 500,
				Quantity:     24,
			},
			wantKind: domain.ItemNewProduct,
		},
		{
			name: "zero_cost_price_rejected",
			input: domain.InvoiceItemInput{
				Barcode:      "4006381333931",
				Name:         "Mineral Water 500ml",
				CostPriceNet: 0,
				NewSalePrice: 500,
				Quantity:     24,
			},
			wantError: true,
			errorMsg:  "cost_price_net",
		},
		{
			name: "zero_sale_price_rejected",
			input: domain.InvoiceItemInput{
				ProductID:    &productID,
				CostPriceNet: 80,
				NewSalePrice: 0,
				Quantity:     5,
			},
			wantError: true,
			errorMsg:  "new_sale_price",
		},
		{
			name: "zero_quantity_rejected",
			input: domain.InvoiceItemInput{
				ProductID:    &productID,
				CostPriceNet: 80,
				NewSalePrice: 100,
				Quantity:     0,
			},
			wantError: true,
			errorMsg:  "quantity",
		},
		{
			name: "new_product_without_name_rejected",
			input: domain.InvoiceItemInput{
				Barcode:      "4006381333931",
				CostPriceNet: 300,
				NewSalePrice: 500,
				Quantity:     1,
			},
			wantError: true,
			errorMsg:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Normalize()

			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.input.CostPriceNet, got.CostPriceNet)
			assert.Equal(t, tt.input.NewSalePrice, got.NewSalePrice)
			assert.Equal(t, tt.input.Quantity, got.Quantity)
			if tt.wantKind == domain.ItemExistingProduct {
				assert.Equal(t, productID, got.ProductID)
			} else {
				assert.Zero(t, got.ProductID)
				assert.Equal(t, tt.input.Name, got.Name)
			}
		})
	}
}

func TestInvoiceItemError_IdentifiesOffendingItem(t *testing.T) {
	inner := &domain.ValidationError{Field: "cost_price_net", Reason: "must be strictly positive"}
	err := &domain.InvoiceItemError{Index: 2, Name: "Mineral Water 500ml", Err: inner}

	assert.Contains(t, err.Error(), "item 3")
	assert.Contains(t, err.Error(), "Mineral Water 500ml")
	assert.ErrorAs(t, err, new(*domain.ValidationError))
}

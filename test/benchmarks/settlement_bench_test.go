package benchmarks

import (
	"fmt"
	"testing"

	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/workers"
)

// benchmarkInvoiceText builds a plausible extracted invoice with n item lines.
func benchmarkInvoiceText(n int) []string {
	lines := make([]string, 0, n+4)
	lines = append(lines,
		"ACME WHOLESALE LTD",
		"Invoice INV-2026-0144",
		"BARCODE        DESCRIPTION             QTY    UNIT COST    RETAIL",
	)
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf(
			"75010313%05d Benchmark Product %03d %d x $%d.%02d $%d.%02d",
			i, i, 1+i%24, 1+i%40, i%100, 2+i%60, i%100))
	}
	lines = append(lines, "SUBTOTAL 4,812.55")
	return lines
}

func BenchmarkParseInvoiceLines(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("items_%d", size), func(b *testing.B) {
			lines := benchmarkInvoiceText(size)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				items, _ := workers.ParseInvoiceLines(lines)
				if len(items) != size {
					b.Fatalf("parsed %d items, want %d", len(items), size)
				}
			}
		})
	}
}

func BenchmarkMarginPercentage(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = domain.MarginPercentage(int64(100+i%900), int64(200+i%1800))
	}
}

func BenchmarkNormalizeInvoiceItem(b *testing.B) {
	productID := int64(42)
	inputs := []domain.InvoiceItemInput{
		{ProductID: &productID, CostPriceNet: 400, NewSalePrice: 800, Quantity: 10},
		{Barcode: "4006381333931", Name: "Oat Milk 1L", CostPriceNet: 125, NewSalePrice: 219, Quantity: 6},
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := inputs[i%len(inputs)].Normalize(); err != nil {
			b.Fatal(err)
		}
	}
}

//go:build integration
// +build integration

package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ovalles/posledger-be/internal/adapters/db"
	"github.com/ovalles/posledger-be/internal/core/domain"
	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/test/helpers"
)

type CatalogRepositorySuite struct {
	suite.Suite
	testDB *helpers.TestDB
	repo   ports.CatalogRepository
	ctx    context.Context
}

func (s *CatalogRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewCatalogRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *CatalogRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *CatalogRepositorySuite) TestFindByID() {
	s.Run("existing_product", func() {
		ids := helpers.SeedProducts(s.T(), s.testDB.PgxPool, []domain.Product{
			*helpers.CreateTestProduct(func(p *domain.Product) {
				p.Name = "Espresso Beans 1kg"
				p.Barcode = "7501031311309"
			}),
		})

		found, err := s.repo.FindByID(s.ctx, ids[0])
		s.Require().NoError(err)
		s.Require().NotNil(found)
		s.Equal("Espresso Beans 1kg", found.Name)
		s.Equal("7501031311309", found.Barcode)
	})

	s.Run("missing_product", func() {
		found, err := s.repo.FindByID(s.ctx, 424242)
		s.NoError(err)
		s.Nil(found)
	})

	s.Run("soft_deleted_product", func() {
		ids := helpers.SeedProducts(s.T(), s.testDB.PgxPool, []domain.Product{
			*helpers.CreateTestProduct(func(p *domain.Product) {
				p.Barcode = "4006381333931"
			}),
		})

		_, err := s.testDB.PgxPool.Exec(s.ctx,
			`UPDATE products SET deleted_at = now() WHERE id = $1`, ids[0])
		s.Require().NoError(err)

		found, err := s.repo.FindByID(s.ctx, ids[0])
		s.NoError(err)
		s.Nil(found)
	})
}

func (s *CatalogRepositorySuite) TestFindByBarcode() {
	helpers.SeedProducts(s.T(), s.testDB.PgxPool, []domain.Product{
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Oat Milk 1L"
			p.Barcode = "4006381333931"
		}),
	})

	found, err := s.repo.FindByBarcode(s.ctx, "4006381333931")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("Oat Milk 1L", found.Name)

	missing, err := s.repo.FindByBarcode(s.ctx, "0000000000000")
	s.NoError(err)
	s.Nil(missing)
}

func (s *CatalogRepositorySuite) TestFindAll_Pagination() {
	s.seedNumbered(25)

	params := ports.CatalogListParams{
		Page:      1,
		PageSize:  10,
		SortBy:    "name",
		SortOrder: "asc",
	}

	products, total, err := s.repo.FindAll(s.ctx, params)
	s.Require().NoError(err)
	s.Len(products, 10)
	s.Equal(int64(25), total)
	s.Equal("Product 01", products[0].Name)
	s.Equal("Product 10", products[9].Name)

	params.Page = 3
	products, total, err = s.repo.FindAll(s.ctx, params)
	s.Require().NoError(err)
	s.Len(products, 5)
	s.Equal(int64(25), total)
	s.Equal("Product 21", products[0].Name)
}

func (s *CatalogRepositorySuite) TestFindAll_Search() {
	helpers.SeedProducts(s.T(), s.testDB.PgxPool, []domain.Product{
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Espresso Beans 1kg"
			p.Barcode = "7501031311309"
		}),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Espresso Cups 6pk"
			p.Barcode = "7501031311316"
		}),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Oat Milk 1L"
			p.Barcode = "4006381333931"
		}),
	})

	products, total, err := s.repo.FindAll(s.ctx, ports.CatalogListParams{
		Search:   "espresso",
		Page:     1,
		PageSize: 10,
	})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(products, 2)
	for _, p := range products {
		s.Contains(p.Name, "Espresso")
	}
}

func (s *CatalogRepositorySuite) TestFindAll_LowStockFilter() {
	helpers.SeedProducts(s.T(), s.testDB.PgxPool, []domain.Product{
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Running Low"
			p.Barcode = "7501031311309"
			p.Stock = 2
			p.ReorderLevel = 5
		}),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Well Stocked"
			p.Barcode = "4006381333931"
			p.Stock = 50
			p.ReorderLevel = 5
		}),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "No Reorder Level"
			p.Barcode = "5000112637922"
			p.Stock = 0
			p.ReorderLevel = 0
		}),
	})

	products, total, err := s.repo.FindAll(s.ctx, ports.CatalogListParams{
		LowStock: true,
		Page:     1,
		PageSize: 10,
	})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(products, 1)
	s.Equal("Running Low", products[0].Name)
}

func (s *CatalogRepositorySuite) TestFindBelowReorderLevel() {
	helpers.SeedProducts(s.T(), s.testDB.PgxPool, []domain.Product{
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Running Low"
			p.Barcode = "7501031311309"
			p.Stock = 2
			p.ReorderLevel = 5
		}),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "At The Threshold"
			p.Barcode = "4006381333931"
			p.Stock = 5
			p.ReorderLevel = 5
		}),
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Name = "Well Stocked"
			p.Barcode = "5000112637922"
			p.Stock = 50
			p.ReorderLevel = 5
		}),
	})

	products, err := s.repo.FindBelowReorderLevel(s.ctx)
	s.Require().NoError(err)
	s.Len(products, 2)
}

func (s *CatalogRepositorySuite) TestSave_InsertAndUpdate() {
	product := helpers.CreateTestProduct(func(p *domain.Product) {
		p.ID = 0
		p.Name = "Hazelnut Spread 400g"
		p.Barcode = "3017620422003"
		p.Price = 449
		p.CostPrice = 280
		p.Stock = 12
	})

	err := s.repo.Save(s.ctx, product)
	s.Require().NoError(err)
	s.NotZero(product.ID)

	// Update pricing; stock is settlement-owned and must stay untouched.
	product.Price = 479
	product.CostPrice = 300
	product.Stock = 999
	err = s.repo.Save(s.ctx, product)
	s.Require().NoError(err)

	saved, err := s.repo.FindByID(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal(int64(479), saved.Price)
	s.Equal(int64(300), saved.CostPrice)
	s.Equal(12, saved.Stock)
}

func (s *CatalogRepositorySuite) TestSave_DuplicateBarcodeConflicts() {
	helpers.SeedProducts(s.T(), s.testDB.PgxPool, []domain.Product{
		*helpers.CreateTestProduct(func(p *domain.Product) {
			p.Barcode = "7501031311309"
		}),
	})

	dup := helpers.CreateTestProduct(func(p *domain.Product) {
		p.ID = 0
		p.Name = "Duplicate Barcode"
		p.Barcode = "7501031311309"
	})

	err := s.repo.Save(s.ctx, dup)
	var conflict *domain.ConflictError
	s.Require().ErrorAs(err, &conflict)
}

func (s *CatalogRepositorySuite) TestSave_UpdateMissingProduct() {
	ghost := helpers.CreateTestProduct(func(p *domain.Product) {
		p.ID = 424242
		p.Barcode = "7501031311309"
	})

	err := s.repo.Save(s.ctx, ghost)
	var notFound *domain.ProductNotFoundError
	s.Require().ErrorAs(err, &notFound)
}

func (s *CatalogRepositorySuite) TestCount() {
	s.seedNumbered(7)

	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(7), count)
}

func (s *CatalogRepositorySuite) seedNumbered(n int) {
	products := make([]domain.Product, n)
	for i := 0; i < n; i++ {
		products[i] = *helpers.CreateTestProduct(func(p *domain.Product) {
			p.ID = 0
			p.Name = fmt.Sprintf("Product %02d", i+1)
			p.Barcode = fmt.Sprintf("750103131%04d", i+1)
		})
	}
	helpers.SeedProducts(s.T(), s.testDB.PgxPool, products)
}

func TestCatalogRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(CatalogRepositorySuite))
}

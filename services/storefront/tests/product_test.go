package tests

import (
	"errors"
	"fmt"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const incrementStockFunction = `
CREATE OR REPLACE FUNCTION increment_stock(p_product_id UUID, p_quantity INTEGER)
RETURNS INTEGER
LANGUAGE sql AS $$
    UPDATE products
    SET stock = LEAST(2147483647, GREATEST(0, stock::BIGINT + p_quantity))::INTEGER, updated_at = NOW()
    WHERE id = p_product_id
    RETURNING stock;
$$;`

func (s *IntegrationTestSuite) TestAdjustStock_ClampsAtZero() {
	product := s.seedProduct("Block Print Table Runner", "799.00", 3)

	stock, err := s.ProductService.AdjustStock(s.Ctx, product.ID, -10)
	s.Require().NoError(err)
	s.Require().Zero(stock)

	stock, err = s.ProductService.AdjustStock(s.Ctx, product.ID, 4)
	s.Require().NoError(err)
	s.Require().Equal(4, stock)
	s.Require().Equal(4, s.stockOf(product.ID))

	s.Require().Equal(2, s.countRows(`SELECT COUNT(*) FROM outbox WHERE aggregate_type = 'Product'`))
}

func (s *IntegrationTestSuite) TestAdjustStock_ClampsAtColumnMaximum() {
	product := s.seedProduct("Block Print Table Runner", "799.00", domain.MaxStock-5)

	stock, err := s.ProductService.AdjustStock(s.Ctx, product.ID, 100)
	s.Require().NoError(err)
	s.Require().Equal(domain.MaxStock, stock)
	s.Require().Equal(domain.MaxStock, s.stockOf(product.ID))

	_, err = s.DbPool.Exec(s.Ctx, `DROP FUNCTION increment_stock(UUID, INTEGER)`)
	s.Require().NoError(err)
	defer func() {
		_, err := s.DbPool.Exec(s.Ctx, incrementStockFunction)
		s.Require().NoError(err)
	}()

	stock, err = s.ProductService.AdjustStock(s.Ctx, product.ID, 100)
	s.Require().NoError(err)
	s.Require().Equal(domain.MaxStock, stock)
}

func (s *IntegrationTestSuite) TestCreateProduct_PriceOverflowIsRangeError() {
	_, err := s.ProductService.Create(s.Ctx, &domain.ProductInput{
		Title:  "Gold Zari Saree",
		Price:  decimal.RequireFromString("99999999999999"),
		Stock:  1,
		Images: []string{"https://img.example.com/saree.png"},
	})
	s.Require().ErrorIs(err, repository.ErrValueOutOfRange)
	s.Require().Zero(s.countRows(`SELECT COUNT(*) FROM products`))
}

func (s *IntegrationTestSuite) TestAdjustStock_FallsBackWithoutProcedure() {
	product := s.seedProduct("Block Print Table Runner", "799.00", 3)

	_, err := s.DbPool.Exec(s.Ctx, `DROP FUNCTION increment_stock(UUID, INTEGER)`)
	s.Require().NoError(err)
	defer func() {
		_, err := s.DbPool.Exec(s.Ctx, incrementStockFunction)
		s.Require().NoError(err)
	}()

	stock, err := s.ProductService.AdjustStock(s.Ctx, product.ID, 2)
	s.Require().NoError(err)
	s.Require().Equal(5, stock)

	stock, err = s.ProductService.AdjustStock(s.Ctx, product.ID, -9)
	s.Require().NoError(err)
	s.Require().Zero(stock)

	_, err = s.ProductService.AdjustStock(s.Ctx, uuid.New(), 1)
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))
}

func (s *IntegrationTestSuite) TestAdjustStock_UnknownProduct() {
	_, err := s.ProductService.AdjustStock(s.Ctx, uuid.New(), 1)
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))
	s.Require().Zero(s.countRows(`SELECT COUNT(*) FROM outbox`))
}

func (s *IntegrationTestSuite) TestStock_NeverNegativeInStore() {
	product := s.seedProduct("Block Print Table Runner", "799.00", 3)

	_, err := s.DbPool.Exec(s.Ctx, `UPDATE products SET stock = -1 WHERE id = $1`, product.ID)
	s.Require().Error(err)

	var pgErr *pgconn.PgError
	s.Require().True(errors.As(err, &pgErr))
	s.Require().Equal("23514", pgErr.Code)
}

func (s *IntegrationTestSuite) TestDeleteProduct_GuardedByActiveOrders() {
	product := s.seedProduct("Chikankari Kurta", "1800.00", 4)

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 1)))
	s.Require().NoError(err)

	err = s.ProductService.Delete(s.Ctx, product.ID)
	s.Require().Error(err)
	s.Require().True(errors.Is(err, service.ErrProductInActiveOrder))

	_, err = s.OrderService.Update(s.Ctx, order.ID, s.statusUpdate(domain.OrderStatusCancelled))
	s.Require().NoError(err)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, product.ID))

	_, err = s.ProductService.Get(s.Ctx, product.ID)
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))

	items, err := s.OrderService.Items(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Require().Nil(items[0].ProductID)
	s.Require().Equal("Chikankari Kurta", items[0].ProductTitle)
}

func (s *IntegrationTestSuite) TestDeleteProduct_NotFound() {
	err := s.ProductService.Delete(s.Ctx, uuid.New())
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))
}

func (s *IntegrationTestSuite) TestCreateProduct_UnknownCategoryRollsBack() {
	_, err := s.ProductService.Create(s.Ctx, &domain.ProductInput{
		Title:       "Orphan Hanky",
		Price:       decimal.RequireFromString("99.00"),
		CategoryIDs: []uuid.UUID{uuid.New()},
	})
	s.Require().True(errors.Is(err, repository.ErrUnknownCategory))
	s.Require().Zero(s.countRows(`SELECT COUNT(*) FROM products`))
}

func (s *IntegrationTestSuite) TestUpdateProduct_ReplacesCategories() {
	sarees := s.seedCategory("Sarees", "sarees")
	gifts := s.seedCategory("Gifts", "gifts")
	product := s.seedProduct("Paithani Saree", "9500.00", 1, sarees)
	s.Require().Equal([]uuid.UUID{sarees}, product.CategoryIDs)

	updated, err := s.ProductService.Update(s.Ctx, product.ID, &domain.ProductInput{
		Title:       "Paithani Saree",
		Price:       decimal.RequireFromString("9000.00"),
		Stock:       1,
		CategoryIDs: []uuid.UUID{gifts},
	})
	s.Require().NoError(err)
	s.Require().Equal([]uuid.UUID{gifts}, updated.CategoryIDs)

	inSarees, err := s.ProductService.ListByCategory(s.Ctx, sarees)
	s.Require().NoError(err)
	s.Require().Empty(inSarees)
}

func (s *IntegrationTestSuite) TestListByCategory_UnknownCategory() {
	_, err := s.ProductService.ListByCategory(s.Ctx, uuid.New())
	s.Require().True(errors.Is(err, repository.ErrCategoryNotFound))
}

func (s *IntegrationTestSuite) TestRelated_PrefersSharedCategories() {
	sarees := s.seedCategory("Sarees", "sarees")
	kurtas := s.seedCategory("Kurtas", "kurtas")

	source := s.seedProduct("Silk Saree Maroon", "5000.00", 1, sarees)
	siblings := map[uuid.UUID]bool{}
	for i := range 3 {
		p := s.seedProduct(fmt.Sprintf("Cotton Saree %d", i), "2000.00", 2, sarees)
		siblings[p.ID] = true
	}
	for i := range 3 {
		s.seedProduct(fmt.Sprintf("Linen Kurta %d", i), "1500.00", 2, kurtas)
	}

	related, err := s.ProductService.Related(s.Ctx, source.ID, 10)
	s.Require().NoError(err)
	s.Require().Len(related, 3)
	for _, p := range related {
		s.Require().True(siblings[p.ID], "unexpected related product %s", p.Title)
	}
}

func (s *IntegrationTestSuite) TestCategory_SlugTaken() {
	s.seedCategory("Sarees", "sarees")

	_, err := s.CategoryService.Create(s.Ctx, &domain.Category{Name: "Saree Sale", Slug: " SAREES "})
	s.Require().True(errors.Is(err, repository.ErrCategorySlugTaken))
}

func (s *IntegrationTestSuite) TestCategory_DeleteKeepsProducts() {
	sarees := s.seedCategory("Sarees", "sarees")
	product := s.seedProduct("Paithani Saree", "9500.00", 1, sarees)

	s.Require().NoError(s.CategoryService.Delete(s.Ctx, sarees))

	got, err := s.ProductService.Get(s.Ctx, product.ID)
	s.Require().NoError(err)
	s.Require().Empty(got.CategoryIDs)

	err = s.CategoryService.Delete(s.Ctx, sarees)
	s.Require().True(errors.Is(err, repository.ErrCategoryNotFound))
}

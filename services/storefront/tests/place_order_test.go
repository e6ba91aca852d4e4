package tests

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	events "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestPlaceOrder_SnapshotsCatalogPrice() {
	product, err := s.ProductService.Create(s.Ctx, &domain.ProductInput{
		Title:         "Lace Border Hanky",
		Price:         decimal.RequireFromString("300.00"),
		DiscountPrice: ptr(decimal.RequireFromString("240.00")),
		Stock:         10,
	})
	s.Require().NoError(err)

	// The client claims a stale price; the catalog wins.
	item := line(product, 3)
	item.Price = decimal.RequireFromString("100.00")
	item.Title = "Old title"

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", item))
	s.Require().NoError(err)
	s.Require().True(decimal.RequireFromString("720.00").Equal(order.TotalPrice))

	items, err := s.OrderService.Items(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Require().Equal("Lace Border Hanky", items[0].ProductTitle)
	s.Require().True(decimal.RequireFromString("240.00").Equal(items[0].PriceAtPurchase))

	_, err = s.ProductService.Update(s.Ctx, product.ID, &domain.ProductInput{
		Title: "Lace Border Hanky (New)",
		Price: decimal.RequireFromString("500.00"),
		Stock: 7,
	})
	s.Require().NoError(err)

	items, err = s.OrderService.Items(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal("Lace Border Hanky", items[0].ProductTitle)
	s.Require().True(decimal.RequireFromString("240.00").Equal(items[0].PriceAtPurchase))
}

func (s *IntegrationTestSuite) TestPlaceOrder_RepeatedLinesShareStock() {
	product := s.seedProduct("Mirror Work Pouch", "150.00", 3)

	_, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 2), line(product, 2)))
	s.Require().Error(err)

	var stockErr *service.StockError
	s.Require().True(errors.As(err, &stockErr))
	s.Require().Equal(3, stockErr.Available)
	s.Require().Equal(3, s.stockOf(product.ID))
}

func (s *IntegrationTestSuite) TestPlaceOrder_MissingProduct() {
	product := s.seedProduct("Mirror Work Pouch", "150.00", 3)
	ghost := domain.PlaceOrderItem{
		ProductID: uuid.New(),
		Quantity:  1,
		Price:     decimal.RequireFromString("10.00"),
		Title:     "Ghost Scarf",
	}

	_, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 1), ghost))
	s.Require().Error(err)
	s.Require().EqualError(err, "Product Ghost Scarf not found")
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))

	s.Require().Equal(3, s.stockOf(product.ID))
	s.Require().Zero(s.countRows(`SELECT COUNT(*) FROM orders`))
}

func (s *IntegrationTestSuite) TestPlaceOrder_ConcurrentLastUnit() {
	product := s.seedProduct("Last Bandhani Stole", "1200.00", 1)

	const buyers = 8
	var (
		wg       sync.WaitGroup
		placed   atomic.Int32
		rejected atomic.Int32
	)

	start := make(chan struct{})
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := s.OrderService.Place(s.Ctx, s.orderInput("buyer@example.com", line(product, 1)))
			switch {
			case err == nil:
				placed.Add(1)
			case errors.Is(err, repository.ErrInsufficientStock):
				rejected.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Require().EqualValues(1, placed.Load())
	s.Require().EqualValues(buyers-1, rejected.Load())
	s.Require().Zero(s.stockOf(product.ID))
	s.Require().Equal(1, s.countRows(`SELECT COUNT(*) FROM orders`))
}

func (s *IntegrationTestSuite) TestPlaceOrder_PublishesOrderPlaced() {
	product := s.seedProduct("Floral Cotton Hanky", "250.00", 5)

	order, err := s.OrderService.Place(s.Ctx, s.orderInput("asha@example.com", line(product, 1)))
	s.Require().NoError(err)

	query := `
		SELECT COUNT(*)
		FROM outbox
		WHERE aggregate_id = $1 AND event_type = $2 AND published_at IS NULL
	`
	s.Require().Equal(1, s.countRows(query, order.ID.String(), events.EventOrderPlaced))

	s.Require().Eventually(func() bool {
		if _, err := s.OutboxProcessor.ProcessBatch(s.Ctx); err != nil {
			return false
		}

		return s.countRows(query, order.ID.String(), events.EventOrderPlaced) == 0
	}, 30*time.Second, 500*time.Millisecond)
}

func (s *IntegrationTestSuite) TestListMine_MatchesEmailCaseInsensitively() {
	product := s.seedProduct("Floral Cotton Hanky", "250.00", 5)

	_, err := s.OrderService.Place(s.Ctx, s.orderInput("Asha@Example.com", line(product, 1)))
	s.Require().NoError(err)
	_, err = s.OrderService.Place(s.Ctx, s.orderInput("someone@example.com", line(product, 1)))
	s.Require().NoError(err)

	orders, err := s.OrderService.ListMine(s.Ctx, "asha@example.com")
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Require().Len(orders[0].Items, 1)

	all, err := s.OrderService.List(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
}

func ptr[T any](v T) *T {
	return &v
}

package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) do(method, target string, body any, headers map[string]string) (int, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return resp.StatusCode, raw
}

func checkoutBody(p *domain.Product, quantity int) fiber.Map {
	total := p.EffectivePrice().Mul(decimal.NewFromInt(int64(quantity)))

	return fiber.Map{
		"customer_name":    "Asha Patil",
		"customer_email":   "asha@example.com",
		"customer_phone":   "9876543210",
		"shipping_address": "12 MG Road, Pune, Maharashtra",
		"total_price":      total,
		"items": []fiber.Map{
			{
				"product_id": p.ID.String(),
				"quantity":   quantity,
				"price":      p.EffectivePrice(),
				"title":      p.Title,
			},
		},
	}
}

func (s *IntegrationTestSuite) TestCheckout_DecrementsStock() {
	product := s.seedProduct("Floral Cotton Hanky", "250.00", 5)

	status, raw := s.do(http.MethodPost, "/api/orders", checkoutBody(product, 2), nil)
	s.Require().Equal(http.StatusCreated, status, string(raw))

	var resp struct {
		Message string `json:"message"`
		OrderID string `json:"order_id"`
	}
	s.Require().NoError(json.Unmarshal(raw, &resp))
	s.Require().Equal("Order placed successfully", resp.Message)
	s.Require().NotEmpty(resp.OrderID)

	s.Require().Equal(3, s.stockOf(product.ID))
	s.Require().Equal(1, s.countRows(`SELECT COUNT(*) FROM orders WHERE id = $1`, resp.OrderID))
	s.Require().Equal(1, s.countRows(`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, resp.OrderID))
}

func (s *IntegrationTestSuite) TestCheckout_InsufficientStockPersistsNothing() {
	product := s.seedProduct("Floral Cotton Hanky", "250.00", 1)

	status, raw := s.do(http.MethodPost, "/api/orders", checkoutBody(product, 2), nil)
	s.Require().Equal(http.StatusBadRequest, status, string(raw))

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(raw, &resp))
	s.Require().Equal("Insufficient stock for Floral Cotton Hanky. Available: 1", resp["error"])

	s.Require().Equal(1, s.stockOf(product.ID))
	s.Require().Zero(s.countRows(`SELECT COUNT(*) FROM orders`))
	s.Require().Zero(s.countRows(`SELECT COUNT(*) FROM order_items`))
	s.Require().Zero(s.countRows(`SELECT COUNT(*) FROM outbox`))
}

func (s *IntegrationTestSuite) TestRelated_WithoutSharedCategoriesExcludesSource() {
	source := s.seedProduct("Embroidered Silk Saree", "4500.00", 2)
	for i := range 6 {
		s.seedProduct(fmt.Sprintf("Handloom Dupatta %d", i), "900.00", 3)
	}

	status, raw := s.do(http.MethodGet, "/api/products/"+source.ID.String()+"/related?limit=4", nil, nil)
	s.Require().Equal(http.StatusOK, status, string(raw))

	var related []domain.Product
	s.Require().NoError(json.Unmarshal(raw, &related))
	s.Require().NotEmpty(related)
	s.Require().LessOrEqual(len(related), 4)
	for _, p := range related {
		s.Require().NotEqual(source.ID, p.ID)
	}
}

func (s *IntegrationTestSuite) TestAdminRoutes_RequireSecretOrToken() {
	product := s.seedProduct("Floral Cotton Hanky", "250.00", 5)
	target := "/api/products/" + product.ID.String() + "/stock"
	body := fiber.Map{"adjustment": 3}

	status, _ := s.do(http.MethodPatch, target, body, nil)
	s.Require().Equal(http.StatusUnauthorized, status)

	status, raw := s.do(http.MethodPatch, target, body, map[string]string{
		middleware.AdminSecretHeader: testAdminSecret,
	})
	s.Require().Equal(http.StatusOK, status, string(raw))
	s.Require().Equal(8, s.stockOf(product.ID))
}

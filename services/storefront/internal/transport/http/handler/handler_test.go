package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HandlerSuite struct {
	suite.Suite
	app        *fiber.App
	products   *mockProductService
	orders     *mockOrderService
	categories *mockCategoryService
	settings   *mockSettingsService
	uploader   *mockUploader
	identity   *domain.Identity
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := zap.NewNop()

	s.products = new(mockProductService)
	s.orders = new(mockOrderService)
	s.categories = new(mockCategoryService)
	s.settings = new(mockSettingsService)
	s.uploader = new(mockUploader)
	s.identity = nil

	ph := NewProductHandler(s.products, logger)
	oh := NewOrderHandler(s.orders, logger)
	ch := NewCategoryHandler(s.categories, logger)
	sh := NewSettingsHandler(s.settings, logger)
	uh := NewUploadHandler(s.uploader, logger)

	s.app = fiber.New()
	s.app.Use(func(c *fiber.Ctx) error {
		if s.identity != nil {
			c.Locals(middleware.LocalsIdentity, *s.identity)
		}
		return c.Next()
	})

	s.app.Get("/api/products", ph.ListProducts)
	s.app.Get("/api/products/:id/related", ph.Related)
	s.app.Get("/api/products/:id", ph.GetProduct)
	s.app.Post("/api/products", ph.Create)
	s.app.Patch("/api/products/:id/stock", ph.AdjustStock)
	s.app.Delete("/api/products/:id", ph.Delete)
	s.app.Post("/api/categories", ch.Create)
	s.app.Post("/api/orders", oh.Place)
	s.app.Get("/api/orders/mine", oh.Mine)
	s.app.Put("/api/orders/:id", oh.Update)
	s.app.Put("/api/settings", sh.Update)
	s.app.Post("/api/uploads/images", uh.Images)
}

func (s *HandlerSuite) do(method, path string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	return s.send(req)
}

func (s *HandlerSuite) send(req *http.Request) (int, []byte) {
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return resp.StatusCode, raw
}

func (s *HandlerSuite) object(raw []byte) map[string]any {
	res := map[string]any{}
	s.Require().NoError(json.Unmarshal(raw, &res))
	return res
}

func validProductBody() map[string]any {
	return map[string]any{
		"title":  "Cotton Hanky",
		"price":  499,
		"stock":  5,
		"images": []string{"https://img.example.com/a.png"},
	}
}

func validOrderBody(productID uuid.UUID) map[string]any {
	return map[string]any{
		"customer_name":    "Asha",
		"customer_email":   "asha@example.com",
		"shipping_address": "12 Temple Road, Pune",
		"total_price":      998,
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": 2, "price": 499, "title": "Cotton Hanky"},
		},
	}
}

func (s *HandlerSuite) TestGetProduct_MalformedIDIsNotFound() {
	status, raw := s.do(fiber.MethodGet, "/api/products/not-a-uuid", nil)

	s.Equal(fiber.StatusNotFound, status)
	s.Equal("Product not found", s.object(raw)["error"])
	s.products.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestGetProduct_Missing() {
	id := uuid.New()
	s.products.On("Get", mock.Anything, id).Return(nil, repository.ErrProductNotFound)

	status, raw := s.do(fiber.MethodGet, "/api/products/"+id.String(), nil)

	s.Equal(fiber.StatusNotFound, status)
	s.Equal("Product not found", s.object(raw)["error"])
}

func (s *HandlerSuite) TestListProducts_StoreFailureHidesDetail() {
	s.products.On("List", mock.Anything).Return([]domain.Product(nil), errors.New("connection refused"))

	status, raw := s.do(fiber.MethodGet, "/api/products", nil)

	s.Equal(fiber.StatusInternalServerError, status)
	s.Equal("internal server error", s.object(raw)["error"])
}

func (s *HandlerSuite) TestRelated_PassesLimit() {
	id := uuid.New()
	s.products.On("Related", mock.Anything, id, 7).Return([]domain.Product{}, nil).Once()
	s.products.On("Related", mock.Anything, id, service.DefaultRelatedLimit).Return([]domain.Product{}, nil).Once()

	status, _ := s.do(fiber.MethodGet, fmt.Sprintf("/api/products/%s/related?limit=7", id), nil)
	s.Equal(fiber.StatusOK, status)

	status, _ = s.do(fiber.MethodGet, fmt.Sprintf("/api/products/%s/related?limit=abc", id), nil)
	s.Equal(fiber.StatusOK, status)

	s.products.AssertExpectations(s.T())
}

func (s *HandlerSuite) TestCreateProduct_ValidationDetails() {
	status, raw := s.do(fiber.MethodPost, "/api/products", map[string]any{
		"title": "ab",
		"price": 0,
	})

	s.Equal(fiber.StatusBadRequest, status)
	body := s.object(raw)
	s.Equal("Validation failed", body["error"])

	details, ok := body["details"].(map[string]any)
	s.Require().True(ok)
	s.Contains(details, "title")
	s.Contains(details, "price")
	s.Contains(details, "images")
}

func (s *HandlerSuite) TestCreateProduct_DiscountMustBeBelowPrice() {
	body := validProductBody()
	body["discount_price"] = 499

	status, raw := s.do(fiber.MethodPost, "/api/products", body)

	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(s.object(raw)["details"], "discount_price")
}

func (s *HandlerSuite) TestCreateProduct_Created() {
	categoryID := uuid.New()
	body := validProductBody()
	body["category_ids"] = []string{categoryID.String()}

	created := &domain.Product{ID: uuid.New(), Title: "Cotton Hanky", Price: decimal.NewFromInt(499)}
	s.products.On("Create", mock.Anything, mock.MatchedBy(func(in *domain.ProductInput) bool {
		return in.Title == "Cotton Hanky" && in.Stock == 5 &&
			len(in.CategoryIDs) == 1 && in.CategoryIDs[0] == categoryID
	})).Return(created, nil)

	status, raw := s.do(fiber.MethodPost, "/api/products", body)

	s.Equal(fiber.StatusCreated, status)
	s.Equal(created.ID.String(), s.object(raw)["id"])
}

func (s *HandlerSuite) TestAdjustStock_ZeroRejected() {
	status, _ := s.do(fiber.MethodPatch, "/api/products/"+uuid.NewString()+"/stock", map[string]any{"adjustment": 0})
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *HandlerSuite) TestAdjustStock_ReturnsStock() {
	id := uuid.New()
	s.products.On("AdjustStock", mock.Anything, id, -3).Return(0, nil)

	status, raw := s.do(fiber.MethodPatch, "/api/products/"+id.String()+"/stock", map[string]any{"adjustment": -3})

	s.Equal(fiber.StatusOK, status)
	body := s.object(raw)
	s.Equal("Stock updated", body["message"])
	s.EqualValues(0, body["stock"])
}

func (s *HandlerSuite) TestDeleteProduct_InActiveOrder() {
	id := uuid.New()
	s.products.On("Delete", mock.Anything, id).
		Return(fmt.Errorf("delete product %s: %w", id, service.ErrProductInActiveOrder))

	status, raw := s.do(fiber.MethodDelete, "/api/products/"+id.String(), nil)

	s.Equal(fiber.StatusBadRequest, status)
	s.Equal(service.ErrProductInActiveOrder.Error(), s.object(raw)["error"])
}

func (s *HandlerSuite) TestCreateCategory_BadSlug() {
	status, raw := s.do(fiber.MethodPost, "/api/categories", map[string]any{"name": "Hankies", "slug": "Hankies Sale"})

	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(s.object(raw)["details"], "slug")
}

func (s *HandlerSuite) TestCreateCategory_DuplicateSlug() {
	s.categories.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrCategorySlugTaken)

	status, raw := s.do(fiber.MethodPost, "/api/categories", map[string]any{"name": "Hankies", "slug": "hankies"})

	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("Category slug already exists", s.object(raw)["error"])
}

func (s *HandlerSuite) TestPlaceOrder_Created() {
	productID := uuid.New()
	orderID := uuid.New()

	s.orders.On("Place", mock.Anything, mock.MatchedBy(func(in *domain.PlaceOrderInput) bool {
		return len(in.Items) == 1 && in.Items[0].ProductID == productID && in.Items[0].Quantity == 2
	})).Return(&domain.Order{ID: orderID}, nil)

	status, raw := s.do(fiber.MethodPost, "/api/orders", validOrderBody(productID))

	s.Equal(fiber.StatusCreated, status)
	body := s.object(raw)
	s.Equal("Order placed successfully", body["message"])
	s.Equal(orderID.String(), body["order_id"])
}

func (s *HandlerSuite) TestPlaceOrder_InsufficientStock() {
	s.orders.On("Place", mock.Anything, mock.Anything).
		Return(nil, &service.StockError{Title: "Cotton Hanky", Available: 1})

	status, raw := s.do(fiber.MethodPost, "/api/orders", validOrderBody(uuid.New()))

	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("Insufficient stock for Cotton Hanky. Available: 1", s.object(raw)["error"])
}

func (s *HandlerSuite) TestPlaceOrder_MissingProduct() {
	s.orders.On("Place", mock.Anything, mock.Anything).
		Return(nil, &service.MissingProductError{Title: "Cotton Hanky"})

	status, raw := s.do(fiber.MethodPost, "/api/orders", validOrderBody(uuid.New()))

	s.Equal(fiber.StatusNotFound, status)
	s.Equal("Product Cotton Hanky not found", s.object(raw)["error"])
}

func (s *HandlerSuite) TestPlaceOrder_Validation() {
	body := validOrderBody(uuid.New())
	body["customer_email"] = "not-an-email"
	body["shipping_address"] = "short"
	body["items"] = []map[string]any{{"product_id": "nope", "quantity": 0, "price": 1, "title": "x"}}

	status, raw := s.do(fiber.MethodPost, "/api/orders", body)

	s.Equal(fiber.StatusBadRequest, status)
	details, ok := s.object(raw)["details"].(map[string]any)
	s.Require().True(ok)
	s.Contains(details, "customer_email")
	s.Contains(details, "shipping_address")
	s.Contains(details, "items[0].product_id")
	s.Contains(details, "items[0].quantity")
	s.orders.AssertNotCalled(s.T(), "Place", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestPlaceOrder_MalformedJSON() {
	req := httptest.NewRequest(fiber.MethodPost, "/api/orders", bytes.NewReader([]byte(`{"items":`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	status, raw := s.send(req)

	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("Invalid request body", s.object(raw)["error"])
}

func (s *HandlerSuite) TestMyOrders_UsesCallerEmail() {
	s.identity = &domain.Identity{UserID: "u1", Email: "asha@example.com"}
	s.orders.On("ListMine", mock.Anything, "asha@example.com").Return([]domain.Order{{ID: uuid.New()}}, nil)

	status, raw := s.do(fiber.MethodGet, "/api/orders/mine", nil)

	s.Equal(fiber.StatusOK, status)
	var orders []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &orders))
	s.Len(orders, 1)
}

func (s *HandlerSuite) TestUpdateOrder_RequiresAField() {
	status, _ := s.do(fiber.MethodPut, "/api/orders/"+uuid.NewString(), map[string]any{})
	s.Equal(fiber.StatusBadRequest, status)

	status, raw := s.do(fiber.MethodPut, "/api/orders/"+uuid.NewString(), map[string]any{"status": "lost"})
	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(s.object(raw)["details"], "status")
}

func (s *HandlerSuite) TestUpdateOrder_IllegalTransition() {
	id := uuid.New()
	s.orders.On("Update", mock.Anything, id, mock.Anything).
		Return(nil, fmt.Errorf("%w: delivered -> pending", service.ErrInvalidTransition))

	status, raw := s.do(fiber.MethodPut, "/api/orders/"+id.String(), map[string]any{"status": "pending"})

	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("invalid status transition: delivered -> pending", s.object(raw)["error"])
}

func (s *HandlerSuite) TestUpdateSettings() {
	updated := domain.SiteSettings{IsEcommerceActive: true, WhatsappNumber: domain.DefaultWhatsappNumber}
	s.settings.On("Update", mock.Anything, mock.MatchedBy(func(u domain.SettingsUpdate) bool {
		return u.IsEcommerceActive != nil && *u.IsEcommerceActive && u.WhatsappNumber == nil
	})).Return(updated, nil)

	status, raw := s.do(fiber.MethodPut, "/api/settings", map[string]any{"is_ecommerce_active": true})

	s.Equal(fiber.StatusOK, status)
	body := s.object(raw)
	s.Equal("Site settings updated", body["message"])
	s.Equal(true, body["settings"].(map[string]any)["is_ecommerce_active"])
}

func (s *HandlerSuite) TestUploadImages() {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="images"; filename="a.png"`)
	header.Set("Content-Type", "image/png")
	part, err := w.CreatePart(header)
	s.Require().NoError(err)
	_, err = part.Write([]byte("png-bytes"))
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	s.uploader.On("Upload", mock.Anything, "a.png", mock.Anything).Return("https://cdn.example.com/a.png", nil)

	req := httptest.NewRequest(fiber.MethodPost, "/api/uploads/images", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	status, raw := s.send(req)

	s.Equal(fiber.StatusOK, status)
	s.Equal([]any{"https://cdn.example.com/a.png"}, s.object(raw)["urls"])
}

func (s *HandlerSuite) TestUploadImages_NoFiles() {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	s.Require().NoError(w.WriteField("note", "nothing"))
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/uploads/images", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	status, raw := s.send(req)

	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("No images provided", s.object(raw)["error"])
}

func (s *HandlerSuite) TestCreateProduct_RejectsValuesBeyondColumnRange() {
	body := validProductBody()
	body["price"] = 99999999999999
	body["discount_price"] = 12345678901
	body["stock"] = 3000000000

	status, raw := s.do(fiber.MethodPost, "/api/products", body)

	s.Equal(fiber.StatusBadRequest, status)
	details, ok := s.object(raw)["details"].(map[string]any)
	s.Require().True(ok)
	s.Equal("price must be less than or equal to 9999999999.99", details["price"])
	s.Contains(details, "discount_price")
	s.Equal("stock must be less than or equal to 2147483647", details["stock"])
	s.products.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestCreateProduct_AcceptsColumnMaximums() {
	body := validProductBody()
	body["price"] = 9999999999.99
	body["stock"] = domain.MaxStock

	s.products.On("Create", mock.Anything, mock.MatchedBy(func(in *domain.ProductInput) bool {
		return in.Stock == domain.MaxStock && in.Price.Equal(decimal.RequireFromString("9999999999.99"))
	})).Return(&domain.Product{ID: uuid.New()}, nil)

	status, _ := s.do(fiber.MethodPost, "/api/products", body)

	s.Equal(fiber.StatusCreated, status)
}

func (s *HandlerSuite) TestCreateProduct_StoreOverflowIsBadRequest() {
	s.products.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("error creating product: %w", repository.ErrValueOutOfRange))

	status, raw := s.do(fiber.MethodPost, "/api/products", validProductBody())

	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("Value out of range", s.object(raw)["error"])
}

func (s *HandlerSuite) TestAdjustStock_RejectsOutOfRange() {
	for _, adjustment := range []int64{3000000000, -3000000000} {
		status, raw := s.do(fiber.MethodPatch, "/api/products/"+uuid.NewString()+"/stock", map[string]any{"adjustment": adjustment})

		s.Equal(fiber.StatusBadRequest, status)
		s.Contains(s.object(raw)["details"], "adjustment")
	}
	s.products.AssertNotCalled(s.T(), "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestPlaceOrder_BlankFieldsFailAfterTrimming() {
	body := validOrderBody(uuid.New())
	body["customer_name"] = "   "
	body["shipping_address"] = "          x"

	status, raw := s.do(fiber.MethodPost, "/api/orders", body)

	s.Equal(fiber.StatusBadRequest, status)
	details, ok := s.object(raw)["details"].(map[string]any)
	s.Require().True(ok)
	s.Equal("customer_name is required", details["customer_name"])
	s.Equal("shipping_address must be at least 10 characters", details["shipping_address"])
	s.orders.AssertNotCalled(s.T(), "Place", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestPlaceOrder_TrimsCustomerFields() {
	body := validOrderBody(uuid.New())
	body["customer_name"] = "  Asha  "
	body["customer_email"] = " asha@example.com "
	body["shipping_address"] = "  12 Temple Road, Pune  "

	s.orders.On("Place", mock.Anything, mock.MatchedBy(func(in *domain.PlaceOrderInput) bool {
		return in.CustomerName == "Asha" &&
			in.CustomerEmail == "asha@example.com" &&
			in.ShippingAddress == "12 Temple Road, Pune"
	})).Return(&domain.Order{ID: uuid.New()}, nil)

	status, _ := s.do(fiber.MethodPost, "/api/orders", body)

	s.Equal(fiber.StatusCreated, status)
}

func (s *HandlerSuite) TestPlaceOrder_RejectsQuantityBeyondColumnRange() {
	body := validOrderBody(uuid.New())
	body["items"] = []map[string]any{
		{"product_id": uuid.NewString(), "quantity": 3000000000, "price": 499, "title": "Cotton Hanky"},
	}

	status, raw := s.do(fiber.MethodPost, "/api/orders", body)

	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(s.object(raw)["details"], "items[0].quantity")
}

func (s *HandlerSuite) TestUpdateOrder_BlankStatusCountsAsAbsent() {
	id := uuid.New()

	status, raw := s.do(fiber.MethodPut, "/api/orders/"+id.String(), map[string]any{"status": ""})
	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(s.object(raw)["details"], "body")

	s.orders.On("Update", mock.Anything, id, mock.MatchedBy(func(in *domain.UpdateOrderInput) bool {
		return in.Status == nil && in.AdminNotes != nil && *in.AdminNotes == "call before delivery"
	})).Return(&domain.Order{ID: id}, nil)

	status, _ = s.do(fiber.MethodPut, "/api/orders/"+id.String(), map[string]any{
		"status":      " ",
		"admin_notes": "call before delivery",
	})
	s.Equal(fiber.StatusOK, status)
}

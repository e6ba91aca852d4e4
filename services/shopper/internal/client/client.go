// Package client talks to the storefront HTTP API.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

type Product struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Stock         int              `json:"stock"`
	Images        []string         `json:"images"`
	IsFeatured    bool             `json:"is_featured"`
	IsNew         bool             `json:"is_new"`
	CategoryIDs   []uuid.UUID      `json:"category_ids"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() {
		return *p.DiscountPrice
	}

	return p.Price
}

func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}

	return p.Images[0]
}

type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderRequest struct {
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress string          `json:"shipping_address"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Items           []OrderItem     `json:"items"`
}

// APIError is a non-2xx answer from the storefront.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}

	parts := make([]string, 0, len(e.Details))
	for field, msg := range e.Details {
		parts = append(parts, field+": "+msg)
	}

	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, "; "))
}

type Client struct {
	baseURL string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (c *Client) ListProducts() ([]Product, error) {
	var products []Product
	err := c.get("/api/products", &products)
	return products, err
}

func (c *Client) CategoryProducts(categoryID uuid.UUID) ([]Product, error) {
	var products []Product
	err := c.get("/api/categories/"+categoryID.String()+"/products", &products)
	return products, err
}

func (c *Client) GetProduct(id uuid.UUID) (*Product, error) {
	var product Product
	if err := c.get("/api/products/"+id.String(), &product); err != nil {
		return nil, err
	}

	return &product, nil
}

func (c *Client) Related(id uuid.UUID, limit int) ([]Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var products []Product
	err := c.get("/api/products/"+id.String()+"/related?"+q.Encode(), &products)
	return products, err
}

// PlaceOrder submits the checkout and returns the new order id.
func (c *Client) PlaceOrder(req OrderRequest) (string, error) {
	agent := fiber.Post(c.baseURL + "/api/orders")
	agent.JSON(req)
	agent.Timeout(c.timeout)

	var resp struct {
		OrderID string `json:"order_id"`
	}
	if err := c.do(agent, fiber.StatusCreated, &resp); err != nil {
		return "", err
	}

	return resp.OrderID, nil
}

func (c *Client) get(path string, dst any) error {
	agent := fiber.Get(c.baseURL + path)
	agent.Timeout(c.timeout)

	return c.do(agent, fiber.StatusOK, dst)
}

func (c *Client) do(agent *fiber.Agent, want int, dst any) error {
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("storefront unreachable: %w", errors.Join(errs...))
	}

	if status != want {
		apiErr := &APIError{Status: status, Message: fmt.Sprintf("unexpected status %d", status)}

		var payload struct {
			Error   string            `json:"error"`
			Details map[string]string `json:"details"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}

		return apiErr
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

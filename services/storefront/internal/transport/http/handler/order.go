package handler

import (
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	svc      service.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOrderHandler(svc service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: utils.NewValidator(),
		logger:   logger,
	}
}

type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=2147483647"`
	Price     decimal.Decimal `json:"price" validate:"gt=0,lte=9999999999.99"`
	Title     string          `json:"title" validate:"required"`
}

type PlaceOrderRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required"`
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerPhone   string             `json:"customer_phone"`
	ShippingAddress string             `json:"shipping_address" validate:"required,min=10"`
	TotalPrice      decimal.Decimal    `json:"total_price" validate:"gt=0,lte=9999999999.99"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r *PlaceOrderRequest) Normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.ShippingAddress = strings.TrimSpace(r.ShippingAddress)

	for i := range r.Items {
		r.Items[i].ProductID = strings.TrimSpace(r.Items[i].ProductID)
		r.Items[i].Title = strings.TrimSpace(r.Items[i].Title)
	}
}

func (r *PlaceOrderRequest) toInput() *domain.PlaceOrderInput {
	items := make([]domain.PlaceOrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.PlaceOrderItem{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Price:     item.Price,
			Title:     item.Title,
		}
	}

	return &domain.PlaceOrderInput{
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		ShippingAddress: r.ShippingAddress,
		TotalPrice:      r.TotalPrice,
		Items:           items,
	}
}

type UpdateOrderRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	AdminNotes *string `json:"admin_notes"`
}

// Normalize drops a blank status so it counts as absent.
func (r *UpdateOrderRequest) Normalize() {
	if r.Status == nil {
		return
	}

	status := strings.TrimSpace(*r.Status)
	if status == "" {
		r.Status = nil
		return
	}
	r.Status = &status
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	req := new(PlaceOrderRequest)
	if ok, err := parseBody(c, h.validate, h.logger, req); !ok {
		return err
	}

	order, err := h.svc.Place(c.UserContext(), req.toInput())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Order placed successfully",
		"order_id": order.ID,
	})
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.svc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(orders)
}

func (h *OrderHandler) Mine(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok || id.Email == "" {
		return c.JSON([]domain.Order{})
	}

	orders, err := h.svc.ListMine(c.UserContext(), id.Email)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(orders)
}

func (h *OrderHandler) Items(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Order not found")
	}

	items, err := h.svc.Items(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(items)
}

func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Order not found")
	}

	req := new(UpdateOrderRequest)
	if ok, err := parseBody(c, h.validate, h.logger, req); !ok {
		return err
	}

	if req.Status == nil && req.AdminNotes == nil {
		return validationFailed(c, map[string]string{
			"body": "at least one of status or admin_notes is required",
		})
	}

	input := &domain.UpdateOrderInput{AdminNotes: req.AdminNotes}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		input.Status = &status
	}

	order, err := h.svc.Update(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(order)
}

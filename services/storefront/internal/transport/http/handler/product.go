package handler

import (
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	svc      service.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProductHandler(svc service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		svc:      svc,
		validate: utils.NewValidator(),
		logger:   logger,
	}
}

type ProductRequest struct {
	Title            string           `json:"title" validate:"required,min=3"`
	Description      string           `json:"description"`
	Price            decimal.Decimal  `json:"price" validate:"gt=0,lte=9999999999.99"`
	DiscountPrice    *decimal.Decimal `json:"discount_price" validate:"omitempty,gt=0,lte=9999999999.99"`
	Stock            int              `json:"stock" validate:"gte=0,lte=2147483647"`
	Images           []string         `json:"images" validate:"required,min=1,dive,url"`
	CategoryIDs      []string         `json:"category_ids" validate:"omitempty,dive,uuid"`
	IsFeatured       bool             `json:"is_featured"`
	ForceNew         bool             `json:"force_new"`
	Material         string           `json:"material"`
	CareInstructions string           `json:"care_instructions"`
	Origin           string           `json:"origin"`
	Manufacturer     string           `json:"manufacturer"`
	Weight           string           `json:"weight"`
}

func (r *ProductRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	for i := range r.Images {
		r.Images[i] = strings.TrimSpace(r.Images[i])
	}
}

func (r *ProductRequest) toInput() *domain.ProductInput {
	categoryIDs := make([]uuid.UUID, 0, len(r.CategoryIDs))
	for _, raw := range r.CategoryIDs {
		categoryIDs = append(categoryIDs, uuid.MustParse(raw))
	}

	return &domain.ProductInput{
		Title:            r.Title,
		Description:      r.Description,
		Price:            r.Price,
		DiscountPrice:    r.DiscountPrice,
		Stock:            r.Stock,
		Images:           r.Images,
		IsFeatured:       r.IsFeatured,
		ForceNew:         r.ForceNew,
		Material:         r.Material,
		CareInstructions: r.CareInstructions,
		Origin:           r.Origin,
		Manufacturer:     r.Manufacturer,
		Weight:           r.Weight,
		CategoryIDs:      categoryIDs,
	}
}

type StockAdjustmentRequest struct {
	Adjustment int `json:"adjustment" validate:"required,gte=-2147483647,lte=2147483647"`
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.svc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Product not found")
	}

	product, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) Related(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Product not found")
	}

	products, err := h.svc.Related(c.UserContext(), id, c.QueryInt("limit", service.DefaultRelatedLimit))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(products)
}

func (h *ProductHandler) CategoryProducts(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Category not found")
	}

	products, err := h.svc.ListByCategory(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(products)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	req := new(ProductRequest)
	if ok, err := h.parseProduct(c, req); !ok {
		return err
	}

	product, err := h.svc.Create(c.UserContext(), req.toInput())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	mylogger.Info(c.UserContext(), h.logger, "product created", zap.Stringer("product_id", product.ID))

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Product not found")
	}

	req := new(ProductRequest)
	if ok, err := h.parseProduct(c, req); !ok {
		return err
	}

	product, err := h.svc.Update(c.UserContext(), id, req.toInput())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Product not found")
	}

	req := new(StockAdjustmentRequest)
	if ok, err := parseBody(c, h.validate, h.logger, req); !ok {
		return err
	}

	stock, err := h.svc.AdjustStock(c.UserContext(), id, req.Adjustment)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"message": "Stock updated",
		"stock":   stock,
	})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Product not found")
	}

	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	mylogger.Info(c.UserContext(), h.logger, "product deleted", zap.Stringer("product_id", id))

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

func (h *ProductHandler) parseProduct(c *fiber.Ctx, req *ProductRequest) (bool, error) {
	if ok, err := parseBody(c, h.validate, h.logger, req); !ok {
		return false, err
	}

	if req.DiscountPrice != nil && !req.DiscountPrice.LessThan(req.Price) {
		return false, validationFailed(c, map[string]string{
			"discount_price": "discount_price must be less than price",
		})
	}

	return true, nil
}

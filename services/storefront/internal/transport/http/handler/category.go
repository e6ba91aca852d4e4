package handler

import (
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	svc      service.CategoryService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCategoryHandler(svc service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		svc:      svc,
		validate: utils.NewValidator(),
		logger:   logger,
	}
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required,slug"`
	Description string `json:"description"`
}

func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Description = strings.TrimSpace(r.Description)
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.svc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(categories)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	req := new(CategoryRequest)
	if ok, err := parseBody(c, h.validate, h.logger, req); !ok {
		return err
	}

	category, err := h.svc.Create(c.UserContext(), &domain.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return notFound(c, "Category not found")
	}

	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}

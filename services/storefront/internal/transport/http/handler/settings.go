package handler

import (
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	svc      service.SettingsService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSettingsHandler(svc service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		svc:      svc,
		validate: utils.NewValidator(),
		logger:   logger,
	}
}

type SettingsRequest struct {
	IsEcommerceActive *bool   `json:"is_ecommerce_active"`
	WhatsappNumber    *string `json:"whatsapp_number"`
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.svc.Get(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(settings)
}

func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	req := new(SettingsRequest)
	if ok, err := parseBody(c, h.validate, h.logger, req); !ok {
		return err
	}

	settings, err := h.svc.Update(c.UserContext(), domain.SettingsUpdate{
		IsEcommerceActive: req.IsEcommerceActive,
		WhatsappNumber:    req.WhatsappNumber,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Site settings updated",
		"settings": settings,
	})
}

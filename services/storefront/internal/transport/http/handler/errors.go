package handler

import (
	"errors"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/media"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

// mapError turns a service error into the status and message the client
// sees. Anything unrecognised is a 500 whose detail stays in the logs.
func mapError(err error) (int, string) {
	var stockErr *service.StockError
	var missingErr *service.MissingProductError

	switch {
	case errors.As(err, &missingErr):
		return fiber.StatusNotFound, missingErr.Error()
	case errors.As(err, &stockErr):
		return fiber.StatusBadRequest, stockErr.Error()
	case errors.Is(err, repository.ErrProductNotFound):
		return fiber.StatusNotFound, "Product not found"
	case errors.Is(err, repository.ErrCategoryNotFound):
		return fiber.StatusNotFound, "Category not found"
	case errors.Is(err, repository.ErrOrderNotFound):
		return fiber.StatusNotFound, "Order not found"
	case errors.Is(err, repository.ErrInsufficientStock):
		return fiber.StatusBadRequest, "Insufficient stock"
	case errors.Is(err, repository.ErrCategorySlugTaken):
		return fiber.StatusBadRequest, "Category slug already exists"
	case errors.Is(err, repository.ErrValueOutOfRange):
		return fiber.StatusBadRequest, "Value out of range"
	case errors.Is(err, repository.ErrUnknownCategory):
		return fiber.StatusBadRequest, "One or more categories do not exist"
	case errors.Is(err, service.ErrProductInActiveOrder):
		return fiber.StatusBadRequest, service.ErrProductInActiveOrder.Error()
	case errors.Is(err, service.ErrInvalidTransition):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, media.ErrUploadsDisabled):
		return fiber.StatusServiceUnavailable, media.ErrUploadsDisabled.Error()
	default:
		return fiber.StatusInternalServerError, internalErrorMessage
	}
}

func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, msg := mapError(err)

	if status >= fiber.StatusInternalServerError {
		mylogger.Error(c.UserContext(), logger, "request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func validationFailed(c *fiber.Ctx, details map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Validation failed",
		"details": details,
	})
}

// normalizer is implemented by requests that clean up their fields before
// validation.
type normalizer interface {
	Normalize()
}

// parseBody decodes, normalizes and validates the JSON body into dst. It
// writes the 400 response itself and reports whether the handler may continue.
func parseBody(c *fiber.Ctx, v *validator.Validate, logger *zap.Logger, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		mylogger.Warn(c.UserContext(), logger, "invalid request body", zap.Error(err))
		return false, badRequest(c, "Invalid request body")
	}

	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}

	if err := v.Struct(dst); err != nil {
		return false, validationFailed(c, utils.FormatValidationError(err))
	}

	return true, nil
}

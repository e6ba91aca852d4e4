package middleware

import (
	"errors"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func NewLoggingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError

			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			mylogger.Error(c.UserContext(), logger, "http request", fields...)
		case status >= fiber.StatusBadRequest:
			mylogger.Warn(c.UserContext(), logger, "http request", fields...)
		default:
			mylogger.Info(c.UserContext(), logger, "http request", fields...)
		}

		return err
	}
}

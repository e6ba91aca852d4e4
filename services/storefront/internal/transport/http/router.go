package http

import (
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/identity"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/transport/http/handler"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

type Handlers struct {
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Order    *handler.OrderHandler
	Settings *handler.SettingsHandler
	Upload   *handler.UploadHandler
}

type Gates struct {
	Resolver    identity.Resolver
	AdminSecret string
	// CheckoutMax requests per CheckoutWindow per IP on order placement.
	CheckoutMax    int
	CheckoutWindow time.Duration
}

func RegisterRoutes(app *fiber.App, h *Handlers, g Gates, logger *zap.Logger) {
	auth := middleware.NewAuthMiddleware(g.Resolver, logger)
	admin := middleware.NewAdminMiddleware(g.Resolver, g.AdminSecret, logger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	products := api.Group("/products")
	products.Get("", h.Product.ListProducts)
	products.Get("/:id/related", h.Product.Related)
	products.Get("/:id", h.Product.GetProduct)
	products.Post("", admin, h.Product.Create)
	products.Put("/:id", admin, h.Product.Update)
	products.Patch("/:id/stock", admin, h.Product.AdjustStock)
	products.Delete("/:id", admin, h.Product.Delete)

	categories := api.Group("/categories")
	categories.Get("", h.Category.List)
	categories.Get("/:id/products", h.Product.CategoryProducts)
	categories.Post("", admin, h.Category.Create)
	categories.Delete("/:id", admin, h.Category.Delete)

	orders := api.Group("/orders")
	orders.Post("", checkoutLimiter(g), h.Order.Place)
	orders.Get("", admin, h.Order.List)
	orders.Get("/mine", auth, h.Order.Mine)
	orders.Get("/:id/items", admin, h.Order.Items)
	orders.Put("/:id", admin, h.Order.Update)

	settings := api.Group("/settings")
	settings.Get("", h.Settings.Get)
	settings.Get("/config", h.Settings.Get)
	settings.Put("", admin, h.Settings.Update)

	api.Post("/uploads/images", admin, h.Upload.Images)
}

func checkoutLimiter(g Gates) fiber.Handler {
	max := g.CheckoutMax
	if max <= 0 {
		max = 10
	}
	window := g.CheckoutWindow
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	})
}

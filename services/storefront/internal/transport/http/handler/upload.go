package handler

import (
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/media"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const uploadField = "images"

type UploadHandler struct {
	uploader media.Uploader
	logger   *zap.Logger
}

func NewUploadHandler(uploader media.Uploader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger,
	}
}

// Images stores every file of the multipart "images" field and returns the
// hosted URLs in upload order.
func (h *UploadHandler) Images(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "Expected multipart form data")
	}

	files := form.File[uploadField]
	if len(files) == 0 {
		return badRequest(c, "No images provided")
	}

	for _, fh := range files {
		if !strings.HasPrefix(fh.Header.Get(fiber.HeaderContentType), "image/") {
			return badRequest(c, "Only image files are allowed: "+fh.Filename)
		}
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, h.logger, err)
		}

		url, err := h.uploader.Upload(c.UserContext(), fh.Filename, f)
		_ = f.Close()
		if err != nil {
			return respondError(c, h.logger, err)
		}

		urls = append(urls, url)
	}

	mylogger.Info(c.UserContext(), h.logger, "images uploaded", zap.Int("count", len(urls)))

	return c.JSON(fiber.Map{"urls": urls})
}

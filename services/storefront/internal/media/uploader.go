// Package media stores product images with the configured image host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

var ErrUploadsDisabled = errors.New("image uploads are not configured")

type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// NewUploader returns a Cloudinary uploader, or one that refuses every
// upload when no Cloudinary URL is configured.
func NewUploader(cloudinaryURL, folder string, logger *zap.Logger) (Uploader, error) {
	if cloudinaryURL == "" {
		logger.Warn("CLOUDINARY_URL not set, image uploads disabled")
		return disabled{}, nil
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}

	return &cloudinaryUploader{cld: cld, folder: folder, logger: logger}, nil
}

type cloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

func (u *cloudinaryUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		mylogger.Error(ctx, u.logger, "Upload failed", zap.String("filename", filename), zap.Error(err))
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	if res.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", filename, res.Error.Message)
	}

	mylogger.Info(ctx, u.logger, "Image uploaded",
		zap.String("filename", filename),
		zap.String("public_id", res.PublicID),
	)

	return res.SecureURL, nil
}

type disabled struct{}

func (disabled) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrUploadsDisabled
}

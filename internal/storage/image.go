package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const MaxImageSize int64 = 5 * 1024 * 1024

var (
	ErrInvalidFileType = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
	ErrFileTooLarge    = errors.New("image must be 5MB or smaller")
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// AllowedImageTypes lists accepted upload content types.
func AllowedImageTypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
}

func ValidateImage(contentType string, size int64) error {
	if _, ok := imageExtensions[strings.ToLower(contentType)]; !ok {
		return ErrInvalidFileType
	}
	if size > MaxImageSize {
		return ErrFileTooLarge
	}
	return nil
}

// ProductPrefix is the folder holding all images of one product.
func ProductPrefix(productID string) string {
	return fmt.Sprintf("products/%s/", productID)
}

func ProductImageKey(productID, contentType string) string {
	ext := imageExtensions[strings.ToLower(contentType)]
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s%s.%s", ProductPrefix(productID), uuid.New().String(), ext)
}

func ReportKey(name string) string {
	return "reports/" + name
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize bounds a single uploaded image
const MaxImageSize = 10 << 20

var (
	// ErrUnsupportedImage is returned for content types outside AllowedImageTypes
	ErrUnsupportedImage = errors.New("unsupported image type")
	// ErrImageTooLarge is returned for files over MaxImageSize
	ErrImageTooLarge = errors.New("image too large")
	// ErrEmptyImage is returned for zero-byte uploads
	ErrEmptyImage = errors.New("image is empty")
)

// AllowedImageTypes maps accepted content types to the extension stored in the key
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectKey builds a unique key such as "posts/1f0c...e2.jpg"
func ObjectKey(prefix, contentType string) string {
	ext := AllowedImageTypes[contentType]
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.New().String(), ext)
}

// ValidateImage checks the declared content type and size of an uploaded file
func ValidateImage(fh *multipart.FileHeader) (string, error) {
	contentType := strings.ToLower(fh.Header.Get("Content-Type"))
	if _, ok := AllowedImageTypes[contentType]; !ok {
		// fall back to the extension when the client sent a generic type
		switch strings.ToLower(filepath.Ext(fh.Filename)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".gif":
			contentType = "image/gif"
		case ".webp":
			contentType = "image/webp"
		default:
			return "", ErrUnsupportedImage
		}
	}
	if fh.Size <= 0 {
		return "", ErrEmptyImage
	}
	if fh.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}
	return contentType, nil
}

// UploadImage validates fh and stores it under prefix, returning the object key
func UploadImage(ctx context.Context, svc Service, prefix string, fh *multipart.FileHeader) (string, error) {
	contentType, err := ValidateImage(fh)
	if err != nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key := ObjectKey(prefix, contentType)
	if err := svc.Upload(ctx, key, contentType, f, fh.Size); err != nil {
		return "", err
	}
	return key, nil
}

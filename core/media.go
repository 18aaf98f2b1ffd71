package core

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// media upload policy
const MaxUploadSize = 1 << 20 // 1 MiB

var (
	allowedUploadTypes = map[string]struct{}{
		"image/jpeg":      {},
		"image/png":       {},
		"image/gif":       {},
		"image/webp":      {},
		"application/pdf": {},
		"text/plain":      {},
	}

	ErrUploadTooLarge    = errors.New("file too large")
	ErrUploadInvalidType = errors.New("file type not allowed")
)

type (
	// Upload is a file hosted on the media service.
	Upload struct {
		URL      string `json:"url"`
		PublicID string `json:"public_id"`
	}

	// MediaService is any service that can host uploaded files.
	MediaService interface {
		Upload(ctx context.Context, r io.Reader, filename string) (Upload, error)
		Delete(ctx context.Context, publicID string) error
	}
)

// CheckUpload applies the upload policy: size cap + content-type allow-list.
func CheckUpload(size int64, contentType string) error {
	if size > MaxUploadSize {
		return NewValidationError(ErrUploadTooLarge, FieldError{Field: "file", Error: ErrUploadTooLarge.Error()})
	}
	if _, ok := allowedUploadTypes[contentType]; !ok {
		return NewValidationError(ErrUploadInvalidType, FieldError{Field: "file", Error: ErrUploadInvalidType.Error()})
	}
	return nil
}

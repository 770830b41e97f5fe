package upload

import (
	"context"
	"errors"
	"io"
)

var (
	ErrTypeNotAllowed = errors.New("file type not allowed")
	ErrTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrNotConfigured  = errors.New("upload provider not configured")
)

// UploadResult represents the result of a file upload
type UploadResult struct {
	URL          string `json:"url"`           // Public URL (or local path) to access the file
	SecureURL    string `json:"secure_url"`    // HTTPS URL when the provider offers one
	FileName     string `json:"file_name"`     // Original filename
	Size         int64  `json:"size"`          // File size in bytes
	Format       string `json:"format"`        // File extension/format
	ContentType  string `json:"content_type"`  // Detected MIME type
	ResourceType string `json:"resource_type"` // image, raw
	PublicID     string `json:"public_id"`     // Provider-specific identifier
}

// Ref is the reference handed to OCR providers.
func (r *UploadResult) Ref() string {
	if r.SecureURL != "" {
		return r.SecureURL
	}
	return r.URL
}

// UploadOptions represents upload configuration options
type UploadOptions struct {
	Folder       string   `json:"folder"`        // Folder/directory to upload to
	PublicID     string   `json:"public_id"`     // Custom public ID (without extension)
	Overwrite    bool     `json:"overwrite"`     // Overwrite existing file
	AllowedTypes []string `json:"allowed_types"` // Allowed MIME types
	MaxSize      int64    `json:"max_size"`      // Max file size in bytes
}

// Provider defines the interface for receipt image archives
type Provider interface {
	// Upload stores the content of file under options.Folder
	Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error)

	// Delete deletes a file by public ID
	Delete(ctx context.Context, publicID string) error

	// GetURL gets the public URL for a file
	GetURL(publicID string) string

	// GetProviderName returns the provider name
	GetProviderName() string
}

// DefaultUploadOptions returns the options used for receipt photos.
func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{
		Folder:       "receipts",
		Overwrite:    false,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp", "application/pdf"},
		MaxSize:      16 * 1024 * 1024, // 16MB
	}
}

// MergeOptions merges custom options with defaults
func MergeOptions(custom *UploadOptions) *UploadOptions {
	defaults := DefaultUploadOptions()

	if custom == nil {
		return defaults
	}

	if custom.Folder != "" {
		defaults.Folder = custom.Folder
	}
	if custom.PublicID != "" {
		defaults.PublicID = custom.PublicID
	}
	if len(custom.AllowedTypes) > 0 {
		defaults.AllowedTypes = custom.AllowedTypes
	}
	if custom.MaxSize > 0 {
		defaults.MaxSize = custom.MaxSize
	}

	defaults.Overwrite = custom.Overwrite

	return defaults
}

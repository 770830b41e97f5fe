package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/rs/zerolog"
)

// Service archives receipt images with the configured provider
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new upload service
func NewService(provider Provider, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger.With().Str("component", "upload").Logger(),
	}
}

// Upload uploads a file using the configured provider
func (s *Service) Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}

	result, err := s.provider.Upload(ctx, file, filename, options)
	if err != nil {
		s.logger.Error().Err(err).Str("file", filename).Msg("❌ Failed to upload file")
		return nil, err
	}

	s.logger.Info().
		Str("public_id", result.PublicID).
		Int64("size", result.Size).
		Msg("✅ File uploaded")
	return result, nil
}

// UploadMultipart validates and uploads a file from a multipart form
func (s *Service) UploadMultipart(ctx context.Context, fileHeader *multipart.FileHeader, options *UploadOptions) (*UploadResult, error) {
	merged := MergeOptions(options)

	if merged.MaxSize > 0 && fileHeader.Size > merged.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, merged.MaxSize)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return s.Upload(ctx, file, fileHeader.Filename, merged)
}

// Delete deletes a file by public ID
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if s.provider == nil {
		return ErrNotConfigured
	}
	return s.provider.Delete(ctx, publicID)
}

// GetURL gets the public URL for a file
func (s *Service) GetURL(publicID string) string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetURL(publicID)
}

// GetProviderName returns the current provider name
func (s *Service) GetProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.GetProviderName()
}

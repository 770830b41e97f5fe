package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Options bounds a single text extraction.
type Options struct {
	Timeout    time.Duration // per attempt
	MaxRetries int           // attempts after the first
	Backoff    time.Duration // doubled after every failed attempt
}

// Service wraps the OCR provider with a per-attempt timeout and bounded retry.
type Service struct {
	provider Provider
	opts     Options
	logger   zerolog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewService creates a new OCR service with the given provider
func NewService(provider Provider, opts Options, logger zerolog.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Service{
		provider: provider,
		opts:     opts,
		logger:   logger.With().Str("component", "ocr").Str("provider", provider.GetProviderName()).Logger(),
		sleep:    sleepContext,
	}
}

// ExtractText returns the full-page text of the image at imageRef.
// ErrNoText is returned when the provider found nothing; it is not retried.
func (s *Service) ExtractText(ctx context.Context, imageRef string) (string, error) {
	var lastErr error
	backoff := s.opts.Backoff

	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("retrying text detection")
			if err := s.sleep(ctx, backoff); err != nil {
				return "", err
			}
			backoff *= 2
		}

		text, err := s.detect(ctx, imageRef)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, ErrNoText) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("text detection failed after %d attempts: %w", s.opts.MaxRetries+1, lastErr)
}

func (s *Service) detect(ctx context.Context, imageRef string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	detection, err := s.provider.DetectText(ctx, imageRef)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("text detection timed out after %s: %w", s.opts.Timeout, err)
		}
		return "", err
	}

	text, ok := detection.FullText()
	if !ok || text == "" {
		return "", ErrNoText
	}
	s.logger.Debug().Dur("took", time.Since(start)).Int("chars", len(text)).Msg("text detected")
	return text, nil
}

// GetProviderName returns the name of the current provider
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

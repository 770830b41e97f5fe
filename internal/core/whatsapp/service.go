package whatsapp

import (
	"context"

	"github.com/rs/zerolog"
)

// Service is the layer the application uses to talk to guests.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService wraps provider. A nil provider disables outbound messages.
func NewService(provider Provider, logger zerolog.Logger) *Service {
	if provider == nil {
		provider = noopProvider{}
	}
	logger = logger.With().Str("component", "whatsapp").Logger()
	logger.Info().Str("provider", provider.GetProviderName()).Msg("✅ Using WhatsApp provider")
	return &Service{provider: provider, logger: logger}
}

// SendMessage sends a text reply. A disabled provider is logged and ignored.
func (s *Service) SendMessage(ctx context.Context, to, message string) error {
	err := s.provider.SendMessage(ctx, to, message)
	if err == ErrDisabled {
		s.logger.Debug().Str("to", to).Msg("reply not sent, messaging disabled")
		return nil
	}
	return err
}

// DownloadMedia fetches an inbound attachment.
func (s *Service) DownloadMedia(ctx context.Context, mediaID string) (*Media, error) {
	return s.provider.DownloadMedia(ctx, mediaID)
}

// MarkMessageAsRead best-effort acknowledges an inbound message.
func (s *Service) MarkMessageAsRead(ctx context.Context, messageID string) {
	if err := s.provider.MarkMessageAsRead(ctx, messageID); err != nil {
		s.logger.Warn().Err(err).Str("message_id", messageID).Msg("⚠️ Failed to mark message as read")
	}
}

// GetProviderName return nama provider yang digunakan
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}

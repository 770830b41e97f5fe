package whatsapp

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the no-op provider.
var ErrDisabled = errors.New("whatsapp messaging is not configured")

// Provider sends guest replies and fetches inbound media.
type Provider interface {
	// SendMessage sends a text message to a phone number (E.164, with or without '+').
	SendMessage(ctx context.Context, to, message string) error

	// DownloadMedia fetches an inbound media attachment by its id.
	DownloadMedia(ctx context.Context, mediaID string) (*Media, error)

	// MarkMessageAsRead sends a read receipt for an inbound message.
	MarkMessageAsRead(ctx context.Context, messageID string) error

	// GetProviderName return provider name for logging
	GetProviderName() string
}

// Media is a downloaded attachment.
type Media struct {
	Data     []byte
	MimeType string
}

// Extension returns a file extension for the media MIME type.
func (m *Media) Extension() string {
	switch m.MimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".jpg"
	}
}

// noopProvider is used when no Cloud API credentials are configured.
type noopProvider struct{}

func (noopProvider) SendMessage(context.Context, string, string) error { return ErrDisabled }

func (noopProvider) DownloadMedia(context.Context, string) (*Media, error) { return nil, ErrDisabled }

func (noopProvider) MarkMessageAsRead(context.Context, string) error { return nil }

func (noopProvider) GetProviderName() string { return "disabled" }

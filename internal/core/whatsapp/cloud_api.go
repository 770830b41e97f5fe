package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const graphBaseURL = "https://graph.facebook.com"

// maxMediaBytes is the Cloud API limit for image and document media.
const maxMediaBytes = 100 << 20

// CloudAPIProvider implements WhatsApp Cloud API (Official Business API)
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api
type CloudAPIProvider struct {
	graphURL    string
	phoneID     string // WhatsApp Business Phone Number ID
	accessToken string // Meta Business Access Token
	apiVersion  string // API version (e.g., "v18.0")
	client      *http.Client
}

// CloudAPIConfig holds configuration for WhatsApp Cloud API
type CloudAPIConfig struct {
	PhoneID     string
	AccessToken string
	APIVersion  string // default v18.0
	GraphURL    string // default https://graph.facebook.com
}

// NewCloudAPIProvider creates a new WhatsApp Cloud API provider
func NewCloudAPIProvider(config CloudAPIConfig) (*CloudAPIProvider, error) {
	if config.PhoneID == "" {
		return nil, fmt.Errorf("phone_id is required")
	}
	if config.AccessToken == "" {
		return nil, fmt.Errorf("access_token is required")
	}
	if config.APIVersion == "" {
		config.APIVersion = "v18.0"
	}
	if config.GraphURL == "" {
		config.GraphURL = graphBaseURL
	}

	return &CloudAPIProvider{
		graphURL:    strings.TrimRight(config.GraphURL, "/"),
		phoneID:     config.PhoneID,
		accessToken: config.AccessToken,
		apiVersion:  config.APIVersion,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SendMessage sends a text message via Cloud API
func (p *CloudAPIProvider) SendMessage(ctx context.Context, to, message string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                cleanPhoneNumber(to),
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": false,
			"body":        message,
		},
	}

	return p.sendRequest(ctx, http.MethodPost, "/messages", payload)
}

// MarkMessageAsRead marks a message as read
func (p *CloudAPIProvider) MarkMessageAsRead(ctx context.Context, messageID string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}

	return p.sendRequest(ctx, http.MethodPost, "/messages", payload)
}

// GetProviderName returns the provider name
func (p *CloudAPIProvider) GetProviderName() string {
	return "WhatsApp Cloud API (Official)"
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// getMediaInfo retrieves the short-lived download URL for a media id
func (p *CloudAPIProvider) getMediaInfo(ctx context.Context, mediaID string) (*mediaInfo, error) {
	url := fmt.Sprintf("%s/%s/%s", p.graphURL, p.apiVersion, mediaID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get media info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get media URL: %s (status: %d)", string(body), resp.StatusCode)
	}

	var info mediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if info.URL == "" {
		return nil, fmt.Errorf("media %s has no download url", mediaID)
	}
	return &info, nil
}

// DownloadMedia resolves the media URL and downloads it with the access token.
func (p *CloudAPIProvider) DownloadMedia(ctx context.Context, mediaID string) (*Media, error) {
	info, err := p.getMediaInfo(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read media: %w", err)
	}

	mimeType := info.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	return &Media{Data: data, MimeType: mimeType}, nil
}

// sendRequest is a helper to make API requests against the phone number node
func (p *CloudAPIProvider) sendRequest(ctx context.Context, method, endpoint string, payload interface{}) error {
	url := fmt.Sprintf("%s/%s/%s%s", p.graphURL, p.apiVersion, p.phoneID, endpoint)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// cleanPhoneNumber strips a leading '+' and any JID suffix (@c.us, @s.whatsapp.net)
func cleanPhoneNumber(phone string) string {
	if i := strings.IndexByte(phone, '@'); i >= 0 {
		phone = phone[:i]
	}
	return strings.TrimPrefix(phone, "+")
}

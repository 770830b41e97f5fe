package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const visionEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// GoogleVisionProvider implements OCR using Google Cloud Vision API
type GoogleVisionProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGoogleVisionProvider creates a new Google Vision OCR provider
func NewGoogleVisionProvider(apiKey string) *GoogleVisionProvider {
	return &GoogleVisionProvider{
		apiKey:   apiKey,
		endpoint: visionEndpoint,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GetProviderName returns the provider name
func (p *GoogleVisionProvider) GetProviderName() string {
	return "Google Cloud Vision"
}

// Google Vision API request/response structures
type visionRequest struct {
	Requests []visionRequestItem `json:"requests"`
}

type visionRequestItem struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string        `json:"content,omitempty"` // base64 encoded image
	Source  *visionSource `json:"source,omitempty"`
}

type visionSource struct {
	ImageURI    string `json:"imageUri,omitempty"`
	GCSImageURI string `json:"gcsImageUri,omitempty"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Responses []struct {
		TextAnnotations []TextAnnotation `json:"textAnnotations"`
		Error           *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	} `json:"responses"`
}

func (p *GoogleVisionProvider) image(ctx context.Context, imageRef string) (visionImage, error) {
	switch {
	case isGCSRef(imageRef):
		return visionImage{Source: &visionSource{GCSImageURI: imageRef}}, nil
	case isHTTPRef(imageRef):
		return visionImage{Source: &visionSource{ImageURI: imageRef}}, nil
	}
	data, err := loadImage(ctx, p.client, imageRef)
	if err != nil {
		return visionImage{}, err
	}
	return visionImage{Content: base64.StdEncoding.EncodeToString(data)}, nil
}

// DetectText runs TEXT_DETECTION. Remote images are fetched by Google.
func (p *GoogleVisionProvider) DetectText(ctx context.Context, imageRef string) (*TextDetection, error) {
	img, err := p.image(ctx, imageRef)
	if err != nil {
		return nil, err
	}

	reqBody := visionRequest{
		Requests: []visionRequestItem{
			{
				Image:    img,
				Features: []visionFeature{{Type: "TEXT_DETECTION"}},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", p.endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google vision request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google vision error (status: %d): %s", resp.StatusCode, string(body))
	}

	var visionResp visionResponse
	if err := json.Unmarshal(body, &visionResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(visionResp.Responses) == 0 {
		return nil, fmt.Errorf("no response from Google Vision")
	}
	if e := visionResp.Responses[0].Error; e != nil {
		return nil, fmt.Errorf("google vision API error: %s", e.Message)
	}

	return &TextDetection{TextAnnotations: visionResp.Responses[0].TextAnnotations}, nil
}

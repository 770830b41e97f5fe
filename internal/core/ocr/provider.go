package ocr

import (
	"context"
	"errors"
)

// ErrNoText is returned when the provider found no text annotations.
var ErrNoText = errors.New("no text detected in image")

// Provider interface for OCR services
type Provider interface {
	// DetectText runs text detection on the image at imageRef, which is an
	// http(s) URL, a gs:// URI or a local file path.
	DetectText(ctx context.Context, imageRef string) (*TextDetection, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// TextAnnotation is one block of detected text. The first annotation of a
// detection holds the full-page text.
type TextAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score,omitempty"`
}

// TextDetection is the raw provider result.
type TextDetection struct {
	TextAnnotations []TextAnnotation `json:"textAnnotations"`
}

// FullText returns the first annotation's description.
func (d *TextDetection) FullText() (string, bool) {
	if d == nil || len(d.TextAnnotations) == 0 {
		return "", false
	}
	return d.TextAnnotations[0].Description, true
}

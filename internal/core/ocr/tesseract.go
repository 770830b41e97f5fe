package ocr

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TesseractProvider implements OCR using a local Tesseract binary
type TesseractProvider struct {
	tesseractPath string
	language      string
	client        *http.Client
}

// NewTesseractProvider creates a new Tesseract OCR provider.
// An empty binary path means "tesseract" from PATH.
func NewTesseractProvider(binary, language string) *TesseractProvider {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}

	return &TesseractProvider{
		tesseractPath: binary,
		language:      language,
		client:        &http.Client{Timeout: 60 * time.Second},
	}
}

// DetectText writes the image to a temp file and reads tesseract's stdout.
func (p *TesseractProvider) DetectText(ctx context.Context, imageRef string) (*TextDetection, error) {
	data, err := loadImage(ctx, p.client, imageRef)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "receipt-*.img")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}

	// --psm 4 treats the image as a single column of variable-size text, which
	// keeps receipt rows on one line.
	cmd := exec.CommandContext(ctx, p.tesseractPath, tmp.Name(), "stdout", "-l", p.language, "--psm", "4")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("tesseract command failed: %w, output: %s", err, stderr.String())
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return &TextDetection{}, nil
	}
	return &TextDetection{TextAnnotations: []TextAnnotation{{Description: text}}}, nil
}

// GetProviderName returns the name of the provider
func (p *TesseractProvider) GetProviderName() string {
	return "Tesseract OCR"
}

package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// maxImageBytes caps downloads; WhatsApp media is limited to 5 MB for images.
const maxImageBytes = 16 << 20

func isHTTPRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func isGCSRef(ref string) bool {
	return strings.HasPrefix(ref, "gs://")
}

// loadImage returns the bytes behind an http(s) URL or a local path.
func loadImage(ctx context.Context, client *http.Client, ref string) ([]byte, error) {
	if isGCSRef(ref) {
		return nil, fmt.Errorf("gs:// images are only supported by Google Vision")
	}
	if !isHTTPRef(ref) {
		data, err := os.ReadFile(strings.TrimPrefix(ref, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed (status: %d)", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}

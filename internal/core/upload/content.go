package upload

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".pdf":  "application/pdf",
}

// DetectContentType detects the content type based on file extension
func DetectContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func resourceType(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return "image"
	}
	return "raw"
}

// checkType rejects files whose extension maps to a MIME type outside allowed.
func checkType(filename string, allowed []string) (string, error) {
	ct := DetectContentType(filename)
	if len(allowed) == 0 {
		return ct, nil
	}
	for _, a := range allowed {
		if a == ct {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTypeNotAllowed, ct)
}

// objectName builds "<folder>/<name><ext>". Without a public ID the name is
// "<base>_<unix>_<8 hex>".
func objectName(filename string, options *UploadOptions, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := options.PublicID
	if name == "" {
		base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		base = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			}
			return '_'
		}, base)
		if base == "" {
			base = "file"
		}
		name = fmt.Sprintf("%s_%d_%s", base, now.Unix(), uuid.New().String()[:8])
	}
	return strings.Trim(options.Folder, "/") + "/" + name + ext
}

// limitedReader fails once more than max bytes have been read.
type limitedReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.max > 0 && l.n > l.max {
		return n, fmt.Errorf("%w: %d bytes", ErrTooLarge, l.max)
	}
	return n, err
}

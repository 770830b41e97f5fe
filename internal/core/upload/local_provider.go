package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalProvider implements file upload to local filesystem
type LocalProvider struct {
	basePath   string // Base directory for uploads
	baseURL    string // Base URL to access files; empty means absolute paths
	publicPath string // Public path for URL generation
	now        func() time.Time
}

// NewLocalProvider creates a new local file storage provider
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid upload directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalProvider{
		basePath:   abs,
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicPath: "/uploads/",
		now:        time.Now,
	}, nil
}

// Upload writes file under basePath/folder.
func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contentType, err := checkType(filename, options.AllowedTypes)
	if err != nil {
		return nil, err
	}

	publicID := objectName(filename, options, p.now())
	filePath := p.path(publicID)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !options.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("file already exists: %s", publicID)
		}
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(out, &limitedReader{r: file, max: options.MaxSize})
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	url := p.GetURL(publicID)
	return &UploadResult{
		URL:          url,
		FileName:     filename,
		Size:         size,
		Format:       strings.TrimPrefix(filepath.Ext(publicID), "."),
		ContentType:  contentType,
		ResourceType: resourceType(contentType),
		PublicID:     publicID,
	}, nil
}

// Delete deletes a file from local filesystem
func (p *LocalProvider) Delete(ctx context.Context, publicID string) error {
	if err := os.Remove(p.path(publicID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", publicID)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetURL returns the public URL, or the absolute file path when no base URL is set.
func (p *LocalProvider) GetURL(publicID string) string {
	if p.baseURL == "" {
		return p.path(publicID)
	}
	return p.baseURL + p.publicPath + publicID
}

// GetProviderName returns the provider name
func (p *LocalProvider) GetProviderName() string {
	return "Local Storage"
}

// Root is the directory served under /uploads.
func (p *LocalProvider) Root() string {
	return p.basePath
}

// path maps a public ID into basePath; ".." segments cannot escape it.
func (p *LocalProvider) path(publicID string) string {
	return filepath.Join(p.basePath, filepath.FromSlash(filepath.Clean("/"+publicID)))
}

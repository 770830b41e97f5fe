package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryProvider implements file upload to Cloudinary
type CloudinaryProvider struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinaryProvider creates a new Cloudinary provider
func NewCloudinaryProvider(cloudName, apiKey, apiSecret string) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryProvider{
		cld:       cld,
		cloudName: cloudName,
	}, nil
}

// Upload uploads a file to Cloudinary
func (p *CloudinaryProvider) Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)

	contentType, err := checkType(filename, options.AllowedTypes)
	if err != nil {
		return nil, err
	}

	// Cloudinary keeps the format separately, so the public ID carries no extension.
	key := strings.TrimSuffix(objectName(filename, options, time.Now()), strings.ToLower(filepath.Ext(filename)))
	folder, publicID := splitKey(key)

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    api.Bool(options.Overwrite),
	}

	result, err := p.cld.Upload.Upload(ctx, &limitedReader{r: file, max: options.MaxSize}, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %s", result.Error.Message)
	}

	return &UploadResult{
		URL:          result.URL,
		SecureURL:    result.SecureURL,
		FileName:     filename,
		Size:         int64(result.Bytes),
		Format:       result.Format,
		ContentType:  contentType,
		ResourceType: result.ResourceType,
		PublicID:     result.PublicID,
	}, nil
}

// Delete deletes a file from Cloudinary
func (p *CloudinaryProvider) Delete(ctx context.Context, publicID string) error {
	params := uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	}

	result, err := p.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}

	if result.Result != "ok" {
		return fmt.Errorf("Cloudinary delete failed: %s", result.Result)
	}

	return nil
}

// GetURL gets the public URL for a file from Cloudinary
func (p *CloudinaryProvider) GetURL(publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s", p.cloudName, publicID)
}

// GetProviderName returns the provider name
func (p *CloudinaryProvider) GetProviderName() string {
	return "Cloudinary"
}

func splitKey(key string) (folder, name string) {
	i := strings.LastIndexByte(key, '/')
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}

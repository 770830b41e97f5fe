package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds AWS settings. Empty keys fall back to the default credential chain.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	BaseURL         string // e.g. a CloudFront domain
}

// S3Provider implements file upload to AWS S3
type S3Provider struct {
	client     *s3.Client
	bucketName string
	baseURL    string
	now        func() time.Time
}

// NewS3Provider creates a new AWS S3 provider
func NewS3Provider(ctx context.Context, cfg S3Config) (*S3Provider, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("s3 bucket and region are required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Provider{
		client:     s3.NewFromConfig(awsCfg),
		bucketName: cfg.Bucket,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}, nil
}

// Upload uploads a file to AWS S3. Objects stay private; OCR providers read
// them through the bucket policy or a CloudFront origin.
func (p *S3Provider) Upload(ctx context.Context, file io.Reader, filename string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)

	contentType, err := checkType(filename, options.AllowedTypes)
	if err != nil {
		return nil, err
	}

	key := objectName(filename, options, p.now())
	body := &limitedReader{r: file, max: options.MaxSize}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := p.GetURL(key)
	return &UploadResult{
		URL:          url,
		SecureURL:    url,
		FileName:     filename,
		Size:         body.n,
		Format:       strings.TrimPrefix(filepath.Ext(key), "."),
		ContentType:  contentType,
		ResourceType: resourceType(contentType),
		PublicID:     key,
	}, nil
}

// Delete deletes a file from AWS S3
func (p *S3Provider) Delete(ctx context.Context, publicID string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// GetURL gets the public URL for a file from S3
func (p *S3Provider) GetURL(publicID string) string {
	return fmt.Sprintf("%s/%s", p.baseURL, publicID)
}

// GetProviderName returns the provider name
func (p *S3Provider) GetProviderName() string {
	return "AWS S3"
}

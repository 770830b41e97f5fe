package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/resto-engage-be/internal/shared/database"
)

func newOCRProvider(cfg *config.Config) ocr.Provider {
	switch cfg.OCRProvider {
	case "ocrspace":
		return ocr.NewOCRSpaceProvider(cfg.OCRAPIKey)
	case "tesseract":
		return ocr.NewTesseractProvider(cfg.TesseractPath, "eng")
	case "openai":
		return ocr.NewOpenAIVisionProvider(cfg.OCRAPIKey, cfg.OCRModel, cfg.OCRBaseURL)
	default:
		return ocr.NewGoogleVisionProvider(cfg.OCRAPIKey)
	}
}

func newUploadProvider(ctx context.Context, cfg *config.Config) (upload.Provider, error) {
	switch cfg.UploadProvider {
	case "s3":
		return upload.NewS3Provider(ctx, upload.S3Config{
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSBucket,
		})
	case "cloudinary":
		return upload.NewCloudinaryProvider(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	default:
		return upload.NewLocalProvider(cfg.UploadDir, cfg.PublicBaseURL)
	}
}

func newWhatsAppProvider(cfg *config.Config, logger zerolog.Logger) whatsapp.Provider {
	if !cfg.WhatsAppEnabled() {
		logger.Warn().Msg("⚠️ WhatsApp Cloud API not configured, guest replies disabled")
		return nil
	}
	p, err := whatsapp.NewCloudAPIProvider(whatsapp.CloudAPIConfig{
		PhoneID:     cfg.WhatsAppPhoneNumberID,
		AccessToken: cfg.WhatsAppAccessToken,
		APIVersion:  cfg.WhatsAppAPIVersion,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ WhatsApp Cloud API disabled")
		return nil
	}
	return p
}

// openStorage returns the document store and, for postgres, the connection
// the job queue shares.
func openStorage(cfg *config.Config) (docstore.Store, *database.DB, error) {
	var db *database.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.NewDB(cfg.DatabaseURL, database.Options{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLife,
			Debug:           !cfg.IsProduction() && cfg.LogLevel == "debug",
		})
		if err != nil {
			return nil, nil, err
		}
	}

	switch cfg.DocStoreDriver {
	case "sqlite":
		store, err := docstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, nil, err
		}
		return store, db, nil
	default:
		if db == nil {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres document store")
		}
		return docstore.NewGormStore(db.GORM), db, nil
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL     string
	DocStoreDriver  string // postgres | sqlite
	SQLitePath      string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	MigrationsPath  string
	JobWorkers      int
	JobPollInterval time.Duration
	JobRetention    time.Duration

	OCRProvider   string // google_vision | ocrspace | tesseract | openai
	OCRAPIKey     string
	OCRModel      string
	OCRBaseURL    string
	OCRTimeout    time.Duration
	OCRMaxRetries int
	OCRBackoff    time.Duration
	TesseractPath string

	UploadProvider      string // local | s3 | cloudinary
	UploadDir           string
	PublicBaseURL       string
	AWSRegion           string
	AWSBucket           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	JWTSecret   string
	JWTDuration time.Duration

	DefaultCountryCode string

	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAPIVersion    string
	WhatsAppDisplayNumber string // printed on table-card QR codes
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	return &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DocStoreDriver:  strings.ToLower(getEnv("DOCSTORE_DRIVER", "postgres")),
		SQLitePath:      getEnv("SQLITE_PATH", "receipts.db"),
		DBMaxOpenConns:  getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:   getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		JobWorkers:      getEnvAsInt("JOB_WORKERS", 3),
		JobPollInterval: getEnvAsDuration("JOB_POLL_INTERVAL", 2*time.Second),
		JobRetention:    getEnvAsDuration("JOB_RETENTION", 7*24*time.Hour),

		OCRProvider:   strings.ToLower(getEnv("OCR_PROVIDER", "google_vision")),
		OCRAPIKey:     os.Getenv("OCR_API_KEY"),
		OCRModel:      os.Getenv("OCR_MODEL"),
		OCRBaseURL:    os.Getenv("OCR_BASE_URL"),
		OCRTimeout:    getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		OCRMaxRetries: getEnvAsInt("OCR_MAX_RETRIES", 2),
		OCRBackoff:    getEnvAsDuration("OCR_BACKOFF", 500*time.Millisecond),
		TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),

		UploadProvider:      strings.ToLower(getEnv("UPLOAD_PROVIDER", "local")),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:       os.Getenv("PUBLIC_BASE_URL"),
		AWSRegion:           os.Getenv("AWS_REGION"),
		AWSBucket:           os.Getenv("AWS_S3_BUCKET"),
		AWSAccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTDuration: getEnvAsDuration("JWT_DURATION", 12*time.Hour),

		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "27"),

		WhatsAppAccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		WhatsAppPhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		WhatsAppVerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		WhatsAppAPIVersion:    getEnv("WHATSAPP_API_VERSION", "v18.0"),
		WhatsAppDisplayNumber: os.Getenv("WHATSAPP_DISPLAY_NUMBER"),
	}
}

// Validate checks the settings the API server cannot start without.
func (c *Config) Validate() error {
	switch c.DocStoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DOCSTORE_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DOCSTORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unknown DOCSTORE_DRIVER %q", c.DocStoreDriver)
	}

	switch c.OCRProvider {
	case "google_vision", "ocrspace", "openai":
		if c.OCRAPIKey == "" {
			return fmt.Errorf("OCR_API_KEY is required for OCR_PROVIDER=%s", c.OCRProvider)
		}
	case "tesseract":
	default:
		return fmt.Errorf("unknown OCR_PROVIDER %q", c.OCRProvider)
	}

	switch c.UploadProvider {
	case "local":
	case "s3":
		if c.AWSRegion == "" || c.AWSBucket == "" {
			return fmt.Errorf("AWS_REGION and AWS_S3_BUCKET are required for UPLOAD_PROVIDER=s3")
		}
	case "cloudinary":
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("CLOUDINARY_* credentials are required for UPLOAD_PROVIDER=cloudinary")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_PROVIDER %q", c.UploadProvider)
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	if c.OCRTimeout <= 0 {
		return fmt.Errorf("OCR_TIMEOUT must be positive")
	}
	if c.OCRMaxRetries < 0 {
		return fmt.Errorf("OCR_MAX_RETRIES must not be negative")
	}
	if c.JobWorkers < 1 {
		return fmt.Errorf("JOB_WORKERS must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// WhatsAppEnabled reports whether guest replies can be sent.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsAppAccessToken != "" && c.WhatsAppPhoneNumberID != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

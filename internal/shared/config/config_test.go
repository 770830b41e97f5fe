package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "OCR_TIMEOUT", "OCR_MAX_RETRIES", "DOCSTORE_DRIVER", "DEFAULT_COUNTRY_CODE"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.OCRTimeout != 30*time.Second {
		t.Errorf("OCRTimeout = %s", cfg.OCRTimeout)
	}
	if cfg.OCRMaxRetries != 2 {
		t.Errorf("OCRMaxRetries = %d", cfg.OCRMaxRetries)
	}
	if cfg.DocStoreDriver != "postgres" || cfg.DefaultCountryCode != "27" {
		t.Errorf("driver/country = %q/%q", cfg.DocStoreDriver, cfg.DefaultCountryCode)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("OCR_TIMEOUT", "5s")
	t.Setenv("OCR_MAX_RETRIES", "4")
	t.Setenv("JOB_WORKERS", "not-a-number")
	t.Setenv("DOCSTORE_DRIVER", "SQLite")

	cfg := LoadConfig()
	if cfg.OCRTimeout != 5*time.Second || cfg.OCRMaxRetries != 4 {
		t.Errorf("ocr = %s/%d", cfg.OCRTimeout, cfg.OCRMaxRetries)
	}
	if cfg.JobWorkers != 3 {
		t.Errorf("JobWorkers = %d, want fallback 3", cfg.JobWorkers)
	}
	if cfg.DocStoreDriver != "sqlite" {
		t.Errorf("DocStoreDriver = %q", cfg.DocStoreDriver)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DocStoreDriver: "sqlite",
		SQLitePath:     "test.db",
		OCRProvider:    "tesseract",
		OCRTimeout:     time.Second,
		JobWorkers:     1,
		UploadProvider: "local",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"postgres without url", func(c *Config) { c.DocStoreDriver = "postgres" }, true},
		{"unknown driver", func(c *Config) { c.DocStoreDriver = "mongo" }, true},
		{"vision without key", func(c *Config) { c.OCRProvider = "google_vision" }, true},
		{"vision with key", func(c *Config) { c.OCRProvider = "google_vision"; c.OCRAPIKey = "k" }, false},
		{"openai without key", func(c *Config) { c.OCRProvider = "openai" }, true},
		{"zero timeout", func(c *Config) { c.OCRTimeout = 0 }, true},
		{"no workers", func(c *Config) { c.JobWorkers = 0 }, true},
		{"s3 without bucket", func(c *Config) { c.UploadProvider = "s3"; c.AWSRegion = "af-south-1" }, true},
		{"s3 configured", func(c *Config) { c.UploadProvider = "s3"; c.AWSRegion = "af-south-1"; c.AWSBucket = "receipts" }, false},
		{"unknown upload provider", func(c *Config) { c.UploadProvider = "ftp" }, true},
		{"production without jwt", func(c *Config) { c.Env = "production" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

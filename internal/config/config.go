// Package config handles application configuration.
//
// Values are layered with koanf (lowest to highest precedence):
//  1. defaults (Defaults())
//  2. a YAML file, if PLAYERTRACK_CONFIG points at one
//  3. environment variables prefixed PLAYERTRACK_
//
// A .env file in the working directory is loaded into the environment first,
// so local development needs no exported variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable we read.
const EnvPrefix = "PLAYERTRACK_"

// FileEnv names the variable holding the optional YAML config path.
const FileEnv = EnvPrefix + "CONFIG"

const devJWTSecret = "dev-jwt-secret-change-in-production"

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    string `koanf:"port"`
	GinMode string `koanf:"gin_mode"` // "debug", "release", or "test"

	// Database settings
	DBDriver    string `koanf:"db_driver"` // "sqlite" or "postgres"
	DatabaseURL string `koanf:"database_url"`

	// External tools
	PdftoppmPath  string `koanf:"pdftoppm_path"`
	TesseractPath string `koanf:"tesseract_path"`

	// OCR settings
	OCREngine   string        `koanf:"ocr_engine"` // "tesseract" (CLI) or "gosseract" (cgo build)
	OCRLang     string        `koanf:"ocr_lang"`
	TessdataDir string        `koanf:"tessdata_dir"`
	OCRPSM      int           `koanf:"ocr_psm"`
	PageTimeout time.Duration `koanf:"page_timeout"`
	MaxPages    int           `koanf:"max_pages"` // 0 = every page
	TempDir     string        `koanf:"temp_dir"`

	// Uploads
	MaxUploadMB     int `koanf:"max_upload_mb"`     // per file
	UploadRateLimit int `koanf:"upload_rate_limit"` // uploads per hour per client IP; 0 = unlimited

	// Worker settings. There is always exactly one worker.
	JobQueueSize int `koanf:"job_queue_size"`

	// Admin authentication
	JWTSecret    string `koanf:"jwt_secret"`
	AdminKeyHash string `koanf:"admin_key_hash"` // bcrypt hash of the X-Admin-Key value

	// CORS
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Webhooks fired when an ingestion job completes
	WebhookURLs   []string `koanf:"webhook_urls"`
	WebhookSecret string   `koanf:"webhook_secret"`

	// Directory watching (cmd/ingest -watch, or the server when set)
	WatchDir      string        `koanf:"watch_dir"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Port:    "8080",
		GinMode: "debug",

		DBDriver:    "sqlite",
		DatabaseURL: "file:playertrack.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",

		PdftoppmPath:  "pdftoppm",
		TesseractPath: "tesseract",

		OCREngine:   "tesseract",
		OCRLang:     "eng",
		PageTimeout: 2 * time.Minute,

		MaxUploadMB:     50,
		UploadRateLimit: 60,
		JobQueueSize:    100,

		JWTSecret: devJWTSecret,

		// Vite dev server default
		AllowedOrigins: []string{"http://localhost:5173"},

		WatchDebounce: 2 * time.Second,
	}
}

// listKeys are the []string settings.
var listKeys = map[string]bool{
	"allowed_origins": true,
	"webhook_urls":    true,
}

// splitList splits a comma separated value, dropping blanks.
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Load reads configuration from defaults, the optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// PLAYERTRACK_DB_DRIVER -> db_driver (flat keys, underscores kept).
	// List settings are comma separated in the environment.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db_driver must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("database_url must not be empty")
	}
	if c.PageTimeout <= 0 {
		return errors.New("page_timeout must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("max_upload_mb must be positive")
	}
	if c.JobQueueSize <= 0 {
		return errors.New("job_queue_size must be positive")
	}

	// Security: in release mode we refuse to start with the default secret
	// or without an admin key.
	if c.GinMode == "release" && c.JWTSecret == devJWTSecret {
		return errors.New("jwt_secret must be set in production; refusing to start with default secret")
	}
	if c.GinMode == "release" && c.AdminKeyHash == "" {
		return errors.New("admin_key_hash must be set in production; it protects the reset endpoint")
	}
	return nil
}

// MaxUploadBytes is the per-file upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

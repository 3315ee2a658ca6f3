package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Media drivers supported by the upload adapter.
const (
	MediaDriverCloudinary = "cloudinary"
	MediaDriverS3         = "s3"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	// CORSAllowedHosts holds hosts or origins; empty selects the built-in list.
	CORSAllowedHosts []string

	DB         DatabaseConfig
	Redis      RedisConfig
	Media      MediaConfig
	Newsletter NewsletterConfig
	Worker     WorkerConfig
	Admin      AdminConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MediaConfig selects and configures the image hosting provider.
type MediaConfig struct {
	Driver        string
	DefaultFolder string
	MaxUploadSize int64

	Cloudinary CloudinaryConfig
	S3         S3Config
}

// CloudinaryConfig holds either the discrete credential triple or a single
// cloudinary:// connection URL.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	URL       string
}

// HasCredentials reports whether the triple or the connection URL is set.
func (c CloudinaryConfig) HasCredentials() bool {
	if c.URL != "" {
		return true
	}
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// S3Config contains AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

// HasCredentials reports whether the bucket can be addressed at all.
// Access keys are optional; the default AWS credential chain is used without them.
func (c S3Config) HasCredentials() bool {
	return c.Region != "" && c.Bucket != "" && c.PublicBaseURL != ""
}

// NewsletterConfig controls the admin newsletter listing.
type NewsletterConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	MediaSweepInterval time.Duration
	MediaOrphanAfter   time.Duration
}

// AdminConfig seeds the first panel administrator on startup.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// PanelConfig configures the embeddable admin panel client. The API server
// does not read it; see LoadPanel.
type PanelConfig struct {
	APIBaseURL     string
	SearchDebounce time.Duration
	ItemsPerPage   int
	MediaFolder    string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = getEnvList("CORS_ALLOWED_HOSTS")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Media = MediaConfig{
		Driver:        getEnv("MEDIA_DRIVER", MediaDriverCloudinary),
		DefaultFolder: getEnv("MEDIA_DEFAULT_FOLDER", "products"),
		MaxUploadSize: int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			URL:       getEnv("CLOUDINARY_URL", ""),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", ""),
			Bucket:          getEnv("S3_BUCKET", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
	}
	if cfg.Media.Driver != MediaDriverCloudinary && cfg.Media.Driver != MediaDriverS3 {
		return nil, fmt.Errorf("invalid MEDIA_DRIVER %q: must be %q or %q", cfg.Media.Driver, MediaDriverCloudinary, MediaDriverS3)
	}

	cfg.Newsletter = NewsletterConfig{
		DefaultLimit: getEnvInt("NEWSLETTER_DEFAULT_LIMIT", 10),
		MaxLimit:     getEnvInt("NEWSLETTER_MAX_LIMIT", 100),
	}

	cfg.Admin = AdminConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Name:     getEnv("ADMIN_NAME", "Administrator"),
	}

	// Durations
	var err error
	if cfg.Newsletter.CacheTTL, err = parseDurationEnv("NEWSLETTER_CACHE_TTL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid NEWSLETTER_CACHE_TTL: %w", err)
	}
	if cfg.Worker.MediaSweepInterval, err = parseDurationEnv("MEDIA_SWEEP_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid MEDIA_SWEEP_INTERVAL: %w", err)
	}
	if cfg.Worker.MediaOrphanAfter, err = parseDurationEnv("MEDIA_ORPHAN_AFTER", "24h"); err != nil {
		return nil, fmt.Errorf("invalid MEDIA_ORPHAN_AFTER: %w", err)
	}

	// Basic validation for DB parameters.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// LoadPanel reads the PANEL_* settings used by the admin panel client,
// loading .env first like Load. It does not require the server settings.
func LoadPanel() (PanelConfig, error) {
	_ = godotenv.Load()

	cfg := PanelConfig{
		APIBaseURL:   getEnv("PANEL_API_BASE_URL", "http://localhost:8080"),
		ItemsPerPage: getEnvInt("PANEL_ITEMS_PER_PAGE", 10),
		MediaFolder:  getEnv("PANEL_MEDIA_FOLDER", getEnv("MEDIA_DEFAULT_FOLDER", "products")),
	}
	var err error
	if cfg.SearchDebounce, err = parseDurationEnv("PANEL_SEARCH_DEBOUNCE", "500ms"); err != nil {
		return PanelConfig{}, fmt.Errorf("invalid PANEL_SEARCH_DEBOUNCE: %w", err)
	}
	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// Package config loads runtime settings from the environment.
//
// Values are read from a .env file when present, then from process
// environment variables. Missing values fall back to development defaults.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Upload backends.
const (
	UploadLocal = "local"
	UploadS3    = "s3"
)

// devSessionSecret is only accepted outside release mode.
const devSessionSecret = "dev-session-secret"

// Config holds runtime settings for the recipe server.
type Config struct {
	HTTPAddr string // Bind address (e.g., ":8080")
	GinMode  string // gin mode: debug, release, test

	DBDriver    string // sqlite or postgres
	DBPath      string // SQLite file path
	DatabaseURL string // PostgreSQL DSN

	SessionSecret string        // HMAC key for the session cookie
	SessionTTL    time.Duration // Server-side session lifetime
	CookieSecure  bool          // Set the Secure attribute on the session cookie

	RedisHost     string
	RedisPort     string
	RedisPassword string
	CacheTTL      time.Duration // Recipe cache lifetime when Redis is available

	LoginRateLimit int // Credential submissions per client per minute; 0 disables

	UploadBackend string // local or s3
	UploadRoot    string // Directory server-relative upload paths resolve against (local backend)
	UploadPrefix  string // Server-relative prefix of stored images

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	RecipesMostRecentFirst bool // List newest recipes first
	RecipeEditingEnabled   bool // Expose edit/delete routes
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:      getEnv("DB_PATH", "./recipes.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  getBool("COOKIE_SECURE", false),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      getDuration("RECIPE_CACHE_TTL", 5*time.Minute),

		LoginRateLimit: getInt("LOGIN_RATE_LIMIT", 10),

		UploadBackend: strings.ToLower(getEnv("UPLOAD_BACKEND", UploadLocal)),
		UploadRoot:    getEnv("UPLOAD_ROOT", "."),
		UploadPrefix:  getEnv("UPLOAD_PREFIX", "static/img/recipes"),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),

		RecipesMostRecentFirst: getBool("RECIPES_MOST_RECENT_FIRST", false),
		RecipeEditingEnabled:   getBool("RECIPE_EDITING_ENABLED", false),
	}
}

// Validate checks required settings and fills the development session secret.
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, errors.New("DB_DRIVER must be sqlite or postgres"))
	}

	switch c.UploadBackend {
	case UploadLocal:
	case UploadS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for s3 uploads"))
		}
	default:
		errs = append(errs, errors.New("UPLOAD_BACKEND must be local or s3"))
	}

	if c.SessionSecret == "" {
		if c.GinMode == "release" {
			errs = append(errs, errors.New("SESSION_SECRET is required in release mode"))
		} else {
			slog.Warn("SESSION_SECRET is not set. Set a strong secret in production.")
			c.SessionSecret = devSessionSecret
		}
	}

	return errors.Join(errs...)
}

// ImageBaseURL returns the URL prefix that stored image paths are appended to.
func (c *Config) ImageBaseURL() string {
	if c.UploadBackend != UploadS3 {
		return "/"
	}
	if c.S3Endpoint != "" {
		return strings.TrimRight(c.S3Endpoint, "/") + "/" + c.S3Bucket + "/"
	}
	return "https://" + c.S3Bucket + ".s3." + c.S3Region + ".amazonaws.com/"
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

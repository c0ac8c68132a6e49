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

const (
	defaultSessionSecret = "change-me-session-secret"
	defaultAdminPassword = "change-me-admin-password"
	defaultSessionTTL    = "12h"
)

type Config struct {
	AppEnv string
	Port   string

	StoreBackend string
	DatabaseURL  string

	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	CookieSameSite string

	StatusPolicy string

	BlobBackend        string
	UploadDir          string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string

	RabbitMQURL string
	NotifyQueue string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateLimit     RateLimitConfig

	AdminEmail    string
	AdminPassword string
	AdminName     string

	CORSAllowedOrigins []string
	LogLevel           string
}

type RateLimitConfig struct {
	Enabled  bool
	Capacity int
	Refill   time.Duration
	TTL      time.Duration
	Prefix   string
}

// Load reads .env.<APP_ENV> (falling back to .env) and then the process environment.
func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "development")))

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file found, using system environment variables")
		}
	} else {
		log.Printf("loaded configuration from %s", envFile)
	}

	cfg := &Config{
		AppEnv:             env,
		Port:               getEnv("PORT", "5000"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", "memory")),
		DatabaseURL:        getEnv("DATABASE_URL", "yojeong.db"),
		SessionSecret:      strings.TrimSpace(getEnv("SESSION_SECRET", defaultSessionSecret)),
		CookieSecure:       parseBoolEnv("COOKIE_SECURE", "false"),
		CookieSameSite:     strings.TrimSpace(getEnv("COOKIE_SAMESITE", "Lax")),
		StatusPolicy:       getEnv("STATUS_POLICY", "permissive"),
		BlobBackend:        strings.ToLower(getEnv("BLOB_BACKEND", "disk")),
		UploadDir:          getEnv("UPLOAD_DIR", "static/uploads"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		NotifyQueue:        getEnv("NOTIFY_QUEUE", "studio.notifications"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            parseIntEnv("REDIS_DB", 0),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@yojeong.com"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", defaultAdminPassword),
		AdminName:          getEnv("ADMIN_NAME", "Admin User"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:  parseBoolEnv("RATE_LIMIT_ENABLED", "true"),
		Capacity: parseIntEnv("RATE_LIMIT_CAPACITY", 10),
		Prefix:   getEnv("RATE_LIMIT_PREFIX", "yojeong:rl"),
	}
	cfg.RateLimit.Refill, err = parseDurationEnv("RATE_LIMIT_REFILL_EVERY", "6s")
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.TTL, err = parseDurationEnv("RATE_LIMIT_TTL", "10m")
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "memory", "sql":
	default:
		return fmt.Errorf("STORE_BACKEND must be memory or sql, got %q", c.StoreBackend)
	}
	switch c.BlobBackend {
	case "memory", "disk":
	case "s3":
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be memory, disk or s3, got %q", c.BlobBackend)
	}
	if c.StoreBackend == "sql" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=sql")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}

	sameSite := strings.ToLower(c.CookieSameSite)
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !c.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}
	if c.RateLimit.Capacity < 1 {
		c.RateLimit.Capacity = 1
	}
	if c.RateLimit.Refill <= 0 {
		return fmt.Errorf("RATE_LIMIT_REFILL_EVERY must be > 0")
	}

	if c.IsProduction() {
		if isEmptyOrDefault(c.SessionSecret, defaultSessionSecret) {
			return fmt.Errorf("in production SESSION_SECRET must be set and not default")
		}
		if isEmptyOrDefault(c.AdminPassword, defaultAdminPassword) {
			return fmt.Errorf("in production ADMIN_PASSWORD must be set and not default")
		}
		if !c.CookieSecure {
			return fmt.Errorf("in production COOKIE_SECURE must be true")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production" || c.AppEnv == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseIntEnv(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"crypto/hmac"
	"crypto/sha256"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	AppEnv     string
	StoreURL   string
	BaseURL    string
	AdminKey   string
	JWTSecret  string
	SessionTTL time.Duration
	LogLevel   string

	ORCIDID           string
	ORCIDClientID     string
	ORCIDClientSecret string

	OpenReviewID       string
	OpenReviewUsername string
	OpenReviewPassword string

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:       getEnv("PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "local"),
		StoreURL:   getEnv("STORE_URL", getEnv("RESEARCH_REDIS_URL", getEnv("REDIS_URL", "redis://localhost:6379"))),
		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		AdminKey:   getEnv("ADMIN_KEY", ""),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		ORCIDID:           getEnv("ORCID_ID", ""),
		ORCIDClientID:     getEnv("ORCID_CLIENT_ID", ""),
		ORCIDClientSecret: getEnv("ORCID_CLIENT_SECRET", ""),

		OpenReviewID:       getEnv("OPENREVIEW_ID", ""),
		OpenReviewUsername: getEnv("OPENREVIEW_USERNAME", ""),
		OpenReviewPassword: getEnv("OPENREVIEW_PASSWORD", ""),

		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
	}
}

// IsProduction enables secure cookies and JSON logs.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SessionKey signs admin session cookies. Without JWT_SECRET the key is
// derived from ADMIN_KEY, and with neither set it is nil and sessions are off.
func (c *Config) SessionKey() []byte {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret)
	}
	if c.AdminKey == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(c.AdminKey))
	mac.Write([]byte("research-links session"))
	return mac.Sum(nil)
}

// UsesRedis reports whether StoreURL points at Redis rather than SQLite/libsql.
func (c *Config) UsesRedis() bool {
	return strings.HasPrefix(c.StoreURL, "redis://") || strings.HasPrefix(c.StoreURL, "rediss://")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// IdempotencyPolicy selects how the webhook ingress treats duplicate
// webhook ids. Always-process is the current operating mode: an upstream
// retry storm made strict deduplication drop legitimate deliveries, so
// duplicates are processed again rather than rejected.
type IdempotencyPolicy string

const (
	PolicyAlwaysProcess    IdempotencyPolicy = "always-process"
	PolicyRejectDuplicates IdempotencyPolicy = "reject-duplicates"
)

// Config holds all application configuration.
type Config struct {
	DatabaseURL string
	ServerPort  int

	KickertoolAPIBase string
	KickertoolAPIKey  string

	WebhookIdempotency IdempotencyPolicy

	// ResyncInterval drives the fallback full-resync scheduler for running
	// tournaments. Zero disables the scheduler.
	ResyncInterval time.Duration

	// Admin surface is enabled only when both values are set.
	JWTSecretKey      string
	AdminPasswordHash string

	// Snapshot archiving to R2 is enabled only when all values are set.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally picking up
// a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	policy := IdempotencyPolicy(os.Getenv("WEBHOOK_IDEMPOTENCY"))
	switch policy {
	case "":
		policy = PolicyAlwaysProcess
	case PolicyAlwaysProcess, PolicyRejectDuplicates:
	default:
		return nil, fmt.Errorf("invalid WEBHOOK_IDEMPOTENCY value %q (want %q or %q)",
			policy, PolicyAlwaysProcess, PolicyRejectDuplicates)
	}

	resyncInterval := 5 * time.Minute
	if intervalStr := os.Getenv("RESYNC_INTERVAL"); intervalStr != "" {
		resyncInterval, err = time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RESYNC_INTERVAL environment variable: %w", err)
		}
		if resyncInterval < 0 {
			return nil, fmt.Errorf("RESYNC_INTERVAL must not be negative")
		}
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		ServerPort:         port,
		KickertoolAPIBase:  os.Getenv("KICKERTOOL_API_BASE"),
		KickertoolAPIKey:   os.Getenv("KICKERTOOL_API_KEY"),
		WebhookIdempotency: policy,
		ResyncInterval:     resyncInterval,
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// AdminEnabled reports whether the JWT-protected admin surface can be mounted.
func (c *Config) AdminEnabled() bool {
	return c.JWTSecretKey != "" && c.AdminPasswordHash != ""
}

// R2Enabled reports whether snapshot archiving to object storage is configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

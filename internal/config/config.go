package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration, loaded from environment
// variables (a .env file is read by main before this runs).
type Config struct {
	AppPort string
	Env     string

	DatabaseURL string // postgres DSN; empty means local sqlite
	SQLitePath  string

	JWTIssuer        string
	JWTAudience      string
	JWTPublicKey     string // inline PEM, takes precedence
	JWTPublicKeyFile string

	UploadDir      string
	MaxUploadBytes int

	RabbitMQURL    string // empty disables event publishing
	EventsExchange string

	RedisAddr string // empty disables the read cache
	CacheTTL  time.Duration

	LogLevel string
}

// Load reads configuration via viper with sane defaults for local use.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "vinoteca.db")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY_FILE", "")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_EXCHANGE", "vinoteca.events")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CACHE_TTL_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		Env:              v.GetString("ENV"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		JWTAudience:      v.GetString("JWT_AUDIENCE"),
		JWTPublicKey:     v.GetString("JWT_PUBLIC_KEY"),
		JWTPublicKeyFile: v.GetString("JWT_PUBLIC_KEY_FILE"),
		UploadDir:        v.GetString("UPLOAD_DIR"),
		MaxUploadBytes:   v.GetInt("MAX_UPLOAD_BYTES"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		EventsExchange:   v.GetString("EVENTS_EXCHANGE"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		CacheTTL:         time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		LogLevel:         v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable before anything starts.
func (c *Config) Validate() error {
	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT is required")
	}
	if !strings.HasPrefix(c.AppPort, ":") {
		c.AppPort = ":" + c.AppPort
	}
	if c.JWTIssuer == "" {
		return fmt.Errorf("JWT_ISSUER is required")
	}
	if c.JWTAudience == "" {
		return fmt.Errorf("JWT_AUDIENCE is required")
	}
	if c.JWTPublicKey == "" && c.JWTPublicKeyFile == "" {
		return fmt.Errorf("one of JWT_PUBLIC_KEY or JWT_PUBLIC_KEY_FILE is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// PublicKeyPEM returns the identity provider's verification key, reading
// the key file when no inline key is configured.
func (c *Config) PublicKeyPEM() ([]byte, error) {
	if c.JWTPublicKey != "" {
		return []byte(c.JWTPublicKey), nil
	}
	pem, err := os.ReadFile(c.JWTPublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWT public key file: %w", err)
	}
	return pem, nil
}

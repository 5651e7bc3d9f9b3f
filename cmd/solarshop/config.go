package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Media     MediaConfig     `mapstructure:"media"`
	ImageHost ImageHostConfig `mapstructure:"imagehost"`
	WhatsApp  WhatsAppConfig  `mapstructure:"whatsapp"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// FrontendDir is the storefront build served at /. Empty disables it.
	FrontendDir string `mapstructure:"frontend_dir"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig holds back-office credentials. Only bcrypt hashes are stored;
// generate one with `solarshop -hash-token <token>`.
type AuthConfig struct {
	// AdminTokenHash is a single admin credential, convenient to set via
	// SOLARSHOP_AUTH_ADMIN_TOKEN_HASH.
	AdminTokenHash string `mapstructure:"admin_token_hash"`

	// Tokens lists named credentials with roles.
	Tokens []TokenConfig `mapstructure:"tokens"`
}

// TokenConfig is one named back-office credential.
type TokenConfig struct {
	Name string `mapstructure:"name"`
	Role string `mapstructure:"role"`
	Hash string `mapstructure:"hash"`
}

// MediaConfig holds upload storage configuration.
type MediaConfig struct {
	// Driver is "local" or "s3".
	Driver      string   `mapstructure:"driver"`
	Dir         string   `mapstructure:"dir"`
	BaseURL     string   `mapstructure:"base_url"`
	MaxUploadMB int      `mapstructure:"max_upload_mb"`
	S3          S3Config `mapstructure:"s3"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (c MediaConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// S3Config holds bucket configuration for the s3 media driver.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicURL       string `mapstructure:"public_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// ImageHostConfig holds the external image host configuration.
// Relaying is enabled when APIKey is set.
type ImageHostConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Expiration time.Duration `mapstructure:"expiration"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// WhatsAppConfig holds the shop's WhatsApp settings.
type WhatsAppConfig struct {
	// Number is the shop's public number used for click-to-chat links.
	Number string `mapstructure:"number"`

	// Cloud API settings for relaying new orders to Recipient.
	APIBaseURL    string        `mapstructure:"api_base_url"`
	PhoneNumberID string        `mapstructure:"phone_number_id"`
	AccessToken   string        `mapstructure:"access_token"`
	Recipient     string        `mapstructure:"recipient"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RelayInterval time.Duration `mapstructure:"relay_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
}

// CheckoutConfig holds storefront checkout settings.
type CheckoutConfig struct {
	Currency     string `mapstructure:"currency"`
	RedirectPath string `mapstructure:"redirect_path"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.frontend_dir", "")
	v.SetDefault("database.dsn", "./data/solarshop.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("auth.admin_token_hash", "")

	v.SetDefault("media.driver", "local")
	v.SetDefault("media.dir", "./data/media")
	v.SetDefault("media.base_url", "/media")
	v.SetDefault("media.max_upload_mb", 8)
	v.SetDefault("media.s3.bucket", "")
	v.SetDefault("media.s3.region", "us-east-1")
	v.SetDefault("media.s3.endpoint", "")
	v.SetDefault("media.s3.access_key_id", "")
	v.SetDefault("media.s3.secret_access_key", "")
	v.SetDefault("media.s3.public_url", "")
	v.SetDefault("media.s3.use_path_style", false)

	v.SetDefault("imagehost.base_url", "https://api.imgbb.com/1/upload")
	v.SetDefault("imagehost.api_key", "") // relay disabled
	v.SetDefault("imagehost.expiration", "0s")
	v.SetDefault("imagehost.timeout", "30s")

	v.SetDefault("whatsapp.number", "")
	v.SetDefault("whatsapp.api_base_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("whatsapp.phone_number_id", "")
	v.SetDefault("whatsapp.access_token", "")
	v.SetDefault("whatsapp.recipient", "")
	v.SetDefault("whatsapp.timeout", "15s")
	v.SetDefault("whatsapp.relay_interval", "30s")
	v.SetDefault("whatsapp.batch_size", 20)

	v.SetDefault("checkout.currency", "Rs")
	v.SetDefault("checkout.redirect_path", "/order-confirmation")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("SOLARSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	switch c.Media.Driver {
	case "local":
		if c.Media.Dir == "" {
			return errors.New("media.dir is required for the local driver")
		}
	case "s3":
		if c.Media.S3.Bucket == "" {
			return errors.New("media.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("media.driver must be local or s3, got %q", c.Media.Driver)
	}
	if c.Media.MaxUploadMB <= 0 {
		return errors.New("media.max_upload_mb must be positive")
	}
	for _, t := range c.Auth.Tokens {
		if !auth.Role(t.Role).IsValid() {
			return fmt.Errorf("auth.tokens: %q has unknown role %q", t.Name, t.Role)
		}
		if t.Hash == "" {
			return fmt.Errorf("auth.tokens: %q has no hash", t.Name)
		}
	}
	return nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

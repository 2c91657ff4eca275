// Package config defines the top-level configuration for the tradewise
// journal service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by TRADEWISE_* environment variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Import   ImportConfig   `toml:"import"`
	Coach    CoachConfig    `toml:"coach"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIToken    string   `toml:"api_token"`
	CORSOrigins []string `toml:"cors_origins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters. Uploaded broker
// statements and trade archives are written to this bucket.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ImportConfig holds statement import parameters.
type ImportConfig struct {
	// MaxFileSizeMB caps the size of an uploaded statement.
	MaxFileSizeMB int `toml:"max_file_size_mb"`
	// PendingTTL is how long an unconfirmed import batch is kept for review.
	PendingTTL duration `toml:"pending_ttl"`
	// ArchiveStatements controls whether raw uploads are copied to S3.
	ArchiveStatements bool `toml:"archive_statements"`
	// ArchiveRetentionDays is how long closed trades stay in Postgres before
	// the archiver moves them to S3.
	ArchiveRetentionDays int `toml:"archive_retention_days"`
	// File is the statement to import in one-shot import mode.
	File string `toml:"file"`
	// InitialBalance seeds the account balance in import mode.
	InitialBalance float64 `toml:"initial_balance"`
}

// CoachConfig holds parameters for the AI trading coach. Any API exposing the
// OpenAI chat-completions shape works.
type CoachConfig struct {
	Enabled     bool     `toml:"enabled"`
	BaseURL     string   `toml:"base_url"`
	APIKey      string   `toml:"api_key"`
	Model       string   `toml:"model"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
	Timeout     duration `toml:"timeout"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "tradewise",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "tradewise-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Import: ImportConfig{
			MaxFileSizeMB:        10,
			PendingTTL:           duration{24 * time.Hour},
			ArchiveStatements:    false,
			ArchiveRetentionDays: 365,
		},
		Coach: CoachConfig{
			Enabled:     false,
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.4,
			Timeout:     duration{60 * time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"import_confirmed", "error"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"import": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, import)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Import
	if c.Import.MaxFileSizeMB < 1 {
		errs = append(errs, "import: max_file_size_mb must be >= 1")
	}
	if c.Import.PendingTTL.Duration <= 0 {
		errs = append(errs, "import: pending_ttl must be positive")
	}
	if c.Import.ArchiveRetentionDays < 1 {
		errs = append(errs, "import: archive_retention_days must be >= 1")
	}
	if c.Mode == "import" && c.Import.File == "" {
		errs = append(errs, "import: file must be set for import mode")
	}

	// Coach
	if c.Coach.Enabled {
		if c.Coach.BaseURL == "" {
			errs = append(errs, "coach: base_url must not be empty when enabled")
		}
		if c.Coach.APIKey == "" {
			errs = append(errs, "coach: api_key is required when enabled")
		}
		if c.Coach.Model == "" {
			errs = append(errs, "coach: model must not be empty when enabled")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

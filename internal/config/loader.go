package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRADEWISE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRADEWISE_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setBool(&cfg.Server.Enabled, "TRADEWISE_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "TRADEWISE_SERVER_PORT")
	setStr(&cfg.Server.APIToken, "TRADEWISE_SERVER_API_TOKEN")
	setStringSlice(&cfg.Server.CORSOrigins, "TRADEWISE_SERVER_CORS_ORIGINS")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "TRADEWISE_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "TRADEWISE_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "TRADEWISE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "TRADEWISE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "TRADEWISE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "TRADEWISE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "TRADEWISE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "TRADEWISE_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "TRADEWISE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "TRADEWISE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "TRADEWISE_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "TRADEWISE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRADEWISE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRADEWISE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRADEWISE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TRADEWISE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "TRADEWISE_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "TRADEWISE_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "TRADEWISE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TRADEWISE_S3_REGION")
	setStr(&cfg.S3.Bucket, "TRADEWISE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TRADEWISE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TRADEWISE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TRADEWISE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TRADEWISE_S3_FORCE_PATH_STYLE")

	// ── Import ──
	setInt(&cfg.Import.MaxFileSizeMB, "TRADEWISE_IMPORT_MAX_FILE_SIZE_MB")
	setDuration(&cfg.Import.PendingTTL, "TRADEWISE_IMPORT_PENDING_TTL")
	setBool(&cfg.Import.ArchiveStatements, "TRADEWISE_IMPORT_ARCHIVE_STATEMENTS")
	setInt(&cfg.Import.ArchiveRetentionDays, "TRADEWISE_IMPORT_ARCHIVE_RETENTION_DAYS")
	setStr(&cfg.Import.File, "TRADEWISE_IMPORT_FILE")
	setFloat64(&cfg.Import.InitialBalance, "TRADEWISE_IMPORT_INITIAL_BALANCE")

	// ── Coach ──
	setBool(&cfg.Coach.Enabled, "TRADEWISE_COACH_ENABLED")
	setStr(&cfg.Coach.BaseURL, "TRADEWISE_COACH_BASE_URL")
	setStr(&cfg.Coach.APIKey, "TRADEWISE_COACH_API_KEY")
	setStr(&cfg.Coach.APIKey, "OPENAI_API_KEY") // compatibility alias
	setStr(&cfg.Coach.Model, "TRADEWISE_COACH_MODEL")
	setInt(&cfg.Coach.MaxTokens, "TRADEWISE_COACH_MAX_TOKENS")
	setFloat64(&cfg.Coach.Temperature, "TRADEWISE_COACH_TEMPERATURE")
	setDuration(&cfg.Coach.Timeout, "TRADEWISE_COACH_TIMEOUT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "TRADEWISE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TRADEWISE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "TRADEWISE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "TRADEWISE_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "TRADEWISE_MODE")
	setStr(&cfg.LogLevel, "TRADEWISE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/tradewisehq/tradewise/internal/blob/s3"
	"github.com/tradewisehq/tradewise/internal/cache/redis"
	"github.com/tradewisehq/tradewise/internal/coach"
	"github.com/tradewisehq/tradewise/internal/config"
	"github.com/tradewisehq/tradewise/internal/domain"
	"github.com/tradewisehq/tradewise/internal/notify"
	"github.com/tradewisehq/tradewise/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application modes
// need to operate. It is constructed by Wire and torn down by the returned
// cleanup function.
type Dependencies struct {
	// Stores
	TradeStore domain.TradeStore
	AuditStore domain.AuditStore

	// Caches
	PendingCache domain.PendingImportCache
	KVStore      domain.KVStore
	RateLimiter  domain.RateLimiter
	LockManager  domain.LockManager
	SignalBus    domain.SignalBus

	// Blob storage (nil unless s3.enabled)
	BlobWriter  domain.BlobWriter
	BlobReader  domain.BlobReader
	BlobDeleter domain.BlobDeleter
	Archiver    domain.Archiver

	// Coach is never nil; when coach.enabled is false it is a Noop that
	// reports itself as disabled.
	Coach coach.Coach

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	// Run migrations if enabled.
	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.TradeStore = postgres.NewTradeStore(pool)
	deps.AuditStore = postgres.NewAuditStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.PendingCache = redis.NewPendingImportCache(redisClient)
	deps.KVStore = redis.NewKVStore(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		reader := s3blob.NewReader(s3Client)
		deps.BlobReader = reader
		deps.BlobDeleter = reader // same type implements BlobDeleter
		deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, deps.TradeStore, deps.AuditStore)
	}

	// --- Coach ---
	if cfg.Coach.Enabled {
		deps.Coach = coach.NewClient(coach.ClientConfig{
			BaseURL:     cfg.Coach.BaseURL,
			APIKey:      cfg.Coach.APIKey,
			Model:       cfg.Coach.Model,
			MaxTokens:   cfg.Coach.MaxTokens,
			Temperature: cfg.Coach.Temperature,
			Timeout:     cfg.Coach.Timeout.Duration,
		}, logger)
	} else {
		deps.Coach = coach.Noop{}
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tradewisehq/tradewise/internal/server"
	"github.com/tradewisehq/tradewise/internal/server/handler"
	"github.com/tradewisehq/tradewise/internal/server/ws"
	"github.com/tradewisehq/tradewise/internal/service"
)

// journalServices bundles the domain services shared by the operating modes.
type journalServices struct {
	imports   *service.ImportService
	trades    *service.TradeService
	analytics *service.AnalyticsService
	coach     *service.CoachService
}

// buildServices constructs the domain services on top of the wired dependencies.
func (a *App) buildServices(deps *Dependencies) *journalServices {
	imports := service.NewImportService(
		deps.TradeStore, deps.PendingCache, deps.KVStore, deps.LockManager,
		deps.AuditStore, a.logger,
		service.ImportServiceOpts{
			Archiver:   deps.Archiver,
			Bus:        deps.SignalBus,
			Notifier:   deps.Notifier,
			PendingTTL: a.cfg.Import.PendingTTL.Duration,
		},
	)
	trades := service.NewTradeService(deps.TradeStore, deps.AuditStore, deps.SignalBus, a.logger)
	analytics := service.NewAnalyticsService(deps.TradeStore, imports, a.logger)
	coachSvc := service.NewCoachService(deps.Coach, analytics, deps.TradeStore, a.logger)

	return &journalServices{
		imports:   imports,
		trades:    trades,
		analytics: analytics,
		coach:     coachSvc,
	}
}

// ServerMode runs the HTTP + WebSocket API server plus the background trade
// archiver when blob storage is enabled. It blocks until the context is
// cancelled or a subsystem fails.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	svcs := a.buildServices(deps)

	// WebSocket hub bridges Redis journal events to connected clients.
	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Status:    handler.NewStatusHandler(a.cfg.Mode, svcs.trades, a.logger),
		Imports:   handler.NewImportHandler(svcs.imports, a.cfg.Import.MaxFileSizeMB, a.logger),
		Trades:    handler.NewTradeHandler(svcs.trades, a.logger),
		Analytics: handler.NewAnalyticsHandler(svcs.analytics, a.logger),
		Coach:     handler.NewCoachHandler(svcs.coach, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIToken:    a.cfg.Server.APIToken,
		RateLimiter: deps.RateLimiter,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	// Retention loop: age closed trades out of Postgres into blob storage.
	if deps.Archiver != nil && a.cfg.Import.ArchiveRetentionDays > 0 {
		g.Go(func() error {
			return a.runRetentionLoop(ctx, deps)
		})
	}

	return g.Wait()
}

// runRetentionLoop archives trades older than the configured retention window
// once a day. Archiver failures are logged and retried on the next tick.
func (a *App) runRetentionLoop(ctx context.Context, deps *Dependencies) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Import.ArchiveRetentionDays)
		moved, err := deps.Archiver.ArchiveTrades(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "retention: archive trades failed",
				slog.Time("cutoff", cutoff),
				slog.String("error", err.Error()),
			)
		} else if moved > 0 {
			a.logger.InfoContext(ctx, "retention: archived trades",
				slog.Time("cutoff", cutoff),
				slog.Int64("trades", moved),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ImportMode reads a single statement file, merges it straight into the
// journal without the review step, and exits.
func (a *App) ImportMode(ctx context.Context, deps *Dependencies) error {
	path := a.cfg.Import.File
	a.logger.InfoContext(ctx, "starting import mode",
		slog.String("file", path),
	)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import mode: read statement: %w", err)
	}

	svcs := a.buildServices(deps)
	result, err := svcs.imports.ImportDirect(ctx, filepath.Base(path), data, a.cfg.Import.InitialBalance)
	if err != nil {
		return fmt.Errorf("import mode: %w", err)
	}

	a.logger.InfoContext(ctx, "import complete",
		slog.String("file", path),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return nil
}

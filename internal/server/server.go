package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tradewisehq/tradewise/internal/domain"
	"github.com/tradewisehq/tradewise/internal/server/handler"
	"github.com/tradewisehq/tradewise/internal/server/middleware"
	"github.com/tradewisehq/tradewise/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIToken    string             // if empty, authentication is disabled
	RateLimiter domain.RateLimiter // if nil, uploads are not rate limited
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Status    *handler.StatusHandler
	Imports   *handler.ImportHandler
	Trades    *handler.TradeHandler
	Analytics *handler.AnalyticsHandler
	Coach     *handler.CoachHandler
}

// Server is the headless HTTP + WebSocket API server for the trading journal.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth) and attaches the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// --- Register routes ---

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Backend status.
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)

	// Statement import endpoints. Uploads are rate limited when a limiter is
	// configured since parsing spreadsheets is the most expensive request.
	var upload http.Handler = http.HandlerFunc(handlers.Imports.Upload)
	if cfg.RateLimiter != nil {
		upload = middleware.RateLimit(cfg.RateLimiter, 10, time.Minute)(upload)
	}
	mux.Handle("POST /api/import", upload)
	mux.HandleFunc("GET /api/import/{id}", handlers.Imports.GetPending)
	mux.HandleFunc("POST /api/import/{id}/confirm", handlers.Imports.ConfirmImport)
	mux.HandleFunc("DELETE /api/import/{id}", handlers.Imports.DiscardImport)

	// Trade endpoints.
	mux.HandleFunc("GET /api/trades", handlers.Trades.ListTrades)
	mux.HandleFunc("POST /api/trades", handlers.Trades.CreateTrade)
	mux.HandleFunc("DELETE /api/trades", handlers.Trades.ResetJournal)
	mux.HandleFunc("GET /api/trades/{id}", handlers.Trades.GetTrade)
	mux.HandleFunc("PUT /api/trades/{id}", handlers.Trades.UpdateTrade)
	mux.HandleFunc("DELETE /api/trades/{id}", handlers.Trades.DeleteTrade)

	// Analytics endpoints.
	mux.HandleFunc("GET /api/analytics/summary", handlers.Analytics.GetSummary)
	mux.HandleFunc("GET /api/analytics/equity", handlers.Analytics.GetEquityCurve)
	mux.HandleFunc("GET /api/analytics/weekdays", handlers.Analytics.GetWeekdayMetrics)
	mux.HandleFunc("GET /api/analytics/symbols", handlers.Analytics.GetSymbolPerformance)

	// Coach endpoints.
	mux.HandleFunc("POST /api/coach/feedback", handlers.Coach.GetFeedback)
	mux.HandleFunc("GET /api/coach/prompts", handlers.Coach.GetPrompts)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIToken is empty).
	h = middleware.Auth(cfg.APIToken)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// ABOUTME: Gateway orchestrator wiring the store, auth, browser, files, and monitoring
// ABOUTME: Manages the HTTP server lifecycle with graceful shutdown

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/hearthside/hearth/internal/auth"
	"github.com/hearthside/hearth/internal/browser"
	"github.com/hearthside/hearth/internal/config"
	"github.com/hearthside/hearth/internal/monitor"
	"github.com/hearthside/hearth/internal/store"
)

// Version is the server version reported by the info endpoints
const Version = "1.0.0"

// Gateway orchestrates the hearthd server components.
type Gateway struct {
	config     *config.Config
	store      store.Store
	authSvc    *auth.Service
	issuer     *auth.JWTIssuer
	guard      *auth.Guard
	browser    *browser.Browser
	monitorSvc *monitor.Service
	stream     *monitor.StreamHandler
	httpServer *http.Server
	logger     *slog.Logger
	started    time.Time
}

// initStore creates a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("HEARTH_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a new Gateway instance with the given configuration.
// sampler supplies OS-level metrics for monitoring and may be nil.
func New(cfg *config.Config, sampler monitor.SystemSampler, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	issuer := auth.NewJWTIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authSvc := auth.NewService(s, logger)
	guard := auth.NewGuard(issuer, s)

	sandbox, err := browser.NewSandbox(cfg.Browser.AllowedRoots)
	if err != nil {
		return nil, fmt.Errorf("creating path sandbox: %w", err)
	}

	monitorSvc := monitor.NewService(s, sampler, cfg.Storage.Path, started, logger)

	gw := &Gateway{
		config:     cfg,
		store:      s,
		authSvc:    authSvc,
		issuer:     issuer,
		guard:      guard,
		browser:    browser.New(sandbox, logger),
		monitorSvc: monitorSvc,
		stream:     monitor.NewStreamHandler(guard, monitorSvc, cfg.Monitoring.StreamInterval, logger),
		logger:     logger.With("component", "gateway"),
		started:    started,
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// routes builds the HTTP mux for all API surfaces.
func (g *Gateway) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Server info and health - no auth required
	mux.HandleFunc("GET /{$}", g.handleRoot)
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("GET /api/v1/info", g.handleInfo)

	// Authentication
	mux.HandleFunc("POST /api/v1/auth/register", g.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", g.handleLogin)
	mux.Handle("GET /api/v1/auth/me", g.guard.RequireUser(http.HandlerFunc(g.handleMe)))
	mux.Handle("PATCH /api/v1/auth/me", g.guard.RequireUser(http.HandlerFunc(g.handleUpdateMe)))
	mux.Handle("DELETE /api/v1/auth/me", g.guard.RequireUser(http.HandlerFunc(g.handleDeleteMe)))
	mux.Handle("GET /api/v1/auth/users/{id}", g.guard.RequireSuperuser(http.HandlerFunc(g.handleGetUser)))

	// Filesystem browser
	mux.HandleFunc("GET /api/v1/browser/list", g.handleBrowserList)
	mux.HandleFunc("GET /api/v1/browser/info", g.handleBrowserInfo)
	mux.HandleFunc("GET /api/v1/browser/download", g.handleBrowserDownload)
	mux.HandleFunc("GET /api/v1/browser/roots", g.handleBrowserRoots)

	// File metadata registry
	mux.Handle("POST /api/v1/files", g.guard.RequireUser(http.HandlerFunc(g.handleFileCreate)))
	mux.HandleFunc("GET /api/v1/files", g.handleFileList)
	mux.HandleFunc("GET /api/v1/files/{id}/metadata", g.handleFileMetadata)
	mux.Handle("DELETE /api/v1/files/{id}", g.guard.RequireUser(http.HandlerFunc(g.handleFileDelete)))

	// Monitoring
	mux.HandleFunc("GET /api/v1/monitoring/system", g.handleMonitoringSystem)
	mux.HandleFunc("GET /api/v1/monitoring/storage", g.handleMonitoringStorage)
	mux.HandleFunc("GET /api/v1/monitoring/dashboard", g.handleMonitoringDashboard)
	mux.Handle("/api/v1/monitoring/ws", g.stream)

	return mux
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer starts the HTTP server in a goroutine, returning an error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleRoot returns basic info about the server.
func (g *Gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to hearth",
		"version": Version,
		"status":  "running",
	})
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"app":     "hearth",
		"version": Version,
	})
}

// handleInfo describes the API surfaces this server exposes.
func (g *Gateway) handleInfo(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]any{
		"api_version": "v1",
		"services": map[string]string{
			"auth":       "active",
			"browser":    "active",
			"files":      "active",
			"monitoring": "active",
		},
	})
}

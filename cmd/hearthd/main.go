// ABOUTME: Entry point for the hearthd home server
// ABOUTME: Loads config, wires the gateway, and runs until SIGINT/SIGTERM

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthside/hearth/internal/config"
	"github.com/hearthside/hearth/internal/gateway"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hearthd <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve [config]   Start the server (default config: hearth.yaml)")
		fmt.Println("  health           Check server health")
		fmt.Println()
		fmt.Println("Environment:")
		fmt.Println("  HEARTH_CONFIG      Config file path (overridden by the serve argument)")
		fmt.Println("  HEARTH_SERVER_URL  Server base URL for health (default: http://localhost:8000)")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if env := os.Getenv("HEARTH_CONFIG"); env != "" {
		return env
	}
	return "hearth.yaml"
}

func runServe(ctx context.Context, args []string) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	gw, err := gateway.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	return gw.Run(ctx)
}

// setupLogger builds the root logger from the logging config
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func runHealth(ctx context.Context) error {
	baseURL := os.Getenv("HEARTH_SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: %s: %s", resp.Status, body)
	}

	fmt.Printf("healthy: %s\n", body)
	return nil
}

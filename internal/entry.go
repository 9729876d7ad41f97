// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lequan310/file-mcp/internal/api"
	"github.com/lequan310/file-mcp/internal/convert"
	"github.com/lequan310/file-mcp/internal/mcpserver"
	"github.com/lequan310/file-mcp/internal/pandoc"
	"github.com/lequan310/file-mcp/internal/sse"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// In stdio mode stdout carries the MCP protocol, so logs go to stderr.
	logOut := os.Stdout
	if cfg.App.Transport == TransportStdio {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("transport", cfg.App.Transport),
		slog.String("pandoc_data_dir", cfg.Pandoc.DataDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Locate or install the pandoc binary. This never fails; conversion
	// errors surface later if the binary is really absent.
	bin := pandoc.EnsureInstalled(ctx, pandoc.BootstrapConfig{
		BinaryPath:   cfg.Pandoc.BinaryPath,
		DataDir:      cfg.Pandoc.DataDir,
		AutoDownload: cfg.Pandoc.AutoDownload,
		DownloadURL:  cfg.Pandoc.DownloadURL,
	}, logger)

	engine := pandoc.New(bin, nil)
	if v, err := engine.Version(ctx); err != nil {
		logger.Warn("pandoc version probe failed", slog.String("error", err.Error()))
	} else {
		logger.Info("pandoc ready", slog.String("version", v))
	}

	resolver := convert.NewResolver(cfg.Filters.UserDir, logger)

	if cfg.App.Transport == TransportStdio {
		svc := convert.NewService(engine, resolver, logger)
		srv := mcpserver.New(svc)
		logger.Info("Serving MCP over stdio")
		return srv.ServeStdio()
	}

	// HTTP transport: streamable MCP plus an SSE stream of conversion events.
	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	svc := convert.NewService(engine, resolver, logger, convert.WithPublisher(broker))
	srv := mcpserver.New(svc)

	router := api.NewRouter(srv.HTTPHandler(), http.HandlerFunc(broker.ServeHTTP),
		cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: router,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

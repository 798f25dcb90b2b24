package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simplemercari/pkg/app"
	"simplemercari/pkg/config"
	"simplemercari/pkg/server"
	"simplemercari/pkg/service"
)

func main() {
	// 1. Load Config
	cfgFile := flag.String("config", "", "config file (default is ./.mercari/config.yaml or $HOME/.mercari/config.yaml)")
	flag.Parse()

	if err := config.Load(*cfgFile); err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}
	cfg := config.FromViper()

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}
	slog.SetDefault(logger)

	// 2. Init Core Application
	ctx := context.Background()
	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize app: %v", err)
	}
	defer application.Close()

	// 3. Setup HTTP Server
	srv := server.New(service.NewCatalogService(application), cfg.Server, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Start Server (Async)
	go func() {
		logger.Info("🚀 HTTP server listening", slog.String("addr", cfg.Server.Addr), slog.String("front_url", cfg.Server.FrontURL))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ Failed to serve", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}()

	// 5. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("⚠️  Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("err", err.Error()))
	}
	logger.Info("👋 Server stopped.")
}

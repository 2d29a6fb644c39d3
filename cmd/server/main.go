// Package main implements the entry point for the Total Recall API server,
// which tracks asynchronous background work over a user's ChatGPT
// conversation archive: retrieval, chunked processing, and memory
// re-injection.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/k3ss-official/total-recall/internal/config"
	"github.com/k3ss-official/total-recall/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_configured", cfg.Database.URL != "",
		"bridge_configured", cfg.Bridge.BaseURL != "",
		"summarizer_configured", cfg.LLM.GeminiAPIKey != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"paper-agent/config"
	"paper-agent/database"
	"paper-agent/genclient"
	"paper-agent/pdfextract"
	"paper-agent/search"
	"paper-agent/synthesis"
	"paper-agent/web"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	extractor, err := pdfextract.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize PDF extractor", zap.Error(err))
	}

	generator := genclient.New(cfg, logger)
	searcher := search.New(cfg, logger)

	assembler := synthesis.NewAssembler(store, cfg.RecentTurnWindow)
	synthesizer := synthesis.NewSynthesizer(assembler, store, generator, extractor, logger)

	webServer := web.NewServer(cfg, logger, store, synthesizer, assembler, generator, searcher, extractor)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting paper-agent web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/mediatext-backend/internal/app"
	"github.com/yungbote/mediatext-backend/internal/handlers"
	"github.com/yungbote/mediatext-backend/internal/observability"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
	"github.com/yungbote/mediatext-backend/internal/server"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	cfg := app.LoadConfig(log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "mediatext-backend",
		Environment: cfg.Env,
		Version:     cfg.Version,
	})
	if shutdownOTel != nil {
		defer func() { _ = shutdownOTel(context.Background()) }()
	}

	// Extraction pipeline
	log.Info("Setting up extraction pipeline from main...")
	svc, closeClients := app.BuildExtractionService(log, cfg)
	defer closeClients()

	// Handlers
	extractHandler := handlers.NewExtractHandler(log, svc)

	// Router
	router := server.NewRouter(server.RouterConfig{
		ServiceName:    "mediatext-backend",
		ExtractHandler: extractHandler,
	})

	log.Info("Starting server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

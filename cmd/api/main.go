package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/vadim/campus-market/internal/app"
	"github.com/vadim/campus-market/internal/config"
	"github.com/vadim/campus-market/internal/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	zl, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()

	application, err := app.NewApp(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize application", zap.Error(err))
	}

	// Run application (blocks until shutdown)
	if err := application.Run(ctx); err != nil {
		zl.Error("application error", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
}

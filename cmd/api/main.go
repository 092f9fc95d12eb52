package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jacobmartinez3d/log2sql/docs" // Register swagger docs
	"github.com/jacobmartinez3d/log2sql/internal/api"
	"github.com/jacobmartinez3d/log2sql/internal/events"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/retention"
	"github.com/jacobmartinez3d/log2sql/internal/storage"
	"github.com/jacobmartinez3d/log2sql/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// @title log2sql API
// @version 1.0
// @description Persists Python-style log records to SQL, creating users and logging levels on first use.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	if err := run(); err != nil {
		log.Fatalf("api server stopped: %v", err)
	}
}

func run() error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		File:        cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer logging.SyncQuietly(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := storage.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logger.Error("failed to close database connection", zap.Error(err))
		}
	}()

	svc := events.NewService(gateway, logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.NewServer(cfg, logger, gateway, svc).Serve(ctx)
	})

	if cfg.RetentionMaxAge > 0 {
		engine, err := retention.NewEngine(cfg.RetentionSchedule, cfg.RetentionMaxAge, svc, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := engine.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

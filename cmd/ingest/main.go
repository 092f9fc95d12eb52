package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobmartinez3d/log2sql/internal/events"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/storage"
	platformevents "github.com/jacobmartinez3d/log2sql/platform/events"
	"github.com/jacobmartinez3d/log2sql/pkg/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ingest stopped: %v", err)
	}
}

func run() error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
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

	consumer := platformevents.NewConsumer(brokers, cfg.KafkaTopic, cfg.KafkaGroupID,
		events.NewService(gateway, logger), logging.Zap(logger))
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close consumer", zap.Error(err))
		}
	}()

	logger.Info("ingesting log records",
		zap.Strings("brokers", brokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID))
	return consumer.Run(ctx)
}

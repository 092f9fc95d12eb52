// Command emit publishes log lines read from stdin to the ingestion topic
// through a slog handler, one record per line.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	platformevents "github.com/jacobmartinez3d/log2sql/platform/events"
	"github.com/jacobmartinez3d/log2sql/pkg/config"
	"github.com/jacobmartinez3d/log2sql/pkg/slogsink"
)

func main() {
	user := flag.String("user", os.Getenv("USER"), "user alias the records are stored under")
	name := flag.String("name", "emit", "logger name recorded with each line")
	level := flag.String("level", "info", "level of each line: debug, info, warn or error")
	flag.Parse()

	if err := run(*user, *name, *level); err != nil {
		log.Fatalf("emit: %v", err)
	}
}

func run(user, name, level string) error {
	cfg := config.FromEnv()
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return err
	}

	logger, err := logging.NewFromEnv()
	if err != nil {
		return err
	}
	defer logging.SyncQuietly(logger)

	publisher := platformevents.NewPublisher(brokers, cfg.KafkaTopic, logging.Zap(logger))
	defer publisher.Close()

	sink := slogsink.SubmitterFunc(func(ctx context.Context, record map[string]any, username string) error {
		return publisher.Submit(ctx, models.LogRecord(record), username)
	})
	return emitLines(context.Background(), os.Stdin, sink, user, name, lvl)
}

// emitLines logs every non-blank line of r at lvl through a slog handler
// backed by sub. slog drops handler errors, so failed submissions are
// counted here and reported once input is exhausted.
func emitLines(ctx context.Context, r io.Reader, sub slogsink.Submitter, user, name string, lvl slog.Level) error {
	var failed, total int
	counting := slogsink.SubmitterFunc(func(ctx context.Context, record map[string]any, username string) error {
		err := sub.Submit(ctx, record, username)
		if err != nil {
			failed++
		}
		return err
	})
	out := slog.New(slogsink.NewHandler(counting, user, &slogsink.Options{Level: slog.LevelDebug, Name: name}))

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		total++
		out.Log(ctx, lvl, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed to publish", failed, total)
	}
	return nil
}

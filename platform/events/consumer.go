package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	logevents "github.com/jacobmartinez3d/log2sql/internal/events"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/jacobmartinez3d/log2sql/pkg/clock"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Submitter persists a log record for a user.
type Submitter interface {
	Submit(ctx context.Context, record models.LogRecord, username string) (*models.LoggingEvent, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads submissions from Kafka and hands them to a Submitter.
type Consumer struct {
	reader    messageReader
	submitter Submitter
	logger    *zap.Logger
}

// NewConsumer joins groupID on topic. Offsets are committed explicitly after
// each message is handled.
func NewConsumer(brokers []string, topic, groupID string, submitter Submitter, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, submitter, logger.With(zap.String("topic", topic), zap.String("group_id", groupID)))
}

func newConsumer(reader messageReader, submitter Submitter, logger *zap.Logger) *Consumer {
	return &Consumer{reader: reader, submitter: submitter, logger: logger}
}

// Run consumes until ctx is canceled or a storage failure occurs. A message
// whose submission hit a storage error is left uncommitted for redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.handleMessage(ctx, msg); err != nil {
			c.logger.Error("stopping consumer on storage failure",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

// handleMessage returns an error only when the message must not be committed.
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	fields := []zap.Field{
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	}

	var s Submission
	dec := json.NewDecoder(bytes.NewReader(msg.Value))
	dec.UseNumber()
	if err := dec.Decode(&s); err != nil {
		c.logger.Warn("skipping undecodable message", append(fields, zap.Error(err))...)
		return nil
	}
	if s.Username == "" && len(msg.Key) > 0 {
		s.Username = string(msg.Key)
	}

	event, err := c.submitter.Submit(ctx, s.Record, s.Username)
	switch {
	case err == nil:
		c.logger.Debug("stored log record",
			append(fields,
				zap.String("user", s.Username),
				zap.Uint("event_id", event.ID),
				zap.Time("created", clock.FromEpochSeconds(event.Created)))...)
		return nil
	case errors.Is(err, logevents.ErrMalformedRecord),
		errors.Is(err, logevents.ErrEmptyUsername),
		errors.Is(err, logevents.ErrInvalidUsername):
		c.logger.Warn("skipping invalid submission",
			append(fields, zap.String("user", s.Username), zap.Error(err))...)
		return nil
	default:
		return err
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

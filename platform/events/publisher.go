package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Submission is the Kafka message value carrying one log record for a user.
type Submission struct {
	Username string           `json:"username"`
	Record   models.LogRecord `json:"record"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher ships log record submissions to Kafka.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewPublisher creates a publisher writing to topic on brokers. Messages are
// keyed by username so one user's records stay ordered within a partition.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: 10 * time.Second,
		},
		topic:  topic,
		logger: logger.With(zap.String("topic", topic)),
	}
}

// Publish writes one submission.
func (p *Publisher) Publish(ctx context.Context, s Submission) error {
	if strings.TrimSpace(s.Username) == "" {
		return fmt.Errorf("publish submission: username is required")
	}

	value, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(s.Username),
		Value: value,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		p.logger.Error("failed to publish submission",
			zap.String("user", s.Username),
			zap.Error(err))
		return fmt.Errorf("publish submission: %w", err)
	}

	p.logger.Debug("published submission", zap.String("user", s.Username))
	return nil
}

// Submit publishes record for username.
func (p *Publisher) Submit(ctx context.Context, record models.LogRecord, username string) error {
	return p.Publish(ctx, Submission{Username: username, Record: record})
}

// Close flushes pending writes and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

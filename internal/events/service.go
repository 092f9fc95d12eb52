package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/jacobmartinez3d/log2sql/pkg/clock"
	"go.uber.org/zap"
)

// Service turns raw log records into persisted logging events.
type Service struct {
	store  EventStore
	logger logging.Logger
	clock  clock.Clock

	// mu serializes resolve-or-create of users and levels within this process.
	mu sync.Mutex
}

// NewService creates a new Service instance.
func NewService(store EventStore, logger logging.Logger) *Service {
	return NewServiceWithClock(store, logger, clock.RealClock{})
}

// NewServiceWithClock allows injecting a clock for deterministic tests.
func NewServiceWithClock(store EventStore, logger logging.Logger, clk clock.Clock) *Service {
	return &Service{
		store:  store,
		logger: logger.With(zap.String("component", "events")),
		clock:  clk,
	}
}

// Submit persists record as a logging event owned by username.
// The user and the level are looked up by alias and levelno and created when
// absent. The record is validated before any row is written; rows created by
// an earlier step are kept if a later step fails.
func (s *Service) Submit(ctx context.Context, record models.LogRecord, username string) (*models.LoggingEvent, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrEmptyUsername
	}
	if utf8.RuneCountInString(username) > models.MaxAliasLength {
		err := fmt.Errorf("%w: longer than %d characters", ErrInvalidUsername, models.MaxAliasLength)
		s.logger.Warn("rejected log record", zap.String("user", username), zap.Error(err))
		return nil, err
	}

	levelNo, levelName, err := recordLevel(record)
	if err != nil {
		s.logger.Warn("rejected log record", zap.String("user", username), zap.Error(err))
		return nil, err
	}
	event, ignored, err := eventPayload(record)
	if err != nil {
		s.logger.Warn("rejected log record", zap.String("user", username), zap.Error(err))
		return nil, err
	}
	if len(ignored) > 0 {
		s.logger.Debug("ignoring unknown record keys",
			zap.String("user", username),
			zap.Strings("keys", ignored))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.resolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	level, err := s.resolveLevel(ctx, levelNo, levelName)
	if err != nil {
		return nil, err
	}

	event.UserID = user.ID
	event.LoggingLevelID = level.ID
	if err := s.store.CreateEvent(ctx, event); err != nil {
		s.logger.Error("failed to create logging event",
			zap.String("user", username),
			zap.Int("levelno", levelNo),
			zap.Error(err))
		return nil, &StorageError{Op: "create logging event", Err: err}
	}
	event.User = user
	event.LoggingLevel = level

	s.logger.Debug("logging event created",
		zap.Uint("event_id", event.ID),
		zap.String("user", username),
		zap.String("level", level.Name))
	return event, nil
}

func (s *Service) resolveUser(ctx context.Context, alias string) (*models.User, error) {
	user, err := s.store.FindUserByAlias(ctx, alias)
	if err != nil {
		s.logger.Error("failed to look up user", zap.String("user", alias), zap.Error(err))
		return nil, &StorageError{Op: "find user", Err: err}
	}
	if user != nil {
		s.logger.Debug("user exists", zap.String("user", alias), zap.Uint("user_id", user.ID))
		return user, nil
	}

	user = &models.User{Alias: alias}
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to create user", zap.String("user", alias), zap.Error(err))
		return nil, &StorageError{Op: "create user", Err: err}
	}
	s.logger.Info("created user", zap.String("user", alias), zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *Service) resolveLevel(ctx context.Context, num int, name string) (*models.LoggingLevel, error) {
	level, err := s.store.FindLevelByNum(ctx, num)
	if err != nil {
		s.logger.Error("failed to look up logging level", zap.Int("levelno", num), zap.Error(err))
		return nil, &StorageError{Op: "find logging level", Err: err}
	}
	if level != nil {
		return level, nil
	}

	s.logger.Warn("creating logging level", zap.Int("levelno", num), zap.String("levelname", name))
	level = &models.LoggingLevel{Num: num, Name: name}
	if err := s.store.CreateLevel(ctx, level); err != nil {
		s.logger.Error("failed to create logging level", zap.Int("levelno", num), zap.Error(err))
		return nil, &StorageError{Op: "create logging level", Err: err}
	}
	return level, nil
}

// GetEvent retrieves a single logging event by ID, or nil when absent.
func (s *Service) GetEvent(ctx context.Context, id uint) (*models.LoggingEvent, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		s.logger.Error("failed to get logging event", zap.Uint("event_id", id), zap.Error(err))
		return nil, &StorageError{Op: "get logging event", Err: err}
	}
	if event == nil {
		s.logger.Debug("logging event not found", zap.Uint("event_id", id))
	}
	return event, nil
}

// QueryEvents retrieves logging events with filtering and pagination.
func (s *Service) QueryEvents(ctx context.Context, query models.ListEventsQuery) ([]models.LoggingEvent, models.Pagination, error) {
	query.Normalize()

	events, total, err := s.store.ListEvents(ctx, query)
	if err != nil {
		s.logger.Error("failed to query logging events", zap.Error(err))
		return nil, models.Pagination{}, &StorageError{Op: "list logging events", Err: err}
	}

	s.logger.Debug("queried logging events",
		zap.Int("count", len(events)),
		zap.Int64("total", total),
		zap.Int("page", query.Page))
	return events, models.NewPagination(query.Page, query.Limit, total), nil
}

// ListUsers returns every known user ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list users", Err: err}
	}
	return users, nil
}

// ListLevels returns every known logging level ordered by id.
func (s *Service) ListLevels(ctx context.Context) ([]models.LoggingLevel, error) {
	levels, err := s.store.ListLevels(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list logging levels", Err: err}
	}
	return levels, nil
}

// DeleteEvents removes the events with the given ids and reports how many existed.
func (s *Service) DeleteEvents(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	deleted, err := s.store.DeleteEvents(ctx, ids)
	if err != nil {
		s.logger.Error("failed to delete logging events", zap.Int("requested", len(ids)), zap.Error(err))
		return 0, &StorageError{Op: "delete logging events", Err: err}
	}
	s.logger.Info("deleted logging events",
		zap.Int("requested", len(ids)),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

// PruneBefore deletes events created strictly before cutoff.
func (s *Service) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := s.store.DeleteEventsCreatedBefore(ctx, clock.EpochSeconds(cutoff))
	if err != nil {
		s.logger.Error("failed to prune logging events", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, &StorageError{Op: "prune logging events", Err: err}
	}
	if deleted > 0 {
		s.logger.Info("pruned logging events",
			zap.Time("cutoff", cutoff),
			zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

// PruneOlderThan deletes events older than maxAge relative to the service clock.
func (s *Service) PruneOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.PruneBefore(ctx, s.clock.Now().Add(-maxAge))
}

// Stats summarizes the stored users, levels and events.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.Stats{}, &StorageError{Op: "stats", Err: err}
	}
	return stats, nil
}

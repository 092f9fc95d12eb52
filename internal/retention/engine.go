package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/pkg/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner deletes logging events created before a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Engine prunes events older than a maximum age on a cron schedule.
type Engine struct {
	spec   string
	maxAge time.Duration
	pruner Pruner
	logger logging.Logger
	clock  clock.Clock
}

// NewEngine constructs a retention engine. spec is validated up front.
func NewEngine(spec string, maxAge time.Duration, pruner Pruner, logger logging.Logger) (*Engine, error) {
	return NewEngineWithClock(spec, maxAge, pruner, logger, clock.RealClock{})
}

// NewEngineWithClock allows injecting a clock for deterministic cutoffs.
func NewEngineWithClock(spec string, maxAge time.Duration, pruner Pruner, logger logging.Logger, clk clock.Clock) (*Engine, error) {
	if maxAge <= 0 {
		return nil, errors.New("retention max age must be positive")
	}
	if _, err := ParseSchedule(spec); err != nil {
		return nil, err
	}
	return &Engine{
		spec:   spec,
		maxAge: maxAge,
		pruner: pruner,
		logger: logger.With(zap.String("component", "retention")),
		clock:  clk,
	}, nil
}

// NextRun reports when the next scheduled pass fires.
func (e *Engine) NextRun() (time.Time, error) {
	return NextRun(e.spec, "", e.clock.Now())
}

// RunOnce prunes everything older than the maximum age right now.
func (e *Engine) RunOnce(ctx context.Context) (int64, error) {
	cutoff := e.clock.Now().Add(-e.maxAge)
	deleted, err := e.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune before %s: %w", cutoff.UTC().Format(time.RFC3339), err)
	}
	e.logger.Debug("retention pass finished",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

// Run schedules pruning until ctx is canceled. Passes never overlap; a pass
// still running when the next one is due is skipped.
func (e *Engine) Run(ctx context.Context) error {
	cl := cronLogger{logger: e.logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(e.spec, func() {
		if _, err := e.RunOnce(ctx); err != nil {
			e.logger.Error("retention pass failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule retention: %w", err)
	}

	next, _ := e.NextRun()
	e.logger.Info("retention engine started",
		zap.String("schedule", e.spec),
		zap.Duration("max_age", e.maxAge),
		zap.Time("next_run", next))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	e.logger.Info("retention engine stopped")
	return ctx.Err()
}

// cronLogger routes robfig/cron's logging into the application logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keyValueFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keyValueFields(keysAndValues), zap.Error(err))...)
}

func keyValueFields(kv []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}

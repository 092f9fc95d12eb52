package slogsink

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jacobmartinez3d/log2sql/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	record   map[string]any
	username string
}

type captureSubmitter struct {
	got []captured
	err error
}

func (c *captureSubmitter) Submit(_ context.Context, record map[string]any, username string) error {
	c.got = append(c.got, captured{record: record, username: username})
	return c.err
}

var start = time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

func newTestLogger(sub Submitter, opts Options) *slog.Logger {
	if opts.Clock == nil {
		opts.Clock = clock.NewFixed(start)
	}
	return slog.New(NewHandler(sub, "alice", &opts))
}

func TestLevelNo(t *testing.T) {
	tests := []struct {
		level    slog.Level
		wantNo   int
		wantName string
	}{
		{level: slog.LevelDebug, wantNo: 10, wantName: "DEBUG"},
		{level: slog.LevelInfo, wantNo: 20, wantName: "INFO"},
		{level: slog.LevelWarn, wantNo: 30, wantName: "WARNING"},
		{level: slog.LevelError, wantNo: 40, wantName: "ERROR"},
		{level: slog.LevelError + 4, wantNo: 50, wantName: "CRITICAL"},
		{level: slog.LevelInfo + 2, wantNo: 25, wantName: "Level 25"},
		{level: slog.LevelDebug + 2, wantNo: 15, wantName: "Level 15"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.wantNo, LevelNo(tt.level))
			assert.Equal(t, tt.wantName, LevelName(tt.level))
		})
	}
}

func TestHandle_WhenInfo_ThenSubmitsRecordForUser(t *testing.T) {
	sub := &captureSubmitter{}
	logger := newTestLogger(sub, Options{Name: "billing"})

	logger.Info("charge failed", "order", 42, "err", errors.New("card declined"))

	require.Len(t, sub.got, 1)
	got := sub.got[0]
	assert.Equal(t, "alice", got.username)
	assert.Equal(t, 20, got.record["levelno"])
	assert.Equal(t, "INFO", got.record["levelname"])
	assert.Equal(t, "charge failed", got.record["msg"])
	assert.Equal(t, "billing", got.record["name"])
	assert.Contains(t, got.record, "created")
	assert.Contains(t, got.record, "process")
	assert.Equal(t, map[string]any{"order": int64(42), "err": "card declined"}, got.record["args"])
	assert.NotContains(t, got.record, "lineno")
}

func TestHandle_WhenBelowLevel_ThenSkips(t *testing.T) {
	sub := &captureSubmitter{}
	logger := newTestLogger(sub, Options{Level: slog.LevelWarn})

	logger.Info("ignored")
	logger.Warn("kept")

	require.Len(t, sub.got, 1)
	assert.Equal(t, "kept", sub.got[0].record["msg"])
	assert.Equal(t, 30, sub.got[0].record["levelno"])
}

func TestHandle_WhenAddSource_ThenFillsLocation(t *testing.T) {
	sub := &captureSubmitter{}
	logger := newTestLogger(sub, Options{AddSource: true})

	logger.Error("boom")

	require.Len(t, sub.got, 1)
	rec := sub.got[0].record
	assert.Equal(t, "handler_test.go", rec["filename"])
	assert.Equal(t, "handler_test", rec["module"])
	assert.Equal(t, "TestHandle_WhenAddSource_ThenFillsLocation", rec["funcName"])
	assert.Greater(t, rec["lineno"], 0)
}

func TestHandle_WhenNoAttrs_ThenOmitsArgs(t *testing.T) {
	sub := &captureSubmitter{}

	newTestLogger(sub, Options{}).Info("plain")

	require.Len(t, sub.got, 1)
	assert.NotContains(t, sub.got[0].record, "args")
}

func TestHandle_TimesAreRelativeToHandlerStart(t *testing.T) {
	sub := &captureSubmitter{}
	h := NewHandler(sub, "alice", &Options{Clock: clock.NewFixed(start)})
	r := slog.NewRecord(start.Add(1500*time.Millisecond), slog.LevelInfo, "tick", 0)

	require.NoError(t, h.Handle(context.Background(), r))

	rec := sub.got[0].record
	assert.Equal(t, 1700000001.5, rec["created"])
	assert.Equal(t, 500.0, rec["msecs"])
	assert.Equal(t, 1500.0, rec["relativeCreated"])
}

func TestWithAttrsAndGroups_NestArgs(t *testing.T) {
	sub := &captureSubmitter{}
	logger := newTestLogger(sub, Options{}).
		With("request_id", "r-1").
		WithGroup("http").
		With("method", "GET")

	logger.Info("served", "status", 200, slog.Group("empty"))

	require.Len(t, sub.got, 1)
	assert.Equal(t, map[string]any{
		"request_id": "r-1",
		"http": map[string]any{
			"method": "GET",
			"status": int64(200),
		},
	}, sub.got[0].record["args"])
}

func TestHandle_WhenSubmitterFails_ThenReturnsError(t *testing.T) {
	boom := errors.New("unavailable")
	h := NewHandler(&captureSubmitter{err: boom}, "alice", nil)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))

	assert.ErrorIs(t, err, boom)
}

func TestSubmitterFunc(t *testing.T) {
	var user string
	f := SubmitterFunc(func(_ context.Context, _ map[string]any, username string) error {
		user = username
		return nil
	})

	require.NoError(t, f.Submit(context.Background(), nil, "bob"))
	assert.Equal(t, "bob", user)
}

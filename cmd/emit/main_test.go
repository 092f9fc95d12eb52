package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jacobmartinez3d/log2sql/pkg/slogsink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitLines_WhenAllSubmitted_ThenReturnsNil(t *testing.T) {
	var msgs []string
	sub := slogsink.SubmitterFunc(func(_ context.Context, record map[string]any, username string) error {
		assert.Equal(t, "alice", username)
		msgs = append(msgs, record["msg"].(string))
		return nil
	})

	err := emitLines(context.Background(), strings.NewReader("one\n\n  two  \n"), sub, "alice", "emit", slog.LevelWarn)

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, msgs)
}

func TestEmitLines_WhenSubmitFails_ThenReportsFailureCount(t *testing.T) {
	calls := 0
	sub := slogsink.SubmitterFunc(func(context.Context, map[string]any, string) error {
		calls++
		if calls == 2 {
			return errors.New("broker unavailable")
		}
		return nil
	})

	err := emitLines(context.Background(), strings.NewReader("a\nb\nc\n"), sub, "alice", "emit", slog.LevelInfo)

	require.Error(t, err)
	assert.Equal(t, "1 of 3 records failed to publish", err.Error())
	assert.Equal(t, 3, calls)
}

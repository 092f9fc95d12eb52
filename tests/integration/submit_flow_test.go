//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/api"
	"github.com/jacobmartinez3d/log2sql/internal/events"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/jacobmartinez3d/log2sql/internal/retention"
	"github.com/jacobmartinez3d/log2sql/internal/storage"
	"github.com/jacobmartinez3d/log2sql/pkg/clock"
	"github.com/jacobmartinez3d/log2sql/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) *storage.Gateway {
	t.Helper()
	g, err := storage.Connect(context.Background(), config.Database{
		Dialect: "sqlite",
		DataDir: filepath.Join(t.TempDir(), "data"),
		Name:    "integration.db",
	}, logging.NewNoOpLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func post(t *testing.T, h http.Handler, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+user+"/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestSubmitFlow_StoresEventsAndReusesReferences(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := connect(t)
	svc := events.NewService(g, logging.NewNoOpLogger())
	srv := api.NewServer(config.App{Environment: "development", APIPort: "0"}, logging.NewNoOpLogger(), g, svc)

	for _, body := range []string{
		`{"levelno":20,"levelname":"INFO","msg":"started","created":1700000000.5,"args":{"port":8080}}`,
		`{"levelno":40,"levelname":"ERROR","msg":"failed","created":1700000001.0,"exc_text":"Traceback"}`,
		`{"levelno":20,"levelname":"INFO","msg":"retrying","created":1700000002.0}`,
	} {
		w := post(t, srv.Handler(), "alice", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	require.Equal(t, http.StatusCreated, post(t, srv.Handler(), "bob", `{"levelno":20,"levelname":"INFO"}`).Code)

	ctx := context.Background()
	users, err := g.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	levels, err := g.ListLevels(ctx)
	require.NoError(t, err)
	assert.Len(t, levels, 2)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events?user=alice&level=INFO", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data models.EventListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data.Events, 2)
	assert.Equal(t, "retrying", list.Data.Events[0].Msg)
	assert.Equal(t, "started", list.Data.Events[1].Msg)
	assert.JSONEq(t, `{"port":8080}`, string(list.Data.Events[1].Args))
	require.NotNil(t, list.Data.Events[1].User)
	assert.Equal(t, "alice", list.Data.Events[1].User.Alias)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitFlow_MalformedRecordLeavesNoRows(t *testing.T) {
	g := connect(t)
	svc := events.NewService(g, logging.NewNoOpLogger())

	_, err := svc.Submit(context.Background(), models.LogRecord{"levelname": "INFO"}, "carol")

	require.ErrorIs(t, err, events.ErrMalformedRecord)
	users, err := g.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRetention_PrunesOldEvents(t *testing.T) {
	ctx := context.Background()
	g := connect(t)
	now := time.Unix(1700000000, 0).UTC()
	svc := events.NewServiceWithClock(g, logging.NewNoOpLogger(), clock.NewFixed(now))

	for _, created := range []float64{1690000000, 1699999990} {
		_, err := svc.Submit(ctx, models.LogRecord{"levelno": 20, "levelname": "INFO", "created": created}, "alice")
		require.NoError(t, err)
	}

	engine, err := retention.NewEngineWithClock("@hourly", time.Hour, svc, logging.NewNoOpLogger(), clock.NewFixed(now))
	require.NoError(t, err)

	deleted, err := engine.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	stats, err := g.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Events)
}

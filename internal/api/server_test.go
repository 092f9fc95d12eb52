package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/events"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/jacobmartinez3d/log2sql/internal/testutil/fakes"
	"github.com/jacobmartinez3d/log2sql/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPinger struct{}

func (nopPinger) Ping(context.Context) error { return nil }

func newTestServer(t *testing.T) (*Server, *fakes.FakeEventStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := fakes.NewFakeEventStore()
	cfg := config.App{Environment: "development", APIPort: "0", CORSOrigins: []string{"*"}}
	svc := events.NewService(store, logging.NewNoOpLogger())
	return NewServer(cfg, logging.NewNoOpLogger(), nopPinger{}, svc), store
}

func TestServer_RoutesSubmitAndQuery(t *testing.T) {
	srv, store := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/alice/events",
		strings.NewReader(`{"levelno":40,"levelname":"ERROR","msg":"disk full"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.Len(t, store.Events(), 1)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/events?user=alice", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data models.EventListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data.Events, 1)
	assert.Equal(t, "disk full", list.Data.Events[0].Msg)
}

func TestServer_RegistersEveryRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/users", http.StatusOK},
		{http.MethodGet, "/api/v1/levels", http.StatusOK},
		{http.MethodGet, "/api/v1/events/1", http.StatusNotFound},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_KeepsClientRequestID(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}

func TestServe_WhenContextCanceled_ThenShutsDown(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, srv.Serve(ctx))
}

func TestCorsConfig(t *testing.T) {
	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)

	listed := corsConfig([]string{"https://a.example", "https://b.example"})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, listed.AllowOrigins)
	assert.True(t, listed.AllowCredentials)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/api/middleware"
	"github.com/jacobmartinez3d/log2sql/internal/api/response"
	"github.com/jacobmartinez3d/log2sql/internal/events"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/jacobmartinez3d/log2sql/internal/testutil/fakes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventRouter(store *fakes.FakeEventStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEventHandler(events.NewService(store, logging.NewNoOpLogger()), logging.NewNoOpLogger())
	r := gin.New()
	r.POST("/api/v1/users/:username/events", middleware.MaxBodySize(1<<10), h.SubmitEvent)
	r.GET("/api/v1/events", h.ListEvents)
	r.GET("/api/v1/events/:id", h.GetEvent)
	r.DELETE("/api/v1/events", h.DeleteEvents)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitEvent_WhenRecordValid_ThenReturns201WithEvent(t *testing.T) {
	store := fakes.NewFakeEventStore()
	r := newEventRouter(store)

	w := do(r, http.MethodPost, "/api/v1/users/alice/events",
		`{"levelno":20,"levelname":"INFO","msg":"hello","created":1700000000.0,"lineno":12,"taskName":null}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data    models.LoggingEvent `json:"data"`
		Message string              `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp.Data.Msg)
	assert.Equal(t, 12, resp.Data.Lineno)
	require.NotNil(t, resp.Data.User)
	assert.Equal(t, "alice", resp.Data.User.Alias)
	require.NotNil(t, resp.Data.LoggingLevel)
	assert.Equal(t, 20, resp.Data.LoggingLevel.Num)
	assert.Len(t, store.Events(), 1)
}

func TestSubmitEvent_WhenRecordInvalid_ThenReturns400AndStoresNothing(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing levelno", body: `{"levelname":"INFO","msg":"x"}`, wantField: "levelno"},
		{name: "missing levelname", body: `{"levelno":20}`, wantField: "levelname"},
		{name: "levelno fractional", body: `{"levelno":20.5,"levelname":"INFO"}`, wantField: "levelno"},
		{name: "lineno string", body: `{"levelno":20,"levelname":"INFO","lineno":"12"}`, wantField: "lineno"},
		{name: "not an object", body: `[1,2,3]`, wantField: "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := fakes.NewFakeEventStore()
			r := newEventRouter(store)

			w := do(r, http.MethodPost, "/api/v1/users/alice/events", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp struct {
				Error   string                     `json:"error"`
				Details []response.ValidationError `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "validation failed", resp.Error)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.wantField, resp.Details[0].Field)
			assert.Empty(t, store.Users())
			assert.Empty(t, store.Events())
		})
	}
}

func TestSubmitEvent_WhenUsernameTooLong_ThenReturns400(t *testing.T) {
	store := fakes.NewFakeEventStore()

	w := do(newEventRouter(store), http.MethodPost, "/api/v1/users/"+strings.Repeat("u", 17)+"/events",
		`{"levelno":20,"levelname":"INFO"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.Users())
}

func TestSubmitEvent_WhenBodyNotJSON_ThenReturns400(t *testing.T) {
	w := do(newEventRouter(fakes.NewFakeEventStore()), http.MethodPost, "/api/v1/users/alice/events", `{nope`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON body")
}

func TestSubmitEvent_WhenBodyTooLarge_ThenReturns413(t *testing.T) {
	body := `{"levelno":20,"levelname":"INFO","msg":"` + strings.Repeat("x", 2048) + `"}`

	w := do(newEventRouter(fakes.NewFakeEventStore()), http.MethodPost, "/api/v1/users/alice/events", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSubmitEvent_WhenStorageFails_ThenReturns500(t *testing.T) {
	store := fakes.NewFakeEventStore()
	store.Fail["CreateEvent"] = errors.New("database is locked")

	w := do(newEventRouter(store), http.MethodPost, "/api/v1/users/alice/events", `{"levelno":20,"levelname":"INFO"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
}

func TestListEvents_WhenFiltered_ThenReturnsMatchingPage(t *testing.T) {
	store := fakes.NewFakeEventStore()
	r := newEventRouter(store)
	for _, body := range []string{
		`{"levelno":20,"levelname":"INFO","msg":"a","created":1}`,
		`{"levelno":40,"levelname":"ERROR","msg":"b","created":2}`,
		`{"levelno":40,"levelname":"ERROR","msg":"c","created":3}`,
	} {
		require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/users/alice/events", body).Code)
	}

	w := do(r, http.MethodGet, "/api/v1/events?level=ERROR&limit=1", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data models.EventListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Events, 1)
	assert.Equal(t, "c", resp.Data.Events[0].Msg)
	assert.Equal(t, models.Pagination{CurrentPage: 1, PageSize: 1, TotalPages: 2, TotalRecords: 2}, resp.Data.Pagination)
}

func TestListEvents_WhenQueryInvalid_ThenReturns400(t *testing.T) {
	w := do(newEventRouter(fakes.NewFakeEventStore()), http.MethodGet, "/api/v1/events?limit=500", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEvent(t *testing.T) {
	store := fakes.NewFakeEventStore()
	r := newEventRouter(store)
	require.Equal(t, http.StatusCreated,
		do(r, http.MethodPost, "/api/v1/users/bob/events", `{"levelno":30,"levelname":"WARNING","msg":"careful"}`).Code)

	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{name: "found", target: "/api/v1/events/1", wantCode: http.StatusOK},
		{name: "missing", target: "/api/v1/events/99", wantCode: http.StatusNotFound},
		{name: "not a number", target: "/api/v1/events/abc", wantCode: http.StatusBadRequest},
		{name: "zero", target: "/api/v1/events/0", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), "careful")
			}
		})
	}
}

func TestDeleteEvents(t *testing.T) {
	store := fakes.NewFakeEventStore()
	r := newEventRouter(store)
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated,
			do(r, http.MethodPost, "/api/v1/users/alice/events", `{"levelno":20,"levelname":"INFO"}`).Code)
	}

	w := do(r, http.MethodDelete, "/api/v1/events", `{"ids":[1,7]}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data DeleteEventsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, DeleteEventsResponse{Requested: 2, Deleted: 1}, resp.Data)
	assert.Len(t, store.Events(), 1)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/api/v1/events", `{"ids":[]}`).Code)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestNewHealthHandler_WhenCreated_ThenReturnsHandler(t *testing.T) {
	handler := NewHealthHandler(fakePinger{}, logging.NewNoOpLogger())

	require.NotNil(t, handler)
	assert.NotNil(t, handler.logger)
	assert.Positive(t, handler.timeout)
}

func TestHealth_WhenDatabaseUp_ThenReturns200WithHealthStatus(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, router := gin.CreateTestContext(w)
	router.GET("/health", NewHealthHandler(fakePinger{}, logging.NewNoOpLogger()).Health)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	// Act
	router.ServeHTTP(w, c.Request)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var responseWrapper struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responseWrapper))
	assert.Equal(t, HealthResponse{Status: "ok", Service: "log2sql", Version: "1.0.0", Database: "up"}, responseWrapper.Data)
}

func TestHealth_WhenDatabaseDown_ThenReturns503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthHandler(fakePinger{err: errors.New("connection refused")}, logging.NewNoOpLogger()).Health)

	w := do(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp struct {
		Error   string         `json:"error"`
		Details HealthResponse `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "database unreachable", resp.Error)
	assert.Equal(t, "degraded", resp.Details.Status)
	assert.Equal(t, "down", resp.Details.Database)
}

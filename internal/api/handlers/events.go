package handlers

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jacobmartinez3d/log2sql/internal/api/response"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

//go:embed log_record.schema.json
var logRecordSchema string

// recordSchema is compiled once; the document is embedded and known good.
var recordSchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(logRecordSchema))
	if err != nil {
		panic("compile log record schema: " + err.Error())
	}
	return schema
}()

// EventService defines the event operations the handler needs.
type EventService interface {
	Submit(ctx context.Context, record models.LogRecord, username string) (*models.LoggingEvent, error)
	GetEvent(ctx context.Context, id uint) (*models.LoggingEvent, error)
	QueryEvents(ctx context.Context, query models.ListEventsQuery) ([]models.LoggingEvent, models.Pagination, error)
	DeleteEvents(ctx context.Context, ids []uint) (int64, error)
}

// DeleteEventsResponse reports the outcome of a bulk delete.
type DeleteEventsResponse struct {
	Requested int   `json:"requested" example:"3"`
	Deleted   int64 `json:"deleted" example:"2"`
} // @name DeleteEventsResponse

// EventHandler handles logging event requests.
type EventHandler struct {
	svc    EventService
	logger logging.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(svc EventService, logger logging.Logger) *EventHandler {
	return &EventHandler{
		svc:    svc,
		logger: logger.With(zap.String("handler", "event")),
	}
}

// SubmitEvent godoc
// @Summary Submit a log record
// @Description Stores one log record for the user, creating the user and logging level on first use
// @Tags Events
// @Accept json
// @Produce json
// @Param username path string true "User alias"
// @Param record body object true "Log record keyed by Python LogRecord attribute names"
// @Success 201 {object} models.LoggingEvent
// @Failure 400 {object} response.ErrorResponse "Malformed log record"
// @Failure 413 {object} response.ErrorResponse "Body too large"
// @Failure 500 {object} response.ErrorResponse "Storage error"
// @Router /api/v1/users/{username}/events [post]
func (h *EventHandler) SubmitEvent(c *gin.Context) {
	username := c.Param("username")
	requestID := response.GetRequestID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "request body too large", tooLarge.Limit)
			return
		}
		response.BadRequest(c, "failed to read request body", nil)
		return
	}

	result, err := recordSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		h.logger.Warn("invalid JSON body", zap.Error(err), zap.String("request_id", requestID))
		response.BadRequest(c, "invalid JSON body", err.Error())
		return
	}
	if !result.Valid() {
		errs := schemaErrors(result)
		h.logger.Warn("log record schema validation failed",
			zap.String("user", username),
			zap.Int("errors", len(errs)),
			zap.String("request_id", requestID))
		response.ValidationErrors(c, errs)
		return
	}

	var record models.LogRecord
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		response.BadRequest(c, "invalid JSON body", err.Error())
		return
	}

	event, err := h.svc.Submit(c.Request.Context(), record, username)
	if err != nil {
		h.logger.Error("failed to submit log record",
			zap.Error(err),
			zap.String("user", username),
			zap.String("request_id", requestID))
		response.ServiceError(c, err)
		return
	}

	response.Created(c, event, "logging event stored")
}

// ListEvents godoc
// @Summary List logging events
// @Description Retrieves logging events newest first, with filtering and pagination
// @Tags Events
// @Produce json
// @Param user query string false "Filter by user alias"
// @Param level query string false "Filter by level name"
// @Param levelno query int false "Filter by level number"
// @Param search query string false "Substring of the message"
// @Param created_after query number false "Unix seconds, inclusive"
// @Param created_before query number false "Unix seconds, exclusive"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Success 200 {object} models.EventListResponse
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	var query models.ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid list events query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	events, pagination, err := h.svc.QueryEvents(c.Request.Context(), query)
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	response.OK(c, models.EventListResponse{
		Events:     events,
		Pagination: pagination,
	})
}

// GetEvent godoc
// @Summary Get logging event details
// @Description Retrieves one logging event with its user and level
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.LoggingEvent
// @Failure 400 {object} response.ErrorResponse "Invalid event ID"
// @Failure 404 {object} response.ErrorResponse "Event not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid event id", c.Param("id"))
		return
	}

	event, err := h.svc.GetEvent(c.Request.Context(), uint(id))
	if err != nil {
		response.ServiceError(c, err)
		return
	}
	if event == nil {
		response.NotFound(c, "event not found")
		return
	}

	response.OK(c, event)
}

// DeleteEvents godoc
// @Summary Delete logging events
// @Description Deletes the listed events in one transaction; unknown ids are ignored
// @Tags Events
// @Accept json
// @Produce json
// @Param request body models.DeleteEventsRequest true "Event IDs"
// @Success 200 {object} DeleteEventsResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/events [delete]
func (h *EventHandler) DeleteEvents(c *gin.Context) {
	var req models.DeleteEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	deleted, err := h.svc.DeleteEvents(c.Request.Context(), req.IDs)
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	response.OK(c, DeleteEventsResponse{Requested: len(req.IDs), Deleted: deleted})
}

func schemaErrors(result *gojsonschema.Result) []response.ValidationError {
	out := make([]response.ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		field := e.Field()
		if e.Type() == "required" {
			if p, ok := e.Details()["property"].(string); ok {
				field = p
			}
		}
		out = append(out, response.ValidationError{Field: field, Message: e.Description()})
	}
	return out
}

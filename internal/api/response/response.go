package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jacobmartinez3d/log2sql/internal/events"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// SuccessResponse represents a successful API response.
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
} // @name SuccessResponse

// ErrorResponse represents an error API response.
type ErrorResponse struct {
	Error   string      `json:"error" example:"malformed log record"`
	Details interface{} `json:"details,omitempty"`
	TraceID string      `json:"trace_id,omitempty" example:"6f1c0e9a-2b7d-4a51-9d0c-3c1f6a8e4b21"`
} // @name ErrorResponse

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field" example:"levelno"`
	Message string `json:"message" example:"missing"`
} // @name ValidationError

// Success sends a successful response with data.
func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, SuccessResponse{
		Data:    data,
		Message: message,
	})
}

// Error sends an error response with details.
func Error(c *gin.Context, statusCode int, err string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Error:   err,
		Details: details,
		TraceID: GetRequestID(c),
	})
}

// BadRequest sends a 400 Bad Request response.
func BadRequest(c *gin.Context, err string, details interface{}) {
	Error(c, http.StatusBadRequest, err, details)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, err, nil)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, err string) {
	Error(c, http.StatusInternalServerError, err, nil)
}

// ServiceUnavailable sends a 503 Service Unavailable response.
func ServiceUnavailable(c *gin.Context, err string, details interface{}) {
	Error(c, http.StatusServiceUnavailable, err, details)
}

// Created sends a 201 Created response.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message)
}

// OK sends a 200 OK response.
func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data, "")
}

// ValidationErrors sends a 400 Bad Request with field validation errors.
func ValidationErrors(c *gin.Context, errs []ValidationError) {
	BadRequest(c, "validation failed", errs)
}

// ServiceError maps an events service error onto a status code: rejected
// submissions are 400, everything else 500. Storage details are not exposed.
func ServiceError(c *gin.Context, err error) {
	var malformed *events.MalformedRecordError
	switch {
	case errors.As(err, &malformed):
		ValidationErrors(c, []ValidationError{{Field: malformed.Field, Message: malformed.Reason}})
	case errors.Is(err, events.ErrEmptyUsername), errors.Is(err, events.ErrInvalidUsername):
		BadRequest(c, err.Error(), nil)
	default:
		InternalServerError(c, "internal server error")
	}
}

// GetRequestID retrieves the request ID from context, or a fresh one when the
// request did not pass through the RequestID middleware.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return uuid.New().String()
}

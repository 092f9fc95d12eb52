// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Returns the health status of the API service and its database",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "description": "Returns row counts for users, levels and events, plus events per level",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Get storage metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MetricsResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/users/{username}/events": {
            "post": {
                "description": "Stores one log record for the user, creating the user and logging level on first use",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Submit a log record",
                "parameters": [
                    {"type": "string", "description": "User alias", "name": "username", "in": "path", "required": true},
                    {"description": "Log record keyed by Python LogRecord attribute names", "name": "record", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/LoggingEvent"}},
                    "400": {"description": "Malformed log record", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Storage error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/events": {
            "get": {
                "description": "Retrieves logging events newest first, with filtering and pagination",
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "List logging events",
                "parameters": [
                    {"type": "string", "description": "Filter by user alias", "name": "user", "in": "query"},
                    {"type": "string", "description": "Filter by level name", "name": "level", "in": "query"},
                    {"type": "integer", "description": "Filter by level number", "name": "levelno", "in": "query"},
                    {"type": "string", "description": "Substring of the message", "name": "search", "in": "query"},
                    {"type": "number", "description": "Unix seconds, inclusive", "name": "created_after", "in": "query"},
                    {"type": "number", "description": "Unix seconds, exclusive", "name": "created_before", "in": "query"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EventListResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Deletes the listed events in one transaction; unknown ids are ignored",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Delete logging events",
                "parameters": [
                    {"description": "Event IDs", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeleteEventsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DeleteEventsResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/events/{id}": {
            "get": {
                "description": "Retrieves one logging event with its user and level",
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Get logging event details",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoggingEvent"}},
                    "400": {"description": "Invalid event ID", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Event not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/users": {
            "get": {
                "description": "Returns every user that has submitted at least one record",
                "produces": ["application/json"],
                "tags": ["References"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/User"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/v1/levels": {
            "get": {
                "description": "Returns every logging level seen so far",
                "produces": ["application/json"],
                "tags": ["References"],
                "summary": "List logging levels",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/LoggingLevel"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "DeleteEventsRequest": {
            "type": "object",
            "required": ["ids"],
            "properties": {
                "ids": {"type": "array", "minItems": 1, "items": {"type": "integer"}}
            }
        },
        "DeleteEventsResponse": {
            "type": "object",
            "properties": {
                "deleted": {"type": "integer", "example": 2},
                "requested": {"type": "integer", "example": 3}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {},
                "error": {"type": "string", "example": "malformed log record"},
                "trace_id": {"type": "string", "example": "6f1c0e9a-2b7d-4a51-9d0c-3c1f6a8e4b21"}
            }
        },
        "EventListResponse": {
            "type": "object",
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/LoggingEvent"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "HealthResponse": {
            "type": "object",
            "properties": {
                "database": {"type": "string", "example": "up"},
                "service": {"type": "string", "example": "log2sql"},
                "status": {"type": "string", "example": "ok"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "LoggingEvent": {
            "type": "object",
            "properties": {
                "args": {},
                "created": {"type": "number"},
                "exc_info": {},
                "exc_text": {"type": "string"},
                "filename": {"type": "string"},
                "funcName": {"type": "string"},
                "id": {"type": "integer"},
                "lineno": {"type": "integer"},
                "logging_level": {"$ref": "#/definitions/LoggingLevel"},
                "logging_level_id": {"type": "integer"},
                "module": {"type": "string"},
                "msecs": {"type": "number"},
                "msg": {"type": "string"},
                "name": {"type": "string"},
                "pathname": {"type": "string"},
                "process": {"type": "integer"},
                "processName": {"type": "string"},
                "relativeCreated": {"type": "number"},
                "stack_info": {"type": "string"},
                "thread": {"type": "integer"},
                "threadName": {"type": "string"},
                "user": {"$ref": "#/definitions/User"},
                "user_id": {"type": "integer"}
            }
        },
        "LoggingLevel": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string", "example": "WARNING"},
                "num": {"type": "integer", "example": 30}
            }
        },
        "MetricsResponse": {
            "type": "object",
            "properties": {
                "events": {"type": "integer", "example": 1250},
                "events_by_level": {"type": "object", "additionalProperties": {"type": "integer"}},
                "levels": {"type": "integer", "example": 5},
                "uptime_seconds": {"type": "integer", "example": 3600},
                "users": {"type": "integer", "example": 3}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer", "example": 1},
                "page_size": {"type": "integer", "example": 20},
                "total_pages": {"type": "integer", "example": 5},
                "total_records": {"type": "integer", "example": 100}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "alias": {"type": "string", "example": "alice"},
                "first_name": {"type": "string"},
                "id": {"type": "integer"},
                "last_name": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "log2sql API",
	Description:      "Persists Python-style log records to SQL, creating users and logging levels on first use.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

package models

// LogRecord is a raw log record as emitted by an application's logging
// facility, keyed by the Python logging.LogRecord attribute names.
type LogRecord map[string]any

// Record keys with special meaning during submission.
const (
	KeyLevelNo   = "levelno"
	KeyLevelName = "levelname"
)

// Record keys that map onto LoggingEvent columns.
const (
	KeyArgs            = "args"
	KeyCreated         = "created"
	KeyExcInfo         = "exc_info"
	KeyExcText         = "exc_text"
	KeyFilename        = "filename"
	KeyFuncName        = "funcName"
	KeyLineno          = "lineno"
	KeyModule          = "module"
	KeyMsecs           = "msecs"
	KeyMsg             = "msg"
	KeyName            = "name"
	KeyPathname        = "pathname"
	KeyProcess         = "process"
	KeyProcessName     = "processName"
	KeyRelativeCreated = "relativeCreated"
	KeyStackInfo       = "stack_info"
	KeyThread          = "thread"
	KeyThreadName      = "threadName"
)

// Clone returns a shallow copy so callers can strip keys without touching the input.
func (r LogRecord) Clone() LogRecord {
	out := make(LogRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

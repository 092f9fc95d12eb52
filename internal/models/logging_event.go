package models

import "gorm.io/datatypes"

// LoggingEvent is one persisted log record. Columns mirror the attributes of a
// Python logging.LogRecord, minus the level which lives in LoggingLevel.
type LoggingEvent struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	UserID         uint          `json:"user_id" gorm:"index;not null"`
	User           *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	LoggingLevelID uint          `json:"logging_level_id" gorm:"index;not null"`
	LoggingLevel   *LoggingLevel `json:"logging_level,omitempty" gorm:"foreignKey:LoggingLevelID"`

	Args            datatypes.JSON `json:"args,omitempty"`
	Created         float64        `json:"created" gorm:"index"`
	ExcInfo         datatypes.JSON `json:"exc_info,omitempty"`
	ExcText         *string        `json:"exc_text,omitempty"`
	Filename        string         `json:"filename,omitempty"`
	FuncName        string         `json:"funcName,omitempty"`
	Lineno          int            `json:"lineno,omitempty"`
	Module          string         `json:"module,omitempty"`
	Msecs           float64        `json:"msecs,omitempty"`
	Msg             string         `json:"msg"`
	Name            string         `json:"name,omitempty"`
	Pathname        string         `json:"pathname,omitempty"`
	Process         int            `json:"process,omitempty"`
	ProcessName     string         `json:"processName,omitempty"`
	RelativeCreated float64        `json:"relativeCreated,omitempty"`
	StackInfo       *string        `json:"stack_info,omitempty"`
	Thread          int64          `json:"thread,omitempty"`
	ThreadName      string         `json:"threadName,omitempty"`
}

func (LoggingEvent) TableName() string {
	return "logging_events"
}

package models

// MaxLevelNameLength is the width of the logging_levels.name column, in characters.
const MaxLevelNameLength = 20

// LoggingLevel is a severity referenced by logging events. Num is the natural key.
type LoggingLevel struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Num  int    `json:"num" gorm:"index"`
	Name string `json:"name" gorm:"size:20"`
}

func (LoggingLevel) TableName() string {
	return "logging_levels"
}

package events

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/jacobmartinez3d/log2sql/internal/models"
	"gorm.io/datatypes"
)

// recordLevel extracts the severity number and label a record must carry.
func recordLevel(record models.LogRecord) (int, string, error) {
	rawNo, ok := record[models.KeyLevelNo]
	if !ok || rawNo == nil {
		return 0, "", &MalformedRecordError{Field: models.KeyLevelNo, Reason: "missing"}
	}
	levelNo, err := asNativeInt(rawNo)
	if err != nil {
		return 0, "", &MalformedRecordError{Field: models.KeyLevelNo, Reason: err.Error()}
	}

	rawName, ok := record[models.KeyLevelName]
	if !ok || rawName == nil {
		return 0, "", &MalformedRecordError{Field: models.KeyLevelName, Reason: "missing"}
	}
	levelName, err := asString(rawName)
	if err != nil {
		return 0, "", &MalformedRecordError{Field: models.KeyLevelName, Reason: err.Error()}
	}
	if levelName == "" {
		return 0, "", &MalformedRecordError{Field: models.KeyLevelName, Reason: "empty"}
	}
	if utf8.RuneCountInString(levelName) > models.MaxLevelNameLength {
		return 0, "", &MalformedRecordError{
			Field:  models.KeyLevelName,
			Reason: fmt.Sprintf("longer than %d characters", models.MaxLevelNameLength),
		}
	}

	return levelNo, levelName, nil
}

// eventPayload copies record without its level keys and maps the remaining
// attributes onto an event. Keys that are not columns are returned sorted in
// ignored; foreign keys are always assigned by the caller.
func eventPayload(record models.LogRecord) (event *models.LoggingEvent, ignored []string, err error) {
	payload := record.Clone()
	delete(payload, models.KeyLevelNo)
	delete(payload, models.KeyLevelName)

	event = &models.LoggingEvent{}
	for key, value := range payload {
		if value == nil {
			continue
		}
		if err := setField(event, key, value); err != nil {
			if err == errNotAColumn {
				ignored = append(ignored, key)
				continue
			}
			return nil, nil, &MalformedRecordError{Field: key, Reason: err.Error()}
		}
	}

	sort.Strings(ignored)
	return event, ignored, nil
}

var errNotAColumn = fmt.Errorf("not a column")

func setField(e *models.LoggingEvent, key string, value any) error {
	var err error
	switch key {
	case models.KeyArgs:
		e.Args, err = asJSON(value)
	case models.KeyCreated:
		e.Created, err = asFloat(value)
	case models.KeyExcInfo:
		e.ExcInfo, err = asJSON(value)
	case models.KeyExcText:
		e.ExcText, err = asOptionalText(value)
	case models.KeyFilename:
		e.Filename, err = asString(value)
	case models.KeyFuncName:
		e.FuncName, err = asString(value)
	case models.KeyLineno:
		e.Lineno, err = asNativeInt(value)
	case models.KeyModule:
		e.Module, err = asString(value)
	case models.KeyMsecs:
		e.Msecs, err = asFloat(value)
	case models.KeyMsg:
		e.Msg, err = asText(value)
	case models.KeyName:
		e.Name, err = asString(value)
	case models.KeyPathname:
		e.Pathname, err = asString(value)
	case models.KeyProcess:
		e.Process, err = asNativeInt(value)
	case models.KeyProcessName:
		e.ProcessName, err = asString(value)
	case models.KeyRelativeCreated:
		e.RelativeCreated, err = asFloat(value)
	case models.KeyStackInfo:
		e.StackInfo, err = asOptionalText(value)
	case models.KeyThread:
		e.Thread, err = asInt(value)
	case models.KeyThreadName:
		e.ThreadName, err = asString(value)
	default:
		return errNotAColumn
	}
	return err
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

// asText keeps strings as they are and stores anything else as JSON text.
func asText(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cannot encode %T: %v", v, err)
	}
	return string(b), nil
}

func asOptionalText(v any) (*string, error) {
	s, err := asText(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func asJSON(v any) (datatypes.JSON, error) {
	switch raw := v.(type) {
	case json.RawMessage:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid JSON")
		}
		return datatypes.JSON(raw), nil
	case datatypes.JSON:
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %T: %v", v, err)
	}
	return datatypes.JSON(b), nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", n.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	}

	f, err := asFloat(v)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("expected an integer, got %v", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int64(f), nil
}

// asNativeInt is asInt narrowed to the platform int.
func asNativeInt(v any) (int, error) {
	n, err := asInt(v)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt || n < math.MinInt {
		return 0, fmt.Errorf("integer %d out of range", n)
	}
	return int(n), nil
}

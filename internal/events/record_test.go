package events

import (
	"encoding/json"
	"testing"

	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPayload_MapsEveryColumn(t *testing.T) {
	record := models.LogRecord{
		"levelno":         30,
		"levelname":       "WARNING",
		"args":            []any{"a", 1},
		"created":         1700000000.25,
		"exc_info":        nil,
		"exc_text":        "Traceback",
		"filename":        "app.py",
		"funcName":        "main",
		"lineno":          json.Number("12"),
		"module":          "app",
		"msecs":           250.0,
		"msg":             "disk %s low",
		"name":            "root",
		"pathname":        "/srv/app.py",
		"process":         int32(4242),
		"processName":     "MainProcess",
		"relativeCreated": 15.5,
		"stack_info":      "Stack (most recent call last)",
		"thread":          uint64(140000000000),
		"threadName":      "MainThread",
	}

	event, ignored, err := eventPayload(record)

	require.NoError(t, err)
	assert.Empty(t, ignored)
	assert.JSONEq(t, `["a",1]`, string(event.Args))
	assert.Equal(t, 1700000000.25, event.Created)
	assert.Nil(t, event.ExcInfo)
	require.NotNil(t, event.ExcText)
	assert.Equal(t, "Traceback", *event.ExcText)
	assert.Equal(t, "app.py", event.Filename)
	assert.Equal(t, "main", event.FuncName)
	assert.Equal(t, 12, event.Lineno)
	assert.Equal(t, "app", event.Module)
	assert.Equal(t, 250.0, event.Msecs)
	assert.Equal(t, "disk %s low", event.Msg)
	assert.Equal(t, "root", event.Name)
	assert.Equal(t, "/srv/app.py", event.Pathname)
	assert.Equal(t, 4242, event.Process)
	assert.Equal(t, "MainProcess", event.ProcessName)
	assert.Equal(t, 15.5, event.RelativeCreated)
	require.NotNil(t, event.StackInfo)
	assert.Equal(t, "Stack (most recent call last)", *event.StackInfo)
	assert.Equal(t, int64(140000000000), event.Thread)
	assert.Equal(t, "MainThread", event.ThreadName)
	assert.Zero(t, event.UserID)
	assert.Zero(t, event.LoggingLevelID)
}

func TestEventPayload_WhenUnknownKeys_ThenIgnoresThemSorted(t *testing.T) {
	record := models.LogRecord{
		"levelno":          20,
		"levelname":        "INFO",
		"msg":              "hi",
		"taskName":         "worker",
		"user_id":          99,
		"logging_level_id": 99,
	}

	event, ignored, err := eventPayload(record)

	require.NoError(t, err)
	assert.Equal(t, []string{"logging_level_id", "taskName", "user_id"}, ignored)
	assert.Zero(t, event.UserID)
	assert.Zero(t, event.LoggingLevelID)
}

func TestEventPayload_WhenMsgNotString_ThenStoresJSONText(t *testing.T) {
	event, _, err := eventPayload(models.LogRecord{"msg": map[string]any{"k": "v"}})

	require.NoError(t, err)
	assert.Equal(t, `{"k":"v"}`, event.Msg)
}

func TestEventPayload_WhenArgsRawJSON_ThenKeepsIt(t *testing.T) {
	event, _, err := eventPayload(models.LogRecord{"args": json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(event.Args))

	_, _, err = eventPayload(models.LogRecord{"args": json.RawMessage(`{nope`)})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestRecordLevel(t *testing.T) {
	tests := []struct {
		name     string
		record   models.LogRecord
		wantNo   int
		wantName string
		wantErr  bool
	}{
		{name: "int", record: models.LogRecord{"levelno": 20, "levelname": "INFO"}, wantNo: 20, wantName: "INFO"},
		{name: "integral float", record: models.LogRecord{"levelno": 40.0, "levelname": "ERROR"}, wantNo: 40, wantName: "ERROR"},
		{name: "json number", record: models.LogRecord{"levelno": json.Number("10"), "levelname": "DEBUG"}, wantNo: 10, wantName: "DEBUG"},
		{name: "nil levelno", record: models.LogRecord{"levelno": nil, "levelname": "INFO"}, wantErr: true},
		{name: "json number fraction", record: models.LogRecord{"levelno": json.Number("1.5"), "levelname": "X"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			no, name, err := recordLevel(tt.record)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNo, no)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestAsInt_WhenUint64Overflows_ThenFails(t *testing.T) {
	_, err := asInt(uint64(1 << 63))
	assert.Error(t, err)
}

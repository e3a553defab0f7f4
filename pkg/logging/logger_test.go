package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/textgrid/pkg/errors"
)

func TestLogWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "run-1")

	require.NoError(t, logger.Info(CategoryRender, "rendered", "done", map[string]any{"width": 80}))
	require.NoError(t, logger.Warn(CategoryConfig, "fallback", "using defaults", nil))

	events, err := ReadEvents(&buf, -1)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, LevelInfo, events[0].Level)
	assert.Equal(t, CategoryRender, events[0].Category)
	assert.Equal(t, "rendered", events[0].EventType)
	assert.Equal(t, "run-1", events[0].RunID)
	assert.EqualValues(t, 80, events[0].Details["width"])
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, LevelWarn, events[1].Level)
}

func TestMinLevel(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		level    Level
		logged   bool
	}{
		{"debug below info", LevelInfo, LevelDebug, false},
		{"info at info", LevelInfo, LevelInfo, true},
		{"error above warn", LevelWarn, LevelError, true},
		{"info below error", LevelError, LevelInfo, false},
		{"debug at debug", LevelDebug, LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, "")
			logger.SetMinLevel(tt.minLevel)

			require.NoError(t, logger.Log(Event{Level: tt.level, Category: CategoryRender, EventType: "x"}))
			assert.Equal(t, tt.logged, buf.Len() > 0)
		})
	}
}

func TestErrorIncludesCode(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "")

	err := errors.New(errors.ErrCodeSpanOverlap, "cell spans cannot overlap").WithContext("row", 2)
	require.NoError(t, logger.Error(CategoryRender, "build_failed", err, map[string]any{"file": "a.yaml"}))

	events, readErr := ReadEvents(&buf, 1)
	require.NoError(t, readErr)
	require.Len(t, events, 1)
	assert.Equal(t, "SPAN_OVERLAP", events[0].Details["code"])
	assert.EqualValues(t, 2, events[0].Details["row"])
	assert.Equal(t, "a.yaml", events[0].Details["file"])
	assert.Contains(t, events[0].Message, "cell spans cannot overlap")
}

func TestFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	logger, err := NewFileLogger(dir, "run-2")
	require.NoError(t, err)

	require.NoError(t, logger.Info(CategoryExport, "csv", "", nil))
	require.NoError(t, logger.Error(CategoryExport, "xlsx", errors.New(errors.ErrCodeExport, "boom"), nil))
	require.NoError(t, logger.Close())

	run, err := os.Open(filepath.Join(dir, "run-2.jsonl"))
	require.NoError(t, err)
	defer run.Close()
	events, err := ReadEvents(run, -1)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	errFile, err := os.Open(filepath.Join(dir, "errors.jsonl"))
	require.NoError(t, err)
	defer errFile.Close()
	events, err = ReadEvents(errFile, -1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "xlsx", events[0].EventType)
}

func TestRecentIsBounded(t *testing.T) {
	logger := New(nil, "")
	for i := 0; i < recentCapacity+10; i++ {
		require.NoError(t, logger.Info(CategoryServer, "request", "", map[string]any{"i": i}))
	}

	all := logger.Recent(-1)
	require.Len(t, all, recentCapacity)
	assert.Equal(t, 10, all[0].Details["i"])
	assert.Equal(t, recentCapacity+9, all[len(all)-1].Details["i"])

	last := logger.Recent(3)
	require.Len(t, last, 3)
	assert.Equal(t, recentCapacity+9, last[2].Details["i"])
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = logger.Info(CategoryWatch, "change", "", map[string]any{"i": i})
		}(i)
	}
	wg.Wait()

	events, err := ReadEvents(&buf, -1)
	require.NoError(t, err)
	assert.Len(t, events, 20)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)

	_, err = ParseLevel("loud")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func TestNilLoggerIsSilent(t *testing.T) {
	var logger *Logger
	assert.NoError(t, logger.Log(Event{Level: LevelError}))
}

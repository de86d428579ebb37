package logging

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_KeepsBackendLevel(t *testing.T) {
	tests := []struct {
		level string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"error", LogLevelError},
		{"fatal", LogLevelError},
		{"disable", LogLevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := Wrap(golog.New().SetLevel(tt.level))
			assert.Equal(t, tt.want, l.Level())
		})
	}
}

func TestGologLogger_SetLevel(t *testing.T) {
	l := New(&bytes.Buffer{}, "", LogLevelInfo)

	l.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, l.Level())
	assert.Equal(t, golog.DebugLevel, l.logger.Level)

	l.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, l.Level())
	assert.Equal(t, golog.DisableLevel, l.logger.Level)

	l.SetLevel(LogLevel(42))
	assert.Equal(t, LogLevelInfo, l.Level())
}

func TestNewWithOptions(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(&buf, Options{Prefix: DefaultPrefix, Level: LogLevelError, Debug: true})
	assert.Equal(t, LogLevelDebug, l.Level(), "debug flag wins over the configured level")

	l.Debug("store has %d nodes", 3)
	assert.Contains(t, buf.String(), "[logicflow] ")
	assert.Contains(t, buf.String(), "store has 3 nodes")
}

func TestNamed(t *testing.T) {
	parent := New(&bytes.Buffer{}, DefaultPrefix, LogLevelWarn)

	child, ok := Named(parent, "evaluator").(*GologLogger)
	require.True(t, ok)
	assert.Equal(t, LogLevelWarn, child.Level())
	assert.Equal(t, "[logicflow] evaluator: ", child.logger.Prefix)
	assert.Equal(t, DefaultPrefix, parent.logger.Prefix)

	assert.IsType(t, NoOpLogger{}, Named(nil, "evaluator"))
	assert.Equal(t, NoOpLogger{}, Named(NoOpLogger{}, "evaluator"))
}

func TestGologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "", LogLevelWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	assert.Empty(t, buf.String())

	logger.Warn("node %s dropped", "constant_1")
	assert.Contains(t, buf.String(), "node constant_1 dropped")

	logger.Error("evaluation failed: %v", "boom")
	assert.Contains(t, buf.String(), "evaluation failed: boom")
}

func TestGologLogger_None(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "[logicflow] ", LogLevelNone)

	logger.Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"off", LogLevelNone, false},
		{"verbose", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))

	l := New(&bytes.Buffer{}, "", LogLevelInfo)
	assert.Same(t, l, OrNoOp(l))
}

package logx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelEnabled(t *testing.T) {
	cases := []struct {
		level   Level
		v       int
		enabled bool
	}{
		{LevelError, 0, false},
		{LevelError, 1, true},
		{LevelWarn, 1, false},
		{LevelWarn, 2, true},
		{LevelInfo, 2, false},
		{LevelInfo, 3, true},
		{LevelDebug, 3, false},
		{LevelDebug, 4, true},
	}

	for _, tc := range cases {
		got := levelEnabled(tc.v, tc.level)
		assert.Equal(t, tc.enabled, got, "level %s at verbosity %d", tc.level, tc.v)
	}
}

func TestSetVerbosityClamps(t *testing.T) {
	defer SetVerbosity(1)

	SetVerbosity(-1)
	assert.Equal(t, MinVerbosity, Verbosity())

	SetVerbosity(99)
	assert.Equal(t, MaxVerbosity, Verbosity())

	SetVerbosity(3)
	assert.Equal(t, 3, Verbosity())
}

func TestValidVerbosity(t *testing.T) {
	for v := 0; v <= 4; v++ {
		assert.True(t, ValidVerbosity(v), "verbosity %d", v)
	}
	assert.False(t, ValidVerbosity(-1))
	assert.False(t, ValidVerbosity(5))
}

func TestLoggerOutputFormat(t *testing.T) {
	defer SetVerbosity(1)
	SetVerbosity(4)

	var buf strings.Builder
	l := newLoggerTo("reaper", &buf)
	l.Info("child [%s] exited", "gui")

	out := buf.String()
	assert.Contains(t, out, "[reaper]")
	assert.Contains(t, out, "INFO: child [gui] exited")
}

func TestLoggerSuppressedBelowVerbosity(t *testing.T) {
	defer SetVerbosity(1)
	SetVerbosity(1)

	var buf strings.Builder
	l := newLoggerTo("test", &buf)
	l.Debug("hidden")
	l.Info("hidden too")
	l.Error("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ERROR: shown")
}

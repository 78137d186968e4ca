package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

// withLogBuffer routes log output into a buffer for the duration of the test.
func withLogBuffer(t *testing.T, cfg LogConfig) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevWriter, prevLogger := logWriter, logger
	t.Cleanup(func() {
		logWriter, logger = prevWriter, prevLogger
	})
	logWriter = &buf
	SetupLogging(cfg)
	return &buf
}

func TestSetupLogging_Timestamps(t *testing.T) {
	timePrefix := `^\d{2}:\d{2}:\d{2}`

	tests := []struct {
		name     string
		cfg      LogConfig
		wantTime bool
	}{
		{name: "default on", cfg: LogConfig{}, wantTime: true},
		{name: "explicitly off", cfg: LogConfig{Timestamps: BoolPtr(false)}, wantTime: false},
		{name: "verbose overrides off", cfg: LogConfig{Verbose: true, Timestamps: BoolPtr(false)}, wantTime: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := withLogBuffer(t, tt.cfg)
			Info("staged", "files", 3)
			out := strings.TrimSpace(buf.String())

			assert.Contains(t, out, "staged")
			if tt.wantTime {
				assert.Regexp(t, timePrefix, out)
			} else {
				assert.NotRegexp(t, timePrefix, out)
			}
		})
	}
}

func TestSetupLogging_Levels(t *testing.T) {
	buf := withLogBuffer(t, LogConfig{})
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	buf = withLogBuffer(t, LogConfig{Verbose: true})
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestStageLogger(t *testing.T) {
	buf := withLogBuffer(t, LogConfig{Verbose: true, Timestamps: BoolPtr(false)})

	l := StageLogger("pack")
	assert.Contains(t, l.GetPrefix(), "pack")
	assert.Equal(t, log.DebugLevel, l.GetLevel())

	l.Info("archive written")
	assert.Contains(t, buf.String(), "archive written")
}

// Package output provides terminal output utilities.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

const timeFormat = "15:04:05"

var (
	// logWriter receives all log output. Tests swap it for a buffer.
	logWriter io.Writer = os.Stderr

	// logger is the package-level logger shared by all helpers.
	logger = log.NewWithOptions(logWriter, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
	})
)

// LogConfig controls logger construction.
type LogConfig struct {
	// Verbose enables debug level, caller reporting and forces timestamps on.
	Verbose bool

	// Timestamps controls whether timestamps are shown. nil means true.
	Timestamps *bool
}

// SetupLogging configures the package logger.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	timestamps := true
	if cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}
	if cfg.Verbose {
		timestamps = true
	}

	logger = log.NewWithOptions(logWriter, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      timeFormat,
	})
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

// StageLogger returns a child logger prefixed with a pipeline stage name.
func StageLogger(stage string) *log.Logger {
	l := logger.With()
	l.SetPrefix(StyleNoun.Render(stage))
	return l
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}

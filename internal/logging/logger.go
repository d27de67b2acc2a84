// Package logging configures the CLI logger from environment variables.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns a stderr logger configured by VISISTRUCT_LOG_LEVEL
// (debug, info, warn, error; default info) and VISISTRUCT_LOG_PREFIX.
func NewLogger() *log.Logger {
	return NewLoggerWithWriter(os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to w.
func NewLoggerWithWriter(w io.Writer) *log.Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	switch os.Getenv("VISISTRUCT_LOG_LEVEL") {
	case "debug":
		lg.SetLevel(log.DebugLevel)
	case "warn":
		lg.SetLevel(log.WarnLevel)
	case "error":
		lg.SetLevel(log.ErrorLevel)
	default:
		lg.SetLevel(log.InfoLevel)
	}

	prefix := os.Getenv("VISISTRUCT_LOG_PREFIX")
	if prefix == "" {
		prefix = "visistruct "
	}
	return lg.WithPrefix(prefix)
}

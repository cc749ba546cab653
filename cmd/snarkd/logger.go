// logger.go - Structured logging setup for the snarkd daemon
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the process-wide logger from the configured level.
func newLogger(level string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(logLevel).With().Timestamp().Logger()
}

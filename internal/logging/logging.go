// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.Nop()
)

// Init sets the global level and output. Pretty writes human-readable lines to
// stderr; otherwise JSON lines are written.
func Init(level string, pretty bool) (zerolog.Logger, error) {
	return InitWriter(os.Stderr, level, pretty)
}

func InitWriter(out io.Writer, level string, pretty bool) (zerolog.Logger, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(out).Level(parsed).With().Timestamp().Logger()

	mu.Lock()
	base = logger
	mu.Unlock()

	return logger, nil
}

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(level))
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(trimmed)
}

// Component returns a child of the configured logger tagged with name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", name).Logger()
}

// Package logging configures the process-wide zerolog logger.
//
// The map client owns the terminal, so it logs to a file; the gateway logs
// JSON to stderr. Packages log through the helpers here:
//
//	logging.Warn().Err(err).Str("tile", key).Msg("tile load failed")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error, disabled.
	Level string
	// Format is json or console.
	Format string
	// File, when set, receives the output instead of Output.
	File string
	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	log    = zerolog.New(os.Stderr).With().Timestamp().Logger()
	closer io.Closer
)

// Init installs the global logger. It returns a close function that releases
// the log file, if one was opened.
func Init(cfg Config) (func() error, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	var c io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, c = f, f
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: cfg.File != ""}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()

	mu.Lock()
	prev := closer
	log, closer = l, c
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return func() error {
		if c == nil {
			return nil
		}
		return c.Close()
	}, nil
}

// ParseLevel converts a level name; unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	}
	return zerolog.InfoLevel
}

// Logger returns the current global logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug() *zerolog.Event { return Logger().Debug() }
func Info() *zerolog.Event  { return Logger().Info() }
func Warn() *zerolog.Event  { return Logger().Warn() }
func Error() *zerolog.Event { return Logger().Error() }

// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Edge cache operations (hit/miss, key, TTL)
//   - Resolution tier transitions and background refresh outcomes
//   - Upstream request/response details
//
// Info: Normal operation events
//   - Proxy request access log entries
//   - NASA quota state updates (healthy)
//   - Prefetch run summaries
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - NASA quota running low
//   - Cache errors (fallback to upstream fetch)
//   - Persistent cache write failures on the client
//
// Error: Error conditions requiring attention
//   - Upstream request failures surfaced to clients
//   - Critical quota blocks
//   - Configuration errors
//
// Context Fields:
//   - request_id: Per-request UUID assigned by the proxy
//   - path: Proxy route
//   - status: HTTP status code
//   - duration: Request duration
//   - cache: X-Cache disposition (HIT or MISS)
//   - operation: Edge cache operation (featured, lookup, relay)
//   - id: Catalog object id
//   - query: Lookup query

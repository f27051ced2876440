// Package logging configures the global zerolog logger. Diagnostic logs go
// to stderr only: stdout is reserved for the event stream and must never
// carry log output.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns the baseline configuration: info level, JSON format.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// Setup installs the global logger per cfg. An unparseable level falls back
// to info.
func Setup(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stderr
	if cfg.Format == "console" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

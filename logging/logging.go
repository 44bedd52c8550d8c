// Package logging builds the zerolog loggers used by the runners and the
// simulator.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the output format and level.
type Config struct {
	// Format is "console" or "json".
	Format string
	// Level is a zerolog level name ("debug", "info", ...). Empty means info.
	Level string
	// Out defaults to os.Stdout.
	Out io.Writer
}

// New returns a logger for cfg.
func New(cfg Config) (zerolog.Logger, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	var w io.Writer
	switch cfg.Format {
	case "json":
		w = out
	case "", "console":
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				"party",
				zerolog.MessageFieldName,
			},
			FormatPrepare: func(e map[string]interface{}) error {
				if p, ok := e["party"]; ok {
					e["party"] = fmt.Sprintf("[party %v]", p)
				}
				return nil
			},
			FieldsExclude: []string{"party"},
		}
	default:
		return zerolog.Nop(), fmt.Errorf("log format must be 'json' or 'console', got %q", cfg.Format)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// Party returns a child logger tagged with a party index and session id.
func Party(l zerolog.Logger, index uint16, sessionID string) zerolog.Logger {
	return l.With().
		Uint16("party", index).
		Str("session_id", sessionID).
		Logger()
}

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging points the global logger at stderr and, when cfg.File is set, at that file as
// well. The returned function detaches and closes the file; it is safe to call more than once.
func SetupLogging(cfg *LoggingConfig) (func() error, error) {
	return setupLogging(cfg, os.Stderr)
}

func setupLogging(cfg *LoggingConfig, stderr io.Writer) (func() error, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	console := stderr
	if cfg.Format == "console" {
		console = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}
	newLogger := func(w io.Writer) zerolog.Logger {
		return zerolog.New(w).With().Timestamp().Str("service", "nidsguard").Logger()
	}

	closeLog := func() error { return nil }
	out := console
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, file)

		var closed bool
		closeLog = func() error {
			if closed {
				return nil
			}
			closed = true
			log.Logger = newLogger(console)
			return file.Close()
		}
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = newLogger(out)

	log.Debug().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Str("file", cfg.File).
		Msg("Logging initialized")
	return closeLog, nil
}

package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// zerologCLILogger implements calculation.Logger on top of zerolog.
type zerologCLILogger struct {
	log zerolog.Logger
}

func (l zerologCLILogger) Debugf(format string, args ...any) { l.log.Debug().Msgf(format, args...) }
func (l zerologCLILogger) Infof(format string, args ...any)  { l.log.Info().Msgf(format, args...) }
func (l zerologCLILogger) Warnf(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l zerologCLILogger) Errorf(format string, args ...any) { l.log.Error().Msgf(format, args...) }

// newCLILogger writes human-readable log lines to w at the named level
// (debug, info, warn, error). Unknown levels fall back to info.
func newCLILogger(w io.Writer, level string) zerologCLILogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerologCLILogger{log: zerolog.New(out).Level(lvl).With().Timestamp().Logger()}
}

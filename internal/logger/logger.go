// Package logger provides the zerolog loggers used by the journal binaries.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

var configure sync.Once

// configureErrors makes .Stack() on error events render a pkg/errors stack,
// attaching one when the error has none.
func configureErrors() {
	configure.Do(func() {
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			if _, ok := err.(stackTracer); !ok {
				err = pkgerrors.WithStack(err)
			}
			return zpkgerrors.MarshalStack(err)
		}
	})
}

// New returns a JSON logger on stdout tagged with service. The level comes
// from JOURNAL_LOG_LEVEL (default info).
func New(service string) zerolog.Logger {
	return NewWithWriter(os.Stdout, service)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, service string) zerolog.Logger {
	configureErrors()
	return zerolog.New(w).Level(levelFromEnv()).With().
		Str("service", service).
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger on stderr for CLI use. Debug
// enables debug level; otherwise only warnings and above are shown.
func NewConsole(service string, debug bool) zerolog.Logger {
	configureErrors()
	lvl := zerolog.WarnLevel
	if debug {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().
		Str("service", service).
		Timestamp().
		Logger()
}

func levelFromEnv() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("JOURNAL_LOG_LEVEL")))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

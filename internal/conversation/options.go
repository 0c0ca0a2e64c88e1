package conversation

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log.With().Str("component", "conversation_store").Logger() }
}

// WithClock overrides the time source used for timestamp updates after an append.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

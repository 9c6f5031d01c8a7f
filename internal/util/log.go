package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext returns the logger embedded in the given context, falling
// back to the global zerolog logger if none was attached.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}
	return l
}

// LogLevelFromString parses a zerolog level string, falling back to debug on
// unknown input.
func LogLevelFromString(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to parse log level, defaulting to %s", zerolog.DebugLevel)
		return zerolog.DebugLevel
	}
	return level
}

package sptensor

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the package logger.  It stays at Warn unless SPTENSOR_LOG names another
// level ("debug", "info", "error", ...).  Kernels log coarse diagnostics only; nothing in a
// hot loop ever touches the logger.
var Log = newLogger()

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if s := os.Getenv("SPTENSOR_LOG"); s != "" {
		if l, err := zerolog.ParseLevel(s); err == nil {
			level = l
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// Package logging builds the CLI's diagnostic logger.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w. Debug mode logs everything;
// otherwise only warnings and errors are shown so the interactive output
// stays clean.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !debug}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

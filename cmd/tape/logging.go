package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// newLogger builds the run logger from the log-level and log-format
// settings. Every record carries the run_id of this invocation.
func newLogger(v *viper.Viper, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log-level")))
	if err != nil {
		return zerolog.Nop(), err
	}
	if level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	out := w
	switch strings.ToLower(v.GetString("log-format")) {
	case "", "console":
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    !useColor(v, w),
			TimeFormat: time.Kitchen,
		}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format: %s", v.GetString("log-format"))
	}

	runID, err := uuid.NewV4()
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run_id", runID.String()).
		Logger(), nil
}

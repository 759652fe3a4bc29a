// Package logger configures the zerolog output used by every component.
package logger

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Levels accepted in configuration.
var Levels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// New returns a console logger writing to out. When isService is true the
// timestamp column is dropped because journald already records one.
func New(out io.Writer, level string, isService bool) (zerolog.Logger, error) {
	lvl, ok := Levels[level]
	if !ok {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    isService,
	}
	if isService {
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}

// Init builds the process logger on stdout.
func Init(level string) (zerolog.Logger, error) {
	return New(os.Stdout, level, IsService())
}

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// IsService checks if the process runs under a service manager.
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("INVOCATION_ID") != "" || os.Getenv("SERVICE_NAME") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

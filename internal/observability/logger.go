package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logs go to stderr: stdout belongs to the live transcript view
var logOutput io.Writer = os.Stderr

// ParseLevel maps a config level name to zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetOutput redirects logs written after the next InitLogger call.
func SetOutput(w io.Writer) {
	logOutput = w
}

// InitLogger configures the global logger. It may be called again after a
// config reload.
func InitLogger(level string, pretty bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var logger zerolog.Logger
	if pretty {
		output := zerolog.ConsoleWriter{
			Out:        logOutput,
			TimeFormat: time.Kitchen,
		}
		logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(logOutput).With().Timestamp().Logger()
	}

	log.Logger = logger
}

// Component returns a sub-logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Session returns a component logger that also carries the session id.
func Session(component, sessionID string) zerolog.Logger {
	return log.With().Str("component", component).Str("session_id", sessionID).Logger()
}

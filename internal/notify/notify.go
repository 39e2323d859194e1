package notify

import (
	"fmt"
	"os/exec"

	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/rs/zerolog"
)

const appName = "Hyprlingo"

type Notifier interface {
	SessionStarted(mode string)
	SessionEnded(summary string)
	Error(msg string)
	Notify(title, message string)
}

// New picks a notifier for a [notifications] type. Disabled or unknown types
// get Nop.
func New(kind string, enabled bool) Notifier {
	if !enabled {
		return Nop{}
	}
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{Logger: observability.Component("notify")}
	default:
		return Nop{}
	}
}

// Desktop sends notifications through notify-send.
type Desktop struct {
	// Run replaces exec for tests.
	Run func(name string, args ...string) error
}

func (d Desktop) run(args ...string) {
	run := d.Run
	if run == nil {
		run = func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		}
	}
	if err := run("notify-send", append([]string{"-a", appName}, args...)...); err != nil {
		logger := observability.Component("notify")
		logger.Debug().Err(err).Msg("failed to send notification")
	}
}

func (d Desktop) SessionStarted(mode string) {
	d.run(appName+": Listening", fmt.Sprintf("Session started (%s)", mode))
}

func (d Desktop) SessionEnded(summary string) {
	d.run(appName+": Stopped", summary)
}

func (d Desktop) Error(msg string) {
	d.run("-u", "critical", appName+" Error", msg)
}

func (d Desktop) Notify(title, message string) {
	d.run(title, message)
}

// Log writes notifications to a logger instead of the desktop.
type Log struct {
	Logger zerolog.Logger
}

func (l Log) SessionStarted(mode string) {
	l.Logger.Info().Str("mode", mode).Msg(appName + ": session started")
}

func (l Log) SessionEnded(summary string) {
	l.Logger.Info().Str("summary", summary).Msg(appName + ": session ended")
}

func (l Log) Error(msg string) {
	l.Logger.Error().Msg(appName + " Error: " + msg)
}

func (l Log) Notify(title, message string) {
	l.Logger.Info().Str("title", title).Msg(message)
}

// Nop is a Notifier that does absolutely nothing.
type Nop struct{}

func (Nop) SessionStarted(string) {}
func (Nop) SessionEnded(string)   {}
func (Nop) Error(string)          {}
func (Nop) Notify(string, string) {}

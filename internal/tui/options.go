package tui

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/recognizer"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
	"github.com/leonardotrapani/hyprlingo/internal/session"
)

func menuOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Server", sectionServer),
		huh.NewOption("Language mode", sectionSession),
		huh.NewOption("Recording", sectionRecording),
		huh.NewOption("Notifications", sectionNotifications),
		huh.NewOption("Logging & metrics", sectionAdvanced),
		huh.NewOption("Save and exit", actionSave),
		huh.NewOption("Discard changes", actionDiscard),
	}
}

func modeOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Auto - detect, then lock onto one language", string(session.ModeAuto)),
		huh.NewOption("Fixed - always use one language", string(session.ModeFixed)),
		huh.NewOption("Multilang - follow language switches", string(session.ModeMultilang)),
	}
}

func languageOptions() []huh.Option[string] {
	langs := language.List()
	opts := make([]huh.Option[string], 0, len(langs))
	for _, l := range langs {
		label := l.Name
		if l.NativeName != "" && l.NativeName != l.Name {
			label = fmt.Sprintf("%s - %s", l.Name, l.NativeName)
		}
		opts = append(opts, huh.NewOption(label, l.Code))
	}
	return opts
}

func backendOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("PipeWire (pw-record)", recording.BackendPipeWire),
		huh.NewOption("PortAudio", recording.BackendPortAudio),
		huh.NewOption("WAV file replay", recording.BackendWAV),
	}
}

func logLevelOptions() []huh.Option[string] {
	levels := []string{"debug", "info", "warn", "error"}
	opts := make([]huh.Option[string], len(levels))
	for i, l := range levels {
		opts[i] = huh.NewOption(l, l)
	}
	return opts
}

func validateServerURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("server url is required")
	}
	_, err := session.Resolve(s, session.Params{Mode: session.ModeAuto})
	return err
}

func validateHeader(s string) error {
	_, err := recognizer.ParseHeader(s)
	return err
}

func validateWAVPath(s string) error {
	if s == "" {
		return errors.New("file is required for the wav backend")
	}
	if !strings.EqualFold(filepath.Ext(s), ".wav") {
		return errors.New("file must be a .wav")
	}
	info, err := os.Stat(s)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

func validateGain(s string) error {
	g, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("gain must be a number")
	}
	if g <= 0 {
		return errors.New("gain must be positive")
	}
	return nil
}

func validateAddr(s string) error {
	if _, _, err := net.SplitHostPort(s); err != nil {
		return fmt.Errorf("want host:port: %w", err)
	}
	return nil
}

func modeLabel(cfg *config.Config) string {
	switch cfg.Session.Mode {
	case string(session.ModeFixed):
		if l := language.Label(cfg.Session.Language); l != "" {
			return "fixed, " + l
		}
		return "fixed, no language"
	case "":
		return string(session.ModeAuto)
	default:
		return cfg.Session.Mode
	}
}

func oneLineSummary(cfg *config.Config) string {
	return fmt.Sprintf("%s | %s | %s", cfg.Server.URL, modeLabel(cfg), cfg.Recording.Backend)
}

func summaryLines(cfg *config.Config) []string {
	source := cfg.Recording.Device
	if cfg.Recording.Backend == recording.BackendWAV {
		source = cfg.Recording.File
	}
	if source == "" {
		source = "default"
	}

	notifications := "off"
	if cfg.Notifications.Enabled {
		notifications = cfg.Notifications.Type
	}
	metrics := "off"
	if cfg.Metrics.Enabled {
		metrics = cfg.Metrics.Addr
	}
	header := "none"
	if cfg.Server.Header != "" {
		name, _, _ := strings.Cut(cfg.Server.Header, ":")
		header = strings.TrimSpace(name) + ": ***"
	}

	rows := [][2]string{
		{"Server", cfg.Server.URL},
		{"Header", header},
		{"Mode", modeLabel(cfg)},
		{"Backend", cfg.Recording.Backend},
		{"Input", source},
		{"Level gain", strconv.FormatFloat(cfg.Recording.LevelGain, 'g', -1, 64)},
		{"Notifications", notifications},
		{"Log level", cfg.Logging.Level},
		{"Metrics", metrics},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%s %s", StyleLabel.Render(fmt.Sprintf("%-14s", r[0]+":")), r[1])
	}
	return lines
}

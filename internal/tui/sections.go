package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
	"github.com/leonardotrapani/hyprlingo/internal/session"
)

func editServer(cfg *config.Config) error {
	url := cfg.Server.URL
	header := cfg.Server.Header

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recognizer URL").
				Description("ws://, wss://, http:// or https:// base of the streaming server").
				Value(&url).
				Validate(validateServerURL),
			huh.NewInput().
				Title("Handshake header").
				Description("Optional, e.g. \"Authorization: Bearer ...\"").
				Value(&header).
				Validate(validateHeader),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}
	cfg.Server.URL = url
	cfg.Server.Header = header
	return nil
}

func editSession(cfg *config.Config) error {
	mode := cfg.Session.Mode
	if mode == "" {
		mode = string(session.ModeAuto)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Language mode").
				Description("How the recognizer picks the spoken language").
				Options(modeOptions()...).
				Value(&mode),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Session.Mode = mode
	if mode != string(session.ModeFixed) {
		return nil
	}

	lang := cfg.Session.Language
	if lang == "" {
		lang = "en"
	}
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Spoken language").
				Description("The recognizer is pinned to this language").
				Options(languageOptions()...).
				Value(&lang).
				Height(10),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Session.Language = lang
	return nil
}

func editRecording(cfg *config.Config) error {
	backend := cfg.Recording.Backend
	if backend == "" {
		backend = recording.BackendPipeWire
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Capture backend").
				Options(backendOptions()...).
				Value(&backend),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	device := cfg.Recording.Device
	file := cfg.Recording.File
	gain := strconv.FormatFloat(cfg.Recording.LevelGain, 'g', -1, 64)

	var fields []huh.Field
	if backend == recording.BackendWAV {
		fields = append(fields, huh.NewInput().
			Title("WAV file").
			Description("Replayed in real time as if spoken").
			Value(&file).
			Validate(validateWAVPath))
	} else {
		fields = append(fields, huh.NewInput().
			Title("Input device").
			Description("Leave empty for the system default").
			Value(&device))
	}
	fields = append(fields, huh.NewInput().
		Title("Level gain").
		Description("Multiplier applied to the RMS loudness shown on the meter").
		Value(&gain).
		Validate(validateGain))

	form = huh.NewForm(huh.NewGroup(fields...)).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.Backend = backend
	cfg.Recording.Device = device
	cfg.Recording.File = file
	if g, err := strconv.ParseFloat(gain, 64); err == nil {
		cfg.Recording.LevelGain = g
	}
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	kind := cfg.Notifications.Type
	if kind == "" || kind == "none" {
		kind = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Notify on session start and end?").
				Affirmative("Yes").
				Negative("No").
				Value(&enabled),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	if !enabled {
		cfg.Notifications.Enabled = false
		cfg.Notifications.Type = "none"
		return nil
	}

	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification type").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Log only", "log"),
				).
				Value(&kind),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = true
	cfg.Notifications.Type = kind
	return nil
}

func editAdvanced(cfg *config.Config) error {
	level := cfg.Logging.Level
	pretty := cfg.Logging.Pretty
	metrics := cfg.Metrics.Enabled
	addr := cfg.Metrics.Addr

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(logLevelOptions()...).
				Value(&level),
			huh.NewConfirm().
				Title("Human-readable logs?").
				Affirmative("Console").
				Negative("JSON").
				Value(&pretty),
			huh.NewConfirm().
				Title("Serve Prometheus metrics from the daemon?").
				Affirmative("Yes").
				Negative("No").
				Value(&metrics),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	if metrics {
		if addr == "" {
			addr = config.DefaultMetricsAddr
		}
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Metrics listen address").
					Value(&addr).
					Validate(validateAddr),
			),
		).WithTheme(getTheme())
		if err := form.Run(); err != nil {
			return err
		}
	}

	cfg.Logging.Level = level
	cfg.Logging.Pretty = pretty
	cfg.Metrics.Enabled = metrics
	cfg.Metrics.Addr = addr
	return nil
}

package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/muesli/termenv"
)

type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

const (
	sectionServer        = "server"
	sectionSession       = "session"
	sectionRecording     = "recording"
	sectionNotifications = "notifications"
	sectionAdvanced      = "advanced"
	actionSave           = "save"
	actionDiscard        = "discard"
)

// Run walks the user through the configuration menu. existing is never
// modified; the edited copy comes back in the result.
func Run(existing *config.Config) (*ConfigureResult, error) {
	cfg := config.DefaultConfig()
	if existing != nil {
		cfg = existing.Clone()
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println(StyleMuted.Render("Real-time transcription and translation"))
		fmt.Println()

		var choice string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configure").
					Description(oneLineSummary(cfg)).
					Options(menuOptions()...).
					Value(&choice),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return &ConfigureResult{Cancelled: true}, nil
			}
			return nil, err
		}

		var err error
		switch choice {
		case sectionServer:
			err = editServer(cfg)
		case sectionSession:
			err = editSession(cfg)
		case sectionRecording:
			err = editRecording(cfg)
		case sectionNotifications:
			err = editNotifications(cfg)
		case sectionAdvanced:
			err = editAdvanced(cfg)
		case actionSave:
			ok, err := confirmSave(cfg)
			if err != nil {
				return nil, err
			}
			if ok {
				return &ConfigureResult{Config: cfg}, nil
			}
			continue
		case actionDiscard:
			return &ConfigureResult{Cancelled: true}, nil
		}

		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return nil, err
		}
	}
}

func confirmSave(cfg *config.Config) (bool, error) {
	clearScreen()
	fmt.Println(StyleHeader.Render("Review"))
	for _, line := range summaryLines(cfg) {
		fmt.Println(line)
	}
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		_ = huh.NewForm(huh.NewGroup(
			huh.NewNote().
				Title(StyleError.Render("Invalid configuration")).
				Description(err.Error()).
				Next(true).
				NextLabel("Back to menu"),
		)).WithTheme(getTheme()).Run()
		return false, nil
	}

	save := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Affirmative("Save").
				Negative("Back").
				Value(&save),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return save, nil
}

func clearScreen() {
	termenv.NewOutput(os.Stdout).ClearScreen()
}

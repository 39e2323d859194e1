package tui

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/hyprlingo/internal/view"
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(view.ColorPrimary).
			MarginBottom(1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(view.ColorText).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(view.ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(view.ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(view.ColorWarning)

	StyleMuted = lipgloss.NewStyle().
			Foreground(view.ColorMuted)
)

const logoASCII = `
 _                       _ _
| |__  _   _ _ __  _ __ | (_)_ __   __ _  ___
| '_ \| | | | '_ \| '__|| | | '_ \ / _' |/ _ \
| | | | |_| | |_) | |   | | | | | | (_| | (_) |
|_| |_|\__, | .__/|_|   |_|_|_| |_|\__, |\___/
       |___/|_|                    |___/      `

func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(view.ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(view.ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(view.ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(view.ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(view.ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(view.ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(view.ColorSubtle)

	return t
}

package view

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // purple
	ColorSecondary = lipgloss.Color("#06B6D4") // cyan

	ColorSuccess = lipgloss.Color("#22C55E")
	ColorError   = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")

	ColorText   = lipgloss.Color("#F8FAFC")
	ColorMuted  = lipgloss.Color("#94A3B8")
	ColorSubtle = lipgloss.Color("#64748B")
)

// Styles are bound to one renderer so tests can force a colour profile.
type Styles struct {
	Header      lipgloss.Style
	Badge       lipgloss.Style
	Label       lipgloss.Style
	Text        lipgloss.Style
	Partial     lipgloss.Style
	Struck      lipgloss.Style
	Provisional lipgloss.Style
	Translation lipgloss.Style
	Lang        lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
	Meter       lipgloss.Style
	Box         lipgloss.Style
	Block       lipgloss.Style
}

func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:      r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Badge:       r.NewStyle().Bold(true).Foreground(ColorText).Background(ColorPrimary).Padding(0, 1),
		Label:       r.NewStyle().Bold(true).Foreground(ColorText),
		Text:        r.NewStyle().Foreground(ColorText),
		Partial:     r.NewStyle().Italic(true).Foreground(ColorSubtle),
		Struck:      r.NewStyle().Strikethrough(true).Foreground(ColorSubtle),
		Provisional: r.NewStyle().Italic(true).Foreground(ColorMuted),
		Translation: r.NewStyle().Foreground(ColorSecondary),
		Lang:        r.NewStyle().Foreground(ColorMuted),
		Success:     r.NewStyle().Foreground(ColorSuccess),
		Warning:     r.NewStyle().Foreground(ColorWarning).Bold(true),
		Error:       r.NewStyle().Foreground(ColorError).Bold(true),
		Muted:       r.NewStyle().Foreground(ColorMuted),
		Meter:       r.NewStyle().Foreground(ColorSuccess),
		Box:         r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorSubtle).Padding(0, 1),
		Block:       r.NewStyle(),
	}
}

// PlainStyles renders without escape sequences, for pipes and tests.
func PlainStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.Ascii)
	return NewStyles(r)
}

// Package view turns session snapshots into terminal output: a live
// bubbletea screen for interactive use and a line printer for pipes.
package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/session"
)

const meterWidth = 20

// Render draws the whole screen for s. width <= 0 disables wrapping.
func Render(st Styles, s session.Snapshot, width int) string {
	var b strings.Builder

	b.WriteString(renderHeader(st, s))
	b.WriteString("\n")
	b.WriteString(renderLock(st, s))
	b.WriteString("   ")
	b.WriteString(RenderMeter(st, s.Level))
	b.WriteString("\n\n")

	b.WriteString(st.Label.Render("Transcript"))
	b.WriteString("\n")
	b.WriteString(wrap(st, renderTranscript(st, s), width))
	b.WriteString("\n\n")

	b.WriteString(st.Label.Render("Translation"))
	b.WriteString("\n")
	b.WriteString(wrap(st, renderTranslation(st, s), width))
	b.WriteString("\n\n")

	b.WriteString(renderFooter(st, s))
	return b.String()
}

func renderHeader(st Styles, s session.Snapshot) string {
	parts := []string{st.Header.Render("hyprlingo"), st.Badge.Render(string(s.Status))}
	if s.Mode != "" {
		mode := string(s.Mode)
		if s.Mode == session.ModeFixed && s.Language != "" {
			mode += " " + s.Language
		}
		parts = append(parts, st.Muted.Render(mode))
	}
	if !s.StartedAt.IsZero() && s.Status != session.Idle {
		parts = append(parts, st.Muted.Render(time.Since(s.StartedAt).Truncate(time.Second).String()))
	}
	return strings.Join(parts, " ")
}

func renderLock(st Styles, s session.Snapshot) string {
	lock := s.Lock
	switch {
	case lock.Display == "":
		return st.Muted.Render("language: detecting…")
	case lock.Status == language.Mismatch:
		return st.Warning.Render(fmt.Sprintf("language: %s ≠ guess, settling", language.Label(lock.Display)))
	case lock.Status == language.Final:
		return st.Success.Render("language: " + language.Label(lock.Display) + " ✓")
	default:
		return st.Text.Render("language: " + language.Label(lock.Display) + "?")
	}
}

// RenderMeter draws level in [0,1] as a fixed-width bar.
func RenderMeter(st Styles, level float64) string {
	if math.IsNaN(level) || level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(math.Round(level * meterWidth))
	return st.Meter.Render(strings.Repeat("█", filled)) + st.Muted.Render(strings.Repeat("░", meterWidth-filled))
}

func renderTranscript(st Styles, s session.Snapshot) string {
	var lines []string
	for _, l := range s.Lines {
		text := l.Text
		if l.Lang != "" {
			text = st.Lang.Render("["+l.Lang+"]") + " " + text
		}
		if l.Struck {
			lines = append(lines, st.Struck.Render("✗ "+l.Text))
			continue
		}
		lines = append(lines, st.Text.Render("• ")+text)
	}
	if s.Partial != "" {
		lines = append(lines, st.Partial.Render("… "+s.Partial))
	}
	if len(lines) == 0 {
		return st.Muted.Render("(listening)")
	}
	return strings.Join(lines, "\n")
}

func renderTranslation(st Styles, s session.Snapshot) string {
	var lines []string
	for _, l := range s.Translations {
		switch {
		case l.Struck:
			lines = append(lines, st.Struck.Render("✗ "+l.Text))
		case l.Provisional:
			lines = append(lines, st.Provisional.Render("~ "+l.Text))
		default:
			lines = append(lines, st.Translation.Render("→ "+l.Text))
		}
	}
	if s.PartialTranslation != "" {
		lines = append(lines, st.Partial.Render("… "+s.PartialTranslation))
	}
	if len(lines) == 0 {
		return st.Muted.Render("(none yet)")
	}
	return strings.Join(lines, "\n")
}

func renderFooter(st Styles, s session.Snapshot) string {
	counters := fmt.Sprintf("sent %d  dropped %d  events %d  ignored %d",
		s.FramesSent, s.FramesDropped, s.Inbound.Applied, s.Inbound.Ignored())
	footer := st.Muted.Render(counters)
	if s.Err != nil {
		footer += "\n" + st.Error.Render("error: "+s.Err.Error())
	}
	return footer + "\n" + st.Muted.Render("q stop")
}

func wrap(st Styles, s string, width int) string {
	if width <= 0 {
		return s
	}
	return st.Block.Width(width).Render(s)
}

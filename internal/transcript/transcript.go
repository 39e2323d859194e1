// Package transcript holds the reconciled view of what was said and what it
// means. Both stores are append-only: lines are added and struck, never
// removed or reordered. Neither is safe for concurrent use; a session
// mutates them from its event loop only.
package transcript

import "strings"

// Line is a finalized recognition result.
type Line struct {
	Text   string
	Struck bool   // retracted by the server, kept for the audit trail
	Lang   string // set in multilang mode
	// Replayed marks a final the server re-emitted after correcting the
	// session language.
	Replayed bool
}

// Transcript is the finalized lines plus the in-flight partial.
type Transcript struct {
	lines   []Line
	partial string
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// SetPartial replaces the in-flight utterance.
func (t *Transcript) SetPartial(text string) {
	t.partial = text
}

func (t *Transcript) Partial() string {
	return t.partial
}

// Commit appends a final line and clears the partial.
func (t *Transcript) Commit(line Line) {
	line.Struck = false
	t.lines = append(t.lines, line)
	t.partial = ""
}

// StrikeLast retracts the most recent line. It reports false when there is
// nothing to strike.
func (t *Transcript) StrikeLast() bool {
	if len(t.lines) == 0 {
		return false
	}
	t.lines[len(t.lines)-1].Struck = true
	return true
}

// StrikeAll retracts every line. Repeating it changes nothing.
func (t *Transcript) StrikeAll() {
	for i := range t.lines {
		t.lines[i].Struck = true
	}
}

func (t *Transcript) Len() int {
	return len(t.lines)
}

// Lines returns a copy of the finalized lines.
func (t *Transcript) Lines() []Line {
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

// Text joins the lines that are still standing.
func (t *Transcript) Text() string {
	var b strings.Builder
	for _, l := range t.lines {
		if l.Struck {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}

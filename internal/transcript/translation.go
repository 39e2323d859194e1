package transcript

// TranslationLine is a committed translation. Provisional ones were made
// before the source language was locked and may be refined in place.
type TranslationLine struct {
	Text        string
	Provisional bool
	Struck      bool
	Lang        string
}

// Translation mirrors Transcript and adds replace-last refinement.
type Translation struct {
	lines   []TranslationLine
	partial string
}

func NewTranslation() *Translation {
	return &Translation{}
}

// SetPartial replaces the in-flight translation. Empty text clears it.
func (t *Translation) SetPartial(text string) {
	t.partial = text
}

func (t *Translation) Partial() string {
	return t.partial
}

// Commit records a final translation. With replaceLast and at least one
// line, the last line is overwritten: its text replaced, struck cleared and
// provisional forced false. Otherwise the line is appended. The partial is
// cleared either way. It reports whether an existing line was replaced.
func (t *Translation) Commit(line TranslationLine, replaceLast bool) bool {
	t.partial = ""
	if replaceLast && len(t.lines) > 0 {
		last := &t.lines[len(t.lines)-1]
		last.Text = line.Text
		last.Struck = false
		last.Provisional = false
		if line.Lang != "" {
			last.Lang = line.Lang
		}
		return true
	}
	line.Struck = false
	t.lines = append(t.lines, line)
	return false
}

func (t *Translation) StrikeLast() bool {
	if len(t.lines) == 0 {
		return false
	}
	t.lines[len(t.lines)-1].Struck = true
	return true
}

func (t *Translation) StrikeAll() {
	for i := range t.lines {
		t.lines[i].Struck = true
	}
}

func (t *Translation) Len() int {
	return len(t.lines)
}

func (t *Translation) Lines() []TranslationLine {
	out := make([]TranslationLine, len(t.lines))
	copy(out, t.lines)
	return out
}

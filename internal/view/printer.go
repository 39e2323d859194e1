package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/leonardotrapani/hyprlingo/internal/session"
)

// Printer writes transcript changes as plain lines, for output that is not
// a terminal. Committed lines are printed once; a later strike or
// replacement is printed as a correction.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles

	sessionID    string
	lines        int
	retracted    map[int]bool
	translations map[int]string
}

func NewPrinter(w io.Writer) *Printer {
	p := &Printer{w: w, styles: PlainStyles(w)}
	p.reset("")
	return p
}

// Update prints what changed since the previous snapshot.
func (p *Printer) Update(s session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.SessionID != p.sessionID {
		p.reset(s.SessionID)
	}

	for i, l := range s.Lines {
		switch {
		case i >= p.lines && l.Struck:
			// struck before it was ever shown
			p.retracted[i] = true
		case i >= p.lines && l.Lang != "":
			fmt.Fprintf(p.w, "[%s] %s\n", l.Lang, l.Text)
		case i >= p.lines:
			fmt.Fprintln(p.w, l.Text)
		case l.Struck && !p.retracted[i]:
			p.retracted[i] = true
			fmt.Fprintf(p.w, "(retracted) %s\n", l.Text)
		}
	}
	p.lines = len(s.Lines)

	for i, l := range s.Translations {
		if l.Provisional || l.Struck {
			continue
		}
		prev, printed := p.translations[i]
		switch {
		case !printed:
			fmt.Fprintf(p.w, "  → %s\n", l.Text)
		case prev != l.Text:
			fmt.Fprintf(p.w, "  → (revised) %s\n", l.Text)
		default:
			continue
		}
		p.translations[i] = l.Text
	}
}

// Summary prints how a session ended.
func (p *Printer) Summary(s session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, p.styles.Muted.Render(fmt.Sprintf("session %s ended: %d lines, %d translations, %d frames sent, %d dropped",
		s.SessionID, len(s.Lines), len(s.Translations), s.FramesSent, s.FramesDropped)))
	if s.Err != nil {
		fmt.Fprintln(p.w, p.styles.Error.Render("error: "+s.Err.Error()))
	}
}

func (p *Printer) reset(sessionID string) {
	p.sessionID = sessionID
	p.lines = 0
	p.retracted = make(map[int]bool)
	p.translations = make(map[int]string)
}

// Text joins the standing lines of a finished session, one per line. With
// translation set it uses the settled translations instead of the
// transcript.
func Text(s session.Snapshot, translation bool) string {
	var out []string
	if translation {
		for _, l := range s.Translations {
			if !l.Struck && !l.Provisional && l.Text != "" {
				out = append(out, l.Text)
			}
		}
	} else {
		for _, l := range s.Lines {
			if !l.Struck && l.Text != "" {
				out = append(out, l.Text)
			}
		}
	}
	return strings.Join(out, "\n")
}

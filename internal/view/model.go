package view

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leonardotrapani/hyprlingo/internal/session"
)

// SnapshotMsg carries a published snapshot into the program.
type SnapshotMsg session.Snapshot

// LevelMsg carries a loudness reading between snapshots.
type LevelMsg float64

// EndedMsg reports that the session is over.
type EndedMsg session.Snapshot

// Model is the live screen of a foreground session. It never touches the
// controller; the caller stops the session once the program exits.
type Model struct {
	styles  Styles
	snap    session.Snapshot
	spinner spinner.Model
	width   int

	// Stopped is true when the user quit, false when the session ended by
	// itself.
	Stopped bool
}

func NewModel(styles Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Header
	return Model{styles: styles, spinner: sp, snap: session.Snapshot{Status: session.Idle}}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.Stopped = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case SnapshotMsg:
		m.snap = session.Snapshot(msg)

	case LevelMsg:
		m.snap.Level = float64(msg)

	case EndedMsg:
		m.snap = session.Snapshot(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	body := Render(m.styles, m.snap, m.contentWidth())
	if m.snap.Status == session.Connecting || m.snap.Status == session.Closing {
		body = m.spinner.View() + " " + body
	}
	return m.styles.Box.Render(body) + "\n"
}

// Snapshot is the last state the model displayed.
func (m Model) Snapshot() session.Snapshot {
	return m.snap
}

func (m Model) contentWidth() int {
	// border and padding take four columns
	if m.width <= 4 {
		return 0
	}
	return m.width - 4
}

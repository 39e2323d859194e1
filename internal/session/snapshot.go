package session

import (
	"time"

	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/protocol"
	"github.com/leonardotrapani/hyprlingo/internal/transcript"
)

type Status string

const (
	Idle       Status = "idle"
	Connecting Status = "connecting"
	Active     Status = "active"
	Closing    Status = "closing"
)

// Snapshot is an immutable copy of everything the presentation layer may
// show. Slices are never shared with the live stores.
type Snapshot struct {
	Status    Status
	SessionID string
	Mode      Mode
	Language  string // requested language in fixed mode
	Endpoint  string
	StartedAt time.Time

	Lines              []transcript.Line
	Partial            string
	Translations       []transcript.TranslationLine
	PartialTranslation string
	Lock               language.State

	Level         float64
	FramesSent    uint64
	FramesDropped uint64
	Inbound       protocol.Stats

	// Err is why the last session ended or failed to start, nil after a
	// clean stop.
	Err error
}

// withStatus returns a copy carrying status. Slices stay shared, which is
// safe because nothing mutates a published snapshot.
func (s Snapshot) withStatus(status Status) Snapshot {
	s.Status = status
	return s
}

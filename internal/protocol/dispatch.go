package protocol

import (
	"errors"

	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/leonardotrapani/hyprlingo/internal/transcript"
	"github.com/rs/zerolog"
)

// Stats counts what the dispatcher did with inbound frames.
type Stats struct {
	Applied     uint64
	Malformed   uint64
	UnknownType uint64
	Binary      uint64
}

func (s Stats) Ignored() uint64 {
	return s.Malformed + s.UnknownType + s.Binary
}

// Dispatcher routes events to one session's stores and language lock. It
// fails open: a frame it cannot use is counted and dropped without touching
// state. Like the stores, it belongs to the session's event loop.
type Dispatcher struct {
	transcript  *transcript.Transcript
	translation *transcript.Translation
	lock        *language.Lock

	stats  Stats
	logger zerolog.Logger
}

func NewDispatcher(tr *transcript.Transcript, tl *transcript.Translation, lock *language.Lock, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		transcript:  tr,
		translation: tl,
		lock:        lock,
		logger:      logger,
	}
}

// HandleText parses and applies one text frame. It reports whether the frame
// was applied.
func (d *Dispatcher) HandleText(data []byte) bool {
	ev, err := Parse(data)
	if err != nil {
		reason := observability.IgnoredMalformed
		if errors.Is(err, ErrUnknownType) {
			reason = observability.IgnoredUnknownType
			d.stats.UnknownType++
		} else {
			d.stats.Malformed++
		}
		observability.RecordIgnored(reason)
		d.logger.Debug().Err(err).Str("reason", reason).Int("bytes", len(data)).Msg("inbound message ignored")
		return false
	}
	d.Apply(ev)
	return true
}

// HandleBinary records a binary inbound frame, which the protocol never sends.
func (d *Dispatcher) HandleBinary(size int) {
	d.stats.Binary++
	observability.RecordIgnored(observability.IgnoredBinary)
	d.logger.Debug().Int("bytes", size).Str("reason", observability.IgnoredBinary).Msg("inbound message ignored")
}

// Apply mutates the stores for one event.
func (d *Dispatcher) Apply(ev Event) {
	switch e := ev.(type) {
	case LangDetected:
		d.lock.Detected(e.Lang)
	case LangLocked:
		d.lock.Locked(e.Lang)
	case Partial:
		d.transcript.SetPartial(e.Text)
	case Final:
		d.transcript.Commit(transcript.Line{Text: e.Text, Lang: e.Lang, Replayed: e.Replayed})
	case InvalidateASR:
		d.transcript.StrikeLast()
	case InvalidateAllASR:
		d.transcript.StrikeAll()
	case MidTranslate:
		d.translation.SetPartial(e.Text)
	case FinalTranslate:
		d.translation.Commit(transcript.TranslationLine{Text: e.Text, Provisional: e.Provisional, Lang: e.Lang}, e.ReplaceLast)
	case InvalidateTranslation:
		d.translation.StrikeLast()
	case InvalidateAllTranslation:
		d.translation.StrikeAll()
	default:
		return
	}

	d.stats.Applied++
	observability.RecordInbound(string(ev.Kind()))
	d.logger.Debug().Str("kind", string(ev.Kind())).Msg("inbound event applied")
}

func (d *Dispatcher) Stats() Stats {
	return d.stats
}

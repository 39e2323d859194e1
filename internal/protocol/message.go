// Package protocol decodes the recognizer's inbound JSON frames into a closed
// set of events and applies them to a session's stores.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

type Kind string

const (
	KindLang                     Kind = "lang"
	KindLangLocked               Kind = "lang_locked"
	KindPartial                  Kind = "partial"
	KindFinal                    Kind = "final"
	KindInvalidateASR            Kind = "invalidate_asr"
	KindInvalidateAllASR         Kind = "invalidate_all_asr"
	KindMidTranslate             Kind = "mid_translate"
	KindFinalTranslate           Kind = "final_translate"
	KindInvalidateTranslation    Kind = "invalidate_translation"
	KindInvalidateAllTranslation Kind = "invalidate_all_translation"
)

// Kinds lists every inbound kind in wire order.
var Kinds = []Kind{
	KindLang, KindLangLocked, KindPartial, KindFinal, KindInvalidateASR, KindInvalidateAllASR,
	KindMidTranslate, KindFinalTranslate, KindInvalidateTranslation, KindInvalidateAllTranslation,
}

// Event is one decoded inbound message. The set of implementations is closed.
type Event interface {
	Kind() Kind
	event()
}

// LangDetected carries the server's provisional source language.
type LangDetected struct{ Lang string }

// LangLocked carries the language the server committed to.
type LangLocked struct{ Lang string }

type Partial struct{ Text string }

type Final struct {
	Text string
	Lang string // multilang mode only
	// Corrected and Replayed mark finals re-sent after a language correction.
	Corrected bool
	Replayed  bool
}

type InvalidateASR struct{}

type InvalidateAllASR struct{}

// MidTranslate carries the in-flight translation; empty text clears it.
type MidTranslate struct{ Text string }

type FinalTranslate struct {
	Text        string
	Provisional bool
	ReplaceLast bool
	Lang        string
	Replayed    bool
}

type InvalidateTranslation struct{}

type InvalidateAllTranslation struct{}

func (LangDetected) Kind() Kind             { return KindLang }
func (LangLocked) Kind() Kind               { return KindLangLocked }
func (Partial) Kind() Kind                  { return KindPartial }
func (Final) Kind() Kind                    { return KindFinal }
func (InvalidateASR) Kind() Kind            { return KindInvalidateASR }
func (InvalidateAllASR) Kind() Kind         { return KindInvalidateAllASR }
func (MidTranslate) Kind() Kind             { return KindMidTranslate }
func (FinalTranslate) Kind() Kind           { return KindFinalTranslate }
func (InvalidateTranslation) Kind() Kind    { return KindInvalidateTranslation }
func (InvalidateAllTranslation) Kind() Kind { return KindInvalidateAllTranslation }

func (LangDetected) event()             {}
func (LangLocked) event()               {}
func (Partial) event()                  {}
func (Final) event()                    {}
func (InvalidateASR) event()            {}
func (InvalidateAllASR) event()         {}
func (MidTranslate) event()             {}
func (FinalTranslate) event()           {}
func (InvalidateTranslation) event()    {}
func (InvalidateAllTranslation) event() {}

// wireMessage is the union of every field any kind carries.
type wireMessage struct {
	Type        *string `json:"type"`
	Lang        string  `json:"lang,omitempty"`
	Text        *string `json:"text,omitempty"`
	Translated  *string `json:"translated,omitempty"`
	ReplaceLast bool    `json:"replace_last,omitempty"`
	Provisional bool    `json:"provisional,omitempty"`
	Corrected   bool    `json:"corrected,omitempty"`
	Replayed    bool    `json:"replayed,omitempty"`
}

// Parse decodes one text frame. It returns an error wrapping ErrMalformed
// for anything that is not a JSON object with the fields its kind needs, and
// ErrUnknownType for a well-formed object of a kind outside the closed set.
func Parse(data []byte) (Event, error) {
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.Type == nil {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch kind := Kind(*msg.Type); kind {
	case KindLang, KindLangLocked:
		if msg.Lang == "" {
			return nil, fmt.Errorf("%w: %s without lang", ErrMalformed, kind)
		}
		if kind == KindLang {
			return LangDetected{Lang: msg.Lang}, nil
		}
		return LangLocked{Lang: msg.Lang}, nil

	case KindPartial:
		if msg.Text == nil {
			return nil, fmt.Errorf("%w: partial without text", ErrMalformed)
		}
		return Partial{Text: *msg.Text}, nil

	case KindFinal:
		if msg.Text == nil {
			return nil, fmt.Errorf("%w: final without text", ErrMalformed)
		}
		return Final{Text: *msg.Text, Lang: msg.Lang, Corrected: msg.Corrected, Replayed: msg.Replayed}, nil

	case KindMidTranslate:
		text, ok := msg.translation()
		if !ok {
			return nil, fmt.Errorf("%w: mid_translate without translated", ErrMalformed)
		}
		return MidTranslate{Text: text}, nil

	case KindFinalTranslate:
		text, ok := msg.translation()
		if !ok {
			return nil, fmt.Errorf("%w: final_translate without translated", ErrMalformed)
		}
		return FinalTranslate{
			Text:        text,
			Provisional: msg.Provisional,
			ReplaceLast: msg.ReplaceLast,
			Lang:        msg.Lang,
			Replayed:    msg.Replayed,
		}, nil

	case KindInvalidateASR:
		return InvalidateASR{}, nil
	case KindInvalidateAllASR:
		return InvalidateAllASR{}, nil
	case KindInvalidateTranslation:
		return InvalidateTranslation{}, nil
	case KindInvalidateAllTranslation:
		return InvalidateAllTranslation{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
}

// translation prefers "translated" and accepts "text" from older servers.
func (m wireMessage) translation() (string, bool) {
	if m.Translated != nil {
		return *m.Translated, true
	}
	if m.Text != nil {
		return *m.Text, true
	}
	return "", false
}

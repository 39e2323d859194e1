package session

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/leonardotrapani/hyprlingo/internal/language"
)

// Mode selects how the recognizer picks the source language.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeFixed     Mode = "fixed"
	ModeMultilang Mode = "multilang"
)

var Modes = []Mode{ModeAuto, ModeFixed, ModeMultilang}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeFixed, ModeMultilang:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want auto, fixed or multilang)", s)
	}
}

// Params are the per-start choices.
type Params struct {
	Mode     Mode
	Language string // fixed mode only
}

// Resolve maps a base URL and mode to the websocket endpoint:
//
//	auto      -> base
//	fixed     -> base + "/fixed?lang=xx"
//	multilang -> base + "/multilang"
//
// http and https bases become ws and wss. Any query already on the base is
// kept.
func Resolve(base string, p Params) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("server url %q: scheme must be ws, wss, http or https", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q has no host", base)
	}

	path := strings.TrimSuffix(u.Path, "/")
	switch p.Mode {
	case ModeAuto, "":
	case ModeFixed:
		code := language.Normalize(p.Language)
		if code == "" {
			return "", ErrLanguageRequired
		}
		path += "/fixed"
		q := u.Query()
		q.Set("lang", code)
		u.RawQuery = q.Encode()
	case ModeMultilang:
		path += "/multilang"
	default:
		return "", fmt.Errorf("unknown mode %q", p.Mode)
	}
	u.Path = path
	u.RawPath = ""
	return u.String(), nil
}

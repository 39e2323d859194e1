package config

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/session"
	"github.com/rs/zerolog"
)

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("invalid server.url: empty")
	}
	if _, err := c.ServerHeader(); err != nil {
		return fmt.Errorf("invalid server.header: %w", err)
	}

	params, err := c.SessionParams()
	if err != nil {
		return err
	}
	if params.Mode == session.ModeFixed && !language.IsSupported(params.Language) {
		return fmt.Errorf("invalid session.language: %q (supported: %s)",
			c.Session.Language, strings.Join(language.Codes(), ", "))
	}
	if _, err := session.Resolve(c.Server.URL, params); err != nil {
		return fmt.Errorf("invalid server.url: %w", err)
	}

	if err := c.ToRecordingConfig().Validate(); err != nil {
		return fmt.Errorf("invalid recording: %w", err)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}

	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Addr) == "" {
		return fmt.Errorf("invalid metrics.addr: empty while metrics are enabled")
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

// SessionParams converts [session] into start parameters. Fixed mode
// without a language is rejected here rather than at the first start.
func (c *Config) SessionParams() (session.Params, error) {
	mode, err := session.ParseMode(c.Session.Mode)
	if err != nil {
		return session.Params{}, fmt.Errorf("invalid session.mode: %w", err)
	}
	params := session.Params{Mode: mode}
	if mode == session.ModeFixed {
		params.Language = language.Normalize(c.Session.Language)
		if params.Language == "" {
			return session.Params{}, fmt.Errorf("invalid session.language: %w", session.ErrLanguageRequired)
		}
	}
	return params, nil
}

package config

import (
	"net/http"

	"github.com/leonardotrapani/hyprlingo/internal/recognizer"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
)

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Session       SessionConfig       `toml:"session"`
	Recording     RecordingConfig     `toml:"recording"`
	Logging       LoggingConfig       `toml:"logging"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type ServerConfig struct {
	URL    string `toml:"url"`
	Header string `toml:"header"` // optional "Name: value" sent on the handshake
}

type SessionConfig struct {
	Mode     string `toml:"mode"`     // "auto", "fixed", "multilang"
	Language string `toml:"language"` // fixed mode only
}

type RecordingConfig struct {
	Backend    string  `toml:"backend"` // "pipewire", "portaudio", "wav"
	Device     string  `toml:"device"`
	File       string  `toml:"file"` // wav backend only
	SampleRate int     `toml:"sample_rate"`
	BufferSize int     `toml:"buffer_size"`
	LevelGain  float64 `toml:"level_gain"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		Backend:    c.Recording.Backend,
		Device:     c.Recording.Device,
		File:       c.Recording.File,
		SampleRate: c.Recording.SampleRate,
		BufferSize: c.Recording.BufferSize,
		LevelGain:  c.Recording.LevelGain,
	}
}

// ServerHeader parses the optional handshake header.
func (c *Config) ServerHeader() (http.Header, error) {
	return recognizer.ParseHeader(c.Server.Header)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

package config

import "github.com/leonardotrapani/hyprlingo/internal/recording"

const (
	DefaultServerURL   = "ws://localhost:8765"
	DefaultMetricsAddr = "127.0.0.1:9464"
)

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL: DefaultServerURL,
		},
		Session: SessionConfig{
			Mode: "auto",
		},
		Recording: RecordingConfig{
			Backend:    recording.BackendPipeWire,
			SampleRate: recording.SampleRate,
			BufferSize: recording.FrameSamples,
			LevelGain:  recording.DefaultLevelGain,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
	}
}

// Modes lists the accepted session.mode values.
var Modes = []string{"auto", "fixed", "multilang"}

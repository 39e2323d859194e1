package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
)

var ErrConfigNotFound = errors.New("config not found")

// EnvPrefix namespaces environment overrides, e.g. HYPRLINGO_SERVER_URL.
const EnvPrefix = "HYPRLINGO"

func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	dir := filepath.Join(configDir, "hyprlingo")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the user's config file. See LoadFile.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile layers, lowest first: defaults, the TOML file at path (optional),
// a .env file in the working directory, then HYPRLINGO_* variables.
func LoadFile(path string) (*Config, error) {
	logger := observability.Component("config")
	config := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		logger.Debug().Str("path", path).Msg("loading configuration")
		meta, err := toml.DecodeFile(path, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		for _, key := range meta.Undecoded() {
			logger.Warn().Str("key", key.String()).Msg("unknown config key ignored")
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	} else {
		logger.Debug().Str("path", path).Msg("no config file, using defaults")
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// envOverrides mirrors the settings worth overriding per shell. Nil fields
// were not set.
type envOverrides struct {
	ServerURL      *string  `envconfig:"SERVER_URL"`
	ServerHeader   *string  `envconfig:"SERVER_HEADER"`
	Mode           *string  `envconfig:"MODE"`
	Language       *string  `envconfig:"LANGUAGE"`
	Backend        *string  `envconfig:"BACKEND"`
	Device         *string  `envconfig:"DEVICE"`
	InputFile      *string  `envconfig:"INPUT_FILE"`
	LevelGain      *float64 `envconfig:"LEVEL_GAIN"`
	LogLevel       *string  `envconfig:"LOG_LEVEL"`
	LogPretty      *bool    `envconfig:"LOG_PRETTY"`
	MetricsEnabled *bool    `envconfig:"METRICS_ENABLED"`
	MetricsAddr    *string  `envconfig:"METRICS_ADDR"`
	Notifications  *string  `envconfig:"NOTIFICATIONS"`
}

func applyEnv(config *Config) error {
	// a missing .env is normal
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read %s_* environment: %w", EnvPrefix, err)
	}

	override(&config.Server.URL, env.ServerURL)
	override(&config.Server.Header, env.ServerHeader)
	override(&config.Session.Mode, env.Mode)
	override(&config.Session.Language, env.Language)
	override(&config.Recording.Backend, env.Backend)
	override(&config.Recording.Device, env.Device)
	override(&config.Recording.File, env.InputFile)
	override(&config.Recording.LevelGain, env.LevelGain)
	override(&config.Logging.Level, env.LogLevel)
	override(&config.Logging.Pretty, env.LogPretty)
	override(&config.Metrics.Enabled, env.MetricsEnabled)
	override(&config.Metrics.Addr, env.MetricsAddr)
	if env.Notifications != nil {
		kind := strings.ToLower(*env.Notifications)
		config.Notifications.Type = kind
		config.Notifications.Enabled = kind != "none"
	}
	return nil
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Save writes config to path, replacing any existing file.
func Save(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if _, err := file.WriteString(fileHeader); err != nil {
		file.Close()
		return fmt.Errorf("failed to write config content: %w", err)
	}
	if err := toml.NewEncoder(file).Encode(config); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// rename so the watcher never sees a half-written file
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// SaveDefaultConfig writes the defaults unless a config file already exists.
func SaveDefaultConfig() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}
	return configPath, Save(DefaultConfig(), configPath)
}

const fileHeader = `# Hyprlingo configuration
# Changes apply to the next session; a running session keeps its settings.
#
# [server]        url of the recognizer websocket, optional "Name: value" header
# [session]       mode = "auto" | "fixed" | "multilang"; language is required for fixed
# [recording]     backend = "pipewire" | "portaudio" | "wav"; sample_rate must stay 16000
# [notifications] type = "desktop" | "log" | "none"
#
# Every HYPRLINGO_* environment variable (SERVER_URL, MODE, LANGUAGE, LOG_LEVEL, ...)
# overrides this file.

`

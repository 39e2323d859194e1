package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/rs/zerolog"
)

// Manager holds the current configuration and reloads it when the file
// changes. Subscribers are told about every valid reload; an invalid file
// keeps the previous configuration.
type Manager struct {
	mu       sync.RWMutex
	path     string
	config   *Config
	onChange []func(*Config)
	watcher  *fsnotify.Watcher
	wg       sync.WaitGroup
	logger   zerolog.Logger
}

// NewManager loads path, or the user's config file when path is empty.
func NewManager(path string) (*Manager, error) {
	logger := observability.Component("config")
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	config, err := LoadFile(path)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load initial configuration")
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Manager{path: path, config: config, logger: logger}, nil
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Clone()
}

// OnChange registers f to run after each successful reload, on the watcher
// goroutine.
func (m *Manager) OnChange(f func(*Config)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, f)
	m.mu.Unlock()
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// watch the directory: editors replace the file rather than write it
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	m.logger.Info().Str("path", m.path).Msg("watching config for changes")
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	name := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				m.logger.Debug().Str("op", event.Op.String()).Msg("config file changed")
				m.Reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("config watcher error")

		case <-ctx.Done():
			return
		}
	}
}

// Reload re-reads the file. It reports whether the new configuration was
// accepted.
func (m *Manager) Reload() bool {
	newConfig, err := LoadFile(m.path)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to reload config")
		return false
	}
	if err := newConfig.Validate(); err != nil {
		m.logger.Warn().Err(err).Msg("invalid config after reload, keeping previous")
		return false
	}

	m.mu.Lock()
	m.config = newConfig
	subscribers := append([]func(*Config){}, m.onChange...)
	m.mu.Unlock()

	m.logger.Info().Msg("configuration reloaded")
	for _, f := range subscribers {
		f(newConfig.Clone())
	}
	return true
}

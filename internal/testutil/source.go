package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/leonardotrapani/hyprlingo/internal/recording"
)

// MockSource implements recording.Source. Tests drive capture with Emit.
type MockSource struct {
	StartError      error
	StopError       error
	DisconnectError error
	CloseError      error
	// OnStart runs inside Start after the capture is live.
	OnStart func(ctx context.Context)

	mu         sync.Mutex
	deliver    func(recording.Buffer)
	calls      []string
	processing atomic.Bool
}

func NewMockSource() *MockSource {
	return &MockSource{}
}

func (m *MockSource) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *MockSource) Start(ctx context.Context, deliver func(recording.Buffer)) error {
	m.record("start")
	if m.StartError != nil {
		return m.StartError
	}
	m.mu.Lock()
	m.deliver = deliver
	m.mu.Unlock()
	m.processing.Store(true)
	if m.OnStart != nil {
		m.OnStart(ctx)
	}
	return nil
}

// Emit delivers one buffer on the caller's goroutine, as a capture callback
// would. It reports false if capture is not running.
func (m *MockSource) Emit(samples []float32) bool {
	if !m.processing.Load() {
		return false
	}
	m.mu.Lock()
	deliver := m.deliver
	m.mu.Unlock()
	if deliver == nil {
		return false
	}
	deliver(recording.Buffer{Samples: samples, Level: recording.Level(samples, recording.DefaultLevelGain)})
	return true
}

func (m *MockSource) StopProcessing() error {
	m.record("stop_processing")
	m.processing.Store(false)
	return m.StopError
}

func (m *MockSource) DisconnectInput() error {
	m.record("disconnect_input")
	return m.DisconnectError
}

func (m *MockSource) Close() error {
	m.record("close")
	return m.CloseError
}

// Calls returns the lifecycle calls in order.
func (m *MockSource) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSourceFactory returns a factory that always hands out mock.
func MockSourceFactory(mock *MockSource) func(cfg recording.Config) (recording.Source, error) {
	return func(cfg recording.Config) (recording.Source, error) {
		return mock, nil
	}
}

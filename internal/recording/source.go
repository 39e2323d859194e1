package recording

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	SampleRate       = 16000
	FrameSamples     = 4096
	DefaultLevelGain = 5.0
)

const (
	BackendPipeWire  = "pipewire"
	BackendPortAudio = "portaudio"
	BackendWAV       = "wav"
)

// ErrDeviceUnavailable marks capture failures caused by a missing, busy or
// forbidden input device.
var ErrDeviceUnavailable = errors.New("audio input unavailable")

// Buffer is one capture callback's worth of mono samples at SampleRate.
type Buffer struct {
	Samples   []float32
	Level     float64
	Timestamp time.Time
}

// Source is a microphone-like capture graph. Start acquires the device and
// begins calling deliver from a capture goroutine, once per Buffer. The three
// teardown steps run in order and each must be safe to call even if an
// earlier one failed.
type Source interface {
	Start(ctx context.Context, deliver func(Buffer)) error
	// StopProcessing stops buffers reaching deliver.
	StopProcessing() error
	// DisconnectInput releases the input device.
	DisconnectInput() error
	// Close frees what remains of the capture graph.
	Close() error
}

type Config struct {
	Backend    string
	Device     string
	File       string
	SampleRate int
	BufferSize int // samples per delivered Buffer
	LevelGain  float64

	// Interval overrides the delivery cadence of file replay. Zero means real time.
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Backend:    BackendPipeWire,
		SampleRate: SampleRate,
		BufferSize: FrameSamples,
		LevelGain:  DefaultLevelGain,
	}
}

func (c Config) Validate() error {
	if c.SampleRate != SampleRate {
		return fmt.Errorf("invalid SampleRate: %d (must be %d)", c.SampleRate, SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", c.BufferSize)
	}
	if c.LevelGain <= 0 {
		return fmt.Errorf("invalid LevelGain: %v", c.LevelGain)
	}
	switch c.Backend {
	case BackendPipeWire, BackendPortAudio:
	case BackendWAV:
		if c.File == "" {
			return fmt.Errorf("wav backend requires a file")
		}
	default:
		return fmt.Errorf("unknown capture backend: %q", c.Backend)
	}
	return nil
}

// New builds the Source selected by cfg.Backend.
func New(cfg Config) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendPortAudio:
		return NewPortAudioSource(cfg), nil
	case BackendWAV:
		return NewWAVSource(cfg), nil
	default:
		return NewPipeWireSource(cfg), nil
	}
}

// CaptureInterval is the wall-clock time covered by one Buffer.
func (c Config) CaptureInterval() time.Duration {
	return time.Duration(c.BufferSize) * time.Second / time.Duration(c.SampleRate)
}

func newBuffer(samples []float32, gain float64) Buffer {
	return Buffer{
		Samples:   samples,
		Level:     Level(samples, gain),
		Timestamp: time.Now(),
	}
}

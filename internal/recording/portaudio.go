package recording

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog/log"
)

// PortAudioSource captures from a PortAudio input device using the callback
// API, which hands over float32 samples directly.
type PortAudioSource struct {
	config     Config
	delivering atomic.Bool

	mu          sync.Mutex
	stream      *portaudio.Stream
	initialized bool
}

func NewPortAudioSource(config Config) *PortAudioSource {
	return &PortAudioSource{config: config}
}

func (s *PortAudioSource) Start(ctx context.Context, deliver func(Buffer)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return fmt.Errorf("already capturing")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initialize portaudio: %v", ErrDeviceUnavailable, err)
	}
	s.initialized = true

	device, err := s.inputDevice()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	params := portaudio.LowLatencyParameters(device, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(s.config.SampleRate)
	params.FramesPerBuffer = s.config.BufferSize

	gain := s.config.LevelGain
	stream, err := portaudio.OpenStream(params, func(in []float32) {
		if !s.delivering.Load() {
			return
		}
		// portaudio reuses in between callbacks
		samples := make([]float32, len(in))
		copy(samples, in)
		deliver(newBuffer(samples, gain))
	})
	if err != nil {
		return fmt.Errorf("%w: open stream on %q: %v", ErrDeviceUnavailable, device.Name, err)
	}

	s.delivering.Store(true)
	if err := stream.Start(); err != nil {
		s.delivering.Store(false)
		_ = stream.Close()
		return fmt.Errorf("%w: start stream: %v", ErrDeviceUnavailable, err)
	}
	s.stream = stream

	log.Info().Str("component", "portaudio").Str("device", device.Name).Msg("capture started")
	return nil
}

func (s *PortAudioSource) inputDevice() (*portaudio.DeviceInfo, error) {
	if s.config.Device == "" {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.EqualFold(d.Name, s.config.Device) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device %q not found", s.config.Device)
}

func (s *PortAudioSource) StopProcessing() error {
	s.delivering.Store(false)

	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	if stream == nil {
		return nil
	}
	return stream.Stop()
}

func (s *PortAudioSource) DisconnectInput() error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()
	if stream == nil {
		return nil
	}
	return stream.Close()
}

func (s *PortAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}
	s.initialized = false
	return portaudio.Terminate()
}

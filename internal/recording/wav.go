package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog/log"
)

// WAVSource replays a WAV file as if it were a microphone: mono, SampleRate,
// one Buffer per capture interval. After the last buffer it stays open and
// silent until torn down; Done reports exhaustion.
type WAVSource struct {
	config     Config
	delivering atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

func NewWAVSource(config Config) *WAVSource {
	return &WAVSource{config: config, done: make(chan struct{})}
}

// Done is closed once every sample of the file has been delivered.
func (w *WAVSource) Done() <-chan struct{} {
	return w.done
}

func (w *WAVSource) Start(ctx context.Context, deliver func(Buffer)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return fmt.Errorf("already capturing")
	}

	samples, err := LoadWAV(w.config.File, w.config.SampleRate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	interval := w.config.Interval
	if interval <= 0 {
		interval = w.config.CaptureInterval()
	}

	replayCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	w.delivering.Store(true)

	w.wg.Add(1)
	go w.replay(replayCtx, samples, interval, deliver)

	log.Info().Str("component", "wav").Str("file", w.config.File).
		Int("samples", len(samples)).Dur("interval", interval).Msg("replay started")
	return nil
}

func (w *WAVSource) replay(ctx context.Context, samples []float32, interval time.Duration, deliver func(Buffer)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for pos := 0; pos < len(samples); {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		end := min(pos+w.config.BufferSize, len(samples))
		chunk := make([]float32, end-pos)
		copy(chunk, samples[pos:end])
		pos = end
		if w.delivering.Load() {
			deliver(newBuffer(chunk, w.config.LevelGain))
		}
	}
	close(w.done)
}

func (w *WAVSource) StopProcessing() error {
	w.delivering.Store(false)
	return nil
}

func (w *WAVSource) DisconnectInput() error {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (w *WAVSource) Close() error {
	w.wg.Wait()
	return nil
}

// LoadWAV decodes a PCM WAV file into mono float samples at sampleRate.
func LoadWAV(path string, sampleRate int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty wav buffer")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int(1) << (bitDepth - 1))

	channels := int(dec.NumChans)
	if channels <= 0 {
		channels = 1
	}
	mono := make([]float32, len(buf.Data)/channels)
	for i := range mono {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		mono[i] = sum / float32(channels)
	}

	return ResampleLinear(mono, int(dec.SampleRate), sampleRate), nil
}

// ResampleLinear resamples with linear interpolation. Equal rates return a copy.
func ResampleLinear(samples []float32, inRate, outRate int) []float32 {
	if inRate <= 0 || outRate <= 0 || inRate == outRate || len(samples) == 0 {
		return append([]float32(nil), samples...)
	}
	ratio := float64(outRate) / float64(inRate)
	outLen := max(int(float64(len(samples))*ratio), 1)
	out := make([]float32, outLen)
	for i := range out {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		if i0 >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(srcPos - float64(i0))
		out[i] = samples[i0] + (samples[i0+1]-samples[i0])*frac
	}
	return out
}

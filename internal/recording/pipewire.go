package recording

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// PipeWireSource captures from pw-record, asking PipeWire itself for mono
// float32 at SampleRate so no resampling happens in-process.
type PipeWireSource struct {
	config     Config
	delivering atomic.Bool

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	wg sync.WaitGroup

	// swapped in tests
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
	check   func(ctx context.Context) error
}

func NewPipeWireSource(config Config) *PipeWireSource {
	return &PipeWireSource{
		config:  config,
		command: exec.CommandContext,
		check:   CheckPipeWireAvailable,
	}
}

func (p *PipeWireSource) Start(ctx context.Context, deliver func(Buffer)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("already capturing")
	}
	if err := p.config.Validate(); err != nil {
		return err
	}
	if err := p.check(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	// the capture process outlives the caller's start context, only teardown ends it
	captureCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := p.command(captureCtx, "pw-record", p.buildPwRecordArgs()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%w: start pw-record: %v", ErrDeviceUnavailable, err)
	}

	p.cmd = cmd
	p.cancel = cancel
	p.delivering.Store(true)

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Debug().Str("component", "pipewire").Msg(scanner.Text())
		}
	}()

	p.wg.Add(1)
	go p.captureLoop(stdout, deliver)
	return nil
}

func (p *PipeWireSource) captureLoop(stdout io.Reader, deliver func(Buffer)) {
	defer p.wg.Done()

	raw := make([]byte, 4*p.config.BufferSize)
	var delivered int
	for {
		n, err := io.ReadFull(stdout, raw)
		if n >= 4 && p.delivering.Load() {
			deliver(newBuffer(decodeFloat32LE(raw[:n-n%4]), p.config.LevelGain))
			delivered++
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.ErrClosedPipe) {
				log.Warn().Str("component", "pipewire").Err(err).Msg("capture read failed")
			}
			log.Debug().Str("component", "pipewire").Int("buffers", delivered).Msg("capture loop finished")
			return
		}
	}
}

func (p *PipeWireSource) StopProcessing() error {
	p.delivering.Store(false)
	return nil
}

func (p *PipeWireSource) DisconnectInput() error {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	return nil
}

func (p *PipeWireSource) Close() error {
	p.mu.Lock()
	cmd := p.cmd
	cancel := p.cancel
	p.cmd = nil
	p.cancel = nil
	p.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}

	p.wg.Wait()
	err := cmd.Wait()

	// a killed pw-record is the normal way out
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("wait pw-record: %w", err)
	}
	return nil
}

func (p *PipeWireSource) buildPwRecordArgs() []string {
	args := []string{
		"--format", "f32",
		"--rate", strconv.Itoa(p.config.SampleRate),
		"--channels", "1",
	}
	if p.config.Device != "" {
		args = append(args, "--target", p.config.Device)
	}
	return append(args, "-") // stdout
}

func decodeFloat32LE(raw []byte) []float32 {
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out
}

func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	// short timeout to avoid hangs on misconfigured systems
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(checkCtx, "pw-cli", "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}

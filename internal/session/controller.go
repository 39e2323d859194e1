// Package session owns the recognizer connection lifecycle: endpoint
// selection, capture wiring under the drop-on-backpressure policy, the
// per-session event loop and teardown ordering.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/leonardotrapani/hyprlingo/internal/recognizer"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
)

type Options struct {
	ServerURL string
	Header    http.Header
	Recording recording.Config

	// NewSource builds the capture source for each session. Defaults to
	// recording.New.
	NewSource func(recording.Config) (recording.Source, error)
	// Scheduler drives the language mismatch window. Defaults to real timers.
	Scheduler language.Scheduler

	// OnSnapshot receives every published snapshot, on the session's loop
	// goroutine or on the goroutine calling Start/Stop. It must not block
	// and must not call Start or Stop itself.
	OnSnapshot func(Snapshot)
	// OnLevel receives the loudness of each captured buffer on the capture
	// goroutine.
	OnLevel func(float64)
	// OnEnd runs once a session is over and the controller is Idle again.
	OnEnd func(Snapshot)
}

// Controller runs at most one session at a time.
type Controller struct {
	mu       sync.Mutex
	opts     Options
	status   Status
	current  *session
	cancel   context.CancelFunc // aborts a pending Start
	starting chan struct{}      // closed when a pending Start returns

	last atomic.Pointer[Snapshot]
}

func NewController(opts Options) *Controller {
	c := &Controller{status: Idle}
	c.opts = withDefaults(opts)
	c.last.Store(&Snapshot{Status: Idle})
	return c
}

func withDefaults(opts Options) Options {
	if opts.NewSource == nil {
		opts.NewSource = recording.New
	}
	if opts.Scheduler == nil {
		opts.Scheduler = language.SystemScheduler
	}
	if opts.Recording.SampleRate == 0 {
		opts.Recording = recording.DefaultConfig()
	}
	return opts
}

// Reconfigure replaces the options used by the next Start. A running session
// keeps the settings it started with.
func (c *Controller) Reconfigure(opts Options) {
	c.mu.Lock()
	c.opts = withDefaults(opts)
	c.mu.Unlock()
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Snapshot returns the most recently published state.
func (c *Controller) Snapshot() Snapshot {
	return *c.last.Load()
}

// Start opens a session. It returns ErrNotIdle without side effects when a
// session already exists, and a *StartError when the endpoint cannot be
// resolved, the connection cannot be opened or capture cannot start; the
// controller is Idle again in every failure case.
func (c *Controller) Start(ctx context.Context, params Params) (string, error) {
	c.mu.Lock()
	if c.status != Idle {
		c.mu.Unlock()
		return "", ErrNotIdle
	}
	opts := c.opts
	endpoint, err := Resolve(opts.ServerURL, params)
	if err != nil {
		c.mu.Unlock()
		err = newStartError(StageResolve, err)
		c.publish(Snapshot{Status: Idle, Mode: params.Mode, Language: params.Language, Err: err})
		return "", err
	}

	id := uuid.NewString()
	startCtx, cancel := context.WithCancel(ctx)
	starting := make(chan struct{})
	c.status = Connecting
	c.cancel = cancel
	c.starting = starting
	c.mu.Unlock()

	defer func() {
		cancel()
		close(starting)
	}()

	logger := observability.Session("session", id)
	logger.Info().Str("mode", string(params.Mode)).Str("endpoint", endpoint).Msg("connecting")
	c.publish(Snapshot{Status: Connecting, SessionID: id, Mode: params.Mode, Language: params.Language, Endpoint: endpoint})

	metrics := observability.NewSessionMetrics(id)
	fail := func(stage string, err error) (string, error) {
		metrics.RecordFailed(stage)
		err = newStartError(stage, err)
		logger.Error().Err(err).Msg("session failed to start")
		c.setIdle()
		c.publish(Snapshot{Status: Idle, SessionID: id, Mode: params.Mode, Language: params.Language, Endpoint: endpoint, Err: err})
		return "", err
	}

	client, err := recognizer.Dial(startCtx, endpoint, opts.Header, observability.Session("recognizer", id))
	if err != nil {
		return fail(StageConnect, err)
	}
	if err := startCtx.Err(); err != nil {
		_ = client.Close()
		return fail(StageConnect, err)
	}

	source, err := opts.NewSource(opts.Recording)
	if err != nil {
		_ = client.Close()
		return fail(StageCapture, err)
	}

	s := newSession(id, params, endpoint, client, source, opts.Scheduler, logger, c.publish, opts.OnLevel)
	s.metrics = metrics
	s.startedAt = time.Now()

	if err := source.Start(startCtx, s.deliver); err != nil {
		releaseCapture(source, logger)
		_ = client.Close()
		return fail(StageCapture, err)
	}

	// Stop cancels under c.mu, so this check cannot miss it.
	c.mu.Lock()
	if err := startCtx.Err(); err != nil {
		c.mu.Unlock()
		releaseCapture(source, logger)
		_ = client.Close()
		return fail(StageCapture, err)
	}
	c.status = Active
	c.current = s
	c.cancel = nil
	c.mu.Unlock()

	metrics.RecordActive()
	s.run()
	go c.watch(s, opts.OnEnd)

	logger.Info().Msg("session active")
	return id, nil
}

// watch returns the controller to Idle when the session ends for any reason.
func (c *Controller) watch(s *session, onEnd func(Snapshot)) {
	<-s.done

	c.mu.Lock()
	if c.current == s {
		c.current = nil
		c.status = Idle
	}
	c.mu.Unlock()

	final := s.final.withStatus(Idle)
	c.publish(final)
	if onEnd != nil {
		onEnd(final)
	}
	close(s.released)
}

// Stop ends the current session, or abandons a pending Start. It is safe to
// call in any state and returns once the controller is Idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	switch c.status {
	case Idle:
		c.mu.Unlock()
		return

	case Connecting:
		starting := c.starting
		if c.cancel != nil {
			c.cancel()
		}
		c.mu.Unlock()
		<-starting
		return

	case Active:
		s := c.current
		c.status = Closing
		c.mu.Unlock()
		c.publish(c.Snapshot().withStatus(Closing))
		s.logger.Info().Msg("stopping")
		s.stop()
		<-s.released
		return

	default: // Closing: another Stop is already waiting
		s := c.current
		c.mu.Unlock()
		if s != nil {
			<-s.released
		}
	}
}

// Toggle starts a session when Idle and stops it otherwise. It reports
// whether a session was started.
func (c *Controller) Toggle(ctx context.Context, params Params) (bool, error) {
	if c.Status() == Idle {
		if _, err := c.Start(ctx, params); err != nil {
			return false, err
		}
		return true, nil
	}
	c.Stop()
	return false, nil
}

func (c *Controller) setIdle() {
	c.mu.Lock()
	c.status = Idle
	c.current = nil
	c.cancel = nil
	c.mu.Unlock()
}

// publish stamps snap with the controller's status and hands it on.
func (c *Controller) publish(snap Snapshot) {
	c.mu.Lock()
	if snap.Status != Idle {
		snap.Status = c.status
	}
	onSnapshot := c.opts.OnSnapshot
	c.mu.Unlock()

	c.last.Store(&snap)
	if onSnapshot != nil {
		onSnapshot(snap)
	}
}

func (s Status) String() string {
	return string(s)
}

// Describe is a one-line summary for status output.
func (s Snapshot) Describe() string {
	if s.SessionID == "" {
		return string(s.Status)
	}
	lang := language.Label(s.Lock.Display)
	if lang == "" {
		lang = "detecting"
	}
	return fmt.Sprintf("%s %s mode=%s lang=%s lines=%d translations=%d sent=%d dropped=%d ignored=%d",
		s.Status, s.SessionID, s.Mode, lang, len(s.Lines), len(s.Translations),
		s.FramesSent, s.FramesDropped, s.Inbound.Ignored())
}

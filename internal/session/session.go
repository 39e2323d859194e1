package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/observability"
	"github.com/leonardotrapani/hyprlingo/internal/protocol"
	"github.com/leonardotrapani/hyprlingo/internal/recognizer"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
	"github.com/leonardotrapani/hyprlingo/internal/transcript"
	"github.com/rs/zerolog"
)

// endTimeout bounds the END handshake during teardown.
const endTimeout = 2 * time.Second

// session is one capture/connection pair and one generation of stores. The
// stores, the lock and the dispatcher are touched only by loop.
type session struct {
	id        string
	params    Params
	endpoint  string
	startedAt time.Time

	client  *recognizer.Client
	source  recording.Source
	logger  zerolog.Logger
	metrics *observability.SessionMetrics

	transcript  *transcript.Transcript
	translation *transcript.Translation
	lock        *language.Lock
	dispatcher  *protocol.Dispatcher

	// written by the capture goroutine
	level   atomic.Uint64 // math.Float64bits
	sent    atomic.Uint64
	dropped atomic.Uint64
	onLevel func(float64)

	inbound    chan recognizer.Message
	readErr    chan error
	posts      chan func()
	stopCh     chan struct{}
	stopOnce   sync.Once
	quit       chan struct{} // closed when the loop starts tearing down
	readerDone chan struct{}
	done       chan struct{} // closed after teardown
	released   chan struct{} // closed once the controller is Idle again

	publish func(Snapshot)
	final   Snapshot
}

func newSession(id string, params Params, endpoint string, client *recognizer.Client, source recording.Source,
	sched language.Scheduler, logger zerolog.Logger, publish func(Snapshot), onLevel func(float64)) *session {
	s := &session{
		id:          id,
		params:      params,
		endpoint:    endpoint,
		client:      client,
		source:      source,
		logger:      logger,
		metrics:     observability.NewSessionMetrics(id),
		transcript:  transcript.NewTranscript(),
		translation: transcript.NewTranslation(),
		onLevel:     onLevel,
		inbound:     make(chan recognizer.Message, 16),
		readErr:     make(chan error, 1),
		posts:       make(chan func(), 4),
		stopCh:      make(chan struct{}),
		quit:        make(chan struct{}),
		readerDone:  make(chan struct{}),
		done:        make(chan struct{}),
		released:    make(chan struct{}),
		publish:     publish,
	}
	s.lock = language.NewLock(sched, s.post)
	s.dispatcher = protocol.NewDispatcher(s.transcript, s.translation, s.lock, logger)
	return s
}

// post runs f on the loop. After teardown starts f is dropped.
func (s *session) post(f func()) {
	select {
	case s.posts <- f:
	case <-s.quit:
	}
}

// deliver runs on the capture goroutine once per buffer.
func (s *session) deliver(b recording.Buffer) {
	s.level.Store(math.Float64bits(b.Level))
	if s.onLevel != nil {
		s.onLevel(b.Level)
	}

	if !s.client.IsOpen() {
		s.drop(observability.DropNotOpen)
		return
	}
	frame := recording.EncodePCM16(b.Samples)
	err := s.client.TrySend(frame)
	switch {
	case err == nil:
		s.sent.Add(1)
		observability.RecordFrameSent(len(frame))
	case errors.Is(err, recognizer.ErrBusy):
		s.drop(observability.DropBusy)
	case errors.Is(err, recognizer.ErrNotOpen):
		s.drop(observability.DropNotOpen)
	default:
		// the reader surfaces the broken connection
		s.drop(observability.DropNotOpen)
		s.logger.Debug().Err(err).Msg("frame write failed")
	}
}

func (s *session) drop(reason string) {
	s.dropped.Add(1)
	observability.RecordFrameDropped(reason)
}

// run starts the reader and the event loop.
func (s *session) run() {
	go s.readLoop()
	go s.loop()
}

func (s *session) readLoop() {
	defer close(s.readerDone)
	for {
		msg, err := s.client.Read()
		if err != nil {
			s.readErr <- err
			return
		}
		select {
		case s.inbound <- msg:
		case <-s.quit:
			return
		}
	}
}

func (s *session) loop() {
	defer close(s.done)
	s.publishState()

	var endErr error
	for running := true; running; {
		select {
		case msg := <-s.inbound:
			if msg.Binary {
				s.dispatcher.HandleBinary(len(msg.Data))
			} else {
				s.dispatcher.HandleText(msg.Data)
			}
			s.publishState()

		case f := <-s.posts:
			f()
			s.publishState()

		case err := <-s.readErr:
			running = false
			// the reader is gone; apply what it queued before failing
			s.drainInbound()
			observability.RecordTransportError()
			s.metrics.RecordFailed("transport")
			endErr = fmt.Errorf("%w: %v", ErrTransportClosed, err)
			s.logger.Warn().Err(err).Msg("recognizer connection ended")

		case <-s.stopCh:
			running = false
		}
	}

	s.teardown()
	s.final = s.snapshot()
	s.final.Err = endErr
}

func (s *session) drainInbound() {
	for {
		select {
		case msg := <-s.inbound:
			if msg.Binary {
				s.dispatcher.HandleBinary(len(msg.Data))
			} else {
				s.dispatcher.HandleText(msg.Data)
			}
		default:
			return
		}
	}
}

// stop asks the loop to tear down. Safe to call more than once.
func (s *session) stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// teardown cancels the lock timer, releases capture, ends the stream and
// waits for the reader.
func (s *session) teardown() {
	s.lock.Cancel()
	close(s.quit)

	releaseCapture(s.source, s.logger)

	if s.client.IsOpen() {
		ctx, cancel := context.WithTimeout(context.Background(), endTimeout)
		if err := s.client.End(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("end stream failed")
		}
		cancel()
	} else {
		_ = s.client.Close()
	}
	<-s.readerDone

	s.metrics.RecordEnd()
	s.logger.Info().
		Uint64("frames_sent", s.sent.Load()).
		Uint64("frames_dropped", s.dropped.Load()).
		Int("lines", s.transcript.Len()).
		Msg("session closed")
}

// releaseCapture runs the three capture teardown steps in order. A failing
// step is logged and the rest still run.
func releaseCapture(source recording.Source, logger zerolog.Logger) {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"stop processing", source.StopProcessing},
		{"disconnect input", source.DisconnectInput},
		{"close capture", source.Close},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			logger.Warn().Err(err).Str("step", step.name).Msg("teardown step failed")
		}
	}
}

// snapshot copies the stores. Loop goroutine only.
func (s *session) snapshot() Snapshot {
	return Snapshot{
		Status:             Active,
		SessionID:          s.id,
		Mode:               s.params.Mode,
		Language:           s.params.Language,
		Endpoint:           s.endpoint,
		StartedAt:          s.startedAt,
		Lines:              s.transcript.Lines(),
		Partial:            s.transcript.Partial(),
		Translations:       s.translation.Lines(),
		PartialTranslation: s.translation.Partial(),
		Lock:               s.lock.State(),
		Level:              math.Float64frombits(s.level.Load()),
		FramesSent:         s.sent.Load(),
		FramesDropped:      s.dropped.Load(),
		Inbound:            s.dispatcher.Stats(),
	}
}

func (s *session) publishState() {
	observability.SetLockStatus(int(s.lock.State().Status))
	s.publish(s.snapshot())
}

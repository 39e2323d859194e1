package session

import (
	"context"
	"testing"

	"github.com/leonardotrapani/hyprlingo/internal/language"
	"github.com/leonardotrapani/hyprlingo/internal/recognizer"
	"github.com/leonardotrapani/hyprlingo/internal/recording"
	"github.com/leonardotrapani/hyprlingo/internal/testutil"
	"github.com/rs/zerolog"
)

func dialSession(t *testing.T, onLevel func(float64)) (*session, *testutil.MockRecognizer) {
	t.Helper()
	server := testutil.NewMockRecognizer(t)
	client, err := recognizer.Dial(context.Background(), server.URL(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	server.WaitConnected(t, waitTimeout)

	s := newSession("test", Params{}, server.URL(), client, testutil.NewMockSource(),
		language.SystemScheduler, zerolog.Nop(), func(Snapshot) {}, onLevel)
	return s, server
}

func TestDeliverSendsFrames(t *testing.T) {
	var levels []float64
	s, server := dialSession(t, func(l float64) { levels = append(levels, l) })

	samples := []float32{0.25, -0.25, 0.25, -0.25}
	s.deliver(recording.Buffer{Samples: samples, Level: recording.Level(samples, recording.DefaultLevelGain)})

	testutil.WaitForCondition(t, func() bool { return len(server.Frames()) == 1 }, waitTimeout)
	if got := len(server.Frames()[0]); got != 8 {
		t.Errorf("frame length = %d, want 8", got)
	}
	if s.sent.Load() != 1 || s.dropped.Load() != 0 {
		t.Errorf("sent/dropped = %d/%d, want 1/0", s.sent.Load(), s.dropped.Load())
	}
	if len(levels) != 1 || levels[0] != 1 {
		t.Errorf("levels = %v, want [1] (0.25 rms clamped at gain 5)", levels)
	}
}

func TestDeliverDropsWhenNotOpen(t *testing.T) {
	s, server := dialSession(t, nil)
	_ = s.client.Close()

	for i := 0; i < 5; i++ {
		s.deliver(recording.Buffer{Samples: []float32{0.1, 0.2}, Level: 0.5})
	}
	if got := s.dropped.Load(); got != 5 {
		t.Errorf("dropped = %d, want 5", got)
	}
	if got := s.sent.Load(); got != 0 {
		t.Errorf("sent = %d, want 0", got)
	}
	server.WaitClosed(t, waitTimeout)
	if got := len(server.Frames()); got != 0 {
		t.Errorf("server received %d frames from a closed client", got)
	}

	s.run()
	s.stop()
	<-s.done
	if s.final.Level != 0.5 {
		t.Errorf("final level = %v, want last delivered 0.5", s.final.Level)
	}
	if s.final.FramesDropped != 5 {
		t.Errorf("final FramesDropped = %d, want 5", s.final.FramesDropped)
	}
}

func TestPostAfterTeardownDoesNotBlock(t *testing.T) {
	s, _ := dialSession(t, nil)
	s.run()
	s.stop()
	<-s.done

	for i := 0; i < cap(s.posts)+2; i++ {
		s.post(func() { t.Error("posted func ran after teardown") })
	}
}

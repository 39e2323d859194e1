package recognizer

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprlingo/internal/testutil"
	"github.com/rs/zerolog"
)

func dial(t *testing.T, m *testutil.MockRecognizer, header http.Header) *Client {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := Dial(ctx, m.URL()+"/ws", header, zerolog.Nop())
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	m.WaitConnected(t, 2*time.Second)
	return c
}

func TestDialSendsHeader(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	header, err := ParseHeader("Authorization: Bearer secret")
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}

	c := dial(t, m, header)
	defer c.Close()

	reqs := m.Requests()
	if len(reqs) != 1 {
		t.Fatalf("got %d handshakes, want 1", len(reqs))
	}
	if got := reqs[0].Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization = %q", got)
	}
	if reqs[0].URL.Path != "/ws" {
		t.Errorf("path = %q, want /ws", reqs[0].URL.Path)
	}
	if !c.IsOpen() {
		t.Error("IsOpen() should be true after dial")
	}
}

func TestDialRejected(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	m.RejectStatus = http.StatusUnauthorized

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := Dial(ctx, m.URL(), nil, zerolog.Nop()); err == nil {
		t.Fatal("Dial() should fail when the upgrade is refused")
	}
}

func TestDialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Dial(ctx, "ws://127.0.0.1:1/ws", nil, zerolog.Nop()); err == nil {
		t.Fatal("Dial() with a cancelled context should fail")
	}
}

func TestTrySendAndEnd(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	c := dial(t, m, nil)

	frame := []byte{1, 2, 3, 4}
	if err := c.TrySend(frame); err != nil {
		t.Fatalf("TrySend() error: %v", err)
	}
	testutil.WaitForCondition(t, func() bool { return len(m.Frames()) == 1 }, 2*time.Second)

	if err := c.End(context.Background()); err != nil {
		t.Fatalf("End() error: %v", err)
	}
	m.WaitClosed(t, 2*time.Second)

	texts := m.Texts()
	if len(texts) != 1 || texts[0] != EndMessage {
		t.Errorf("texts = %v, want [%s]", texts, EndMessage)
	}
	if c.IsOpen() {
		t.Error("IsOpen() should be false after End")
	}
	if err := c.TrySend(frame); !errors.Is(err, ErrNotOpen) {
		t.Errorf("TrySend() after End = %v, want ErrNotOpen", err)
	}
	if err := c.End(context.Background()); err != nil {
		t.Errorf("second End() error: %v", err)
	}
}

func TestTrySendBusyDrops(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	c := dial(t, m, nil)
	defer c.Close()

	// a write is in flight
	c.writeSem <- struct{}{}
	if err := c.TrySend([]byte{0, 0}); !errors.Is(err, ErrBusy) {
		t.Errorf("TrySend() = %v, want ErrBusy", err)
	}
	<-c.writeSem

	if err := c.TrySend([]byte{0, 0}); err != nil {
		t.Errorf("TrySend() once idle = %v", err)
	}
	testutil.WaitForCondition(t, func() bool { return len(m.Frames()) == 1 }, 2*time.Second)
}

func TestEndWaitsForInflightWrite(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	c := dial(t, m, nil)

	c.writeSem <- struct{}{}
	done := make(chan error, 1)
	go func() { done <- c.End(context.Background()) }()

	select {
	case <-done:
		t.Fatal("End() returned while a write was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	<-c.writeSem
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("End() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("End() never finished")
	}
}

func TestEndContextCancelled(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	c := dial(t, m, nil)

	c.writeSem <- struct{}{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.End(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("End() = %v, want context.Canceled", err)
	}
	if c.IsOpen() {
		t.Error("End() with a dead context should still close")
	}
}

func TestReadTextAndBinary(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	c := dial(t, m, nil)
	defer c.Close()

	if err := m.Send(`{"type":"partial","text":"hi"}`); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if err := m.SendBinary([]byte{9, 9}); err != nil {
		t.Fatalf("SendBinary() error: %v", err)
	}

	msg, err := c.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if msg.Binary || string(msg.Data) != `{"type":"partial","text":"hi"}` {
		t.Errorf("first message = %+v", msg)
	}

	msg, err = c.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !msg.Binary || len(msg.Data) != 2 {
		t.Errorf("second message = %+v", msg)
	}
}

func TestReadAfterPeerDrop(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	c := dial(t, m, nil)
	defer c.Close()

	m.Drop()
	if _, err := c.Read(); err == nil {
		t.Fatal("Read() should fail after the peer drops")
	}
	if c.IsOpen() {
		t.Error("IsOpen() should be false after a read error")
	}
}

func TestReadAfterLocalClose(t *testing.T) {
	m := testutil.NewMockRecognizer(t)
	c := dial(t, m, nil)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	_, err := c.Read()
	if !IsNormalClosure(err) {
		t.Errorf("IsNormalClosure(%v) = false, want true", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		raw       string
		wantName  string
		wantValue string
		wantErr   bool
	}{
		{raw: ""},
		{raw: "X-Api-Key: abc", wantName: "X-Api-Key", wantValue: "abc"},
		{raw: "  Authorization:Bearer t:k  ", wantName: "Authorization", wantValue: "Bearer t:k"},
		{raw: "no colon", wantErr: true},
		{raw: ": value", wantErr: true},
		{raw: "Bad Name: v", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			h, err := ParseHeader(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHeader(%q) should fail", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHeader(%q) error: %v", tt.raw, err)
			}
			if tt.wantName == "" {
				if h != nil {
					t.Errorf("ParseHeader(%q) = %v, want nil", tt.raw, h)
				}
				return
			}
			if got := h.Get(tt.wantName); got != tt.wantValue {
				t.Errorf("%s = %q, want %q", tt.wantName, got, tt.wantValue)
			}
		})
	}
}

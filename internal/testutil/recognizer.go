package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MockRecognizer is a websocket server standing in for the recognizer. It
// records every request and inbound frame and lets the test push events.
type MockRecognizer struct {
	Server *httptest.Server

	// RejectStatus, when non-zero, refuses the upgrade with that status.
	RejectStatus int
	// OnConnect runs right after the upgrade, before frames are read.
	OnConnect func(m *MockRecognizer)

	mu        sync.Mutex
	conn      *websocket.Conn
	requests  []*http.Request
	frames    [][]byte
	texts     []string
	connected chan struct{}
	closed    chan struct{}
}

func NewMockRecognizer(t *testing.T) *MockRecognizer {
	t.Helper()
	m := &MockRecognizer{
		connected: make(chan struct{}, 8),
		closed:    make(chan struct{}, 8),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Close)
	return m
}

func (m *MockRecognizer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r.Clone(r.Context()))
	reject := m.RejectStatus
	m.mu.Unlock()

	if reject != 0 {
		http.Error(w, "rejected", reject)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	m.mu.Lock()
	m.conn = conn
	onConnect := m.OnConnect
	m.mu.Unlock()

	if onConnect != nil {
		onConnect(m)
	}
	signal(m.connected)

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		m.mu.Lock()
		if mt == websocket.BinaryMessage {
			m.frames = append(m.frames, data)
		} else {
			m.texts = append(m.texts, string(data))
		}
		m.mu.Unlock()
	}
	signal(m.closed)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// URL is the ws:// address of the server.
func (m *MockRecognizer) URL() string {
	return "ws" + strings.TrimPrefix(m.Server.URL, "http")
}

// Send pushes a text frame to the connected client.
func (m *MockRecognizer) Send(msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return websocket.ErrCloseSent
	}
	return m.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// SendJSON pushes v encoded as a text frame.
func (m *MockRecognizer) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.Send(string(data))
}

// SendBinary pushes a binary frame, which clients must ignore.
func (m *MockRecognizer) SendBinary(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return websocket.ErrCloseSent
	}
	return m.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Drop kills the current connection without a close handshake.
func (m *MockRecognizer) Drop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		_ = m.conn.UnderlyingConn().Close()
	}
}

// WaitConnected blocks until a client has connected.
func (m *MockRecognizer) WaitConnected(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-m.connected:
	case <-time.After(timeout):
		t.Fatalf("no client connected within %v", timeout)
	}
}

// WaitClosed blocks until the client's connection has gone away.
func (m *MockRecognizer) WaitClosed(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-m.closed:
	case <-time.After(timeout):
		t.Fatalf("connection not closed within %v", timeout)
	}
}

func (m *MockRecognizer) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.frames))
	copy(out, m.frames)
	return out
}

func (m *MockRecognizer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}

// Requests returns the handshake requests seen so far.
func (m *MockRecognizer) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*http.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockRecognizer) Close() {
	m.Drop()
	m.Server.Close()
}

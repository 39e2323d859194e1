// Package recognizer is the duplex websocket to the remote recognizer:
// binary PCM frames out, JSON text frames in.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// EndMessage is sent as a text frame right before a graceful close.
const EndMessage = "END"

const (
	writeTimeout = 5 * time.Second
	closeGrace   = time.Second
)

var (
	ErrNotOpen = errors.New("connection not open")
	ErrBusy    = errors.New("previous write still in flight")
)

// Message is one inbound frame.
type Message struct {
	Binary bool
	Data   []byte
}

// Client owns one websocket. Writes are serialized by a single-slot
// semaphore: TrySend never waits for it, End does. Read must be called from
// one goroutine only.
type Client struct {
	conn   *websocket.Conn
	logger zerolog.Logger

	open     atomic.Bool
	writeSem chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Dial opens the connection. There is no handshake timeout: ctx is the only
// way to abandon a pending dial.
func Dial(ctx context.Context, endpoint string, header http.Header, logger zerolog.Logger) (*Client, error) {
	dialer := websocket.Dialer{
		Proxy:             http.ProxyFromEnvironment,
		EnableCompression: false,
	}

	logger.Debug().Str("endpoint", endpoint).Msg("connecting")
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			logger.Warn().Int("status", resp.StatusCode).Msg("dial rejected")
			return nil, fmt.Errorf("websocket dial %s: %w (status %d)", endpoint, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", endpoint, err)
	}

	c := &Client{
		conn:     conn,
		logger:   logger,
		writeSem: make(chan struct{}, 1),
	}
	c.open.Store(true)
	return c, nil
}

// IsOpen reports whether frames may still be written.
func (c *Client) IsOpen() bool {
	return c.open.Load()
}

// TrySend writes one binary frame if the connection is open and no other
// write is in flight. It never blocks on another writer and never queues:
// the caller gets ErrNotOpen or ErrBusy and the frame is gone.
func (c *Client) TrySend(frame []byte) error {
	if !c.open.Load() {
		return ErrNotOpen
	}
	select {
	case c.writeSem <- struct{}{}:
	default:
		return ErrBusy
	}
	defer func() { <-c.writeSem }()

	if !c.open.Load() {
		return ErrNotOpen
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.open.Store(false)
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Read blocks for the next inbound frame. Any error means the connection is
// finished.
func (c *Client) Read() (Message, error) {
	mt, data, err := c.conn.ReadMessage()
	if err != nil {
		c.open.Store(false)
		return Message{}, err
	}
	return Message{Binary: mt == websocket.BinaryMessage, Data: data}, nil
}

// End waits for any in-flight frame, sends EndMessage and a normal close,
// then closes the socket. On a connection that is no longer open it only
// closes.
func (c *Client) End(ctx context.Context) error {
	select {
	case c.writeSem <- struct{}{}:
	case <-ctx.Done():
		_ = c.Close()
		return ctx.Err()
	}

	var err error
	if c.open.Swap(false) {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if werr := c.conn.WriteMessage(websocket.TextMessage, []byte(EndMessage)); werr != nil {
			err = fmt.Errorf("write end: %w", werr)
		} else {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
			c.logger.Debug().Msg("end sent")
		}
	}
	<-c.writeSem

	if cerr := c.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close drops the socket without the END handshake. Safe to call repeatedly.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// IsNormalClosure reports whether a Read error is the peer closing cleanly
// or our own Close.
func IsNormalClosure(err error) bool {
	if err == nil {
		return false
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}

// ParseHeader turns "Name: value" into a handshake header. Empty input
// yields nil.
func ParseHeader(raw string) (http.Header, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" || strings.ContainsAny(name, " \t") {
		return nil, fmt.Errorf("invalid header %q: want \"Name: value\"", raw)
	}
	h := http.Header{}
	h.Set(name, strings.TrimSpace(value))
	return h, nil
}

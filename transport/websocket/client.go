package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/whiteboard/logging"
)

// ErrNotConnected is returned by Send before Connect or after the connection
// is gone
var ErrNotConnected = errors.New("not connected")

// ConnState is the connection status shown to the user
type ConnState string

const (
	Connecting   ConnState = "connecting"
	Connected    ConnState = "connected"
	Disconnected ConnState = "disconnected"
	Failed       ConnState = "failed"
)

// Client is the dialing side of a board connection. Received frames are
// delivered on Frames; Send writes one text frame. There is no automatic
// reconnect.
type Client struct {
	url       string
	dialer    *websocket.Dialer
	writeWait time.Duration
	onState   func(ConnState)

	mu     sync.Mutex
	conn   *websocket.Conn
	frames chan []byte
	err    error

	// done is closed by Close so a reader parked on a full Frames channel
	// still exits
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client for a ws:// or wss:// URL. onState may be nil.
func NewClient(url string, onState func(ConnState)) *Client {
	return &Client{
		url:       url,
		dialer:    websocket.DefaultDialer,
		writeWait: 10 * time.Second,
		onState:   onState,
		frames:    make(chan []byte, DefaultBufferSize),
		done:      make(chan struct{}),
	}
}

// Connect dials the server and starts reading
func (c *Client) Connect(ctx context.Context) error {
	c.setState(Connecting)

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.setState(Failed)
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.setState(Connected)
	go c.readLoop(conn)
	return nil
}

// Frames delivers inbound frames. It is closed when the connection ends.
func (c *Client) Frames() <-chan []byte {
	return c.frames
}

// Send writes one text frame
func (c *Client) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

// Close sends a close frame and drops the connection. Frames is closed once
// the reader has stopped, even if nobody drains it.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeWait))
	return conn.Close()
}

// Err returns the error that ended the connection, if any
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.frames)

	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			c.finish(conn, err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		select {
		case c.frames <- frame:
		case <-c.done:
			c.finish(conn, nil)
			return
		}
	}
}

// finish records why the connection ended and reports Disconnected. Errors
// caused by our own Close are not recorded.
func (c *Client) finish(conn *websocket.Conn, err error) {
	c.mu.Lock()
	c.conn = nil
	if err != nil && !c.closed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		c.err = err
	}
	c.mu.Unlock()

	conn.Close()
	logging.L().Debug().Err(err).Str(logging.FieldURL, c.url).Msg("connection ended")
	c.setState(Disconnected)
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) setState(s ConnState) {
	logging.L().Debug().Str(logging.FieldState, string(s)).Str(logging.FieldURL, c.url).Msg("connection state")
	if c.onState != nil {
		c.onState(s)
	}
}

package client

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/wricardo/whiteboard/board/canvas"
	"github.com/wricardo/whiteboard/board/protocol"
	"github.com/wricardo/whiteboard/board/session"
	"github.com/wricardo/whiteboard/logging"
	"github.com/wricardo/whiteboard/transport/websocket"
)

// ErrStopped is returned by calls made after Run has exited
var ErrStopped = errors.New("board stopped")

// Conn is the network side of a board
type Conn interface {
	Frames() <-chan []byte
	Send(frame []byte) error
}

// Board runs one client's whiteboard on a single goroutine. Relayed frames
// and UI input are handled in arrival order, so the session machine and the
// renderer are never touched concurrently.
type Board struct {
	machine  *session.Machine
	renderer canvas.Renderer
	conn     Conn
	onState  func(websocket.ConnState)
	logger   zerolog.Logger

	inputs chan func()
	states chan websocket.ConnState
	done   chan struct{}
}

// Option configures a Board
type Option func(*Board)

// WithStateHandler receives connection state changes on the board goroutine
func WithStateHandler(fn func(websocket.ConnState)) Option {
	return func(b *Board) { b.onState = fn }
}

// WithLogger overrides the global logger
func WithLogger(l zerolog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// New creates a board. Call Run to start processing.
func New(conn Conn, renderer canvas.Renderer, machine *session.Machine, opts ...Option) *Board {
	b := &Board{
		machine:  machine,
		renderer: renderer,
		conn:     conn,
		logger:   *logging.L(),
		inputs:   make(chan func(), 64),
		states:   make(chan websocket.ConnState, 8),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes frames and input until ctx is done. A closed connection does
// not stop the board; local input keeps working and sends fail silently.
func (b *Board) Run(ctx context.Context) error {
	defer close(b.done)

	frames := b.conn.Frames()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			b.applyFrame(frame)

		case fn := <-b.inputs:
			fn()

		case s := <-b.states:
			if b.onState != nil {
				b.onState(s)
			}
		}
	}
}

// NotifyState queues a connection state change. It never blocks, so it can
// be passed straight to websocket.NewClient.
func (b *Board) NotifyState(s websocket.ConnState) {
	select {
	case b.states <- s:
	default:
		b.logger.Warn().Str(logging.FieldState, string(s)).Msg("state queue full, dropping")
	}
}

func (b *Board) PointerDown(tool session.Tool, screen canvas.Point) error {
	return b.enqueue(func() { b.handleOutput(b.machine.PointerDown(tool, screen)) })
}

func (b *Board) PointerMove(tool session.Tool, screen canvas.Point) error {
	return b.enqueue(func() { b.handleOutput(b.machine.PointerMove(tool, screen)) })
}

func (b *Board) PointerUp(tool session.Tool, screen canvas.Point) error {
	return b.enqueue(func() { b.handleOutput(b.machine.PointerUp(tool, screen)) })
}

func (b *Board) Wheel(deltaY float64) error {
	return b.enqueue(func() { b.machine.Wheel(deltaY) })
}

// CommitText finishes a pending text prompt
func (b *Board) CommitText(text string) error {
	return b.enqueue(func() {
		if e, ok := b.machine.CommitText(text); ok {
			b.send(e)
		}
	})
}

func (b *Board) CancelText() error {
	return b.enqueue(b.machine.CancelText)
}

func (b *Board) SetTool(tool session.Tool) error {
	return b.enqueue(func() { b.machine.SetTool(tool) })
}

func (b *Board) SetStyle(style session.Style) error {
	return b.enqueue(func() { b.machine.SetStyle(style) })
}

// Do runs fn on the board goroutine and waits for it. Use it to read the
// machine or renderer from other goroutines.
func (b *Board) Do(ctx context.Context, fn func(m *session.Machine)) error {
	finished := make(chan struct{})
	if err := b.enqueue(func() {
		fn(b.machine)
		close(finished)
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-b.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Board) enqueue(fn func()) error {
	select {
	case b.inputs <- fn:
		return nil
	case <-b.done:
		return ErrStopped
	}
}

func (b *Board) applyFrame(frame []byte) {
	e, err := protocol.Decode(frame)
	if err != nil {
		b.logger.Debug().Err(err).Int(logging.FieldFrameSize, len(frame)).Msg("dropping undecodable frame")
		return
	}
	b.machine.Apply(b.renderer, e)
}

func (b *Board) handleOutput(out session.Output) {
	if out.Segment != nil {
		canvas.DrawSegment(b.renderer, b.machine.Transform(), *out.Segment)
	}
	if out.Event != nil {
		b.send(out.Event)
	}
}

func (b *Board) send(e protocol.Event) {
	frame, err := protocol.Encode(e)
	if err != nil {
		b.logger.Error().Err(err).Str(logging.FieldEventType, string(e.Kind())).Msg("failed to encode event")
		return
	}
	if err := b.conn.Send(frame); err != nil {
		b.logger.Debug().Err(err).Str(logging.FieldEventType, string(e.Kind())).Msg("send failed")
	}
}

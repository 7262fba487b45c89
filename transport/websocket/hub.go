package websocket

import (
	"context"
	"errors"
	"sync"

	"github.com/wricardo/whiteboard/logging"
)

// DefaultBufferSize is the number of frames a subscriber may fall behind
const DefaultBufferSize = 100

var (
	// ErrLagged means the subscriber overflowed its buffer. It is terminal.
	ErrLagged = errors.New("subscriber lagged behind the relay")
	// ErrClosed is returned by Recv after Close
	ErrClosed = errors.New("subscription closed")
)

// Publisher accepts frames for fan-out
type Publisher interface {
	Publish(frame []byte)
}

// Hub fans every published frame out to all live subscriptions. Frames are
// opaque; the hub never decodes them.
type Hub struct {
	bufferSize int

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewHub creates a hub whose subscriptions buffer up to bufferSize frames
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		bufferSize: bufferSize,
		subs:       make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a receiver. It only sees frames published after this
// call returns.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub:    h,
		frames: make(chan []byte, h.bufferSize),
		lagged: make(chan struct{}),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	return s
}

// Publish delivers frame to every subscription, the publisher's own
// included. Publishes are serialized so all subscribers observe the same
// order. A subscriber with a full buffer is marked lagged and dropped
// instead of blocking the publisher.
func (h *Hub) Publish(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		select {
		case s.frames <- frame:
		default:
			delete(h.subs, s)
			s.markLagged()
			logging.L().Warn().
				Int(logging.FieldSubscribers, len(h.subs)).
				Msg("subscriber lagged, dropping")
		}
	}
}

// Count returns the number of live subscriptions
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// BufferSize returns the per-subscription capacity
func (h *Hub) BufferSize() int {
	return h.bufferSize
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Subscription is one receiver's bounded queue with its own cursor
type Subscription struct {
	hub    *Hub
	frames chan []byte

	lagged    chan struct{}
	lagOnce   sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// Recv returns the next frame. Once the subscription has lagged it returns
// ErrLagged, even if frames are still buffered.
func (s *Subscription) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-s.lagged:
		return nil, ErrLagged
	case <-s.done:
		return nil, ErrClosed
	default:
	}

	select {
	case <-s.lagged:
		return nil, ErrLagged
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-s.frames:
		return frame, nil
	}
}

// Lagged reports whether the subscription overflowed
func (s *Subscription) Lagged() bool {
	select {
	case <-s.lagged:
		return true
	default:
		return false
	}
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.unsubscribe(s)
		close(s.done)
	})
}

func (s *Subscription) markLagged() {
	s.lagOnce.Do(func() { close(s.lagged) })
}

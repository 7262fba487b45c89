package service

import (
	"context"
	"errors"

	"github.com/wricardo/whiteboard/board/protocol"
)

var ErrStatsUnavailable = errors.New("relay stats unavailable")

// BoardService publishes board events from non-websocket surfaces (HTTP, MCP)
type BoardService interface {
	// Publish encodes the event and hands it to the relay
	Publish(ctx context.Context, e protocol.Event) error
	// PublishFrame validates a raw frame and relays it unchanged
	PublishFrame(ctx context.Context, frame []byte) (protocol.Event, error)
	// Stats reports relay occupancy
	Stats(ctx context.Context) (*Stats, error)
}

// Stats is the relay occupancy exposed on /api/stats
type Stats struct {
	Subscribers int `json:"subscribers"`
	BufferSize  int `json:"buffer_size"`
}

// Publisher accepts frames for fan-out (the hub or a cluster bridge)
type Publisher interface {
	Publish(frame []byte)
}

// Relay reports subscription counts
type Relay interface {
	Count() int
	BufferSize() int
}

// Sender writes frames over an outbound connection
type Sender interface {
	Send(frame []byte) error
}

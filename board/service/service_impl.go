package service

import (
	"context"
	"fmt"

	"github.com/wricardo/whiteboard/board/protocol"
	"github.com/wricardo/whiteboard/logging"
)

// boardServiceImpl publishes straight into the local relay
type boardServiceImpl struct {
	publisher Publisher
	relay     Relay
}

// NewBoardService creates a service that publishes into the relay in this
// process. relay may be nil when stats are not needed.
func NewBoardService(publisher Publisher, relay Relay) BoardService {
	return &boardServiceImpl{
		publisher: publisher,
		relay:     relay,
	}
}

func (s *boardServiceImpl) Publish(ctx context.Context, e protocol.Event) error {
	frame, err := protocol.Encode(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	s.publisher.Publish(frame)

	logging.Ctx(ctx).Debug().Str(logging.FieldEventType, string(e.Kind())).Msg("event published")
	return nil
}

func (s *boardServiceImpl) PublishFrame(ctx context.Context, frame []byte) (protocol.Event, error) {
	e, err := protocol.Decode(frame)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(frame)

	logging.Ctx(ctx).Debug().Str(logging.FieldEventType, string(e.Kind())).Msg("frame published")
	return e, nil
}

func (s *boardServiceImpl) Stats(ctx context.Context) (*Stats, error) {
	if s.relay == nil {
		return nil, ErrStatsUnavailable
	}
	return &Stats{
		Subscribers: s.relay.Count(),
		BufferSize:  s.relay.BufferSize(),
	}, nil
}

// remoteBoardService publishes through a websocket connection to another
// server
type remoteBoardService struct {
	sender Sender
}

// NewRemoteBoardService creates a service that sends every event over an
// outbound connection
func NewRemoteBoardService(sender Sender) BoardService {
	return &remoteBoardService{sender: sender}
}

func (s *remoteBoardService) Publish(ctx context.Context, e protocol.Event) error {
	frame, err := protocol.Encode(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := s.sender.Send(frame); err != nil {
		return fmt.Errorf("failed to send %s: %w", e.Kind(), err)
	}
	return nil
}

func (s *remoteBoardService) PublishFrame(ctx context.Context, frame []byte) (protocol.Event, error) {
	e, err := protocol.Decode(frame)
	if err != nil {
		return nil, err
	}
	if err := s.sender.Send(frame); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", e.Kind(), err)
	}
	return e, nil
}

func (s *remoteBoardService) Stats(ctx context.Context) (*Stats, error) {
	return nil, ErrStatsUnavailable
}

package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wricardo/whiteboard/board/config"
	"github.com/wricardo/whiteboard/logging"
)

// Teardown reasons recorded in the connection log
const (
	ReasonLagged      = "lagged"
	ReasonWriteFailed = "write_failed"
	ReasonReadClosed  = "read_closed"
	ReasonShutdown    = "shutdown"
)

// Handler bridges websocket connections to the relay. Inbound frames go to
// the publisher verbatim; every frame from the hub is written back out.
type Handler struct {
	hub       *Hub
	publisher Publisher
	cfg       config.WebSocketConfig
	upgrader  websocket.Upgrader

	// mu orders connection admission against Close so wg.Add never races
	// wg.Wait
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHandler creates a handler. publisher is usually the hub itself or a
// cluster bridge in front of it.
func NewHandler(hub *Hub, publisher Publisher, cfg config.WebSocketConfig) *Handler {
	if publisher == nil {
		publisher = hub
	}
	cfg = withDefaults(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		hub:       hub,
		publisher: publisher,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBuffer,
			// the board is open to any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// ServeWS upgrades the request and runs the connection until either side
// stops. It blocks for the life of the connection.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	logger := logging.Ctx(r.Context())

	h.mu.Lock()
	if h.ctx.Err() != nil {
		h.mu.Unlock()
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(h.ctx)
	c := &connection{
		ws:     ws,
		sub:    h.hub.Subscribe(),
		cfg:    h.cfg,
		cancel: cancel,
		logger: logger.With().
			Str(logging.FieldConnID, uuid.NewString()).
			Str(logging.FieldRemoteAddr, ws.RemoteAddr().String()).
			Logger(),
	}
	c.logger.Info().Int(logging.FieldSubscribers, h.hub.Count()).Msg("connection opened")

	c.run(ctx, h.publisher)

	c.logger.Info().
		Str(logging.FieldReason, c.reason).
		Int(logging.FieldSubscribers, h.hub.Count()).
		Msg("connection closed")
}

// Close tears down every open connection and waits for them to finish
func (h *Handler) Close() {
	h.mu.Lock()
	h.cancel()
	h.mu.Unlock()

	h.wg.Wait()
}

type connection struct {
	ws     *websocket.Conn
	sub    *Subscription
	cfg    config.WebSocketConfig
	logger zerolog.Logger

	cancel   context.CancelFunc
	stopOnce sync.Once
	reason   string
}

func (c *connection) run(ctx context.Context, publisher Publisher) {
	c.ws.SetReadLimit(c.cfg.MaxMessageSize)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.writePump(ctx)
	}()
	go func() {
		defer wg.Done()
		c.pingLoop(ctx)
	}()

	c.readPump(publisher)
	c.stop(ReasonReadClosed)

	wg.Wait()
	c.sub.Close()
	c.ws.Close()
}

// stop records the first teardown reason and cancels both paths
func (c *connection) stop(reason string) {
	c.stopOnce.Do(func() {
		c.reason = reason
		c.cancel()
	})
}

// readPump publishes inbound text frames until the read fails
func (c *connection) readPump(publisher Publisher) {
	for {
		msgType, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			c.logger.Debug().Int("message_type", msgType).Msg("dropping non-text frame")
			continue
		}
		publisher.Publish(frame)
	}
}

// writePump forwards hub frames to the peer in order. Closing the socket on
// exit unblocks readPump.
func (c *connection) writePump(ctx context.Context) {
	defer c.ws.Close()

	for {
		frame, err := c.sub.Recv(ctx)
		if err != nil {
			if errors.Is(err, ErrLagged) {
				c.stop(ReasonLagged)
				c.writeClose(websocket.CloseTryAgainLater, "lagged")
				return
			}
			// cancelled by the other path, or by Handler.Close
			c.stop(ReasonShutdown)
			if c.reason == ReasonShutdown {
				c.writeClose(websocket.CloseGoingAway, "server shutting down")
			}
			return
		}

		c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			c.stop(ReasonWriteFailed)
			return
		}
	}
}

// pingLoop keeps intermediaries from dropping idle connections. A failed
// ping counts as a write failure.
func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				c.stop(ReasonWriteFailed)
				c.ws.Close()
				return
			}
		}
	}
}

func (c *connection) writeClose(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteWait))
}

func withDefaults(cfg config.WebSocketConfig) config.WebSocketConfig {
	d := config.Default().WebSocket
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = d.WriteWait
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = d.PingInterval
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = d.MaxMessageSize
	}
	return cfg
}

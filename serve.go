package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/whiteboard/api"
	"github.com/wricardo/whiteboard/board/config"
	"github.com/wricardo/whiteboard/board/service"
	"github.com/wricardo/whiteboard/logging"
	"github.com/wricardo/whiteboard/transport/cluster"
	"github.com/wricardo/whiteboard/transport/mcp"
	"github.com/wricardo/whiteboard/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

// whiteboardServer is the wired relay: hub, optional Redis bridge, websocket
// handler and the HTTP router in front of them.
type whiteboardServer struct {
	cfg     *config.Config
	hub     *websocket.Hub
	bridge  *cluster.Bridge
	handler *websocket.Handler
	service service.BoardService
	router  http.Handler
}

// newWhiteboardServer wires every component described by cfg. Redis is
// connected eagerly so a bad address fails startup.
func newWhiteboardServer(cfg *config.Config) (*whiteboardServer, error) {
	s := &whiteboardServer{
		cfg: cfg,
		hub: websocket.NewHub(cfg.Relay.BufferSize),
	}

	var publisher websocket.Publisher = s.hub
	if cfg.Redis.Enabled {
		bridge, err := cluster.NewBridge(cfg.Redis, s.hub)
		if err != nil {
			return nil, err
		}
		s.bridge = bridge
		publisher = bridge
	}

	s.handler = websocket.NewHandler(s.hub, publisher, cfg.WebSocket)
	s.service = service.NewBoardService(publisher, s.hub)

	opts := []api.Option{
		api.WithStaticDir(cfg.Server.StaticDir),
		api.WithMaxBodySize(cfg.WebSocket.MaxMessageSize),
	}
	if cfg.MCP.Enabled {
		opts = append(opts, api.WithMCP(mcp.NewServer(s.service)))
	}
	s.router = api.NewServer(s.service, s.handler.ServeWS, opts...)

	return s, nil
}

// Serve accepts connections on ln until ctx is done, then drains websocket
// connections and shuts the HTTP server down.
func (s *whiteboardServer) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	// background tasks outlive ctx until the HTTP server has drained
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	if s.bridge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.bridge.Run(runCtx)
		}()
	}

	if s.cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(runCtx, s.cfg.Ngrok, s.router)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ln.Addr().String()
		logging.L().Info().
			Str("addr", addr).
			Str("websocket", fmt.Sprintf("ws://%s/ws", addr)).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Bool("mcp", s.cfg.MCP.Enabled).
			Bool("redis", s.bridge != nil).
			Msg("HTTP server listening")
		errCh <- httpServer.Serve(ln)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logging.L().Info().Msg("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	// websocket connections are hijacked, so Shutdown does not wait for them
	s.handler.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.L().Warn().Err(err).Msg("HTTP server shutdown error")
	}

	cancelRun()
	wg.Wait()
	if s.bridge != nil {
		s.bridge.Close()
	}

	logging.L().Info().Msg("server stopped")
	return serveErr
}

// runServe binds the configured address and serves until ctx is done. A
// bind failure is returned so the process exits non-zero.
func runServe(ctx context.Context, cfg *config.Config) error {
	s, err := newWhiteboardServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", cfg.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// runNgrok exposes handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, cfg config.NgrokConfig, handler http.Handler) {
	if cfg.AuthToken == "" {
		logging.L().Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	logging.L().Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logging.L().Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logging.L().Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	logging.L().Info().
		Str(logging.FieldURL, url).
		Str("websocket", strings.Replace(url, "https://", "wss://", 1)+"/ws").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logging.L().Warn().Err(err).Msg("ngrok server error")
	}
	logging.L().Info().Msg("ngrok tunnel closed")
}

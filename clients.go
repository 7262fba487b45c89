package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/whiteboard/board/canvas"
	"github.com/wricardo/whiteboard/board/client"
	"github.com/wricardo/whiteboard/board/config"
	"github.com/wricardo/whiteboard/board/protocol"
	"github.com/wricardo/whiteboard/board/service"
	"github.com/wricardo/whiteboard/board/session"
	"github.com/wricardo/whiteboard/logging"
	"github.com/wricardo/whiteboard/transport/mcp"
	"github.com/wricardo/whiteboard/transport/websocket"
)

const dialTimeout = 2 * time.Second

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "url",
		Value:   defaultURL,
		Usage:   "websocket URL of the relay",
		Sources: cli.EnvVars("WHITEBOARD_URL"),
	}
}

func stdioMCPCommand() *cli.Command {
	return &cli.Command{
		Name:    "stdio-mcp",
		Aliases: []string{"mcp-stdio", "mcp"},
		Usage:   "run an MCP stdio server that draws on a running relay, or an internal one",
		Flags:   []cli.Flag{urlFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			initLogging(cmd, cfg, "whiteboard-mcp")

			svc, cleanup, err := connectOrStartRelay(ctx, cfg, cmd.String("url"))
			if err != nil {
				return err
			}
			defer cleanup()

			logging.L().Info().Msg("MCP stdio server ready")
			if err := mcp.NewServer(svc).ServeStdio(); err != nil {
				return fmt.Errorf("MCP stdio server error: %w", err)
			}
			return nil
		},
	}
}

// connectOrStartRelay publishes through the relay at url. If nothing answers
// there, an internal relay is started on a random loopback port.
func connectOrStartRelay(ctx context.Context, cfg *config.Config, url string) (service.BoardService, func(), error) {
	logging.L().Info().Str(logging.FieldURL, url).Msg("checking for a running relay")

	conn := websocket.NewClient(url, nil)
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	err := conn.Connect(dialCtx)
	cancel()

	if err == nil {
		logging.L().Info().Str(logging.FieldURL, url).Msg("relay found, publishing through it")
		// the echo of our own frames is not needed
		go func() {
			for range conn.Frames() {
			}
		}()
		return service.NewRemoteBoardService(conn), func() { conn.Close() }, nil
	}

	logging.L().Info().Err(err).Msg("no relay found, starting internal relay")

	s, err := newWhiteboardServer(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize internal relay: %w", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get available port: %w", err)
	}

	serveCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Serve(serveCtx, ln); err != nil {
			logging.L().Error().Err(err).Msg("internal relay error")
		}
	}()

	logging.L().Info().
		Str(logging.FieldURL, fmt.Sprintf("ws://%s/ws", ln.Addr())).
		Msg("internal relay listening")

	return s.service, func() {
		stop()
		<-done
	}, nil
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "connect a headless board and log every draw call",
		Flags: []cli.Flag{
			urlFlag(),
			&cli.StringFlag{
				Name:      "record",
				Usage:     "append every received frame to this file, one per line",
				TakesFile: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			initLogging(cmd, cfg, "whiteboard-watch")

			var record io.Writer
			if path := cmd.String("record"); path != "" {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open recording: %w", err)
				}
				defer f.Close()
				record = f
			}

			return runWatch(ctx, cmd.String("url"), record)
		},
	}
}

// tappedConn hands the board a copy of the client's frames
type tappedConn struct {
	*websocket.Client
	frames <-chan []byte
}

func (c tappedConn) Frames() <-chan []byte { return c.frames }

// teeFrames forwards every frame from in and writes it to w as one line. It
// stops when in closes or done is closed, so a reader that went away does
// not strand it.
func teeFrames(done <-chan struct{}, in <-chan []byte, w io.Writer) <-chan []byte {
	out := make(chan []byte, cap(in))
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case frame, ok := <-in:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "%s\n", frame); err != nil {
					logging.L().Warn().Err(err).Msg("failed to record frame")
				}
				select {
				case out <- frame:
				case <-done:
					return
				}
			}
		}
	}()
	return out
}

// runWatch logs the draw calls a board makes until the connection ends or
// ctx is done
func runWatch(ctx context.Context, url string, record io.Writer) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := logging.L().With().Str(logging.FieldURL, url).Logger()

	var board *client.Board
	conn := websocket.NewClient(url, func(s websocket.ConnState) {
		board.NotifyState(s)
		if s == websocket.Disconnected {
			cancel()
		}
	})

	var boardConn client.Conn = conn
	if record != nil {
		boardConn = tappedConn{Client: conn, frames: teeFrames(watchCtx.Done(), conn.Frames(), record)}
	}

	renderer := &canvas.Recorder{
		Stream: true,
		OnCall: func(c canvas.Call) {
			logger.Info().Str("call", c.String()).Msg("draw")
		},
	}
	board = client.New(boardConn, renderer, session.NewMachine(session.Freehand, session.DefaultStyle()),
		client.WithLogger(logger),
		client.WithStateHandler(func(s websocket.ConnState) {
			logger.Info().Str(logging.FieldState, string(s)).Msg("connection state")
		}),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- board.Run(watchCtx) }()

	if err := conn.Connect(watchCtx); err != nil {
		cancel()
		<-errCh
		return err
	}

	<-errCh
	conn.Close()

	// interrupted by the caller rather than the relay
	if ctx.Err() != nil {
		return nil
	}
	if err := conn.Err(); err != nil {
		return fmt.Errorf("connection lost: %w", err)
	}
	return nil
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "validate one event and send it to a relay",
		ArgsUsage: "<event json | ->",
		Flags:     []cli.Flag{urlFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			initLogging(cmd, cfg, "whiteboard-send")

			frame, err := readFrameArg(cmd.Args().First(), os.Stdin)
			if err != nil {
				return err
			}
			return runSend(ctx, cmd.String("url"), frame)
		},
	}
}

// readFrameArg returns the event given on the command line, or read from
// stdin when arg is "-"
func readFrameArg(arg string, stdin io.Reader) ([]byte, error) {
	if arg == "" {
		return nil, errors.New("an event is required, e.g. '{\"type\":\"Zoom\",\"factor\":1.2}'")
	}
	if arg != "-" {
		return []byte(strings.TrimSpace(arg)), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return []byte(strings.TrimSpace(string(data))), nil
}

// runSend validates frame before dialing so a bad event never reaches the
// relay
func runSend(ctx context.Context, url string, frame []byte) error {
	e, err := protocol.Decode(frame)
	if err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	conn := websocket.NewClient(url, nil)
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := conn.Connect(dialCtx); err != nil {
		return err
	}
	defer conn.Close()

	if err := service.NewRemoteBoardService(conn).Publish(ctx, e); err != nil {
		return err
	}

	logging.L().Info().Str(logging.FieldEventType, string(e.Kind())).Str(logging.FieldURL, url).Msg("event sent")
	return nil
}

// Command whiteboard runs the shared whiteboard relay and its companion tools.
//
// It supports four commands:
//  1. "serve" (default) – runs the HTTP server exposing the /ws relay, the REST API and an /mcp endpoint
//  2. "stdio-mcp" – runs an MCP stdio server that draws through a running relay, or an internal one
//  3. "watch" – connects a headless board and logs every draw call it would make
//  4. "send" – validates one event and sends it to a relay
//
// Configuration comes from config.yaml, the environment (optionally a .env
// file) and flags, in increasing order of precedence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/whiteboard/board/config"
	"github.com/wricardo/whiteboard/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Shared Whiteboard Server"
)

const defaultURL = "ws://localhost:3000/ws"

// main loads .env, builds the command tree and runs it until a signal arrives.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp()
	app.Before = func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if envErr != nil && !os.IsNotExist(envErr) {
			logging.L().Warn().Err(envErr).Msg("error loading .env file")
		}
		return ctx, nil
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logging.L().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// newApp builds the command tree. Flags shared by every command live on the
// root.
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "whiteboard",
		Usage:          "real-time shared whiteboard relay",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "directory containing config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "trace, debug, info, warn, error or disabled",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "shorthand for --log-level debug --log-pretty",
			},
			&cli.BoolFlag{
				Name:  "log-pretty",
				Usage: "human readable console logs",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			stdioMCPCommand(),
			watchCommand(),
			sendCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "run the HTTP server with the relay, REST API and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "static-dir", Usage: "directory served at /"},
			&cli.IntFlag{Name: "buffer-size", Usage: "frames a connection may fall behind before it is dropped"},
			&cli.BoolFlag{Name: "redis", Usage: "relay frames through Redis for multi-instance deployments"},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address"},
			&cli.BoolFlag{Name: "no-mcp", Usage: "disable the /mcp endpoint"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			initLogging(cmd, cfg, "whiteboard")
			return runServe(ctx, cfg)
		},
	}
}

// loadConfig reads config.yaml and the environment, then applies flags that
// were set explicitly.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("static-dir") {
		cfg.Server.StaticDir = cmd.String("static-dir")
	}
	if cmd.IsSet("buffer-size") {
		cfg.Relay.BufferSize = cmd.Int("buffer-size")
	}
	if cmd.IsSet("redis") {
		cfg.Redis.Enabled = cmd.Bool("redis")
	}
	if cmd.IsSet("redis-addr") {
		cfg.Redis.Address = cmd.String("redis-addr")
	}
	if cmd.Bool("no-mcp") {
		cfg.MCP.Enabled = false
	}
	if cmd.IsSet("ngrok") {
		cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-pretty") {
		cfg.Log.Pretty = cmd.Bool("log-pretty")
	}
	if cmd.Bool("debug") {
		cfg.Log.Level = "debug"
		cfg.Log.Pretty = true
	}
}

func initLogging(cmd *cli.Command, cfg *config.Config, service string) {
	logging.Init(logging.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: service,
	})
	logging.L().Info().
		Str("command", cmd.Name).
		Str("version", Version).
		Msg(fmt.Sprintf("Starting %s", AppName))
}

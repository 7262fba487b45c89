package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr() != "localhost:3000" {
		t.Errorf("Expected localhost:3000, got %s", cfg.Server.Addr())
	}
	if cfg.Relay.BufferSize != 100 {
		t.Errorf("Expected buffer size 100, got %d", cfg.Relay.BufferSize)
	}
	if cfg.WebSocket.WriteWait != 10*time.Second || cfg.WebSocket.PingInterval != 30*time.Second {
		t.Errorf("Unexpected websocket timings %+v", cfg.WebSocket)
	}
	if cfg.WebSocket.MaxMessageSize != 64*1024 {
		t.Errorf("Expected 64KiB max message size, got %d", cfg.WebSocket.MaxMessageSize)
	}
	if cfg.Redis.Enabled || cfg.Redis.Channel != "whiteboard:frames" {
		t.Errorf("Unexpected redis defaults %+v", cfg.Redis)
	}
	if !cfg.MCP.Enabled || cfg.Ngrok.Enabled {
		t.Errorf("Unexpected feature defaults mcp=%v ngrok=%v", cfg.MCP.Enabled, cfg.Ngrok.Enabled)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  host: 0.0.0.0
  port: 8080
relay:
  buffer_size: 16
websocket:
  ping_interval: 5s
redis:
  enabled: true
  address: redis:6379
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Expected 0.0.0.0:8080, got %s", cfg.Server.Addr())
	}
	if cfg.Relay.BufferSize != 16 {
		t.Errorf("Expected buffer size 16, got %d", cfg.Relay.BufferSize)
	}
	if cfg.WebSocket.PingInterval != 5*time.Second {
		t.Errorf("Expected 5s ping interval, got %v", cfg.WebSocket.PingInterval)
	}
	if cfg.WebSocket.WriteWait != 10*time.Second {
		t.Errorf("Unset values should keep defaults, got %v", cfg.WebSocket.WriteWait)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Address != "redis:6379" {
		t.Errorf("Unexpected redis config %+v", cfg.Redis)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "4321")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDRESS", "cache:6380")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 4321 {
		t.Errorf("Expected port 4321, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug level, got %s", cfg.Log.Level)
	}
	if cfg.Redis.Address != "cache:6380" {
		t.Errorf("Expected cache:6380, got %s", cfg.Redis.Address)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("relay:\n  buffer_size: 0\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(dir)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative buffer", func(c *Config) { c.Relay.BufferSize = -1 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"zero message size", func(c *Config) { c.WebSocket.MaxMessageSize = 0 }},
		{"zero write wait", func(c *Config) { c.WebSocket.WriteWait = 0 }},
		{"zero ping interval", func(c *Config) { c.WebSocket.PingInterval = 0 }},
		{"redis without channel", func(c *Config) { c.Redis.Enabled = true; c.Redis.Channel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

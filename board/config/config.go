package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full server configuration
type Config struct {
	Server    ServerConfig
	Relay     RelayConfig
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Redis     RedisConfig
	Log       LogConfig
	MCP       MCPConfig `mapstructure:"mcp"`
	Ngrok     NgrokConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	StaticDir string `mapstructure:"static_dir"`
}

// Addr returns host:port for net.Listen
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type RelayConfig struct {
	// BufferSize is the number of frames a subscriber may fall behind before
	// it is disconnected
	BufferSize int `mapstructure:"buffer_size"`
}

type WebSocketConfig struct {
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	ReadBufferSize int           `mapstructure:"read_buffer_size"`
	WriteBuffer    int           `mapstructure:"write_buffer_size"`
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	Channel  string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type MCPConfig struct {
	Enabled bool
}

type NgrokConfig struct {
	Enabled   bool
	AuthToken string `mapstructure:"auth_token"`
	Domain    string
}

// Load reads config.yaml from configPath (or the working directory), applies
// defaults and environment overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("relay.buffer_size", 100)
	v.SetDefault("websocket.write_wait", 10*time.Second)
	v.SetDefault("websocket.ping_interval", 30*time.Second)
	v.SetDefault("websocket.max_message_size", 64*1024)
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "whiteboard:frames")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("mcp.enabled", true)
	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.auth_token", "")
	v.SetDefault("ngrok.domain", "")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.static_dir", "STATIC_DIR")
	v.BindEnv("relay.buffer_size", "RELAY_BUFFER_SIZE")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.pretty", "LOG_PRETTY")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.channel", "REDIS_CHANNEL")
	v.BindEnv("ngrok.enabled", "NGROK_ENABLED")
	v.BindEnv("ngrok.auth_token", "NGROK_AUTHTOKEN")
	v.BindEnv("ngrok.domain", "NGROK_DOMAIN")
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if c.Relay.BufferSize <= 0 {
		return fmt.Errorf("%w: relay.buffer_size must be positive, got %d", ErrInvalidConfig, c.Relay.BufferSize)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("%w: websocket.max_message_size must be positive", ErrInvalidConfig)
	}
	if c.WebSocket.WriteWait <= 0 {
		return fmt.Errorf("%w: websocket.write_wait must be positive", ErrInvalidConfig)
	}
	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("%w: websocket.ping_interval must be positive", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Channel == "" {
		return fmt.Errorf("%w: redis.channel is required when redis is enabled", ErrInvalidConfig)
	}
	return nil
}

// Package config loads server configuration with viper.
//
// Values come from, in increasing priority: built-in defaults, an optional
// config.yaml, and environment variables (PORT, HOST, LOG_LEVEL,
// REDIS_ENABLED, REDIS_ADDRESS, NGROK_AUTHTOKEN, ...). Command line flags are
// applied on top by the caller.
//
// Example config.yaml:
//
//	server:
//	  host: 0.0.0.0
//	  port: 3000
//	relay:
//	  buffer_size: 100
//	websocket:
//	  write_wait: 10s
//	  ping_interval: 30s
//	redis:
//	  enabled: true
//	  address: redis:6379
package config

package config

import "time"

// Config holds server configuration values.
type Config struct {
	// ChatAddr is the TCP listen address for the line protocol.
	ChatAddr string `mapstructure:"chat_addr" yaml:"chat_addr"`
	// HTTPAddr serves the admin API and the WebSocket bridge.
	HTTPAddr          string        `mapstructure:"http_addr" yaml:"http_addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	// VIPSecret gates entry to the VIP room. Either the plaintext
	// passphrase or a bcrypt hash of it (see internal/auth).
	VIPSecret string `mapstructure:"vip_secret" yaml:"vip_secret"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ChatAddr:          ":12345",
		HTTPAddr:          ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		VIPSecret:         "vip123",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ChatAddr != "" {
		c.ChatAddr = other.ChatAddr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.VIPSecret != "" {
		c.VIPSecret = other.VIPSecret
	}
}

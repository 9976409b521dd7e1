// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the StudyVault CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - ChunkSize: part size for client-driven chunked uploads, bytes. Must
//     match what the server planned the ticket with, so the default mirrors
//     the server default.
//   - MaxAttempts / RetryBaseDelay: retry budget for presigned transfers.
type Config struct {
	ServerURL      string
	ChunkSize      int64
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.ChunkSize = 5 * 1024 * 1024
	c.MaxAttempts = 3
	c.RetryBaseDelay = 500 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Package config handles configuration for the device client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the eCabinet device client.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP endpoint.
//   - RequestTimeout: per-request deadline for remote calls. Kept below
//     SessionPollInterval so a hung validity check cannot outlive the next one.
//   - SessionPollInterval: cadence of the periodic session validity check.
//   - DatabasePath: path of the local SQLite store (cache, session, UI state).
//   - DevicePixelRatio: physical-to-CSS pixel ratio of the device display,
//     factored into page render bitmap resolution.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	SessionPollInterval time.Duration
	DatabasePath        string
	DevicePixelRatio    float64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 4 * time.Second
	c.SessionPollInterval = 5 * time.Second
	c.DatabasePath = "ecabinet.db"
	c.DevicePixelRatio = 1.0
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

package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/flagx"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. Interval fields accept both "5s" strings and integer nanoseconds.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	SessionPollInterval timex.Duration `json:"session_poll_interval"`
	DatabasePath        string         `json:"database_path"`
	DevicePixelRatio    float64        `json:"device_pixel_ratio"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into config. Missing flag means no JSON overlay; an
// unreadable or invalid file panics since the operator explicitly asked
// for it.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerURL != "" {
		config.ServerURL = c.ServerURL
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
	}
	if c.SessionPollInterval.Duration != 0 {
		config.SessionPollInterval = time.Duration(c.SessionPollInterval.Duration)
	}
	if c.DatabasePath != "" {
		config.DatabasePath = c.DatabasePath
	}
	if c.DevicePixelRatio != 0 {
		config.DevicePixelRatio = c.DevicePixelRatio
	}
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server
//	-i int      session poll interval in seconds
//	-f string   path of the local database file
//	-r float    device pixel ratio
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-f", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend server")
	pollInterval := fs.Int("i", int(cfg.SessionPollInterval.Seconds()), "session poll interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path of the local database file")
	fs.Float64Var(&cfg.DevicePixelRatio, "r", cfg.DevicePixelRatio, "device pixel ratio")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionPollInterval = time.Duration(*pollInterval) * time.Second
}

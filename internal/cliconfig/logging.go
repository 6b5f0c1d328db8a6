package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/epochbits/pkg/log"
)

// Logger returns the CLI logger at the configured level. An invalid level
// falls back to info; Validate reports it separately.
func Logger(cfg Config) zerolog.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return log.NewConsoleLogger(os.Stderr, level)
}

package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (EPOCHBITS_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("width", os.Getenv("EPOCHBITS_WIDTH"), &cfg.Width); err != nil {
		return err
	}
	s.setString("state-dir", os.Getenv("EPOCHBITS_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("EPOCHBITS_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("format", os.Getenv("EPOCHBITS_FORMAT"), &cfg.Format)

	if err := s.setDuration("debounce", os.Getenv("EPOCHBITS_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setBoolFromString("verbose", os.Getenv("EPOCHBITS_VERBOSE"), &cfg.Verbose)

	return nil
}

package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/epochbits/pkg/epochbits"
	"github.com/bft-labs/epochbits/pkg/log"
)

// Output formats for printed bitfields.
const (
	FormatBinary = "binary"
	FormatHex    = "hex"
	FormatEpochs = "epochs"
)

// Config holds CLI configuration for epochbits.
type Config struct {
	Width    int
	StateDir string

	LogLevel string
	Format   string

	WatchDebounce time.Duration
	Verbose       bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Width:         epochbits.MaxWidth,
		StateDir:      "", // Derived from the config directory during Validate
		LogLevel:      "info",
		Format:        FormatBinary,
		WatchDebounce: 100 * time.Millisecond,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Width < 1 || c.Width > epochbits.MaxWidth {
		return fmt.Errorf("width must be in [1, %d], got %d", epochbits.MaxWidth, c.Width)
	}

	if c.StateDir == "" {
		if p := DefaultConfigPath(); p != "" {
			c.StateDir = filepath.Dir(p)
		} else {
			c.StateDir = "."
		}
	}

	c.Format = strings.ToLower(c.Format)
	switch c.Format {
	case FormatBinary, FormatHex, FormatEpochs:
	case "":
		c.Format = FormatBinary
	default:
		return fmt.Errorf("format must be one of binary, hex, epochs; got %q", c.Format)
	}

	if c.Verbose {
		c.LogLevel = "debug"
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.WatchDebounce <= 0 {
		return fmt.Errorf("watch debounce must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not changed.
// Range checks are left to Validate.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Used for environment variables that come as strings. Range checks are
// left to Validate.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

const appName = "slotkeeper"

// Config holds CLI configuration for slotkeeper.
type Config struct {
	SaveDir     string
	ManualSlots int

	CaptureTimeout   time.Duration
	AutoSaveInterval time.Duration

	Watch    bool
	LogLevel string
}

// DefaultSaveDir returns $XDG_DATA_HOME/slotkeeper/saves.
func DefaultSaveDir() string {
	return filepath.Join(xdg.DataHome, appName, "saves")
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SaveDir:          DefaultSaveDir(),
		ManualSlots:      domain.DefaultManualSlots,
		CaptureTimeout:   2 * time.Second,
		AutoSaveInterval: 0, // disabled
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.SaveDir == "" {
		return fmt.Errorf("%w: save-dir is required", domain.ErrInvalidConfig)
	}
	c.SaveDir = filepath.Clean(c.SaveDir)

	if c.ManualSlots <= 0 {
		return fmt.Errorf("%w: slots must be positive", domain.ErrInvalidConfig)
	}
	if c.CaptureTimeout <= 0 {
		return fmt.Errorf("%w: capture timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.AutoSaveInterval < 0 {
		return fmt.Errorf("%w: auto-save interval must not be negative", domain.ErrInvalidConfig)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %w", domain.ErrInvalidConfig, err)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

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

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
// "0" is accepted so a file or env var can switch a periodic job off.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	if value == "0" {
		*dst = 0
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

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

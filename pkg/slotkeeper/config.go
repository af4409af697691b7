package slotkeeper

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

// Config holds the configuration for a Manager.
type Config struct {
	// SaveDir is the directory holding slot files and the auto-save.
	// Required.
	SaveDir string

	// ManualSlots is the number of numbered slots after the quicksave.
	// Default: 5
	ManualSlots int

	// CaptureTimeout bounds the wait for a screenshot during a capture.
	// Default: 2 seconds
	CaptureTimeout time.Duration

	// AutoSaveInterval writes the auto-save periodically while running.
	// Zero disables the periodic writer; pause and power-off still write it.
	AutoSaveInterval time.Duration

	// NewGame starts the session fresh: the auto-save is discarded instead
	// of being restored.
	NewGame bool
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.ManualSlots <= 0 {
		c.ManualSlots = domain.DefaultManualSlots
	}
	if c.CaptureTimeout <= 0 {
		c.CaptureTimeout = 2 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SaveDir == "" {
		return fmt.Errorf("%w: SaveDir is required", domain.ErrInvalidConfig)
	}
	c.SaveDir = filepath.Clean(c.SaveDir)
	if c.AutoSaveInterval < 0 {
		return fmt.Errorf("%w: AutoSaveInterval must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// Slots returns every slot id for this configuration, quicksave first.
func (c Config) Slots() []SlotID {
	return domain.AllSlots(c.ManualSlots)
}

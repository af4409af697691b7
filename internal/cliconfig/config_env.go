package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (SLOTKEEPER_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("save-dir", os.Getenv("SLOTKEEPER_SAVE_DIR"), &cfg.SaveDir)
	s.setString("log-level", os.Getenv("SLOTKEEPER_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("slots", os.Getenv("SLOTKEEPER_SLOTS"), &cfg.ManualSlots); err != nil {
		return err
	}
	if err := s.setDuration("capture-timeout", os.Getenv("SLOTKEEPER_CAPTURE_TIMEOUT"), &cfg.CaptureTimeout); err != nil {
		return err
	}
	if err := s.setDuration("auto-save-interval", os.Getenv("SLOTKEEPER_AUTO_SAVE_INTERVAL"), &cfg.AutoSaveInterval); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("SLOTKEEPER_WATCH"), &cfg.Watch)

	return nil
}

package cliconfig

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	SaveDir          string `toml:"save_dir"`
	ManualSlots      int    `toml:"slots"`
	CaptureTimeout   string `toml:"capture_timeout"`
	AutoSaveInterval string `toml:"auto_save_interval"`
	Watch            *bool  `toml:"watch"`
	LogLevel         string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/slotkeeper/config.toml.
func DefaultConfigPath() string {
	if xdg.ConfigHome == "" {
		return ""
	}
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("save-dir", fc.SaveDir, &cfg.SaveDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setInt("slots", fc.ManualSlots, &cfg.ManualSlots)

	if err := s.setDuration("capture-timeout", fc.CaptureTimeout, &cfg.CaptureTimeout); err != nil {
		return err
	}
	if err := s.setDuration("auto-save-interval", fc.AutoSaveInterval, &cfg.AutoSaveInterval); err != nil {
		return err
	}

	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// EncodeFileConfig renders cfg in the config file format.
func EncodeFileConfig(cfg Config) ([]byte, error) {
	watch := cfg.Watch
	return toml.Marshal(FileConfig{
		SaveDir:          cfg.SaveDir,
		ManualSlots:      cfg.ManualSlots,
		CaptureTimeout:   cfg.CaptureTimeout.String(),
		AutoSaveInterval: cfg.AutoSaveInterval.String(),
		Watch:            &watch,
		LogLevel:         cfg.LogLevel,
	})
}

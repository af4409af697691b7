package cliconfig

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ManualSlots != domain.DefaultManualSlots {
		t.Errorf("ManualSlots = %v, want %v", cfg.ManualSlots, domain.DefaultManualSlots)
	}
	if cfg.CaptureTimeout != 2*time.Second {
		t.Errorf("CaptureTimeout = %v, want 2s", cfg.CaptureTimeout)
	}
	if cfg.AutoSaveInterval != 0 {
		t.Errorf("AutoSaveInterval = %v, want 0", cfg.AutoSaveInterval)
	}
	if !strings.HasSuffix(cfg.SaveDir, filepath.Join("slotkeeper", "saves")) {
		t.Errorf("SaveDir = %v, want .../slotkeeper/saves", cfg.SaveDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			SaveDir:        "/tmp/saves/",
			ManualSlots:    5,
			CaptureTimeout: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid minimal config", func(c *Config) {}, false},
		{"missing save dir", func(c *Config) { c.SaveDir = "" }, true},
		{"zero slots", func(c *Config) { c.ManualSlots = 0 }, true},
		{"zero capture timeout", func(c *Config) { c.CaptureTimeout = 0 }, true},
		{"negative auto-save interval", func(c *Config) { c.AutoSaveInterval = -time.Second }, true},
		{"periodic auto-save", func(c *Config) { c.AutoSaveInterval = time.Minute }, false},
		{"debug level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Validate_DerivedDefaults(t *testing.T) {
	cfg := Config{SaveDir: "/tmp/saves/", ManualSlots: 3, CaptureTimeout: time.Second}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.SaveDir != filepath.Clean("/tmp/saves") {
		t.Errorf("SaveDir = %v, want cleaned path", cfg.SaveDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestConfigSetter(t *testing.T) {
	s := newConfigSetter(map[string]bool{"slots": true})

	n := 5
	s.setInt("slots", 9, &n)
	if n != 5 {
		t.Errorf("setInt overrode a changed flag: %d", n)
	}

	d := time.Minute
	if err := s.setDuration("auto-save-interval", "0", &d); err != nil || d != 0 {
		t.Errorf("setDuration(\"0\") = %v, %v; want 0, nil", d, err)
	}
	if err := s.setDuration("auto-save-interval", "soon", &d); err == nil {
		t.Error("setDuration accepted an invalid duration")
	}

	var on bool
	s.setBoolFromString("watch", "1", &on)
	if !on {
		t.Error("setBoolFromString(\"1\") = false, want true")
	}
}

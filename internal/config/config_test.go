package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Encoder.TailPadSec != 0.3 {
		t.Fatalf("unexpected tail pad default: %v", cfg.Encoder.TailPadSec)
	}
	if cfg.Search.PositiveThreshold != 36 || cfg.Search.NegativeThreshold != 36 {
		t.Fatalf("unexpected threshold defaults: %+v", cfg.Search)
	}
	if cfg.Encoder.FFmpegPath != "ffmpeg" || cfg.Encoder.FFprobePath != "ffprobe" {
		t.Fatalf("unexpected encoder defaults: %+v", cfg.Encoder)
	}
	if cfg.Audit.Enabled {
		t.Fatalf("audit must be off by default")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelstitch.toml")
	body := strings.Join([]string{
		`[search]`,
		`base_url = "http://localhost:8085"`,
		`positive_threshold = 40`,
		``,
		`[encoder]`,
		`tail_pad_sec = 0.5`,
		``,
		`[audit]`,
		`enabled = true`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.BaseURL != "http://localhost:8085" {
		t.Fatalf("base url not loaded: %q", cfg.Search.BaseURL)
	}
	if cfg.Search.PositiveThreshold != 40 {
		t.Fatalf("positive threshold not loaded: %v", cfg.Search.PositiveThreshold)
	}
	if cfg.Search.NegativeThreshold != 36 {
		t.Fatalf("untouched default changed: %v", cfg.Search.NegativeThreshold)
	}
	if cfg.Encoder.TailPadSec != 0.5 {
		t.Fatalf("tail pad not loaded: %v", cfg.Encoder.TailPadSec)
	}
	if !cfg.Audit.Enabled || cfg.Audit.DBPath != "reelstitch_audit.db" {
		t.Fatalf("unexpected audit config: %+v", cfg.Audit)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := Default()
	base.Search.BaseURL = "http://localhost:8085"
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.Search.BaseURL = "" }},
		{"negative threshold", func(c *Config) { c.Search.PositiveThreshold = -1 }},
		{"negative pad", func(c *Config) { c.Encoder.TailPadSec = -0.1 }},
		{"audit without path", func(c *Config) { c.Audit.Enabled = true; c.Audit.DBPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

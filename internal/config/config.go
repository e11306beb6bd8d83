// Package config holds the layered pipeline configuration: compiled-in
// defaults, an optional TOML file, then environment overrides applied by
// the CLI.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Search configures the retrieval service connection and the two confidence
// thresholds forwarded verbatim with every query.
type Search struct {
	BaseURL           string  `toml:"base_url"`
	PositiveThreshold float64 `toml:"positive_threshold"`
	NegativeThreshold float64 `toml:"negative_threshold"`
}

// Encoder configures the external media tool.
type Encoder struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	// TailPadSec is added to the audio duration when trimming the merged
	// artifact; it absorbs minor audio-video skew at the tail.
	TailPadSec float64 `toml:"tail_pad_sec"`
}

// Audit configures the opt-in staged-segment ledger.
type Audit struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

type Config struct {
	Search  Search  `toml:"search"`
	Encoder Encoder `toml:"encoder"`
	Audit   Audit   `toml:"audit"`
}

// Default returns the compiled-in configuration. The thresholds and tail
// pad mirror the retrieval corpus defaults; they are tuning values, not
// derived quantities.
func Default() Config {
	return Config{
		Search: Search{
			PositiveThreshold: 36,
			NegativeThreshold: 36,
		},
		Encoder: Encoder{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			TailPadSec:  0.3,
		},
		Audit: Audit{
			DBPath: "reelstitch_audit.db",
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults; a named file must exist and parse.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Search.BaseURL == "" {
		return errors.New("search base URL is required (set [search].base_url or REELSTITCH_SEARCH_URL)")
	}
	if c.Search.PositiveThreshold < 0 || c.Search.NegativeThreshold < 0 {
		return errors.New("search thresholds must be >= 0")
	}
	if c.Encoder.TailPadSec < 0 {
		return errors.New("tail pad must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.DBPath == "" {
		return errors.New("audit is enabled but no db path is set")
	}
	return nil
}

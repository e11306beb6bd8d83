package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/beyondchenlin/reelstitch/internal/config"
	"github.com/beyondchenlin/reelstitch/internal/pipeline"
)

func run(cmd *cobra.Command, input, outputRoot string) error {
	top, _ := cmd.Flags().GetInt("top")
	configPath, _ := cmd.Flags().GetString("config")
	auditOn, _ := cmd.Flags().GetBool("audit")
	tailPad, _ := cmd.Flags().GetFloat64("tail-pad")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyEnv(&cfg)
	if tailPad >= 0 {
		cfg.Encoder.TailPadSec = tailPad
	}
	if auditOn {
		cfg.Audit.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(outputRoot)
	if err != nil {
		return err
	}

	auditDB := ""
	if cfg.Audit.Enabled {
		auditDB = cfg.Audit.DBPath
		if !filepath.IsAbs(auditDB) {
			auditDB = filepath.Join(absOut, auditDB)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Hour)
	defer cancel()

	pcfg := pipeline.Config{
		InputPath:  absIn,
		OutputRoot: absOut,
		TopN:       top,

		SearchBaseURL:     cfg.Search.BaseURL,
		PositiveThreshold: cfg.Search.PositiveThreshold,
		NegativeThreshold: cfg.Search.NegativeThreshold,

		FFmpegPath:  cfg.Encoder.FFmpegPath,
		FFprobePath: cfg.Encoder.FFprobePath,
		TailPad:     time.Duration(cfg.Encoder.TailPadSec * float64(time.Second)),

		AuditDB: auditDB,

		Logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	summary, err := pipeline.Run(ctx, pcfg)
	if err != nil {
		return err
	}

	cmd.Println(renderSummary(summary))
	cmd.Printf("staged %d segments across %d scripts\n", summary.TotalStaged, len(summary.Jobs))
	return nil
}

func applyEnv(cfg *config.Config) {
	if v := os.Getenv("REELSTITCH_SEARCH_URL"); v != "" {
		cfg.Search.BaseURL = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("REELSTITCH_POSITIVE_THRESHOLD"), 64); err == nil {
		cfg.Search.PositiveThreshold = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("REELSTITCH_NEGATIVE_THRESHOLD"), 64); err == nil {
		cfg.Search.NegativeThreshold = v
	}
	if v := os.Getenv("REELSTITCH_FFMPEG"); v != "" {
		cfg.Encoder.FFmpegPath = v
	}
	if v := os.Getenv("REELSTITCH_FFPROBE"); v != "" {
		cfg.Encoder.FFprobePath = v
	}
}

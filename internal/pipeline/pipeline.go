package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/beyondchenlin/reelstitch/internal/audit"
	"github.com/beyondchenlin/reelstitch/internal/ports"
	"github.com/beyondchenlin/reelstitch/internal/ports/adapters/ffmpeg"
	"github.com/beyondchenlin/reelstitch/internal/ports/adapters/msearch"
	"github.com/beyondchenlin/reelstitch/internal/types"
	"github.com/beyondchenlin/reelstitch/internal/usecase"
)

type Config struct {
	// InputPath is a script file or a directory of script files.
	InputPath  string
	OutputRoot string
	TopN       int

	SearchBaseURL     string
	PositiveThreshold float64
	NegativeThreshold float64

	FFmpegPath  string
	FFprobePath string
	TailPad     time.Duration

	// AuditDB enables the staged-segment ledger when non-empty.
	AuditDB string

	Logf func(format string, args ...any)
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path is empty")
	}
	if c.OutputRoot == "" {
		return errors.New("output root is empty")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top must be > 0")
	}
	if c.SearchBaseURL == "" {
		return errors.New("search base URL is required")
	}
	if c.TailPad < 0 {
		return errors.New("tail pad must be >= 0")
	}
	return nil
}

// Run processes every script reachable from the input path, one job to
// completion before the next. Per-job failures are logged and reflected in
// the summary; only an invalid input path aborts the batch.
func Run(ctx context.Context, cfg Config) (types.Summary, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	scripts, err := resolveScripts(cfg.InputPath)
	if err != nil {
		return types.Summary{}, err
	}

	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		return types.Summary{}, err
	}

	lock := flock.New(filepath.Join(cfg.OutputRoot, ".reelstitch.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return types.Summary{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return types.Summary{}, fmt.Errorf("another run already owns %s", cfg.OutputRoot)
	}
	defer func() { _ = lock.Unlock() }()

	// adapters
	enc := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	searcher := msearch.New(cfg.SearchBaseURL)

	if err := enc.Verify(ctx); err != nil {
		logf("encoder check: %v", err)
	}

	var auditLog ports.AuditLog = audit.Nop{}
	if cfg.AuditDB != "" {
		ledger, err := audit.Open(cfg.AuditDB)
		if err != nil {
			return types.Summary{}, err
		}
		defer func() { _ = ledger.Close() }()
		auditLog = ledger
		logf("audit ledger: %s (run %s)", cfg.AuditDB, ledger.RunID())
	}

	uc := usecase.New(usecase.Deps{
		Search: searcher,
		Video:  enc,
		Audit:  auditLog,
		Logf:   logf,
	})

	var summary types.Summary
	for _, script := range scripts {
		logf("processing script: %s", script)
		res, err := uc.Run(ctx, usecase.Input{
			ScriptPath:        script,
			OutputRoot:        cfg.OutputRoot,
			TopN:              cfg.TopN,
			PositiveThreshold: cfg.PositiveThreshold,
			NegativeThreshold: cfg.NegativeThreshold,
			TailPad:           cfg.TailPad,
		})
		if err != nil {
			logf("job failed for %s: %v", script, err)
			res.Script = script
			if res.MergeErr == "" {
				res.MergeErr = err.Error()
			}
		}
		summary.Jobs = append(summary.Jobs, res)
		summary.TotalStaged += res.Staged
	}
	logf("processed %d staged segments across %d scripts", summary.TotalStaged, len(summary.Jobs))
	return summary, nil
}

// resolveScripts expands the input path to the script files to process: a
// single .txt file, or the .txt files one level inside a directory. Anything
// else is an invalid input and fails the whole invocation.
func resolveScripts(input string) ([]string, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("invalid input path %s: %w", input, err)
	}

	if !fi.IsDir() {
		if !strings.EqualFold(filepath.Ext(input), ".txt") {
			return nil, fmt.Errorf("invalid input path %s: not a .txt script", input)
		}
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("invalid input path %s: %w", input, err)
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		scripts = append(scripts, filepath.Join(input, e.Name()))
	}
	sort.Strings(scripts)
	if len(scripts) == 0 {
		return nil, fmt.Errorf("invalid input path %s: no .txt scripts found", input)
	}
	return scripts, nil
}

// ensure adapters implement ports
var _ ports.Searcher = (*msearch.Adapter)(nil)
var _ ports.Encoder = (*ffmpeg.Adapter)(nil)
var _ ports.AuditLog = (*audit.Ledger)(nil)

package usecase

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beyondchenlin/reelstitch/internal/audit"
	"github.com/beyondchenlin/reelstitch/internal/domain/staging"
	"github.com/beyondchenlin/reelstitch/internal/ports"
	"github.com/beyondchenlin/reelstitch/internal/types"
)

type Deps struct {
	Search ports.Searcher
	Video  ports.Encoder
	Audit  ports.AuditLog
	Logf   func(format string, args ...any)
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Logf == nil {
		d.Logf = func(string, ...any) {}
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	return Usecase{d: d}
}

type Input struct {
	ScriptPath        string
	OutputRoot        string
	TopN              int
	PositiveThreshold float64
	NegativeThreshold float64
	TailPad           time.Duration
}

// Run processes one script file end to end: stage the best match for every
// search line, copy the companion audio and subtitle files, then merge the
// staged segments into a single audio-aligned artifact. Term and candidate
// failures are logged and skipped; only an unreadable script or an
// uncreatable job folder aborts the job.
func (u Usecase) Run(ctx context.Context, in Input) (types.JobResult, error) {
	base := strings.TrimSuffix(filepath.Base(in.ScriptPath), filepath.Ext(in.ScriptPath))
	jobDir := filepath.Join(in.OutputRoot, base)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return types.JobResult{Script: in.ScriptPath}, err
	}

	terms, err := readScript(in.ScriptPath)
	if err != nil {
		return types.JobResult{Script: in.ScriptPath}, err
	}

	staged := u.selectSegments(ctx, in, terms, jobDir)
	u.copyCompanions(in.ScriptPath, jobDir)

	res := types.JobResult{
		Script: in.ScriptPath,
		Terms:  len(terms),
		Staged: len(staged),
	}

	merged, err := u.merge(ctx, jobDir, base, in.TailPad)
	if err != nil {
		u.d.Logf("merge failed for %s: %v", jobDir, err)
		res.MergeErr = err.Error()
		return res, nil
	}
	u.d.Logf("merged artifact: %s", merged)
	res.MergedPath = merged
	return res, nil
}

// readScript returns the search terms of a script file in line order.
// Blank lines are not terms and do not consume an ordinal.
func readScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	defer f.Close()

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		terms = append(terms, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return terms, nil
}

// selectSegments queries the retrieval service per term and stages up to
// TopN candidate copies in the job folder. The returned slice is in script
// order; staged file names embed the same order for the merge step.
func (u Usecase) selectSegments(ctx context.Context, in Input, terms []string, jobDir string) []types.StagedSegment {
	script := filepath.Base(in.ScriptPath)
	var staged []types.StagedSegment
	for i, term := range terms {
		ordinal := i + 1
		u.d.Logf("searching term %d: %s", ordinal, term)

		cands, err := u.d.Search.Search(ctx, term, "", in.PositiveThreshold, in.NegativeThreshold)
		if err != nil {
			u.d.Logf("search failed for %q: %v", term, err)
			continue
		}
		if len(cands) == 0 {
			u.d.Logf("no segments matched %q", term)
			continue
		}
		if in.TopN < len(cands) {
			cands = cands[:in.TopN]
		}

		for j, c := range cands {
			rec := types.StagedRecord{
				Script:   script,
				Ordinal:  ordinal,
				Rank:     j + 1,
				Term:     term,
				Source:   c.Path,
				StartSec: c.StartSec,
				EndSec:   c.EndSec,
				Score:    c.Score,
			}
			dest := filepath.Join(jobDir, staging.SegmentName(ordinal, j+1, term))
			if err := copyFile(c.Path, dest); err != nil {
				u.d.Logf("copy segment %s: %v", c.Path, err)
			} else {
				rec.Copied = true
				staged = append(staged, types.StagedSegment{Path: dest, Ordinal: ordinal, Term: term})
				u.d.Logf("staged segment: %s", dest)
			}
			if err := u.d.Audit.RecordStaged(ctx, rec); err != nil {
				u.d.Logf("audit record for %q: %v", term, err)
			}
		}
	}
	return staged
}

// copyCompanions places the script's matching audio track and subtitle file
// next to the staged segments. Misses are warnings: the merge step fails
// loudly later if the audio is truly absent.
func (u Usecase) copyCompanions(scriptPath, jobDir string) {
	base := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	dir := filepath.Dir(scriptPath)

	var audioName string
	for _, ext := range []string{".mp3", ".MP3", ".wav", ".WAV"} {
		if _, err := os.Stat(filepath.Join(dir, base+ext)); err == nil {
			audioName = base + ext
			break
		}
	}
	if audioName == "" {
		u.d.Logf("no companion audio found for %s", base)
	} else if err := copyFile(filepath.Join(dir, audioName), filepath.Join(jobDir, audioName)); err != nil {
		u.d.Logf("copy audio %s: %v", audioName, err)
	} else {
		u.d.Logf("copied audio: %s", filepath.Join(jobDir, audioName))
	}

	src := filepath.Join(dir, base+".srt")
	if _, err := os.Stat(src); err != nil {
		u.d.Logf("no companion subtitle found for %s.srt", base)
		return
	}
	dest := filepath.Join(jobDir, base+".srt")
	if err := copyFile(src, dest); err != nil {
		u.d.Logf("copy subtitle %s: %v", src, err)
		return
	}
	u.d.Logf("copied subtitle: %s", dest)
}

// merge concatenates the job folder's staged segments, aligns the result to
// the audio duration plus the tail pad, and deletes the segment inputs only
// after the artifact is verified present and non-empty. On failure the
// segments are left in place for manual recovery.
func (u Usecase) merge(ctx context.Context, jobDir, base string, pad time.Duration) (string, error) {
	entries, err := os.ReadDir(jobDir)
	if err != nil {
		return "", fmt.Errorf("list job folder: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	folder, err := staging.Classify(names)
	if err != nil {
		return "", fmt.Errorf("merge preconditions in %s: %w", jobDir, err)
	}

	audioPath := filepath.Join(jobDir, folder.Audio)
	audioDur, err := u.d.Video.ProbeDuration(ctx, audioPath)
	if err != nil {
		return "", err
	}

	videos := make([]string, 0, len(folder.Videos))
	for _, v := range folder.Videos {
		videos = append(videos, filepath.Join(jobDir, v))
	}
	output := filepath.Join(jobDir, base+"_merged.mp4")

	if err := u.d.Video.Concat(ctx, types.ConcatRequest{
		VideoInputs: videos,
		AudioInput:  audioPath,
		Output:      output,
		TrimTo:      audioDur + pad,
	}); err != nil {
		return "", err
	}

	fi, err := os.Stat(output)
	if err != nil || fi.Size() == 0 {
		return "", fmt.Errorf("merge output missing or empty: %s", output)
	}

	for _, v := range videos {
		if err := os.Remove(v); err != nil {
			u.d.Logf("remove merged segment %s: %v", v, err)
		}
	}
	return output, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

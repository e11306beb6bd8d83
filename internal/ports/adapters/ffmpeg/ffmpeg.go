package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/beyondchenlin/reelstitch/internal/domain/filtergraph"
	"github.com/beyondchenlin/reelstitch/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Verify checks that the encoder binary is runnable.
func (a *Adapter) Verify(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg, "-version")
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg not available at %q: %w\n%s", a.ffmpeg, err, string(b))
	}
	return nil
}

func (a *Adapter) Concat(ctx context.Context, req types.ConcatRequest) error {
	args, err := concatArgs(req)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b))
	}
	return nil
}

// concatArgs builds the full encoder invocation: N video inputs followed by
// the audio input, the serialized filter graph, explicit stream mapping,
// and a duration trim. Kept separate from process execution for testing.
func concatArgs(req types.ConcatRequest) ([]string, error) {
	g, err := filtergraph.New(len(req.VideoInputs))
	if err != nil {
		return nil, err
	}
	if req.AudioInput == "" {
		return nil, fmt.Errorf("ffmpeg concat: no audio input")
	}
	if req.Output == "" {
		return nil, fmt.Errorf("ffmpeg concat: no output path")
	}

	args := []string{"-y"}
	for _, in := range req.VideoInputs {
		args = append(args, "-i", in)
	}
	args = append(args, "-i", req.AudioInput)
	args = append(args,
		"-filter_complex", g.FilterComplex(),
		"-map", g.VideoLabel(),
		"-map", g.AudioLabel(),
		"-t", fmtSeconds(req.TrimTo),
		req.Output,
	)
	return args, nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

package ffmpeg

import (
	"strings"
	"testing"
	"time"

	"github.com/beyondchenlin/reelstitch/internal/types"
)

func TestConcatArgs(t *testing.T) {
	args, err := concatArgs(types.ConcatRequest{
		VideoInputs: []string{"001_01_a.mp4", "002_01_b.mp4"},
		AudioInput:  "clip1.mp3",
		Output:      "clip1_merged.mp4",
		TrimTo:      12700 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("concatArgs: %v", err)
	}
	want := []string{
		"-y",
		"-i", "001_01_a.mp4",
		"-i", "002_01_b.mp4",
		"-i", "clip1.mp3",
		"-filter_complex",
		"[0:v]setpts=PTS-STARTPTS[v0];[1:v]setpts=PTS-STARTPTS[v1];[v0][v1]concat=n=2:v=1:a=0[vcat];[vcat][2:a]concat=n=1:v=1:a=1[outv][outa]",
		"-map", "[outv]",
		"-map", "[outa]",
		"-t", "12.700",
		"clip1_merged.mp4",
	}
	if len(args) != len(want) {
		t.Fatalf("args length %d, want %d:\n%s", len(args), len(want), strings.Join(args, " "))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestConcatArgs_SingleSegmentKeepsTwoStageShape(t *testing.T) {
	args, err := concatArgs(types.ConcatRequest{
		VideoInputs: []string{"001_01_a.mp4"},
		AudioInput:  "clip1.wav",
		Output:      "clip1_merged.mp4",
		TrimTo:      5 * time.Second,
	})
	if err != nil {
		t.Fatalf("concatArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "concat=n=1:v=1:a=0[vcat]") {
		t.Fatalf("single segment must still pass through the video concat stage: %s", joined)
	}
	if !strings.Contains(joined, "[vcat][1:a]concat=n=1:v=1:a=1[outv][outa]") {
		t.Fatalf("missing audio concat stage: %s", joined)
	}
}

func TestConcatArgs_Preconditions(t *testing.T) {
	if _, err := concatArgs(types.ConcatRequest{AudioInput: "a.mp3", Output: "o.mp4"}); err == nil {
		t.Fatalf("expected error with no video inputs")
	}
	if _, err := concatArgs(types.ConcatRequest{VideoInputs: []string{"v.mp4"}, Output: "o.mp4"}); err == nil {
		t.Fatalf("expected error with no audio input")
	}
	if _, err := concatArgs(types.ConcatRequest{VideoInputs: []string{"v.mp4"}, AudioInput: "a.mp3"}); err == nil {
		t.Fatalf("expected error with no output path")
	}
}

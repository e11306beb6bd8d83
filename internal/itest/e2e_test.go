//go:build integration

package itest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/beyondchenlin/reelstitch/internal/pipeline"
)

// TestE2E assembles a two-term script against a stub retrieval service and
// real ffmpeg fixtures, then checks the merged artifact and cleanup.
func TestE2E(t *testing.T) {
	tmp := t.TempDir()
	inDir := filepath.Join(tmp, "in")
	corpus := filepath.Join(tmp, "corpus")
	outRoot := filepath.Join(tmp, "out")
	for _, d := range []string{inDir, corpus} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}

	// corpus fixtures
	srcA := makeVideo(t, filepath.Join(corpus, "a.mp4"), 5)
	srcB := makeVideo(t, filepath.Join(corpus, "b.mp4"), 5)

	// script with companions; 12.4s audio gives a 12.7s trim target
	script := filepath.Join(inDir, "clip1.txt")
	if err := os.WriteFile(script, []byte("sunset over water\ncity traffic at night\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	makeAudio(t, filepath.Join(inDir, "clip1.wav"), 12.4)
	if err := os.WriteFile(filepath.Join(inDir, "clip1.srt"), []byte("1\n00:00:00,000 --> 00:00:02,000\nhi\n"), 0o644); err != nil {
		t.Fatalf("write subtitle: %v", err)
	}

	byTerm := map[string]string{
		"sunset over water":     srcA,
		"city traffic at night": srcB,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"results":[{"path":%q,"start_time":0,"end_time":5,"score":0.9}]}`, byTerm[req.Text])
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := pipeline.Run(ctx, pipeline.Config{
		InputPath:         script,
		OutputRoot:        outRoot,
		TopN:              1,
		SearchBaseURL:     srv.URL,
		PositiveThreshold: 36,
		NegativeThreshold: 36,
		TailPad:           300 * time.Millisecond,
		Logf:              t.Logf,
	})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if summary.TotalStaged != 2 {
		t.Fatalf("expected 2 staged segments, got %d", summary.TotalStaged)
	}

	jobDir := filepath.Join(outRoot, "clip1")
	merged := filepath.Join(jobDir, "clip1_merged.mp4")
	fi, err := os.Stat(merged)
	if err != nil || fi.Size() == 0 {
		t.Fatalf("merged artifact missing or empty: %v", err)
	}

	dur, err := probeDurationSeconds(merged)
	if err != nil {
		t.Fatalf("probe merged: %v", err)
	}
	if math.Abs(dur-12.7) > 0.3 {
		t.Fatalf("merged duration %.2fs, want ~12.7s", dur)
	}

	entries, err := os.ReadDir(jobDir)
	if err != nil {
		t.Fatalf("read job dir: %v", err)
	}
	for _, e := range entries {
		switch e.Name() {
		case "clip1_merged.mp4", "clip1.wav", "clip1.srt":
		default:
			t.Fatalf("leftover file after merge: %s", e.Name())
		}
	}
}

func makeVideo(t *testing.T, path string, seconds float64) string {
	t.Helper()
	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=640x360:d=%.1f", seconds),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		path,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg video fixture: %v\n%s", err, string(b))
	}
	return path
}

func makeAudio(t *testing.T, path string, seconds float64) {
	t.Helper()
	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("sine=frequency=440:duration=%.1f", seconds),
		path,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg audio fixture: %v\n%s", err, string(b))
	}
}

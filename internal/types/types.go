package types

import "time"

// Candidate is one ranked match returned by the retrieval service for a
// single search term. Candidates are ephemeral: they exist only while the
// selector decides what to stage.
type Candidate struct {
	Path     string
	StartSec float64
	EndSec   float64
	Score    float64
}

// StagedRecord traces one selected candidate from search to its staging
// copy. Records are passed in memory; the opt-in audit ledger persists them.
type StagedRecord struct {
	Script   string
	Ordinal  int // 1-based script line ordinal
	Rank     int // 1-based rank within the term's results
	Term     string
	Source   string
	StartSec float64
	EndSec   float64
	Score    float64
	Copied   bool
}

// StagedSegment is a media copy placed in the job folder, carried in script
// order from selection through to the merge.
type StagedSegment struct {
	Path    string
	Ordinal int
	Term    string
}

// ConcatRequest describes one encoder invocation: concatenate the video
// inputs in order, join the audio input, trim the result to TrimTo.
type ConcatRequest struct {
	VideoInputs []string
	AudioInput  string
	Output      string
	TrimTo      time.Duration
}

// JobResult summarizes one processed script file.
type JobResult struct {
	Script     string
	Terms      int
	Staged     int
	MergedPath string
	MergeErr   string
}

// Summary aggregates a whole batch run. TotalStaged counts segment copies
// made before any merge-triggered cleanup.
type Summary struct {
	Jobs        []JobResult
	TotalStaged int
}

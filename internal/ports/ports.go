package ports

import (
	"context"
	"time"

	"github.com/beyondchenlin/reelstitch/internal/types"
)

// Searcher queries the retrieval service for segments matching a search
// term. The returned list is pre-sorted by descending relevance and is
// trusted as-is; callers do not re-rank.
type Searcher interface {
	Search(ctx context.Context, text, contextText string, positive, negative float64) ([]types.Candidate, error)
}

// Encoder invokes the external media tool.
type Encoder interface {
	Verify(ctx context.Context) error
	Concat(ctx context.Context, req types.ConcatRequest) error
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// AuditLog records staged-candidate traces. Implementations must tolerate
// records whose copy failed (Copied=false).
type AuditLog interface {
	RecordStaged(ctx context.Context, rec types.StagedRecord) error
}

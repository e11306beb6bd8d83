// Package msearch talks to a MaterialSearch-compatible retrieval service:
// given a text query and two confidence thresholds it returns video
// segments ranked by descending relevance.
package msearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/beyondchenlin/reelstitch/internal/types"
)

const requestTimeout = 60 * time.Second

type Adapter struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

func (a *Adapter) Search(ctx context.Context, text, contextText string, positive, negative float64) ([]types.Candidate, error) {
	payload := map[string]any{
		"text":               text,
		"context":            contextText,
		"positive_threshold": positive,
		"negative_threshold": negative,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", a.baseURL+"/api/search/video", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("search timeout after %s (term=%q)", requestTimeout, text)
		}
		return nil, err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search status %d: %s", resp.StatusCode, truncate(string(rb), 400))
	}

	// The service's ranking is authoritative; results are consumed in
	// response order without re-sorting.
	var out []types.Candidate
	for _, r := range gjson.GetBytes(rb, "results").Array() {
		out = append(out, types.Candidate{
			Path:     r.Get("path").String(),
			StartSec: r.Get("start_time").Float(),
			EndSec:   r.Get("end_time").Float(),
			Score:    r.Get("score").Float(),
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

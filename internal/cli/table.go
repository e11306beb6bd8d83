package cli

import (
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/beyondchenlin/reelstitch/internal/types"
)

// renderSummary formats the per-job outcome of a batch run.
func renderSummary(s types.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Script", "Terms", "Staged", "Result"})

	for _, job := range s.Jobs {
		result := filepath.Base(job.MergedPath)
		if job.MergeErr != "" {
			result = "failed: " + job.MergeErr
		}
		tw.AppendRow(table.Row{
			filepath.Base(job.Script),
			strconv.Itoa(job.Terms),
			strconv.Itoa(job.Staged),
			result,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

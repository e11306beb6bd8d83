package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "reelstitch <script-or-dir> <output-root>",
		Short:        "Assemble video compilations from search scripts",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().Int("top", 1, "Candidates to stage per search term")
	root.Flags().String("config", "", "TOML config file")
	root.Flags().Bool("audit", false, "Record staged segments in the audit ledger")

	// Hidden tuning flag (internal)
	root.Flags().Float64("tail-pad", -1, "Override the trim pad in seconds")
	_ = root.Flags().MarkHidden("tail-pad")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

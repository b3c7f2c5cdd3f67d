package commands

import (
	"github.com/spf13/cobra"

	"github.com/theweak1/auto-finance/internal/config"
	"github.com/theweak1/auto-finance/internal/ingest"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process all eligible statement files once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}

			pipeline, cleanup, err := BuildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			printResults(cmd, results)
			return nil
		},
	}
}

// printResults summarizes the run on stdout. Per-file failures are reported
// here but don't fail the command; they will be retried on the next run.
func printResults(cmd *cobra.Command, results []ingest.Result) {
	if len(results) == 0 {
		cmd.Println("No eligible files found.")
		return
	}
	for _, r := range results {
		switch r.State {
		case ingest.StateArchived:
			cmd.Printf("%s: %d rows -> %s\n", r.Filename, r.Rows, r.Worksheet)
		case ingest.StateSkipped:
			cmd.Printf("%s: already processed\n", r.Filename)
		default:
			cmd.Printf("%s: %s (%v)\n", r.Filename, r.State, r.Err)
		}
	}
}

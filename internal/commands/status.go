package commands

import (
	"github.com/spf13/cobra"

	"github.com/theweak1/auto-finance/internal/config"
	"github.com/theweak1/auto-finance/internal/ledger"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List statement files recorded in the ingestion ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}

			store, err := ledger.NewSQLiteStore(cfg.LedgerDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.Processed(cmd.Context())
			if err != nil {
				return err
			}

			if len(names) == 0 {
				cmd.Println("No files processed yet.")
				return nil
			}
			for _, name := range names {
				cmd.Println(name)
			}
			return nil
		},
	}
}

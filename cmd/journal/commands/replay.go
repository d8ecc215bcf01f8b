package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReplayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Re-apply spreadsheet writes left unfinished by an interrupted run",
		Long: "Every run records its spreadsheet writes in the Postgres ledger before applying them. " +
			"replay applies the writes that were planned but never confirmed. Requires DATABASE_URL.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for replay")
			}
			// Replay only touches the store and the ledger
			j, err := a.journalWith(ctx, nil, nil)
			if err != nil {
				return err
			}
			n, err := j.Replay(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Replayed %d pending writes.\n", n)
			return err
		},
	}
}

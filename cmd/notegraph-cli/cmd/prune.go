package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"notegraph/internal/application/commands"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete superseded mirror runs",
	Long: `Delete every node and relationship that does not belong to the active run.

Sync never deletes old runs by itself. Do not prune while a sync is in
progress: its staged rows belong to a run that is not active yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openMirror(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		_, _, runs := mirrorServices(store)
		removed, err := commands.NewPruneCommand(runs).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d superseded run(s)\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

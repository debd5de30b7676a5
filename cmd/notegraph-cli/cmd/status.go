package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"notegraph/internal/adapters/render"
	"notegraph/internal/application/commands"
	"notegraph/internal/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mirror health",
	Long: `Compare the index with the active mirror run and report its health:

  empty    no run was ever activated
  healthy  the active run matches the index
  stale    the active run is still served but lags the index or the last sync failed
  broken   no run is active and the last sync failed

Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		idx, err := openSource()
		if err != nil {
			return err
		}
		defer idx.Close()

		store, err := openMirror(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		syncer, _, _ := mirrorServices(store)
		status, err := commands.NewStatusCommand(syncer, idx).Execute(ctx)
		if err != nil {
			return err
		}

		rebuilt, err := idx.LastRebuild(ctx)
		if err != nil {
			return err
		}

		if statusJSON {
			return printJSON(cmd, struct {
				*domain.StatusSummary
				IndexRebuiltAt *time.Time `json:"index_rebuilt_at"`
			}{status, rebuilt})
		}
		render.Status(cmd.OutOrStdout(), status)
		render.IndexRebuilt(cmd.OutOrStdout(), rebuilt)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the status as JSON")
	rootCmd.AddCommand(statusCmd)
}

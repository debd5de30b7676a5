package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"notegraph/internal/adapters/memory"
	"notegraph/internal/adapters/render"
	"notegraph/internal/application/commands"
	"notegraph/internal/ports"
)

var (
	syncBatchSize      int
	syncMaxResolutions int
	syncReindex        bool
	syncDryRun         bool
	syncJSON           bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the index into Neo4j",
	Long: `Copy every note, link target, typed link and resolution from the index
into Neo4j under a new run id. The run becomes active only when its counts
match the index; otherwise the previous run keeps serving reads and the
error is recorded in the mirror state.

With --dry-run the sync runs against an in-memory store, which checks the
index without touching the graph database.

Examples:
  notegraph-cli sync
  notegraph-cli sync --reindex --batch-size 1000
  notegraph-cli sync --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		idx, err := openSource()
		if err != nil {
			return err
		}
		defer idx.Close()

		if syncReindex {
			stats, err := commands.NewIndexCommand(idx).Execute(ctx)
			if err != nil {
				return err
			}
			logger.Info("vault indexed", "notes", stats.NotesAdded, "links", stats.LinksAdded)
		}

		var store ports.MirrorStore
		if syncDryRun {
			store = memory.NewStore()
		} else {
			store, err = openMirror(ctx)
			if err != nil {
				return err
			}
		}
		defer store.Close(ctx)

		if !cmd.Flags().Changed("batch-size") {
			syncBatchSize = cfg.Sync.BatchSize
		}
		if !cmd.Flags().Changed("max-resolutions") {
			syncMaxResolutions = cfg.Sync.MaxResolutionsPerTarget
		}

		syncer, _, _ := mirrorServices(store)
		summary, err := commands.NewSyncCommand(syncer, idx, syncBatchSize, syncMaxResolutions).Execute(ctx)
		if err != nil {
			return err
		}

		if syncJSON {
			return printJSON(cmd, summary)
		}
		if syncDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), render.MutedText.Render("dry run: nothing was written to the graph database"))
		}
		render.Sync(cmd.OutOrStdout(), summary)
		return nil
	},
}

func init() {
	flags := syncCmd.Flags()
	flags.IntVar(&syncBatchSize, "batch-size", 0, "rows per write batch (default 500, max 2000)")
	flags.IntVar(&syncMaxResolutions, "max-resolutions", 0, "notes a link target may resolve to (default 20, max 200)")
	flags.BoolVar(&syncReindex, "reindex", false, "rebuild the index from the vault first")
	flags.BoolVar(&syncDryRun, "dry-run", false, "sync into an in-memory store instead of Neo4j")
	flags.BoolVar(&syncJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(syncCmd)
}

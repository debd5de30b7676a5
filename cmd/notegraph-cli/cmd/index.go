package cmd

import (
	"github.com/spf13/cobra"

	"notegraph/internal/adapters/render"
	"notegraph/internal/application/commands"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the local index from the vault",
	Long: `Scan every markdown note in the vault and rebuild the SQLite index that
sync reads from. Typed links come from frontmatter keys and inline fields
("supports:: [[Other]]"); plain wikilinks are recorded as links_to.

Example:
  notegraph-cli index --vault ~/notes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openSource()
		if err != nil {
			return err
		}
		defer idx.Close()

		stats, err := commands.NewIndexCommand(idx).Execute(cmd.Context())
		if err != nil {
			return err
		}
		render.Index(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

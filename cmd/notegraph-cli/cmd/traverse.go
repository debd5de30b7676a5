package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"notegraph/internal/adapters/render"
	"notegraph/internal/application/commands"
)

var (
	traverseDirection  string
	traverseMaxHops    int
	traverseMaxNotes   int
	traverseMaxEdges   int
	traverseMaxLinks   int
	traverseUnresolved bool
	traverseJSON       bool
	traverseCopy       bool
)

var traverseCmd = &cobra.Command{
	Use:   "traverse <path>",
	Short: "Walk typed links from a note",
	Long: `Walk the active mirror run breadth-first from the note at <path>.

The walk is bounded by hops from the seed, total notes, total edges and links
read per note. When any budget cuts the walk short the result is marked
truncated.

Examples:
  notegraph-cli traverse projects/Alpha.md
  notegraph-cli traverse projects/Alpha.md --direction out --max-hops 3
  notegraph-cli traverse Alpha.md --json --copy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openMirror(ctx)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		_, traverser, _ := mirrorServices(store)
		travCmd := commands.NewTraverseCommand(traverser, args[0])
		travCmd.Direction = traverseDirection
		travCmd.MaxHops = traverseMaxHops
		travCmd.MaxNotes = traverseMaxNotes
		travCmd.MaxEdges = traverseMaxEdges
		travCmd.MaxLinksPerNote = traverseMaxLinks
		travCmd.IncludeUnresolvedTargets = traverseUnresolved

		result, err := travCmd.Execute(ctx)
		if err != nil {
			return err
		}

		if traverseCopy {
			if err := clipboard.WriteAll(render.Paths(result)); err != nil {
				logger.Warn("failed to copy paths to clipboard", "error", err)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Copied %d paths to clipboard\n", len(result.Nodes))
			}
		}

		if traverseJSON {
			return printJSON(cmd, result)
		}
		render.Traverse(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	flags := traverseCmd.Flags()
	flags.StringVarP(&traverseDirection, "direction", "d", "both", "links to follow: outgoing, incoming, or both")
	flags.IntVar(&traverseMaxHops, "max-hops", 0, "maximum hops from the seed (default 2, max 6)")
	flags.IntVar(&traverseMaxNotes, "max-notes", 0, "maximum notes returned (default 80, max 400)")
	flags.IntVar(&traverseMaxEdges, "max-edges", 0, "maximum edges returned (default 1500, max 10000)")
	flags.IntVar(&traverseMaxLinks, "max-links", 0, "maximum links read per note and direction (default 80, max 500)")
	flags.BoolVar(&traverseUnresolved, "include-unresolved", false, "include links whose target matches no note")
	flags.BoolVar(&traverseJSON, "json", false, "print the result as JSON")
	flags.BoolVar(&traverseCopy, "copy", false, "copy the reached note paths to the clipboard")
	rootCmd.AddCommand(traverseCmd)
}

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"notegraph/internal/application/commands"
)

func indexTool() mcp.Tool {
	return mcp.NewTool("index_vault",
		mcp.WithDescription("Rebuild the local note index from the markdown vault. Run before mirror_sync to pick up vault edits."),
	)
}

func (t *Tools) indexHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := commands.NewIndexCommand(t.indexer).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Indexed %d files: %d notes, %d links in %s.",
		stats.FilesScanned, stats.NotesAdded, stats.LinksAdded, stats.Duration.Round(1e6))), nil
}

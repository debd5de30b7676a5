package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"notegraph/internal/application/commands"
	"notegraph/internal/domain"
)

// --- mirror_status ---

func statusTool() mcp.Tool {
	return mcp.NewTool("mirror_status",
		mcp.WithDescription("Report graph mirror health: source counts, mirrored counts of the active run, consistency and the last error. Read-only."),
	)
}

func (t *Tools) statusHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	syncer, _, _, err := t.services(ctx)
	if err != nil {
		return toolError(err)
	}
	status, err := commands.NewStatusCommand(syncer, t.source).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(status)
}

// --- mirror_sync ---

func syncTool() mcp.Tool {
	return mcp.NewTool("mirror_sync",
		mcp.WithDescription("Copy the note graph into the graph mirror under a new run and activate it once counts match. The previous run stays active on failure."),
		mcp.WithNumber("batch_size",
			mcp.Description(fmt.Sprintf("Rows per write batch (%d-%d, default %d)", domain.MinBatchSize, domain.MaxBatchSize, domain.DefaultBatchSize)),
		),
		mcp.WithNumber("max_resolutions_per_target",
			mcp.Description(fmt.Sprintf("Notes a link target may resolve to (%d-%d, default %d)",
				domain.MinMaxResolutionsPerTarget, domain.MaxMaxResolutionsPerTarget, domain.DefaultMaxResolutionsPerTarget)),
		),
	)
}

func (t *Tools) syncHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	syncer, _, _, err := t.services(ctx)
	if err != nil {
		return toolError(err)
	}
	cmd := commands.NewSyncCommand(syncer, t.source,
		req.GetInt("batch_size", 0),
		req.GetInt("max_resolutions_per_target", 0),
	)
	summary, err := cmd.Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(summary)
}

// --- mirror_traverse ---

func traverseTool() mcp.Tool {
	return mcp.NewTool("mirror_traverse",
		mcp.WithDescription("Walk typed links breadth-first from a seed note in the active mirror run. Budgets bound hops, notes, edges and links per note; truncated reports whether any budget cut the walk short."),
		mcp.WithString("path",
			mcp.Description("Vault-relative path of the seed note (e.g. projects/Alpha.md)"),
			mcp.Required(),
		),
		mcp.WithString("direction",
			mcp.Description("Link direction to follow"),
			mcp.Enum("outgoing", "incoming", "both"),
		),
		mcp.WithNumber("max_hops", mcp.Description(fmt.Sprintf("Maximum hops from the seed (default %d)", domain.DefaultMaxHops))),
		mcp.WithNumber("max_notes", mcp.Description(fmt.Sprintf("Maximum notes returned (default %d)", domain.DefaultMaxNotes))),
		mcp.WithNumber("max_edges", mcp.Description(fmt.Sprintf("Maximum edges returned (default %d)", domain.DefaultMaxEdges))),
		mcp.WithNumber("max_links_per_note", mcp.Description(fmt.Sprintf("Maximum links read per note and direction (default %d)", domain.DefaultMaxLinksPerNote))),
		mcp.WithBoolean("include_unresolved_targets",
			mcp.Description("Include outgoing links whose target matches no note"),
		),
	)
}

func (t *Tools) traverseHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, traverser, _, err := t.services(ctx)
	if err != nil {
		return toolError(err)
	}

	cmd := commands.NewTraverseCommand(traverser, req.GetString("path", ""))
	cmd.Direction = req.GetString("direction", "")
	cmd.MaxHops = req.GetInt("max_hops", 0)
	cmd.MaxNotes = req.GetInt("max_notes", 0)
	cmd.MaxEdges = req.GetInt("max_edges", 0)
	cmd.MaxLinksPerNote = req.GetInt("max_links_per_note", 0)
	cmd.IncludeUnresolvedTargets = req.GetBool("include_unresolved_targets", false)

	result, err := cmd.Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(result)
}

// --- mirror_prune ---

func pruneTool() mcp.Tool {
	return mcp.NewTool("mirror_prune",
		mcp.WithDescription("Delete the rows of every run except the active one. Do not run while a sync is in progress."),
	)
}

func (t *Tools) pruneHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, _, runs, err := t.services(ctx)
	if err != nil {
		return toolError(err)
	}
	removed, err := commands.NewPruneCommand(runs).Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Pruned %d superseded run(s).", removed)), nil
}

package commands

import (
	"context"

	"notegraph/internal/application"
)

// PruneCommand deletes the data of superseded runs
type PruneCommand struct {
	runs *application.RunManager
}

// NewPruneCommand creates a new PruneCommand
func NewPruneCommand(runs *application.RunManager) *PruneCommand {
	return &PruneCommand{runs: runs}
}

// Execute prunes every run except the active one and returns how many were removed
func (c *PruneCommand) Execute(ctx context.Context) (int, error) {
	return c.runs.PruneSuperseded(ctx)
}

package commands

import (
	"context"

	"notegraph/internal/application"
	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

// StatusCommand reports mirror health without writing anything
type StatusCommand struct {
	syncer *application.Syncer
	source ports.GraphSource
}

// NewStatusCommand creates a new StatusCommand
func NewStatusCommand(syncer *application.Syncer, source ports.GraphSource) *StatusCommand {
	return &StatusCommand{syncer: syncer, source: source}
}

// Execute reads the status
func (c *StatusCommand) Execute(ctx context.Context) (*domain.StatusSummary, error) {
	return c.syncer.Status(ctx, c.source)
}

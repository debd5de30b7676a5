package commands

import (
	"context"

	"notegraph/internal/application"
	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

// SyncCommand mirrors the canonical store into the graph store
type SyncCommand struct {
	syncer         *application.Syncer
	source         ports.GraphSource
	BatchSize      int
	MaxResolutions int
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand(syncer *application.Syncer, source ports.GraphSource, batchSize, maxResolutions int) *SyncCommand {
	return &SyncCommand{
		syncer:         syncer,
		source:         source,
		BatchSize:      batchSize,
		MaxResolutions: maxResolutions,
	}
}

// Validate checks the tuning options
func (c *SyncCommand) Validate() error {
	if c.BatchSize < 0 {
		return &application.ValidationError{Field: "batchSize", Message: "batch size cannot be negative"}
	}
	if c.MaxResolutions < 0 {
		return &application.ValidationError{Field: "maxResolutions", Message: "max resolutions cannot be negative"}
	}
	return nil
}

// Execute runs the sync
func (c *SyncCommand) Execute(ctx context.Context) (*domain.SyncSummary, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.syncer.Sync(ctx, c.source, domain.SyncOptions{
		BatchSize:               c.BatchSize,
		MaxResolutionsPerTarget: c.MaxResolutions,
	})
}

package commands

import (
	"context"
	"fmt"

	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

// IndexCommand rebuilds the canonical store from the vault
type IndexCommand struct {
	indexer ports.VaultIndexer
}

// NewIndexCommand creates a new IndexCommand
func NewIndexCommand(indexer ports.VaultIndexer) *IndexCommand {
	return &IndexCommand{indexer: indexer}
}

// Execute runs the rebuild
func (c *IndexCommand) Execute(ctx context.Context) (*domain.IndexStats, error) {
	stats, err := c.indexer.Rebuild(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to index vault: %w", err)
	}
	return stats, nil
}

package ports

import (
	"context"

	"notegraph/internal/domain"
)

// GraphSource is the canonical, relational description of the note graph.
// The mirror is rebuilt from it on every sync.
type GraphSource interface {
	ListNotesForSync(ctx context.Context) ([]domain.Note, error)
	ListTypedLinksForSync(ctx context.Context) ([]domain.TypedLink, error)
	// ResolvePathsByTarget returns at most limit candidate notes for a raw
	// link target, best match first.
	ResolvePathsByTarget(ctx context.Context, target string, limit int) ([]domain.Resolution, error)
	GetGraphCounts(ctx context.Context) (domain.Counts, error)
}

// VaultIndexer rebuilds the canonical store from the notes on disk
type VaultIndexer interface {
	Rebuild(ctx context.Context) (*domain.IndexStats, error)
}

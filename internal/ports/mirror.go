package ports

import (
	"context"
	"time"

	"notegraph/internal/domain"
)

// MirrorStore is the graph-oriented store holding run-scoped copies of the
// note graph plus the singleton mirror state record.
//
// Every Write* call is one transaction. Every read takes the run id to scope
// it; implementations never infer a "current" run on their own.
type MirrorStore interface {
	// Schema
	EnsureSchema(ctx context.Context) error

	// Staging writes
	WriteNotes(ctx context.Context, runID string, rows []domain.Note) error
	WriteTargets(ctx context.Context, runID string, rows []domain.Target) error
	WriteTypedLinks(ctx context.Context, runID string, rows []domain.TypedLink) error
	WriteResolvedLinks(ctx context.Context, runID string, rows []domain.ResolvedLink) error
	CountRun(ctx context.Context, runID string) (domain.MirrorCounts, error)

	// Mirror state. ReadState returns nil when no record exists.
	ReadState(ctx context.Context) (*domain.MirrorState, error)
	MarkActive(ctx context.Context, runID string, at time.Time) error
	MarkError(ctx context.Context, message string, at time.Time) error

	// Traversal reads
	NoteExists(ctx context.Context, runID, path string) (bool, error)
	OutgoingLinks(ctx context.Context, runID, path string, includeUnresolved bool, limit int) ([]domain.LinkRow, error)
	IncomingLinks(ctx context.Context, runID, path string, limit int) ([]domain.LinkRow, error)

	// PruneRuns deletes every run except keepRunID and reports how many runs
	// were removed.
	PruneRuns(ctx context.Context, keepRunID string) (int, error)

	Close(ctx context.Context) error
}

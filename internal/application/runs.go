package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

// RunManager issues run ids and owns the mirror state record
type RunManager struct {
	store ports.MirrorStore
	newID func() string
}

// NewRunManager creates a RunManager backed by store
func NewRunManager(store ports.MirrorStore) *RunManager {
	return &RunManager{store: store, newID: uuid.NewString}
}

// NewRunID returns a globally unique id for one sync attempt
func (m *RunManager) NewRunID() string {
	return m.newID()
}

// EnsureSchema creates the store's uniqueness constraints. Safe to call on every sync.
func (m *RunManager) EnsureSchema(ctx context.Context) error {
	if err := m.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure mirror schema: %w", err)
	}
	return nil
}

// ReadState returns the mirror state, or the empty state if none was written yet
func (m *RunManager) ReadState(ctx context.Context) (domain.MirrorState, error) {
	state, err := m.store.ReadState(ctx)
	if err != nil {
		return domain.MirrorState{}, fmt.Errorf("failed to read mirror state: %w", err)
	}
	if state == nil {
		return domain.EmptyMirrorState(), nil
	}
	return *state, nil
}

// MarkActive publishes runID as the active run and clears error fields.
// This is the only cutover operation.
func (m *RunManager) MarkActive(ctx context.Context, runID string, at time.Time) error {
	if err := m.store.MarkActive(ctx, runID, at.UTC()); err != nil {
		return fmt.Errorf("failed to activate run %s: %w", runID, err)
	}
	return nil
}

// MarkError records a failure without touching the active run
func (m *RunManager) MarkError(ctx context.Context, message string, at time.Time) error {
	if err := m.store.MarkError(ctx, message, at.UTC()); err != nil {
		return fmt.Errorf("failed to record mirror error: %w", err)
	}
	return nil
}

// PruneSuperseded deletes the data of every run except the active one
func (m *RunManager) PruneSuperseded(ctx context.Context) (int, error) {
	state, err := m.ReadState(ctx)
	if err != nil {
		return 0, err
	}
	if !state.HasActiveRun() {
		return 0, ErrMirrorEmpty
	}
	n, err := m.store.PruneRuns(ctx, state.ActiveRunID)
	if err != nil {
		return 0, fmt.Errorf("failed to prune superseded runs: %w", err)
	}
	return n, nil
}

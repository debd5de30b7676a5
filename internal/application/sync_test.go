package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notegraph/internal/application"
	"notegraph/internal/domain"
)

func TestSync_ScenarioA(t *testing.T) {
	ctx := context.Background()
	m := newMirror()

	summary, err := m.syncer.Sync(ctx, scenarioA(), domain.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.Counts{Notes: 3, TypedLinks: 1}, summary.SourceCounts)
	assert.Equal(t, domain.MirrorCounts{Notes: 3, TypedLinks: 1, Targets: 1, ResolvedLinks: 1}, summary.MirroredCounts)
	assert.True(t, summary.Consistent)
	assert.Equal(t, domain.MirrorStatusOK, summary.MirrorStatus)
	assert.NotEmpty(t, summary.ActiveRunID)
	assert.NotNil(t, summary.LastSuccessAt)
	assert.Empty(t, summary.LastError)

	state, err := m.runs.ReadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary.ActiveRunID, state.ActiveRunID)
}

func TestSync_IdempotentResync(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	src := &fakeSource{
		notes: notes("A", "B", "C", "D"),
		links: []domain.TypedLink{
			link("A", "supports", "B", 0),
			link("A", "refutes", "C", 1),
			link("B", "extends", "D", 0),
			link("D", "cites", "A", 0),
		},
	}
	opts := domain.TraverseOptions{Path: "A"}

	first, err := m.syncer.Sync(ctx, src, domain.SyncOptions{})
	require.NoError(t, err)
	walk1, err := m.traverse.Traverse(ctx, opts)
	require.NoError(t, err)

	second, err := m.syncer.Sync(ctx, src, domain.SyncOptions{BatchSize: 1})
	require.NoError(t, err)
	walk2, err := m.traverse.Traverse(ctx, opts)
	require.NoError(t, err)

	assert.NotEqual(t, first.ActiveRunID, second.ActiveRunID)
	assert.Equal(t, first.MirroredCounts, second.MirroredCounts)
	assert.Equal(t, second.ActiveRunID, walk2.ActiveRunID)
	assert.Equal(t, walk1.Nodes, walk2.Nodes)
	assert.Equal(t, walk1.Edges, walk2.Edges)
	assert.Equal(t, walk1.Truncated, walk2.Truncated)
}

func TestSync_ScenarioC_InconsistentKeepsActiveRun(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	src := &fakeSource{
		notes: notes("A", "B", "C"),
		links: []domain.TypedLink{
			link("A", "r", "B", 0),
			link("A", "r", "C", 1),
			link("B", "r", "C", 0),
			link("C", "r", "A", 0),
		},
	}

	good, err := m.syncer.Sync(ctx, src, domain.SyncOptions{})
	require.NoError(t, err)
	before, err := m.syncer.Status(ctx, src)
	require.NoError(t, err)

	src.counts = &domain.Counts{Notes: 3, TypedLinks: 5}
	_, err = m.syncer.Sync(ctx, src, domain.SyncOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, application.ErrInconsistent))
	assert.Contains(t, err.Error(), "typedLinks: 5")
	assert.Contains(t, err.Error(), "typedLinks: 4")

	var cerr *application.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 5, cerr.Source.TypedLinks)
	assert.Equal(t, 4, cerr.Staged.TypedLinks)

	after, err := m.syncer.Status(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, good.ActiveRunID, after.State.ActiveRunID)
	assert.Equal(t, before.MirroredCounts, after.MirroredCounts)
	assert.Equal(t, domain.MirrorStatusError, after.State.Status)
	assert.Contains(t, after.State.LastError, "typedLinks: 5")
	assert.False(t, after.Consistent)
	assert.Equal(t, domain.HealthStale, after.Health)

	walk, err := m.traverse.Traverse(ctx, domain.TraverseOptions{Path: "A"})
	require.NoError(t, err)
	assert.Equal(t, good.ActiveRunID, walk.ActiveRunID)
}

func TestSync_WriteFailureKeepsActiveRun(t *testing.T) {
	ctx := context.Background()
	m := newMirror()

	good, err := m.syncer.Sync(ctx, scenarioA(), domain.SyncOptions{})
	require.NoError(t, err)

	m.store.failWriteTypedLinks = errUnreachable
	_, err = m.syncer.Sync(ctx, scenarioA(), domain.SyncOptions{})
	require.ErrorIs(t, err, errUnreachable)

	state, err := m.runs.ReadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, good.ActiveRunID, state.ActiveRunID)
	assert.Equal(t, domain.MirrorStatusError, state.Status)
	assert.Contains(t, state.LastError, "connection refused")
	assert.NotNil(t, state.LastErrorAt)
	assert.NotNil(t, state.LastSuccessAt)
}

func TestSync_FirstSyncFailureIsBroken(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	src := scenarioA()
	src.err = errors.New("source locked")

	_, err := m.syncer.Sync(ctx, src, domain.SyncOptions{})
	require.Error(t, err)

	src.err = nil
	status, err := m.syncer.Status(ctx, src)
	require.NoError(t, err)
	assert.Nil(t, status.MirroredCounts)
	assert.Equal(t, domain.HealthBroken, status.Health)
}

func TestSync_AnnotationFailureDoesNotMaskPrimary(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	m.store.failWriteNotes = errUnreachable
	m.store.failMarkError = errors.New("state write rejected")

	_, err := m.syncer.Sync(ctx, scenarioA(), domain.SyncOptions{})
	require.ErrorIs(t, err, errUnreachable)
	assert.NotContains(t, err.Error(), "state write rejected")
}

func TestSync_CutoverFailureIsReported(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	m.store.failMarkActive = errUnreachable

	_, err := m.syncer.Sync(ctx, scenarioA(), domain.SyncOptions{})
	require.ErrorIs(t, err, errUnreachable)

	state, err := m.runs.ReadState(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.ActiveRunID)
	assert.Equal(t, domain.MirrorStatusError, state.Status)
}

func TestSync_ResolutionsCapped(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	src := &fakeSource{
		notes: notes("A", "x1", "x2", "x3", "x4"),
		links: []domain.TypedLink{link("A", "mentions", "x", 0)},
		resolve: map[string][]domain.Resolution{
			"x": {
				{Path: "x1", MatchedBy: "basename"},
				{Path: "x2", MatchedBy: "basename"},
				{Path: "x3", MatchedBy: "title"},
				{Path: "x4", MatchedBy: "title"},
			},
		},
	}

	summary, err := m.syncer.Sync(ctx, src, domain.SyncOptions{MaxResolutionsPerTarget: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.MirroredCounts.ResolvedLinks)
}

func TestSync_WritesInBatches(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	src := &fakeSource{notes: notes("a", "b", "c", "d", "e")}

	_, err := m.syncer.Sync(ctx, src, domain.SyncOptions{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, m.store.writeNotesCalls)
}

func TestSync_DanglingLinkFailsValidation(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	src := &fakeSource{
		notes: notes("A"),
		links: []domain.TypedLink{link("ghost", "r", "A", 0)},
	}

	_, err := m.syncer.Sync(ctx, src, domain.SyncOptions{})
	require.ErrorIs(t, err, application.ErrInconsistent)

	state, err := m.runs.ReadState(ctx)
	require.NoError(t, err)
	assert.False(t, state.HasActiveRun())
}

func TestStatus_ReadOnly(t *testing.T) {
	ctx := context.Background()
	m := newMirror()

	status, err := m.syncer.Status(ctx, scenarioA())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthEmpty, status.Health)
	assert.Equal(t, domain.MirrorStatusEmpty, status.State.Status)

	state, err := m.store.ReadState(ctx)
	require.NoError(t, err)
	assert.Nil(t, state, "status must not create the state record")

	_, err = m.syncer.Sync(ctx, scenarioA(), domain.SyncOptions{})
	require.NoError(t, err)
	status, err = m.syncer.Status(ctx, scenarioA())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthHealthy, status.Health)
	assert.True(t, status.Consistent)
}

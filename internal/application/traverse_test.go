package application_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notegraph/internal/application"
	"notegraph/internal/domain"
)

func syncSource(t *testing.T, m *mirror, src *fakeSource) string {
	t.Helper()
	summary, err := m.syncer.Sync(context.Background(), src, domain.SyncOptions{})
	require.NoError(t, err)
	return summary.ActiveRunID
}

func strPtr(s string) *string { return &s }

func TestTraverse_ScenarioA(t *testing.T) {
	m := newMirror()
	runID := syncSource(t, m, scenarioA())

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:      "A",
		Direction: domain.DirectionOutgoing,
		MaxHops:   1,
	})
	require.NoError(t, err)

	assert.Equal(t, runID, result.ActiveRunID)
	assert.Equal(t, []domain.TraverseNode{{Path: "A", Hop: 0}, {Path: "B", Hop: 1}}, result.Nodes)
	assert.Equal(t, []domain.TraverseEdge{{
		Direction:  domain.DirectionOutgoing,
		FromPath:   "A",
		ToPath:     strPtr("B"),
		Rel:        "supports",
		Target:     "B",
		ToWikilink: "[[B]]",
	}}, result.Edges)
	assert.False(t, result.Truncated)
}

func TestTraverse_ScenarioB_SeedNotFound(t *testing.T) {
	m := newMirror()
	runID := syncSource(t, m, scenarioA())

	_, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{Path: "missing.md"})
	require.ErrorIs(t, err, application.ErrSeedNotFound)
	assert.Contains(t, err.Error(), "sync")
	assert.Contains(t, err.Error(), runID)
	assert.Zero(t, m.store.outgoingCalls)
	assert.Zero(t, m.store.incomingCalls)
}

func TestTraverse_EmptyMirror(t *testing.T) {
	m := newMirror()

	_, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{Path: "A"})
	require.ErrorIs(t, err, application.ErrMirrorEmpty)
	assert.Contains(t, err.Error(), "mirror is empty")
}

func TestTraverse_RequiresPath(t *testing.T) {
	m := newMirror()
	syncSource(t, m, scenarioA())

	_, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{Path: "   "})
	require.ErrorIs(t, err, application.ErrInvalidOption)
}

func TestTraverse_HopBound(t *testing.T) {
	m := newMirror()
	syncSource(t, m, &fakeSource{
		notes: notes("A", "B", "C"),
		links: []domain.TypedLink{link("A", "r", "B", 0), link("B", "r", "C", 0)},
	})

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:      "A",
		Direction: domain.DirectionOutgoing,
		MaxHops:   1,
	})
	require.NoError(t, err)
	for _, n := range result.Nodes {
		assert.LessOrEqual(t, n.Hop, 1)
	}
	assert.Equal(t, []domain.TraverseNode{{Path: "A", Hop: 0}, {Path: "B", Hop: 1}}, result.Nodes)
	assert.Len(t, result.Edges, 1)

	result, err = m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:      "A",
		Direction: domain.DirectionOutgoing,
		MaxHops:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TraverseNode{Path: "C", Hop: 2}, result.Nodes[2])
}

// hub links to n spokes
func hub(n int) *fakeSource {
	src := &fakeSource{notes: notes("hub")}
	for i := 0; i < n; i++ {
		spoke := fmt.Sprintf("spoke-%02d", i)
		src.notes = append(src.notes, domain.Note{Path: spoke})
		src.links = append(src.links, link("hub", "r", spoke, i))
	}
	return src
}

func TestTraverse_FanOutBudget(t *testing.T) {
	m := newMirror()
	syncSource(t, m, hub(10))

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:            "hub",
		Direction:       domain.DirectionOutgoing,
		MaxLinksPerNote: 3,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Edges, 3)
	assert.Equal(t, "spoke-00", *result.Edges[0].ToPath)
	assert.Equal(t, "spoke-02", *result.Edges[2].ToPath)
	assert.Len(t, result.Nodes, 4)
}

func TestTraverse_DuplicateLinkBeyondFanOutNotTruncated(t *testing.T) {
	m := newMirror()
	syncSource(t, m, &fakeSource{
		notes: notes("A", "B"),
		links: []domain.TypedLink{link("A", "r", "B", 0), link("A", "r", "B", 1)},
	})

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:            "A",
		Direction:       domain.DirectionOutgoing,
		MaxHops:         1,
		MaxLinksPerNote: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.TraverseNode{{Path: "A", Hop: 0}, {Path: "B", Hop: 1}}, result.Nodes)
	assert.Len(t, result.Edges, 1)
	assert.False(t, result.Truncated)
}

func TestTraverse_UnresolvedBeyondFanOutNotTruncated(t *testing.T) {
	m := newMirror()
	syncSource(t, m, &fakeSource{
		notes: notes("A", "B"),
		links: []domain.TypedLink{link("A", "r", "B", 0), link("A", "r", "Ghost", 1)},
	})

	opts := domain.TraverseOptions{
		Path:            "A",
		Direction:       domain.DirectionOutgoing,
		MaxHops:         1,
		MaxLinksPerNote: 1,
	}
	result, err := m.traverse.Traverse(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, result.Truncated, "unresolved row is skipped without the flag")

	opts.IncludeUnresolvedTargets = true
	result, err = m.traverse.Traverse(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.Truncated, "unresolved row would have been emitted")
	assert.Len(t, result.Edges, 1)
}

func TestTraverse_NodeBudget(t *testing.T) {
	m := newMirror()
	syncSource(t, m, hub(10))

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:      "hub",
		Direction: domain.DirectionOutgoing,
		MaxNotes:  4,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Nodes, 4)
	// edges to notes that did not fit are still reported
	assert.Len(t, result.Edges, 10)
}

func TestTraverse_EdgeBudget(t *testing.T) {
	m := newMirror()
	syncSource(t, m, hub(10))

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:     "hub",
		MaxEdges: 5,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Edges, 5)
	assert.LessOrEqual(t, len(result.Nodes), domain.DefaultMaxNotes)
}

func TestTraverse_WithinBudgetsNotTruncated(t *testing.T) {
	m := newMirror()
	syncSource(t, m, hub(3))

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:            "hub",
		Direction:       domain.DirectionOutgoing,
		MaxLinksPerNote: 3,
	})
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Len(t, result.Edges, 3)
}

func TestTraverse_Incoming(t *testing.T) {
	m := newMirror()
	syncSource(t, m, &fakeSource{
		notes: notes("A", "B", "C"),
		links: []domain.TypedLink{link("C", "cites", "B", 0), link("A", "supports", "B", 0)},
	})

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:      "B",
		Direction: domain.DirectionIncoming,
		MaxHops:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.TraverseNode{{Path: "B", Hop: 0}, {Path: "A", Hop: 1}, {Path: "C", Hop: 1}}, result.Nodes)
	require.Len(t, result.Edges, 2)
	assert.Equal(t, domain.DirectionIncoming, result.Edges[0].Direction)
	assert.Equal(t, "A", result.Edges[0].FromPath)
	assert.Equal(t, "B", *result.Edges[0].ToPath)
	assert.Equal(t, "C", result.Edges[1].FromPath)
}

func TestTraverse_CycleTerminates(t *testing.T) {
	m := newMirror()
	syncSource(t, m, &fakeSource{
		notes: notes("A", "B"),
		links: []domain.TypedLink{link("A", "r", "B", 0), link("B", "r", "A", 0)},
	})

	result, err := m.traverse.Traverse(context.Background(), domain.TraverseOptions{
		Path:    "A",
		MaxHops: 6,
	})
	require.NoError(t, err)
	assert.Len(t, result.Nodes, 2)
	assert.False(t, result.Truncated)
	// A→B and B→A, each seen once per direction
	assert.Len(t, result.Edges, 4)
}

func TestTraverse_UnresolvedTargets(t *testing.T) {
	m := newMirror()
	syncSource(t, m, &fakeSource{
		notes: notes("A", "B"),
		links: []domain.TypedLink{link("A", "r", "B", 0), link("A", "todo", "Nowhere", 1)},
	})
	opts := domain.TraverseOptions{Path: "A", Direction: domain.DirectionOutgoing, MaxHops: 1}

	result, err := m.traverse.Traverse(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, result.Edges, 1)

	opts.IncludeUnresolvedTargets = true
	result, err = m.traverse.Traverse(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Edges, 2)
	assert.Nil(t, result.Edges[1].ToPath)
	assert.Equal(t, "Nowhere", result.Edges[1].Target)
	assert.Len(t, result.Nodes, 2)
}

func TestTraverse_Deterministic(t *testing.T) {
	m := newMirror()
	src := hub(12)
	for i := 0; i < 12; i += 3 {
		src.links = append(src.links, link(fmt.Sprintf("spoke-%02d", i), "back", "hub", 0))
	}
	syncSource(t, m, src)
	opts := domain.TraverseOptions{Path: "hub", MaxNotes: 6, MaxLinksPerNote: 5}

	first, err := m.traverse.Traverse(context.Background(), opts)
	require.NoError(t, err)
	second, err := m.traverse.Traverse(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTraverse_RunIsolation(t *testing.T) {
	ctx := context.Background()
	m := newMirror()
	syncSource(t, m, scenarioA())

	staged := "staged-run"
	require.NoError(t, m.store.WriteNotes(ctx, staged, notes("A", "Z")))
	require.NoError(t, m.store.WriteTargets(ctx, staged, []domain.Target{{Target: "Z"}}))
	require.NoError(t, m.store.WriteTypedLinks(ctx, staged, []domain.TypedLink{link("A", "r", "Z", 0)}))
	require.NoError(t, m.store.WriteResolvedLinks(ctx, staged, []domain.ResolvedLink{{Target: "Z", Path: "Z", MatchedBy: "path"}}))

	result, err := m.traverse.Traverse(ctx, domain.TraverseOptions{Path: "A", MaxHops: 6})
	require.NoError(t, err)
	for _, n := range result.Nodes {
		assert.NotEqual(t, "Z", n.Path)
	}
	for _, e := range result.Edges {
		assert.NotEqual(t, "Z", e.Target)
	}

	_, err = m.traverse.Traverse(ctx, domain.TraverseOptions{Path: "Z"})
	require.ErrorIs(t, err, application.ErrSeedNotFound)
}

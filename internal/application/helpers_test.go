package application_test

import (
	"context"
	"errors"
	"time"

	"notegraph/internal/adapters/memory"
	"notegraph/internal/application"
	"notegraph/internal/domain"
)

// fakeSource is an in-memory GraphSource. Targets resolve to the note whose
// path equals the target unless resolve overrides it.
type fakeSource struct {
	notes   []domain.Note
	links   []domain.TypedLink
	resolve map[string][]domain.Resolution
	counts  *domain.Counts
	err     error
}

func (f *fakeSource) ListNotesForSync(context.Context) ([]domain.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.notes, nil
}

func (f *fakeSource) ListTypedLinksForSync(context.Context) ([]domain.TypedLink, error) {
	return f.links, nil
}

func (f *fakeSource) ResolvePathsByTarget(_ context.Context, target string, limit int) ([]domain.Resolution, error) {
	if res, ok := f.resolve[target]; ok {
		return res, nil
	}
	for _, n := range f.notes {
		if n.Path == target {
			return []domain.Resolution{{Path: n.Path, MatchedBy: "path"}}, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetGraphCounts(context.Context) (domain.Counts, error) {
	if f.counts != nil {
		return *f.counts, nil
	}
	return domain.Counts{Notes: len(f.notes), TypedLinks: len(f.links)}, nil
}

func notes(paths ...string) []domain.Note {
	out := make([]domain.Note, len(paths))
	for i, p := range paths {
		out[i] = domain.Note{Path: p, NoteID: "id-" + p, Title: p}
	}
	return out
}

func link(from, rel, target string, pos int) domain.TypedLink {
	return domain.TypedLink{FromPath: from, Rel: rel, ToTarget: target, ToWikilink: "[[" + target + "]]", Position: pos}
}

// failingStore wraps a memory store and fails selected operations
type failingStore struct {
	*memory.Store
	failWriteNotes      error
	failWriteTypedLinks error
	failMarkError       error
	failMarkActive      error

	writeNotesCalls int
	outgoingCalls   int
	incomingCalls   int
}

func (f *failingStore) WriteNotes(ctx context.Context, runID string, rows []domain.Note) error {
	f.writeNotesCalls++
	if f.failWriteNotes != nil {
		return f.failWriteNotes
	}
	return f.Store.WriteNotes(ctx, runID, rows)
}

func (f *failingStore) WriteTypedLinks(ctx context.Context, runID string, rows []domain.TypedLink) error {
	if f.failWriteTypedLinks != nil {
		return f.failWriteTypedLinks
	}
	return f.Store.WriteTypedLinks(ctx, runID, rows)
}

func (f *failingStore) MarkError(ctx context.Context, message string, at time.Time) error {
	if f.failMarkError != nil {
		return f.failMarkError
	}
	return f.Store.MarkError(ctx, message, at)
}

func (f *failingStore) MarkActive(ctx context.Context, runID string, at time.Time) error {
	if f.failMarkActive != nil {
		return f.failMarkActive
	}
	return f.Store.MarkActive(ctx, runID, at)
}

func (f *failingStore) OutgoingLinks(ctx context.Context, runID, path string, includeUnresolved bool, limit int) ([]domain.LinkRow, error) {
	f.outgoingCalls++
	return f.Store.OutgoingLinks(ctx, runID, path, includeUnresolved, limit)
}

func (f *failingStore) IncomingLinks(ctx context.Context, runID, path string, limit int) ([]domain.LinkRow, error) {
	f.incomingCalls++
	return f.Store.IncomingLinks(ctx, runID, path, limit)
}

var errUnreachable = errors.New("connection refused")

// mirror bundles the services wired over one store
type mirror struct {
	store    *failingStore
	runs     *application.RunManager
	syncer   *application.Syncer
	traverse *application.Traverser
}

func newMirror() *mirror {
	store := &failingStore{Store: memory.NewStore()}
	runs := application.NewRunManager(store)
	return &mirror{
		store:    store,
		runs:     runs,
		syncer:   application.NewSyncer(store, runs, nil),
		traverse: application.NewTraverser(store, runs, nil),
	}
}

// scenarioA: A supports B; C is isolated
func scenarioA() *fakeSource {
	return &fakeSource{
		notes: notes("A", "B", "C"),
		links: []domain.TypedLink{link("A", "supports", "B", 0)},
	}
}

// Package memory provides an in-process MirrorStore with the same run
// scoping and ordering rules as the Neo4j store. It backs dry runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

type run struct {
	notes    map[string]domain.Note
	targets  map[string]bool
	links    []domain.TypedLink
	resolved []domain.ResolvedLink
}

// Store implements ports.MirrorStore in memory
type Store struct {
	mu    sync.RWMutex
	runs  map[string]*run
	state *domain.MirrorState
}

// Ensure Store implements MirrorStore
var _ ports.MirrorStore = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{runs: make(map[string]*run)}
}

func (s *Store) run(runID string) *run {
	r, ok := s.runs[runID]
	if !ok {
		r = &run{notes: make(map[string]domain.Note), targets: make(map[string]bool)}
		s.runs[runID] = r
	}
	return r
}

// EnsureSchema is a no-op; uniqueness is enforced by the maps
func (s *Store) EnsureSchema(ctx context.Context) error {
	return ctx.Err()
}

// WriteNotes upserts notes by path
func (s *Store) WriteNotes(ctx context.Context, runID string, rows []domain.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.run(runID)
	for _, n := range rows {
		r.notes[n.Path] = n
	}
	return nil
}

// WriteTargets upserts targets
func (s *Store) WriteTargets(ctx context.Context, runID string, rows []domain.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.run(runID)
	for _, t := range rows {
		r.targets[t.Target] = true
	}
	return nil
}

// WriteTypedLinks inserts links whose note and target exist in the run
func (s *Store) WriteTypedLinks(ctx context.Context, runID string, rows []domain.TypedLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.run(runID)
	for _, l := range rows {
		if _, ok := r.notes[l.FromPath]; !ok || !r.targets[l.ToTarget] {
			continue
		}
		r.links = append(r.links, l)
	}
	return nil
}

// WriteResolvedLinks inserts resolutions whose target and note exist in the run
func (s *Store) WriteResolvedLinks(ctx context.Context, runID string, rows []domain.ResolvedLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.run(runID)
	for _, rl := range rows {
		if _, ok := r.notes[rl.Path]; !ok || !r.targets[rl.Target] {
			continue
		}
		r.resolved = append(r.resolved, rl)
	}
	return nil
}

// CountRun returns row totals for runID
func (s *Store) CountRun(ctx context.Context, runID string) (domain.MirrorCounts, error) {
	if err := ctx.Err(); err != nil {
		return domain.MirrorCounts{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return domain.MirrorCounts{}, nil
	}
	return domain.MirrorCounts{
		Notes:         len(r.notes),
		TypedLinks:    len(r.links),
		Targets:       len(r.targets),
		ResolvedLinks: len(r.resolved),
	}, nil
}

// ReadState returns a copy of the state record, or nil
func (s *Store) ReadState(ctx context.Context) (*domain.MirrorState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, nil
	}
	state := *s.state
	return &state, nil
}

// MarkActive publishes runID and clears the error fields
func (s *Store) MarkActive(ctx context.Context, runID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &domain.MirrorState{
		ActiveRunID:   runID,
		Status:        domain.MirrorStatusOK,
		LastSuccessAt: &at,
	}
	return nil
}

// MarkError records a failure, keeping the active run
func (s *Store) MarkError(ctx context.Context, message string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := domain.EmptyMirrorState()
	if s.state != nil {
		next = *s.state
	}
	next.Status = domain.MirrorStatusError
	next.LastError = message
	next.LastErrorAt = &at
	s.state = &next
	return nil
}

// NoteExists reports whether path is a note of runID
func (s *Store) NoteExists(ctx context.Context, runID, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return false, nil
	}
	_, ok = r.notes[path]
	return ok, nil
}

// resolutions returns the resolved note paths of target in r
func (r *run) resolutions(target string) []string {
	var paths []string
	for _, rl := range r.resolved {
		if rl.Target == target {
			paths = append(paths, rl.Path)
		}
	}
	return paths
}

// OutgoingLinks returns links from path ordered by (position, rel, target, resolved path)
func (s *Store) OutgoingLinks(ctx context.Context, runID, path string, includeUnresolved bool, limit int) ([]domain.LinkRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, nil
	}

	var rows []domain.LinkRow
	for _, l := range r.links {
		if l.FromPath != path {
			continue
		}
		row := domain.LinkRow{FromPath: l.FromPath, Rel: l.Rel, Target: l.ToTarget, ToWikilink: l.ToWikilink, Position: l.Position}
		paths := r.resolutions(l.ToTarget)
		if len(paths) == 0 {
			if includeUnresolved {
				rows = append(rows, row)
			}
			continue
		}
		for _, p := range paths {
			row.ToPath = p
			rows = append(rows, row)
		}
	}

	sortOutgoing(rows)
	return capRows(rows, limit), nil
}

// IncomingLinks returns links resolving to path ordered by (from path, position, rel, target)
func (s *Store) IncomingLinks(ctx context.Context, runID, path string, limit int) ([]domain.LinkRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, nil
	}
	if _, ok := r.notes[path]; !ok {
		return nil, nil
	}

	resolvesHere := make(map[string]bool)
	for _, rl := range r.resolved {
		if rl.Path == path {
			resolvesHere[rl.Target] = true
		}
	}

	var rows []domain.LinkRow
	for _, l := range r.links {
		if !resolvesHere[l.ToTarget] {
			continue
		}
		rows = append(rows, domain.LinkRow{
			FromPath:   l.FromPath,
			Rel:        l.Rel,
			Target:     l.ToTarget,
			ToWikilink: l.ToWikilink,
			Position:   l.Position,
			ToPath:     path,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.FromPath != b.FromPath {
			return a.FromPath < b.FromPath
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Rel != b.Rel {
			return a.Rel < b.Rel
		}
		return a.Target < b.Target
	})
	return capRows(rows, limit), nil
}

// PruneRuns drops every run except keepRunID
func (s *Store) PruneRuns(ctx context.Context, keepRunID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pruned := 0
	for id := range s.runs {
		if id == keepRunID {
			continue
		}
		delete(s.runs, id)
		pruned++
	}
	return pruned, nil
}

// RunIDs lists the runs currently held, sorted
func (s *Store) RunIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close is a no-op
func (s *Store) Close(context.Context) error {
	return nil
}

func capRows(rows []domain.LinkRow, limit int) []domain.LinkRow {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// sortOutgoing orders rows by (position, rel, target, resolved path)
func sortOutgoing(rows []domain.LinkRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Rel != b.Rel {
			return a.Rel < b.Rel
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		// unresolved rows sort last, like nulls in Cypher ORDER BY
		if (a.ToPath == "") != (b.ToPath == "") {
			return b.ToPath == ""
		}
		return a.ToPath < b.ToPath
	})
}

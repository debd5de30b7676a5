package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

// Traverser walks the active run breadth-first under hop, node, edge and
// per-note fan-out budgets.
type Traverser struct {
	store  ports.MirrorStore
	runs   *RunManager
	logger *slog.Logger
}

// NewTraverser creates a Traverser. A nil logger uses slog.Default().
func NewTraverser(store ports.MirrorStore, runs *RunManager, logger *slog.Logger) *Traverser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Traverser{store: store, runs: runs, logger: logger}
}

type queued struct {
	path string
	hop  int
}

// walk holds the mutable state of one traversal
type walk struct {
	opts    domain.TraverseOptions
	visited map[string]bool
	seen    map[string]bool
	queue   []queued
	result  *domain.TraverseResult
}

// Traverse runs a bounded BFS from opts.Path over the active run
func (t *Traverser) Traverse(ctx context.Context, opts domain.TraverseOptions) (*domain.TraverseResult, error) {
	opts = opts.Normalize()
	if err := ValidateRequired("path", opts.Path); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "mirror.traverse")
	defer span.End()
	span.SetAttributes(
		attribute.String("seed", opts.Path),
		attribute.String("direction", string(opts.Direction)),
		attribute.Int("max_hops", opts.MaxHops),
	)

	result, err := t.traverse(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	traversalTotal.WithLabelValues(strconv.FormatBool(result.Truncated)).Inc()
	traversalNodes.Observe(float64(len(result.Nodes)))
	span.SetAttributes(
		attribute.Int("nodes", len(result.Nodes)),
		attribute.Int("edges", len(result.Edges)),
		attribute.Bool("truncated", result.Truncated),
	)
	t.logger.DebugContext(ctx, "traversal complete",
		"run_id", result.ActiveRunID,
		"seed", opts.Path,
		"nodes", len(result.Nodes),
		"edges", len(result.Edges),
		"truncated", result.Truncated,
	)
	return result, nil
}

func (t *Traverser) traverse(ctx context.Context, opts domain.TraverseOptions) (*domain.TraverseResult, error) {
	state, err := t.runs.ReadState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.HasActiveRun() {
		return nil, ErrMirrorEmpty
	}
	runID := state.ActiveRunID

	ok, err := t.store.NoteExists(ctx, runID, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to look up seed %q: %w", opts.Path, err)
	}
	if !ok {
		return nil, &SeedNotFoundError{Path: opts.Path, RunID: runID}
	}

	w := &walk{
		opts:    opts,
		visited: map[string]bool{opts.Path: true},
		seen:    make(map[string]bool),
		queue:   []queued{{path: opts.Path, hop: 0}},
		result: &domain.TraverseResult{
			ActiveRunID: runID,
			Nodes:       []domain.TraverseNode{},
			Edges:       []domain.TraverseEdge{},
		},
	}

	for len(w.queue) > 0 && len(w.result.Nodes) < opts.MaxNotes {
		cur := w.queue[0]
		w.queue = w.queue[1:]
		w.result.Nodes = append(w.result.Nodes, domain.TraverseNode{Path: cur.path, Hop: cur.hop})

		if cur.hop >= opts.MaxHops {
			continue
		}

		stopped := false
		if opts.Direction.Outgoing() {
			rows, err := t.store.OutgoingLinks(ctx, runID, cur.path, opts.IncludeUnresolvedTargets, opts.MaxLinksPerNote+1)
			if err != nil {
				return nil, fmt.Errorf("failed to expand outgoing links of %q: %w", cur.path, err)
			}
			stopped = w.expand(cur, domain.DirectionOutgoing, rows)
		}
		if opts.Direction.Incoming() && !stopped {
			rows, err := t.store.IncomingLinks(ctx, runID, cur.path, opts.MaxLinksPerNote+1)
			if err != nil {
				return nil, fmt.Errorf("failed to expand incoming links of %q: %w", cur.path, err)
			}
			w.expand(cur, domain.DirectionIncoming, rows)
		}
	}

	return w.result, nil
}

// expand records the edges of rows and enqueues newly discovered notes.
// It returns true when the edge budget cut the expansion short.
func (w *walk) expand(cur queued, dir domain.Direction, rows []domain.LinkRow) bool {
	var extra []domain.LinkRow
	if len(rows) > w.opts.MaxLinksPerNote {
		rows, extra = rows[:w.opts.MaxLinksPerNote], rows[w.opts.MaxLinksPerNote:]
	}

	for _, row := range rows {
		edge, ok := w.edgeFor(dir, row)
		if !ok {
			continue
		}
		key := edge.Key()
		if w.seen[key] {
			continue
		}
		if len(w.result.Edges) >= w.opts.MaxEdges {
			w.result.Truncated = true
			return true
		}
		w.seen[key] = true
		w.result.Edges = append(w.result.Edges, edge)

		next := row.ToPath
		if dir == domain.DirectionIncoming {
			next = row.FromPath
		}
		if next == "" || w.visited[next] {
			continue
		}
		if len(w.result.Nodes)+len(w.queue) < w.opts.MaxNotes {
			w.visited[next] = true
			w.queue = append(w.queue, queued{path: next, hop: cur.hop + 1})
		} else {
			w.result.Truncated = true
		}
	}

	// The fan-out budget only truncates when a row past it would have been emitted
	for _, row := range extra {
		if edge, ok := w.edgeFor(dir, row); ok && !w.seen[edge.Key()] {
			w.result.Truncated = true
			break
		}
	}
	return false
}

// edgeFor converts a row into an edge, reporting false for rows that are never emitted
func (w *walk) edgeFor(dir domain.Direction, row domain.LinkRow) (domain.TraverseEdge, bool) {
	if row.FromPath == "" || row.Rel == "" || row.Target == "" {
		return domain.TraverseEdge{}, false
	}
	if row.ToPath == "" && (dir == domain.DirectionIncoming || !w.opts.IncludeUnresolvedTargets) {
		return domain.TraverseEdge{}, false
	}

	edge := domain.TraverseEdge{
		Direction:  dir,
		FromPath:   row.FromPath,
		Rel:        row.Rel,
		Target:     row.Target,
		ToWikilink: row.ToWikilink,
	}
	if row.ToPath != "" {
		to := row.ToPath
		edge.ToPath = &to
	}
	return edge, true
}

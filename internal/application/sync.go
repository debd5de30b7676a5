package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

// Syncer rebuilds the mirror from a source snapshot under a fresh run id
// and cuts over to it once the staged counts match the source.
type Syncer struct {
	store  ports.MirrorStore
	runs   *RunManager
	logger *slog.Logger
	now    func() time.Time
}

// NewSyncer creates a Syncer. A nil logger uses slog.Default().
func NewSyncer(store ports.MirrorStore, runs *RunManager, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{store: store, runs: runs, logger: logger, now: time.Now}
}

// snapshot is everything read from the source for one sync
type snapshot struct {
	notes    []domain.Note
	links    []domain.TypedLink
	targets  []domain.Target
	resolved []domain.ResolvedLink
	counts   domain.Counts
}

// Sync mirrors src into the store and activates the new run.
// On any failure the previous active run stays published.
func (s *Syncer) Sync(ctx context.Context, src ports.GraphSource, opts domain.SyncOptions) (*domain.SyncSummary, error) {
	opts = opts.Normalize()
	start := s.now()

	ctx, span := tracer.Start(ctx, "mirror.sync")
	defer span.End()

	summary, err := s.sync(ctx, src, opts)
	syncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrInconsistent) {
			outcome = "inconsistent"
		}
		syncTotal.WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "mirror sync failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	syncTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(
		attribute.String("run_id", summary.ActiveRunID),
		attribute.Int("notes", summary.MirroredCounts.Notes),
		attribute.Int("typed_links", summary.MirroredCounts.TypedLinks),
	)
	s.logger.InfoContext(ctx, "mirror sync complete",
		"run_id", summary.ActiveRunID,
		"notes", summary.MirroredCounts.Notes,
		"typed_links", summary.MirroredCounts.TypedLinks,
		"targets", summary.MirroredCounts.Targets,
		"resolved_links", summary.MirroredCounts.ResolvedLinks,
		"duration", time.Since(start),
	)
	return summary, nil
}

func (s *Syncer) sync(ctx context.Context, src ports.GraphSource, opts domain.SyncOptions) (*domain.SyncSummary, error) {
	runID := s.runs.NewRunID()
	logger := s.logger.With("run_id", runID)

	snap, staged, err := s.stage(ctx, src, runID, opts, logger)
	if err != nil {
		s.annotate(ctx, err)
		return nil, err
	}

	if !CheckConsistency(snap.counts, staged.Core()) {
		err := &ConsistencyError{RunID: runID, Source: snap.counts, Staged: staged.Core()}
		s.annotate(ctx, err)
		return nil, err
	}

	at := s.now().UTC()
	if err := s.runs.MarkActive(ctx, runID, at); err != nil {
		s.annotate(ctx, err)
		return nil, err
	}

	return &domain.SyncSummary{
		SourceCounts:   snap.counts,
		MirroredCounts: staged,
		Consistent:     true,
		ActiveRunID:    runID,
		MirrorStatus:   domain.MirrorStatusOK,
		LastSuccessAt:  &at,
	}, nil
}

// stage reads the source and writes it under runID, returning the counts
// read back from the store.
func (s *Syncer) stage(ctx context.Context, src ports.GraphSource, runID string, opts domain.SyncOptions, logger *slog.Logger) (*snapshot, domain.MirrorCounts, error) {
	snap, err := readSnapshot(ctx, src, opts.MaxResolutionsPerTarget)
	if err != nil {
		return nil, domain.MirrorCounts{}, err
	}
	logger.DebugContext(ctx, "source snapshot read",
		"notes", len(snap.notes),
		"typed_links", len(snap.links),
		"targets", len(snap.targets),
		"resolved_links", len(snap.resolved),
	)

	if err := s.runs.EnsureSchema(ctx); err != nil {
		return nil, domain.MirrorCounts{}, err
	}

	w := NewBatchWriter(s.store, runID, opts.BatchSize)
	if err := w.WriteNotes(ctx, snap.notes); err != nil {
		return nil, domain.MirrorCounts{}, err
	}
	if err := w.WriteTargets(ctx, snap.targets); err != nil {
		return nil, domain.MirrorCounts{}, err
	}
	if err := w.WriteTypedLinks(ctx, snap.links); err != nil {
		return nil, domain.MirrorCounts{}, err
	}
	if err := w.WriteResolvedLinks(ctx, snap.resolved); err != nil {
		return nil, domain.MirrorCounts{}, err
	}

	staged, err := s.store.CountRun(ctx, runID)
	if err != nil {
		return nil, domain.MirrorCounts{}, fmt.Errorf("failed to count staged run %s: %w", runID, err)
	}
	logger.DebugContext(ctx, "run staged", "counts", staged.String())
	return snap, staged, nil
}

// annotate records err in the mirror state. A failure here is logged and
// counted but never replaces err.
func (s *Syncer) annotate(ctx context.Context, err error) {
	if markErr := s.runs.MarkError(context.WithoutCancel(ctx), err.Error(), s.now()); markErr != nil {
		annotationFailures.Inc()
		trace.SpanFromContext(ctx).AddEvent("mirror_state_annotation_failed",
			trace.WithAttributes(attribute.String("error", markErr.Error())))
		s.logger.WarnContext(ctx, "could not record sync error in mirror state",
			"error", markErr,
			"primary_error", err,
		)
	}
}

// Status compares the source with the active run without mutating anything
func (s *Syncer) Status(ctx context.Context, src ports.GraphSource) (*domain.StatusSummary, error) {
	ctx, span := tracer.Start(ctx, "mirror.status")
	defer span.End()

	source, err := src.GetGraphCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source counts: %w", err)
	}
	state, err := s.runs.ReadState(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.StatusSummary{SourceCounts: source, State: state}
	if state.HasActiveRun() {
		mirrored, err := s.store.CountRun(ctx, state.ActiveRunID)
		if err != nil {
			return nil, fmt.Errorf("failed to count active run %s: %w", state.ActiveRunID, err)
		}
		summary.MirroredCounts = &mirrored
		summary.Consistent = CheckConsistency(source, mirrored.Core())
	}
	summary.Health = domain.ClassifyHealth(state, summary.Consistent)
	span.SetAttributes(attribute.String("health", string(summary.Health)))
	return summary, nil
}

// readSnapshot reads notes, links and counts from the source and derives
// targets and their resolutions.
func readSnapshot(ctx context.Context, src ports.GraphSource, maxResolutions int) (*snapshot, error) {
	notes, err := src.ListNotesForSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source notes: %w", err)
	}
	links, err := src.ListTypedLinksForSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source typed links: %w", err)
	}
	counts, err := src.GetGraphCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source counts: %w", err)
	}

	targets := distinctTargets(links)
	var resolved []domain.ResolvedLink
	for _, t := range targets {
		candidates, err := src.ResolvePathsByTarget(ctx, t.Target, maxResolutions)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target %q: %w", t.Target, err)
		}
		if len(candidates) > maxResolutions {
			candidates = candidates[:maxResolutions]
		}
		for _, c := range candidates {
			resolved = append(resolved, domain.ResolvedLink{Target: t.Target, Path: c.Path, MatchedBy: c.MatchedBy})
		}
	}

	return &snapshot{
		notes:    notes,
		links:    links,
		targets:  targets,
		resolved: resolved,
		counts:   counts,
	}, nil
}

// distinctTargets returns the sorted set of link targets
func distinctTargets(links []domain.TypedLink) []domain.Target {
	seen := make(map[string]bool, len(links))
	names := make([]string, 0, len(links))
	for _, l := range links {
		if l.ToTarget == "" || seen[l.ToTarget] {
			continue
		}
		seen[l.ToTarget] = true
		names = append(names, l.ToTarget)
	}
	sort.Strings(names)

	targets := make([]domain.Target, len(names))
	for i, n := range names {
		targets[i] = domain.Target{Target: n}
	}
	return targets
}

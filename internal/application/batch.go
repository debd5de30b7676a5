package application

import (
	"context"
	"fmt"

	"notegraph/internal/domain"
	"notegraph/internal/ports"
)

// writeChunks calls write once per chunk of at most size rows, in order.
// An empty slice performs no calls. The first failing chunk aborts.
func writeChunks[T any](ctx context.Context, rows []T, size int, write func(context.Context, []T) error) (int, error) {
	if size < domain.MinBatchSize {
		size = domain.MinBatchSize
	}
	written := 0
	for start := 0; start < len(rows); start += size {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := min(start+size, len(rows))
		if err := write(ctx, rows[start:end]); err != nil {
			return written, err
		}
		written = end
	}
	return written, nil
}

// BatchWriter writes staged rows for one run in bounded transactions
type BatchWriter struct {
	store ports.MirrorStore
	runID string
	size  int
}

// NewBatchWriter creates a writer for runID. The batch size is clamped.
func NewBatchWriter(store ports.MirrorStore, runID string, batchSize int) *BatchWriter {
	opts := domain.SyncOptions{BatchSize: batchSize}.Normalize()
	return &BatchWriter{store: store, runID: runID, size: opts.BatchSize}
}

// WriteNotes upserts notes keyed by (run, path)
func (w *BatchWriter) WriteNotes(ctx context.Context, rows []domain.Note) error {
	return writeKind(ctx, w, "note", rows, w.store.WriteNotes)
}

// WriteTargets upserts targets keyed by (run, target)
func (w *BatchWriter) WriteTargets(ctx context.Context, rows []domain.Target) error {
	return writeKind(ctx, w, "target", rows, w.store.WriteTargets)
}

// WriteTypedLinks inserts note→target edges
func (w *BatchWriter) WriteTypedLinks(ctx context.Context, rows []domain.TypedLink) error {
	return writeKind(ctx, w, "typed_link", rows, w.store.WriteTypedLinks)
}

// WriteResolvedLinks inserts target→note edges
func (w *BatchWriter) WriteResolvedLinks(ctx context.Context, rows []domain.ResolvedLink) error {
	return writeKind(ctx, w, "resolved_link", rows, w.store.WriteResolvedLinks)
}

func writeKind[T any](ctx context.Context, w *BatchWriter, kind string, rows []T, store func(context.Context, string, []T) error) error {
	n, err := writeChunks(ctx, rows, w.size, func(ctx context.Context, chunk []T) error {
		return store(ctx, w.runID, chunk)
	})
	rowsWritten.WithLabelValues(kind).Add(float64(n))
	if err != nil {
		return fmt.Errorf("failed to write %s rows for run %s: %w", kind, w.runID, err)
	}
	return nil
}

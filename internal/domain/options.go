package domain

// Sync defaults and limits
const (
	DefaultBatchSize = 500
	MinBatchSize     = 1
	MaxBatchSize     = 2000

	DefaultMaxResolutionsPerTarget = 20
	MinMaxResolutionsPerTarget     = 1
	MaxMaxResolutionsPerTarget     = 200
)

// Traversal defaults and limits
const (
	DefaultMaxHops = 2
	MaxMaxHops     = 6

	DefaultMaxNotes = 80
	MaxMaxNotes     = 400

	DefaultMaxEdges = 1500
	MaxMaxEdges     = 10000

	DefaultMaxLinksPerNote = 80
	MaxMaxLinksPerNote     = 500
)

// SyncOptions tune a sync run. Zero values select the defaults.
type SyncOptions struct {
	BatchSize               int
	MaxResolutionsPerTarget int
}

// Normalize applies defaults and clamps every field into its range
func (o SyncOptions) Normalize() SyncOptions {
	return SyncOptions{
		BatchSize:               clamp(o.BatchSize, DefaultBatchSize, MinBatchSize, MaxBatchSize),
		MaxResolutionsPerTarget: clamp(o.MaxResolutionsPerTarget, DefaultMaxResolutionsPerTarget, MinMaxResolutionsPerTarget, MaxMaxResolutionsPerTarget),
	}
}

// clamp returns def for zero, otherwise v bounded to [lo, hi]
func clamp(v, def, lo, hi int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package domain

import (
	"fmt"
	"time"
)

// MirrorStatus is the lifecycle status stored in the mirror state record
type MirrorStatus string

const (
	MirrorStatusEmpty MirrorStatus = "empty"
	MirrorStatusOK    MirrorStatus = "ok"
	MirrorStatusError MirrorStatus = "error"
)

// ParseMirrorStatus maps a stored status string to a MirrorStatus.
// Unknown or missing values read as empty.
func ParseMirrorStatus(s string) MirrorStatus {
	switch MirrorStatus(s) {
	case MirrorStatusOK:
		return MirrorStatusOK
	case MirrorStatusError:
		return MirrorStatusError
	default:
		return MirrorStatusEmpty
	}
}

// MirrorState is the singleton lifecycle record of the mirror
type MirrorState struct {
	ActiveRunID   string       `json:"active_run_id,omitempty"`
	Status        MirrorStatus `json:"status"`
	LastSuccessAt *time.Time   `json:"last_success_at"`
	LastError     string       `json:"last_error,omitempty"`
	LastErrorAt   *time.Time   `json:"last_error_at"`
}

// EmptyMirrorState is the state reported when no record exists yet
func EmptyMirrorState() MirrorState {
	return MirrorState{Status: MirrorStatusEmpty}
}

// HasActiveRun reports whether a run is published for reads
func (s MirrorState) HasActiveRun() bool {
	return s.ActiveRunID != ""
}

// Counts are the note and typed-link totals used to compare source and mirror
type Counts struct {
	Notes      int `json:"notes"`
	TypedLinks int `json:"typed_links"`
}

// Equal reports whether both fields match
func (c Counts) Equal(other Counts) bool {
	return c.Notes == other.Notes && c.TypedLinks == other.TypedLinks
}

func (c Counts) String() string {
	return fmt.Sprintf("{notes: %d, typedLinks: %d}", c.Notes, c.TypedLinks)
}

// MirrorCounts are the per-run row totals read back from the mirror store
type MirrorCounts struct {
	Notes         int `json:"notes"`
	TypedLinks    int `json:"typed_links"`
	Targets       int `json:"targets"`
	ResolvedLinks int `json:"resolved_links"`
}

// Core returns the subset compared against the source
func (m MirrorCounts) Core() Counts {
	return Counts{Notes: m.Notes, TypedLinks: m.TypedLinks}
}

func (m MirrorCounts) String() string {
	return fmt.Sprintf("{notes: %d, typedLinks: %d, targets: %d, resolvedLinks: %d}",
		m.Notes, m.TypedLinks, m.Targets, m.ResolvedLinks)
}

// Health is the operator-facing reading of the mirror
type Health string

const (
	HealthEmpty   Health = "empty"
	HealthHealthy Health = "healthy"
	HealthStale   Health = "stale"
	HealthBroken  Health = "broken"
)

// ClassifyHealth distinguishes a stale mirror (old but still served) from a
// broken one (nothing to serve).
func ClassifyHealth(state MirrorState, consistent bool) Health {
	switch {
	case !state.HasActiveRun() && state.Status == MirrorStatusError:
		return HealthBroken
	case !state.HasActiveRun():
		return HealthEmpty
	case state.Status == MirrorStatusError || !consistent:
		return HealthStale
	default:
		return HealthHealthy
	}
}

// SyncSummary is the result of a successful sync
type SyncSummary struct {
	SourceCounts   Counts       `json:"source_counts"`
	MirroredCounts MirrorCounts `json:"mirrored_counts"`
	Consistent     bool         `json:"consistent"`
	ActiveRunID    string       `json:"active_run_id"`
	MirrorStatus   MirrorStatus `json:"mirror_status"`
	LastSuccessAt  *time.Time   `json:"last_success_at"`
	LastError      string       `json:"last_error,omitempty"`
	LastErrorAt    *time.Time   `json:"last_error_at"`
}

// StatusSummary is the read-only health report of the mirror
type StatusSummary struct {
	SourceCounts   Counts        `json:"source_counts"`
	MirroredCounts *MirrorCounts `json:"mirrored_counts"`
	Consistent     bool          `json:"consistent"`
	Health         Health        `json:"health"`
	State          MirrorState   `json:"state"`
}

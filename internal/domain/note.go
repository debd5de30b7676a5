package domain

import (
	"strconv"
	"time"
)

// Note represents a canonical note row keyed by its vault-relative path
type Note struct {
	Path    string `json:"path"`
	NoteID  string `json:"note_id"`
	Created string `json:"created"`
	Updated string `json:"updated"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Entity  string `json:"entity"`
	Layer   string `json:"layer"`
	Status  string `json:"status"`
}

// TypedLink is a directed, relation-labelled edge from a note to a raw link target
type TypedLink struct {
	FromPath   string `json:"from_path"`
	Rel        string `json:"rel"`
	ToTarget   string `json:"to_target"`
	ToWikilink string `json:"to_wikilink"`
	Position   int    `json:"position"`
}

// EdgeKey returns the synthetic key of the link. It is unique within a run
// because a note never has two links at the same position.
func (l TypedLink) EdgeKey() string {
	return l.FromPath + "|" + l.Rel + "|" + l.ToTarget + "|" + strconv.Itoa(l.Position)
}

// Target is a deduplicated raw link destination
type Target struct {
	Target string `json:"target"`
}

// Resolution is one candidate note for a target, as reported by the source
type Resolution struct {
	Path      string `json:"path"`
	MatchedBy string `json:"matched_by"`
}

// ResolvedLink records that a target was matched to a note path
type ResolvedLink struct {
	Target    string `json:"target"`
	Path      string `json:"path"`
	MatchedBy string `json:"matched_by"`
}

// IndexStats holds statistics from a vault index rebuild
type IndexStats struct {
	FilesScanned int
	NotesAdded   int
	LinksAdded   int
	Duration     time.Duration
}

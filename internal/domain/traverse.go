package domain

import (
	"fmt"
	"strings"
)

// Direction selects which link directions a traversal follows
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// ParseDirection parses a direction name. The empty string means both.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DirectionBoth):
		return DirectionBoth, nil
	case string(DirectionOutgoing), "out":
		return DirectionOutgoing, nil
	case string(DirectionIncoming), "in":
		return DirectionIncoming, nil
	default:
		return "", fmt.Errorf("unknown direction %q (expected outgoing, incoming, or both)", s)
	}
}

// Outgoing reports whether outgoing links are followed
func (d Direction) Outgoing() bool {
	return d == DirectionOutgoing || d == DirectionBoth
}

// Incoming reports whether incoming links are followed
func (d Direction) Incoming() bool {
	return d == DirectionIncoming || d == DirectionBoth
}

// TraverseOptions configure a bounded walk from a seed note.
// Zero values select the defaults.
type TraverseOptions struct {
	Path                     string
	Direction                Direction
	MaxHops                  int
	MaxNotes                 int
	MaxEdges                 int
	MaxLinksPerNote          int
	IncludeUnresolvedTargets bool
}

// Normalize applies defaults and clamps every budget into its range
func (o TraverseOptions) Normalize() TraverseOptions {
	n := o
	n.Path = strings.TrimSpace(o.Path)
	if !n.Direction.Outgoing() && !n.Direction.Incoming() {
		n.Direction = DirectionBoth
	}
	n.MaxHops = clamp(o.MaxHops, DefaultMaxHops, 1, MaxMaxHops)
	n.MaxNotes = clamp(o.MaxNotes, DefaultMaxNotes, 1, MaxMaxNotes)
	n.MaxEdges = clamp(o.MaxEdges, DefaultMaxEdges, 1, MaxMaxEdges)
	n.MaxLinksPerNote = clamp(o.MaxLinksPerNote, DefaultMaxLinksPerNote, 1, MaxMaxLinksPerNote)
	return n
}

// LinkRow is one typed link as read from the mirror during traversal.
// ToPath is empty when the link target has no resolved note.
type LinkRow struct {
	FromPath   string
	Rel        string
	Target     string
	ToWikilink string
	Position   int
	ToPath     string
}

// TraverseNode is a note reached by a traversal
type TraverseNode struct {
	Path string `json:"path"`
	Hop  int    `json:"hop"`
}

// TraverseEdge is a link emitted by a traversal. ToPath is nil for
// unresolved targets.
type TraverseEdge struct {
	Direction  Direction `json:"direction"`
	FromPath   string    `json:"fromPath"`
	ToPath     *string   `json:"toPath"`
	Rel        string    `json:"rel"`
	Target     string    `json:"target"`
	ToWikilink string    `json:"toWikilink"`
}

// Key identifies an edge for de-duplication within one traversal
func (e TraverseEdge) Key() string {
	to := ""
	if e.ToPath != nil {
		to = *e.ToPath
	}
	return strings.Join([]string{string(e.Direction), e.FromPath, to, e.Rel, e.Target, e.ToWikilink}, "\x00")
}

// TraverseResult is the outcome of a traversal over the active run
type TraverseResult struct {
	ActiveRunID string         `json:"activeRunId"`
	Nodes       []TraverseNode `json:"nodes"`
	Edges       []TraverseEdge `json:"edges"`
	Truncated   bool           `json:"truncated"`
}

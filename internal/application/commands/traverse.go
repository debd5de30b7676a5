package commands

import (
	"context"

	"notegraph/internal/application"
	"notegraph/internal/domain"
)

// TraverseCommand walks the mirror from a seed note
type TraverseCommand struct {
	traverser                *application.Traverser
	Path                     string
	Direction                string
	MaxHops                  int
	MaxNotes                 int
	MaxEdges                 int
	MaxLinksPerNote          int
	IncludeUnresolvedTargets bool
}

// NewTraverseCommand creates a new TraverseCommand with default budgets
func NewTraverseCommand(traverser *application.Traverser, path string) *TraverseCommand {
	return &TraverseCommand{
		traverser: traverser,
		Path:      path,
	}
}

// Validate checks the seed and options
func (c *TraverseCommand) Validate() error {
	if err := application.ValidateRequired("path", c.Path); err != nil {
		return err
	}
	if _, err := application.ValidateDirection(c.Direction); err != nil {
		return err
	}

	budgets := []struct {
		field string
		value int
	}{
		{"maxHops", c.MaxHops},
		{"maxNotes", c.MaxNotes},
		{"maxEdges", c.MaxEdges},
		{"maxLinksPerNote", c.MaxLinksPerNote},
	}
	for _, b := range budgets {
		if b.value < 0 {
			return &application.ValidationError{Field: b.field, Message: b.field + " cannot be negative"}
		}
	}
	return nil
}

// Options returns the traversal options described by the command
func (c *TraverseCommand) Options() domain.TraverseOptions {
	dir, _ := domain.ParseDirection(c.Direction)
	return domain.TraverseOptions{
		Path:                     c.Path,
		Direction:                dir,
		MaxHops:                  c.MaxHops,
		MaxNotes:                 c.MaxNotes,
		MaxEdges:                 c.MaxEdges,
		MaxLinksPerNote:          c.MaxLinksPerNote,
		IncludeUnresolvedTargets: c.IncludeUnresolvedTargets,
	}
}

// Execute validates and runs the traversal
func (c *TraverseCommand) Execute(ctx context.Context) (*domain.TraverseResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.traverser.Traverse(ctx, c.Options())
}

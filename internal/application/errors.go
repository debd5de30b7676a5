package application

import (
	"errors"
	"fmt"

	"notegraph/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrMirrorEmpty   = errors.New("mirror is empty: run sync first")
	ErrSeedNotFound  = errors.New("seed not found")
	ErrInconsistent  = errors.New("mirror inconsistent with source")
	ErrInvalidOption = errors.New("invalid option")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidOption
}

// SeedNotFoundError is returned when a traversal seed is not a note of the active run
type SeedNotFoundError struct {
	Path  string
	RunID string
}

func (e *SeedNotFoundError) Error() string {
	return fmt.Sprintf("seed not found: %q is not in mirror run %s; run sync to refresh the mirror", e.Path, e.RunID)
}

func (e *SeedNotFoundError) Is(target error) bool {
	return target == ErrSeedNotFound
}

// ConsistencyError reports staged counts that do not match the source
type ConsistencyError struct {
	RunID  string
	Source domain.Counts
	Staged domain.Counts
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("mirror run %s inconsistent with source: source=%s staged=%s", e.RunID, e.Source, e.Staged)
}

func (e *ConsistencyError) Is(target error) bool {
	return target == ErrInconsistent
}

package application

import (
	"strings"

	"notegraph/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
		}
	}
	return nil
}

// ValidateDirection parses a direction name into a domain.Direction.
// Returns a ValidationError for unknown names.
func ValidateDirection(value string) (domain.Direction, error) {
	dir, err := domain.ParseDirection(value)
	if err != nil {
		return "", &ValidationError{Field: "direction", Message: err.Error()}
	}
	return dir, nil
}

// CheckConsistency compares source counts with the counts staged in the
// mirror. Both fields must match for the mirror to be consistent.
func CheckConsistency(source, staged domain.Counts) bool {
	return source.Equal(staged)
}

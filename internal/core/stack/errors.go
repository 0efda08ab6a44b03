package stack

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Document errors
	ErrInvalidDocument = errors.New("invalid configuration document")
	ErrMissingSection  = errors.New("configuration section missing")

	// Input errors
	ErrMissingRequiredInput = errors.New("required configuration value missing")

	// Validation errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigParseError reports a persisted document that cannot be used.
type ConfigParseError struct {
	Path    string // file the document was read from, if known
	Message string
	Err     error
}

func (e *ConfigParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse config: %s", e.Message)
}

func (e *ConfigParseError) Unwrap() error {
	return e.Err
}

// NewConfigParseError creates a new ConfigParseError.
func NewConfigParseError(path, message string, err error) *ConfigParseError {
	return &ConfigParseError{
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// MissingInputError reports a required key that could not be resolved from
// the document, a prompt or a default.
type MissingInputError struct {
	Key string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredInput, e.Key)
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingRequiredInput
}

// FieldProblem describes one failed validation rule.
type FieldProblem struct {
	Field string // dotted YAML path, e.g. "database.port"
	Rule  string // failed rule, e.g. "required"
	Value any
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Field, p.Rule))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

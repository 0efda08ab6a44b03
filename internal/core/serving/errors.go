package serving

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Parameter errors
	ErrInvalidParam = errors.New("invalid parameter")
	ErrMissingToken = errors.New("hugging face token not provided")

	// Checkpoint errors
	ErrCheckpointNotFound = errors.New("model checkpoint directory does not exist")
	ErrMetadataNotFound   = errors.New("model_metadata.json does not exist in the model checkpoint directory")
	ErrInvalidMetadata    = errors.New("model_metadata.json is not valid JSON")
	ErrModelNameMissing   = errors.New("model_name is not defined in model_metadata.json")
)

// ParamError wraps errors with the offending parameter.
type ParamError struct {
	Field   string // e.g., "port"
	Message string
	Err     error
}

func (e *ParamError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// NewParamError creates a new ParamError.
func NewParamError(field, message string, err error) *ParamError {
	return &ParamError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

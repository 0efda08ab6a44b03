package serving

import (
	"encoding/json"
	"strings"
)

// MetadataFile is the file every checkpoint directory must contain.
const MetadataFile = "model_metadata.json"

// CheckpointMetadata is the subset of model_metadata.json the server needs.
type CheckpointMetadata struct {
	ModelName string `json:"model_name"`
}

// ParseCheckpointMetadata decodes model_metadata.json and requires model_name.
func ParseCheckpointMetadata(data []byte) (CheckpointMetadata, error) {
	var meta CheckpointMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return CheckpointMetadata{}, NewParamError(MetadataFile, err.Error(), ErrInvalidMetadata)
	}
	meta.ModelName = strings.TrimSpace(meta.ModelName)
	if meta.ModelName == "" {
		return CheckpointMetadata{}, NewParamError("", ErrModelNameMissing.Error(), ErrModelNameMissing)
	}
	return meta, nil
}

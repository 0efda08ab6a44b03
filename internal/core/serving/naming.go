package serving

// =============================================================================
// Resource Names
// =============================================================================

const (
	// PostgresVolume is the named volume holding the stack database.
	PostgresVolume = "postgres_data"
	// StackNetwork is the bridge network created by the compose project.
	StackNetwork = "liquid_labs_network"

	// HuggingFaceImage serves models pulled from the Hugging Face hub.
	HuggingFaceImage = "vllm/vllm-openai:latest"
	// ServerAncestor matches every running vLLM server started by run-hf.
	ServerAncestor = "vllm/vllm-openai"
	// checkpointRepository serves local checkpoints; tagged with the stack version.
	checkpointRepository = "liquidai/liquid-labs-vllm"

	// ServerPort is the port vLLM listens on inside the container.
	ServerPort = 8000
	// ServerPortKey is ServerPort in Docker's port-map notation.
	ServerPortKey = "8000/tcp"

	// CheckpointMount is where a checkpoint directory is mounted read-only.
	CheckpointMount = "/model"
)

// CheckpointImage returns the checkpoint server image for a stack version.
//
// Example:
//
//	CheckpointImage("c3d7dbacd1") // returns "liquidai/liquid-labs-vllm:c3d7dbacd1"
func CheckpointImage(stackVersion string) string {
	return checkpointRepository + ":" + stackVersion
}

// =============================================================================
// Container Labels
// =============================================================================

// Label keys attached to containers started by this tool.
const (
	LabelManaged = "ai.liquid.managed"
	LabelLaunch  = "ai.liquid.launch-id"
	LabelSource  = "ai.liquid.source"
	LabelModel   = "ai.liquid.model"
)

// Values for LabelSource.
const (
	SourceHuggingFace = "huggingface"
	SourceCheckpoint  = "checkpoint"
)

package serving

import "time"

// =============================================================================
// Container Plan Types
// =============================================================================

// ContainerPlan represents a planned container configuration.
// This is the pure output of planning, ready for the shell to execute.
type ContainerPlan struct {
	Name        string
	Image       string
	Command     []string
	Env         map[string]string
	Labels      map[string]string
	Ports       []PortPlan
	Volumes     []VolumePlan
	Devices     []DevicePlan
	HealthCheck *HealthCheckPlan
}

// PortPlan represents a planned port binding.
type PortPlan struct {
	ContainerPort int
	HostPort      int
	Protocol      string
}

// VolumePlan represents a planned mount. Absolute sources are bind mounts.
type VolumePlan struct {
	Source   string
	Target   string
	ReadOnly bool
}

// DevicePlan represents a GPU device request.
// Count -1 requests every device; otherwise DeviceIDs selects specific ones.
type DevicePlan struct {
	Driver       string
	Count        int
	DeviceIDs    []string
	Capabilities []string
}

// HealthCheckPlan represents a health check configuration.
type HealthCheckPlan struct {
	Test     []string
	Interval time.Duration
}

// =============================================================================
// Builder Parameter Types
// =============================================================================

// ServerOptions are the vLLM tuning knobs shared by both launch modes.
type ServerOptions struct {
	HostPort             int
	GPU                  string // "all" or comma-separated device indices
	GPUMemoryUtilization float64
	MaxNumSeqs           int
}

// HuggingFaceParams contains all inputs for a Hugging Face model server.
type HuggingFaceParams struct {
	ServerOptions
	Name        string // container and served model name
	ModelPath   string // hub path, e.g. "LiquidAI/LFM2-1.2B"
	MaxModelLen int
	Token       string
	LaunchID    string
}

// CheckpointParams contains all inputs for a local checkpoint server.
type CheckpointParams struct {
	ServerOptions
	CheckpointDir string // absolute host path
	ModelName     string // from model_metadata.json
	StackVersion  string
	LaunchID      string
}

// Defaults for the CLI flags.
const (
	DefaultHostPort             = 9000
	DefaultGPU                  = "all"
	DefaultGPUMemoryUtilization = 0.6
	DefaultMaxNumSeqs           = 600
	DefaultMaxModelLen          = 32768
)

// DefaultServerOptions returns the default tuning knobs.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		HostPort:             DefaultHostPort,
		GPU:                  DefaultGPU,
		GPUMemoryUtilization: DefaultGPUMemoryUtilization,
		MaxNumSeqs:           DefaultMaxNumSeqs,
	}
}

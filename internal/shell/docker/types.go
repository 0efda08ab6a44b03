// Package docker provides a Docker client and the container lifecycle facade
// used by the stack and model commands.
package docker

import (
	"context"
	"time"

	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
)

// =============================================================================
// Container Types
// =============================================================================

// ContainerSpec defines the specification for creating a container.
type ContainerSpec struct {
	Name           string
	Image          string
	Command        []string
	Env            map[string]string
	Labels         map[string]string
	Ports          []PortBinding
	Volumes        []VolumeMount
	DeviceRequests []DeviceRequest
	HealthCheck    *HealthCheck
}

// PortBinding defines a port mapping.
type PortBinding struct {
	ContainerPort int
	HostPort      int    // 0 for auto-assign
	Protocol      string // "tcp" or "udp"
	HostIP        string // "" for 0.0.0.0
}

// VolumeMount defines a volume mount.
type VolumeMount struct {
	Source   string // Volume name or absolute host path
	Target   string // Container path
	ReadOnly bool
}

// DeviceRequest asks the runtime for host devices such as GPUs.
type DeviceRequest struct {
	Driver       string
	Count        int // -1 for all devices
	DeviceIDs    []string
	Capabilities []string
}

// HealthCheck defines container health check configuration.
type HealthCheck struct {
	Test        []string
	Interval    time.Duration
	Timeout     time.Duration
	Retries     int
	StartPeriod time.Duration
}

// =============================================================================
// Inspection Results
// =============================================================================

// ContainerStatus represents the container status.
type ContainerStatus string

const (
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusPaused     ContainerStatus = "paused"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusRemoving   ContainerStatus = "removing"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusDead       ContainerStatus = "dead"
)

// ContainerInfo contains information about a container.
type ContainerInfo struct {
	ID        string
	Name      string
	Image     string
	Status    ContainerStatus
	Health    string // "healthy", "unhealthy", "starting", ""
	CreatedAt time.Time
	Ports     serving.PortMap
	Labels    map[string]string
}

// VolumeInfo contains information about a named volume.
type VolumeInfo struct {
	Name       string
	Driver     string
	Mountpoint string
}

// NetworkInfo contains information about a network.
type NetworkInfo struct {
	ID     string
	Name   string
	Driver string
}

// ContainerDescriptor is the user-facing summary of a running model server.
type ContainerDescriptor struct {
	Name string
	Port string // host port bound to the server port, or "unknown"
}

// =============================================================================
// Options
// =============================================================================

// RemoveOptions defines options for removing containers.
type RemoveOptions struct {
	Force         bool
	RemoveVolumes bool
}

// ListOptions defines options for listing containers.
type ListOptions struct {
	All     bool              // Include stopped containers
	Filters map[string]string // e.g., {"ancestor": "vllm/vllm-openai"}
}

// PullOptions defines options for pulling images.
type PullOptions struct {
	Platform string // e.g., "linux/amd64"
}

// =============================================================================
// Client Interface
// =============================================================================

// Client defines the Docker client interface.
type Client interface {
	// Container operations
	CreateContainer(ctx context.Context, spec ContainerSpec) (containerID string, err error)
	StartContainer(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string, timeout *time.Duration) error
	RemoveContainer(ctx context.Context, containerID string, opts RemoveOptions) error
	InspectContainer(ctx context.Context, containerID string) (*ContainerInfo, error)
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error)

	// Network operations
	InspectNetwork(ctx context.Context, name string) (*NetworkInfo, error)
	RemoveNetwork(ctx context.Context, name string) error

	// Volume operations
	InspectVolume(ctx context.Context, name string) (*VolumeInfo, error)
	CreateVolume(ctx context.Context, name string) (volumeName string, err error)
	RemoveVolume(ctx context.Context, name string, force bool) error

	// Image operations
	PullImage(ctx context.Context, image string, opts PullOptions) error
	ImageExists(ctx context.Context, image string) (bool, error)

	// Health operations
	Ping(ctx context.Context) error
	Close() error
}

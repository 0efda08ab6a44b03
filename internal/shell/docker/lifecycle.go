package docker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
)

// =============================================================================
// Operation Results
// =============================================================================

// EnsureResult reports what EnsureVolume did.
type EnsureResult int

const (
	Created EnsureResult = iota + 1
	AlreadyPresent
)

func (r EnsureResult) String() string {
	switch r {
	case Created:
		return "created"
	case AlreadyPresent:
		return "already present"
	default:
		return "unknown"
	}
}

// RemoveResult reports what a remove or stop operation did.
type RemoveResult int

const (
	Removed RemoveResult = iota + 1
	AlreadyAbsent
)

func (r RemoveResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case AlreadyAbsent:
		return "already absent"
	default:
		return "unknown"
	}
}

// Lookup is the outcome of an explicit existence check.
type Lookup int

const (
	NotFound Lookup = iota
	Found
)

// stopTimeout bounds the graceful stop before the daemon kills the server.
const stopTimeout = 10 * time.Second

// =============================================================================
// Lifecycle Facade
// =============================================================================

// Lifecycle wraps a Client with idempotent stack operations.
// Absence of a resource is never an error for ensure, remove or stop.
type Lifecycle struct {
	client Client
	logger *zap.Logger
}

// NewLifecycle creates a lifecycle facade over client.
func NewLifecycle(client Client, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{client: client, logger: logger}
}

// Ping verifies the daemon is reachable.
func (l *Lifecycle) Ping(ctx context.Context) error {
	return l.client.Ping(ctx)
}

// EnsureVolume creates the named volume unless it already exists.
func (l *Lifecycle) EnsureVolume(ctx context.Context, name string) (EnsureResult, error) {
	lookup, err := l.lookupVolume(ctx, name)
	if err != nil {
		return 0, err
	}
	if lookup == Found {
		l.logger.Debug("volume already present", zap.String("volume", name))
		return AlreadyPresent, nil
	}

	if _, err := l.client.CreateVolume(ctx, name); err != nil {
		return 0, err
	}
	l.logger.Info("volume created", zap.String("volume", name))
	return Created, nil
}

// RemoveVolume removes the named volume if it exists.
func (l *Lifecycle) RemoveVolume(ctx context.Context, name string) (RemoveResult, error) {
	lookup, err := l.lookupVolume(ctx, name)
	if err != nil {
		return 0, err
	}
	if lookup == NotFound {
		return AlreadyAbsent, nil
	}

	if err := l.client.RemoveVolume(ctx, name, false); err != nil {
		if errors.Is(err, ErrVolumeNotFound) {
			return AlreadyAbsent, nil
		}
		return 0, err
	}
	l.logger.Info("volume removed", zap.String("volume", name))
	return Removed, nil
}

// RemoveNetwork removes the named network if it exists.
func (l *Lifecycle) RemoveNetwork(ctx context.Context, name string) (RemoveResult, error) {
	if _, err := l.client.InspectNetwork(ctx, name); err != nil {
		if errors.Is(err, ErrNetworkNotFound) {
			return AlreadyAbsent, nil
		}
		return 0, err
	}

	if err := l.client.RemoveNetwork(ctx, name); err != nil {
		if errors.Is(err, ErrNetworkNotFound) {
			return AlreadyAbsent, nil
		}
		return 0, err
	}
	l.logger.Info("network removed", zap.String("network", name))
	return Removed, nil
}

// RunContainer replaces any container with the same name and starts a new one.
// The image is pulled when it is not present locally.
func (l *Lifecycle) RunContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	lookup, err := l.lookupContainer(ctx, spec.Name)
	if err != nil {
		return "", err
	}
	if lookup == Found {
		l.logger.Info("replacing existing container", zap.String("container", spec.Name))
		if err := l.client.RemoveContainer(ctx, spec.Name, RemoveOptions{Force: true}); err != nil && !errors.Is(err, ErrContainerNotFound) {
			return "", err
		}
	}

	exists, err := l.client.ImageExists(ctx, spec.Image)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := l.client.PullImage(ctx, spec.Image, PullOptions{}); err != nil {
			return "", err
		}
	}

	id, err := l.client.CreateContainer(ctx, spec)
	if err != nil {
		return "", err
	}
	if err := l.client.StartContainer(ctx, id); err != nil {
		return "", err
	}

	l.logger.Info("container started", zap.String("container", spec.Name), zap.String("id", id))
	return id, nil
}

// ListContainersByImage lists running containers descended from ancestor.
func (l *Lifecycle) ListContainersByImage(ctx context.Context, ancestor string) ([]ContainerDescriptor, error) {
	containers, err := l.client.ListContainers(ctx, ListOptions{
		Filters: map[string]string{"ancestor": ancestor},
	})
	if err != nil {
		return nil, err
	}

	result := make([]ContainerDescriptor, 0, len(containers))
	for _, c := range containers {
		result = append(result, ContainerDescriptor{
			Name: c.Name,
			Port: serving.ResolveHostPort(c.Ports),
		})
	}
	return result, nil
}

// StopContainer stops and removes the named container if it exists.
func (l *Lifecycle) StopContainer(ctx context.Context, name string) (RemoveResult, error) {
	lookup, err := l.lookupContainer(ctx, name)
	if err != nil {
		return 0, err
	}
	if lookup == NotFound {
		return AlreadyAbsent, nil
	}

	timeout := stopTimeout
	if err := l.client.StopContainer(ctx, name, &timeout); err != nil {
		switch {
		case errors.Is(err, ErrContainerNotFound):
			return AlreadyAbsent, nil
		case errors.Is(err, ErrContainerNotRunning):
		default:
			return 0, err
		}
	}

	if err := l.client.RemoveContainer(ctx, name, RemoveOptions{}); err != nil {
		if errors.Is(err, ErrContainerNotFound) {
			return AlreadyAbsent, nil
		}
		return 0, err
	}
	l.logger.Info("container stopped and removed", zap.String("container", name))
	return Removed, nil
}

// =============================================================================
// Existence Checks
// =============================================================================

func (l *Lifecycle) lookupVolume(ctx context.Context, name string) (Lookup, error) {
	if _, err := l.client.InspectVolume(ctx, name); err != nil {
		if errors.Is(err, ErrVolumeNotFound) {
			return NotFound, nil
		}
		return NotFound, err
	}
	return Found, nil
}

func (l *Lifecycle) lookupContainer(ctx context.Context, name string) (Lookup, error) {
	if _, err := l.client.InspectContainer(ctx, name); err != nil {
		if errors.Is(err, ErrContainerNotFound) {
			return NotFound, nil
		}
		return NotFound, err
	}
	return Found, nil
}

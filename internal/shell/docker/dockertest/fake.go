// Package dockertest provides an in-memory docker.Client for tests.
package dockertest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker"
)

// FakeClient is an in-memory docker.Client.
// Every call is appended to Calls as "<Method> <subject>", or "<Method>"
// when the call has no subject.
type FakeClient struct {
	mu sync.Mutex

	Containers map[string]*docker.ContainerInfo // keyed by name
	Specs      map[string]docker.ContainerSpec  // last spec created per name
	Volumes    map[string]bool
	Networks   map[string]bool
	Images     map[string]bool
	Calls      []string

	PingErr   error
	CreateErr error
	StartErr  error

	nextID int
}

var _ docker.Client = (*FakeClient)(nil)

// NewFakeClient returns an empty fake daemon.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Containers: make(map[string]*docker.ContainerInfo),
		Specs:      make(map[string]docker.ContainerSpec),
		Volumes:    make(map[string]bool),
		Networks:   make(map[string]bool),
		Images:     make(map[string]bool),
	}
}

// CallLog returns a copy of the recorded calls.
func (f *FakeClient) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// AddRunning registers a running container with the given host port for 8000/tcp.
func (f *FakeClient) AddRunning(name, image, hostPort string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ports := serving.PortMap{}
	if hostPort != "" {
		ports[serving.ServerPortKey] = []serving.HostBinding{{HostIP: "0.0.0.0", HostPort: hostPort}}
	}
	f.Containers[name] = &docker.ContainerInfo{
		ID:        "ctr-" + strconv.Itoa(f.nextID),
		Name:      name,
		Image:     image,
		Status:    docker.ContainerStatusRunning,
		CreatedAt: time.Now(),
		Ports:     ports,
	}
}

// Record appends an entry to the call log. Other test doubles use it to
// interleave their calls with the daemon's.
func (f *FakeClient) Record(method, subject string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(method, subject)
}

func (f *FakeClient) record(method, subject string) {
	if subject == "" {
		f.Calls = append(f.Calls, method)
		return
	}
	f.Calls = append(f.Calls, method+" "+subject)
}

// find resolves a container by name or ID. Callers hold f.mu.
func (f *FakeClient) find(ref string) (*docker.ContainerInfo, bool) {
	if c, ok := f.Containers[ref]; ok {
		return c, true
	}
	for _, c := range f.Containers {
		if c.ID == ref {
			return c, true
		}
	}
	return nil, false
}

func notFound(op, entity, id string, sentinel error) error {
	return docker.NewDockerError(op, entity, id, entity+" not found", sentinel)
}

// =============================================================================
// Container Operations
// =============================================================================

func (f *FakeClient) CreateContainer(_ context.Context, spec docker.ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateContainer", spec.Name)

	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	if _, ok := f.Containers[spec.Name]; ok {
		return "", docker.NewDockerError("CreateContainer", "container", spec.Name, "container already exists", docker.ErrContainerAlreadyExists)
	}

	f.nextID++
	ports := serving.PortMap{}
	for _, p := range spec.Ports {
		key := fmt.Sprintf("%d/%s", p.ContainerPort, p.Protocol)
		ports[key] = append(ports[key], serving.HostBinding{HostIP: "0.0.0.0", HostPort: strconv.Itoa(p.HostPort)})
	}
	info := &docker.ContainerInfo{
		ID:        "ctr-" + strconv.Itoa(f.nextID),
		Name:      spec.Name,
		Image:     spec.Image,
		Status:    docker.ContainerStatusCreated,
		CreatedAt: time.Now(),
		Ports:     ports,
		Labels:    spec.Labels,
	}
	f.Containers[spec.Name] = info
	f.Specs[spec.Name] = spec
	return info.ID, nil
}

func (f *FakeClient) StartContainer(_ context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StartContainer", containerID)

	if f.StartErr != nil {
		return f.StartErr
	}
	c, ok := f.find(containerID)
	if !ok {
		return notFound("StartContainer", "container", containerID, docker.ErrContainerNotFound)
	}
	c.Status = docker.ContainerStatusRunning
	return nil
}

func (f *FakeClient) StopContainer(_ context.Context, containerID string, _ *time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StopContainer", containerID)

	c, ok := f.find(containerID)
	if !ok {
		return notFound("StopContainer", "container", containerID, docker.ErrContainerNotFound)
	}
	if c.Status != docker.ContainerStatusRunning {
		return docker.NewDockerError("StopContainer", "container", containerID, "container is not running", docker.ErrContainerNotRunning)
	}
	c.Status = docker.ContainerStatusExited
	return nil
}

func (f *FakeClient) RemoveContainer(_ context.Context, containerID string, opts docker.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveContainer", containerID)

	c, ok := f.find(containerID)
	if !ok {
		return notFound("RemoveContainer", "container", containerID, docker.ErrContainerNotFound)
	}
	if c.Status == docker.ContainerStatusRunning && !opts.Force {
		return docker.NewDockerError("RemoveContainer", "container", containerID, "container is running", nil)
	}
	delete(f.Containers, c.Name)
	return nil
}

func (f *FakeClient) InspectContainer(_ context.Context, containerID string) (*docker.ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InspectContainer", containerID)

	c, ok := f.find(containerID)
	if !ok {
		return nil, notFound("InspectContainer", "container", containerID, docker.ErrContainerNotFound)
	}
	info := *c
	return &info, nil
}

// ListContainers supports the "ancestor" and "name" filters.
func (f *FakeClient) ListContainers(_ context.Context, opts docker.ListOptions) ([]docker.ContainerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListContainers", opts.Filters["ancestor"])

	var result []docker.ContainerInfo
	for _, c := range f.Containers {
		if !opts.All && c.Status != docker.ContainerStatusRunning {
			continue
		}
		if ancestor, ok := opts.Filters["ancestor"]; ok && c.Image != ancestor && !strings.HasPrefix(c.Image, ancestor+":") {
			continue
		}
		if name, ok := opts.Filters["name"]; ok && !strings.Contains(c.Name, name) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// =============================================================================
// Network Operations
// =============================================================================

func (f *FakeClient) InspectNetwork(_ context.Context, name string) (*docker.NetworkInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InspectNetwork", name)

	if !f.Networks[name] {
		return nil, notFound("InspectNetwork", "network", name, docker.ErrNetworkNotFound)
	}
	return &docker.NetworkInfo{ID: "net-" + name, Name: name, Driver: "bridge"}, nil
}

func (f *FakeClient) RemoveNetwork(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveNetwork", name)

	if !f.Networks[name] {
		return notFound("RemoveNetwork", "network", name, docker.ErrNetworkNotFound)
	}
	delete(f.Networks, name)
	return nil
}

// =============================================================================
// Volume Operations
// =============================================================================

func (f *FakeClient) InspectVolume(_ context.Context, name string) (*docker.VolumeInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InspectVolume", name)

	if !f.Volumes[name] {
		return nil, notFound("InspectVolume", "volume", name, docker.ErrVolumeNotFound)
	}
	return &docker.VolumeInfo{Name: name, Driver: "local"}, nil
}

func (f *FakeClient) CreateVolume(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateVolume", name)

	f.Volumes[name] = true
	return name, nil
}

func (f *FakeClient) RemoveVolume(_ context.Context, name string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveVolume", name)

	if !f.Volumes[name] {
		return notFound("RemoveVolume", "volume", name, docker.ErrVolumeNotFound)
	}
	delete(f.Volumes, name)
	return nil
}

// =============================================================================
// Image and Health Operations
// =============================================================================

func (f *FakeClient) PullImage(_ context.Context, image string, _ docker.PullOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PullImage", image)

	f.Images[image] = true
	return nil
}

func (f *FakeClient) ImageExists(_ context.Context, image string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ImageExists", image)

	return f.Images[image], nil
}

func (f *FakeClient) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Ping", "")

	return f.PingErr
}

func (f *FakeClient) Close() error {
	return nil
}

package docker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker/dockertest"
)

func newLifecycle() (*docker.Lifecycle, *dockertest.FakeClient) {
	fake := dockertest.NewFakeClient()
	return docker.NewLifecycle(fake, nil), fake
}

// =============================================================================
// Volume Tests
// =============================================================================

func TestEnsureVolume_Idempotent(t *testing.T) {
	lc, fake := newLifecycle()
	ctx := context.Background()

	first, err := lc.EnsureVolume(ctx, serving.PostgresVolume)
	require.NoError(t, err)
	assert.Equal(t, docker.Created, first)

	second, err := lc.EnsureVolume(ctx, serving.PostgresVolume)
	require.NoError(t, err)
	assert.Equal(t, docker.AlreadyPresent, second)

	assert.True(t, fake.Volumes[serving.PostgresVolume])
	assert.Equal(t, []string{
		"InspectVolume postgres_data",
		"CreateVolume postgres_data",
		"InspectVolume postgres_data",
	}, fake.CallLog())
}

func TestRemoveVolume_Idempotent(t *testing.T) {
	lc, fake := newLifecycle()
	ctx := context.Background()
	fake.Volumes[serving.PostgresVolume] = true

	first, err := lc.RemoveVolume(ctx, serving.PostgresVolume)
	require.NoError(t, err)
	assert.Equal(t, docker.Removed, first)

	second, err := lc.RemoveVolume(ctx, serving.PostgresVolume)
	require.NoError(t, err)
	assert.Equal(t, docker.AlreadyAbsent, second)

	assert.False(t, fake.Volumes[serving.PostgresVolume])
}

func TestRemoveNetwork_Idempotent(t *testing.T) {
	lc, fake := newLifecycle()
	ctx := context.Background()
	fake.Networks[serving.StackNetwork] = true

	first, err := lc.RemoveNetwork(ctx, serving.StackNetwork)
	require.NoError(t, err)
	assert.Equal(t, docker.Removed, first)

	second, err := lc.RemoveNetwork(ctx, serving.StackNetwork)
	require.NoError(t, err)
	assert.Equal(t, docker.AlreadyAbsent, second)
}

func TestResultStrings(t *testing.T) {
	assert.Equal(t, "created", docker.Created.String())
	assert.Equal(t, "already present", docker.AlreadyPresent.String())
	assert.Equal(t, "removed", docker.Removed.String())
	assert.Equal(t, "already absent", docker.AlreadyAbsent.String())
}

// =============================================================================
// Container Tests
// =============================================================================

func TestRunContainer_PullsMissingImage(t *testing.T) {
	lc, fake := newLifecycle()
	ctx := context.Background()

	id, err := lc.RunContainer(ctx, docker.ContainerSpec{Name: "lfm2", Image: serving.HuggingFaceImage})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Equal(t, []string{
		"InspectContainer lfm2",
		"ImageExists vllm/vllm-openai:latest",
		"PullImage vllm/vllm-openai:latest",
		"CreateContainer lfm2",
		"StartContainer " + id,
	}, fake.CallLog())
	assert.Equal(t, docker.ContainerStatusRunning, fake.Containers["lfm2"].Status)
}

func TestRunContainer_ReplacesExisting(t *testing.T) {
	lc, fake := newLifecycle()
	ctx := context.Background()
	fake.Images[serving.HuggingFaceImage] = true
	fake.AddRunning("lfm2", serving.HuggingFaceImage, "9000")
	oldID := fake.Containers["lfm2"].ID

	spec := docker.ContainerSpec{
		Name:  "lfm2",
		Image: serving.HuggingFaceImage,
		Ports: []docker.PortBinding{{ContainerPort: 8000, HostPort: 9100, Protocol: "tcp"}},
	}
	newID, err := lc.RunContainer(ctx, spec)
	require.NoError(t, err)

	assert.NotEqual(t, oldID, newID)
	require.Len(t, fake.Containers, 1)
	assert.Equal(t, newID, fake.Containers["lfm2"].ID)
	assert.Equal(t, "9100", serving.ResolveHostPort(fake.Containers["lfm2"].Ports))
	assert.Contains(t, fake.CallLog(), "RemoveContainer lfm2")
	assert.NotContains(t, fake.CallLog(), "PullImage vllm/vllm-openai:latest")
}

func TestRunContainer_ReplacesWithDifferentImage(t *testing.T) {
	lc, fake := newLifecycle()
	ctx := context.Background()

	firstID, err := lc.RunContainer(ctx, docker.ContainerSpec{Name: "lfm2", Image: "vllm/vllm-openai:v0.6"})
	require.NoError(t, err)

	secondID, err := lc.RunContainer(ctx, docker.ContainerSpec{Name: "lfm2", Image: serving.HuggingFaceImage})
	require.NoError(t, err)

	assert.NotEqual(t, firstID, secondID)
	require.Len(t, fake.Containers, 1)
	assert.Equal(t, secondID, fake.Containers["lfm2"].ID)
	assert.Equal(t, serving.HuggingFaceImage, fake.Containers["lfm2"].Image)
	assert.Equal(t, docker.ContainerStatusRunning, fake.Containers["lfm2"].Status)
}

func TestRunContainer_StartFailure(t *testing.T) {
	lc, fake := newLifecycle()
	fake.Images["img:1"] = true
	fake.StartErr = docker.NewDockerError("StartContainer", "container", "x", "port is already allocated", docker.ErrPortAlreadyAllocated)

	_, err := lc.RunContainer(context.Background(), docker.ContainerSpec{Name: "x", Image: "img:1"})
	assert.ErrorIs(t, err, docker.ErrPortAlreadyAllocated)
}

func TestListContainersByImage(t *testing.T) {
	lc, fake := newLifecycle()
	fake.AddRunning("lfm2", "vllm/vllm-openai:latest", "9000")
	fake.AddRunning("noport", "vllm/vllm-openai:v0.6", "")
	fake.AddRunning("postgres", "liquidai/liquid-labs-postgres:c3d7dbacd1", "5432")

	got, err := lc.ListContainersByImage(context.Background(), serving.ServerAncestor)
	require.NoError(t, err)

	assert.Equal(t, []docker.ContainerDescriptor{
		{Name: "lfm2", Port: "9000"},
		{Name: "noport", Port: serving.UnknownPort},
	}, got)
}

func TestListContainersByImage_Empty(t *testing.T) {
	lc, _ := newLifecycle()

	got, err := lc.ListContainersByImage(context.Background(), serving.ServerAncestor)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStopContainer(t *testing.T) {
	lc, fake := newLifecycle()
	ctx := context.Background()
	fake.AddRunning("lfm2", serving.HuggingFaceImage, "9000")

	first, err := lc.StopContainer(ctx, "lfm2")
	require.NoError(t, err)
	assert.Equal(t, docker.Removed, first)
	assert.Empty(t, fake.Containers)

	second, err := lc.StopContainer(ctx, "lfm2")
	require.NoError(t, err)
	assert.Equal(t, docker.AlreadyAbsent, second)
}

func TestStopContainer_AlreadyExited(t *testing.T) {
	lc, fake := newLifecycle()
	fake.AddRunning("lfm2", serving.HuggingFaceImage, "9000")
	fake.Containers["lfm2"].Status = docker.ContainerStatusExited

	result, err := lc.StopContainer(context.Background(), "lfm2")
	require.NoError(t, err)
	assert.Equal(t, docker.Removed, result)
	assert.Empty(t, fake.Containers)
}

func TestPing_PropagatesError(t *testing.T) {
	lc, fake := newLifecycle()
	fake.PingErr = docker.NewDockerError("Ping", "", "", "refused", docker.ErrConnectionFailed)

	err := lc.Ping(context.Background())
	assert.True(t, errors.Is(err, docker.ErrConnectionFailed))
}

package modelops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker/dockertest"
	"github.com/Liquid4All/on-prem-stack/internal/shell/prompt"
)

// =============================================================================
// Test Fixtures
// =============================================================================

type fixture struct {
	service    *Service
	daemon     *dockertest.FakeClient
	out        *bytes.Buffer
	configPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	daemon := dockertest.NewFakeClient()
	out := &bytes.Buffer{}
	configPath := filepath.Join(t.TempDir(), "liquid.yaml")

	service := NewService(configPath, docker.NewLifecycle(daemon, nil), out, nil)
	service.newID = func() string { return "launch-1" }

	return &fixture{service: service, daemon: daemon, out: out, configPath: configPath}
}

func hfParams() serving.HuggingFaceParams {
	return serving.HuggingFaceParams{
		ServerOptions: serving.DefaultServerOptions(),
		Name:          "lfm2",
		ModelPath:     "LiquidAI/LFM2-1.2B",
		MaxModelLen:   serving.DefaultMaxModelLen,
		Token:         "hf_test",
	}
}

func writeCheckpoint(t *testing.T, metadata string) string {
	t.Helper()
	dir := t.TempDir()
	if metadata != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, serving.MetadataFile), []byte(metadata), 0o644))
	}
	return dir
}

type scriptedSelector struct {
	choice  int
	err     error
	options []string
}

func (s *scriptedSelector) Select(_ string, options []string) (int, error) {
	s.options = options
	return s.choice, s.err
}

// =============================================================================
// Hugging Face Tests
// =============================================================================

func TestRunHuggingFace_StartsContainer(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.RunHuggingFace(context.Background(), hfParams())
	require.NoError(t, err)

	assert.Equal(t, "lfm2", result.Name)
	assert.Equal(t, serving.HuggingFaceImage, result.Image)
	assert.Equal(t, 9000, result.HostPort)
	assert.Equal(t, "launch-1", result.LaunchID)

	spec := f.daemon.Specs["lfm2"]
	assert.Equal(t, "hf_test", spec.Env["HUGGING_FACE_HUB_TOKEN"])
	assert.Equal(t, "launch-1", spec.Labels[serving.LabelLaunch])
	assert.Equal(t, docker.ContainerStatusRunning, f.daemon.Containers["lfm2"].Status)

	assert.Equal(t, []string{
		"InspectContainer lfm2",
		"ImageExists vllm/vllm-openai:latest",
		"PullImage vllm/vllm-openai:latest",
		"CreateContainer lfm2",
		"StartContainer " + result.ContainerID,
	}, f.daemon.CallLog())

	assert.Contains(t, f.out.String(), "Model 'lfm2' started successfully")
	assert.Contains(t, f.out.String(), "The vLLM API will be accessible at http://localhost:9000")
}

func TestRunHuggingFace_TokenFromEnvironment(t *testing.T) {
	f := newFixture(t)
	t.Setenv(HuggingFaceTokenEnv, "hf_from_env")

	params := hfParams()
	params.Token = ""
	_, err := f.service.RunHuggingFace(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "hf_from_env", f.daemon.Specs["lfm2"].Env["HUGGING_FACE_HUB_TOKEN"])
}

func TestRunHuggingFace_MissingTokenHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	t.Setenv(HuggingFaceTokenEnv, "")

	params := hfParams()
	params.Token = ""
	_, err := f.service.RunHuggingFace(context.Background(), params)

	assert.ErrorIs(t, err, serving.ErrMissingToken)
	assert.Empty(t, f.daemon.CallLog())
	assert.Empty(t, f.out.String())
}

func TestRunHuggingFace_ReplacesRunningContainer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.RunHuggingFace(ctx, hfParams())
	require.NoError(t, err)

	params := hfParams()
	params.HostPort = 9100
	second, err := f.service.RunHuggingFace(ctx, params)
	require.NoError(t, err)

	assert.NotEqual(t, first.ContainerID, second.ContainerID)
	require.Len(t, f.daemon.Containers, 1)
	assert.Equal(t, second.ContainerID, f.daemon.Containers["lfm2"].ID)
	assert.Contains(t, f.daemon.CallLog(), "RemoveContainer lfm2")
}

func TestRun_ReplacesServerFromAnotherImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.RunHuggingFace(ctx, hfParams())
	require.NoError(t, err)

	dir := writeCheckpoint(t, `{"model_name": "lfm2"}`)
	second, err := f.service.RunCheckpoint(ctx, dir, serving.DefaultServerOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	require.Len(t, f.daemon.Containers, 1)
	assert.Equal(t, second.ContainerID, f.daemon.Containers["lfm2"].ID)
	assert.Equal(t, serving.CheckpointImage(stack.DefaultStackVersion), f.daemon.Containers["lfm2"].Image)
}

// =============================================================================
// Checkpoint Tests
// =============================================================================

func TestRunCheckpoint_StartsContainer(t *testing.T) {
	f := newFixture(t)
	dir := writeCheckpoint(t, `{"model_name": "lfm-3b-ft"}`)

	result, err := f.service.RunCheckpoint(context.Background(), dir, serving.DefaultServerOptions())
	require.NoError(t, err)

	assert.Equal(t, "lfm-3b-ft", result.Name)
	assert.Equal(t, serving.CheckpointImage(stack.DefaultStackVersion), result.Image)

	spec := f.daemon.Specs["lfm-3b-ft"]
	require.Len(t, spec.Volumes, 1)
	assert.Equal(t, dir, spec.Volumes[0].Source)
	assert.Equal(t, serving.CheckpointMount, spec.Volumes[0].Target)
	assert.True(t, spec.Volumes[0].ReadOnly)
	assert.Equal(t, serving.SourceCheckpoint, spec.Labels[serving.LabelSource])
}

func TestRunCheckpoint_UsesConfiguredStackVersion(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.configPath, []byte(`
stack:
  version: abc123
  model_image: liquidai/lfm-7b-e:0.0.1
  api_secret: local_api_token
database:
  name: liquid_labs
  user: local_user
  password: local_password
  port: 5432
  schema: labs
`), 0o600))
	dir := writeCheckpoint(t, `{"model_name": "lfm-3b-ft"}`)

	result, err := f.service.RunCheckpoint(context.Background(), dir, serving.DefaultServerOptions())
	require.NoError(t, err)
	assert.Equal(t, "liquidai/liquid-labs-vllm:abc123", result.Image)
}

func TestRunCheckpoint_Errors(t *testing.T) {
	tests := []struct {
		name     string
		dir      func(t *testing.T) string
		sentinel error
	}{
		{
			name:     "missing directory",
			dir:      func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent") },
			sentinel: serving.ErrCheckpointNotFound,
		},
		{
			name: "path is a file",
			dir: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "weights.bin")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
				return path
			},
			sentinel: serving.ErrCheckpointNotFound,
		},
		{
			name:     "missing metadata",
			dir:      func(t *testing.T) string { return writeCheckpoint(t, "") },
			sentinel: serving.ErrMetadataNotFound,
		},
		{
			name:     "invalid metadata",
			dir:      func(t *testing.T) string { return writeCheckpoint(t, "{not json") },
			sentinel: serving.ErrInvalidMetadata,
		},
		{
			name:     "metadata without model name",
			dir:      func(t *testing.T) string { return writeCheckpoint(t, `{"model_name": ""}`) },
			sentinel: serving.ErrModelNameMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.RunCheckpoint(context.Background(), tt.dir(t), serving.DefaultServerOptions())
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Empty(t, f.daemon.CallLog())
		})
	}
}

func TestRunCheckpoint_MissingDirectoryMessage(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(t.TempDir(), "absent")

	_, err := f.service.RunCheckpoint(context.Background(), dir, serving.DefaultServerOptions())
	require.Error(t, err)
	assert.Equal(t, "Model checkpoint directory does not exist: "+dir, err.Error())
}

// =============================================================================
// List and Stop Tests
// =============================================================================

func TestList_Empty(t *testing.T) {
	f := newFixture(t)

	containers, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, containers)
	assert.Equal(t, "No running vLLM containers found.\n", f.out.String())
}

func TestList_PrintsServers(t *testing.T) {
	f := newFixture(t)
	f.daemon.AddRunning("lfm2", serving.HuggingFaceImage, "9000")
	f.daemon.AddRunning("broken", serving.HuggingFaceImage, "")
	f.daemon.AddRunning("postgres", "postgres:16", "5432")

	containers, err := f.service.List(context.Background())
	require.NoError(t, err)

	require.Len(t, containers, 2)
	assert.Equal(t, "Running vLLM containers:\n"+
		"----------------------\n"+
		"1) broken (Port: unknown)\n"+
		"2) lfm2 (Port: 9000)\n", f.out.String())
}

func TestStop_ByName(t *testing.T) {
	f := newFixture(t)
	f.daemon.AddRunning("lfm2", serving.HuggingFaceImage, "9000")

	name, result, err := f.service.Stop(context.Background(), "lfm2", nil)
	require.NoError(t, err)
	assert.Equal(t, "lfm2", name)
	assert.Equal(t, docker.Removed, result)
	assert.Empty(t, f.daemon.Containers)
	assert.Contains(t, f.out.String(), "Stopped and removed container: lfm2")
}

func TestStop_AbsentIsNoop(t *testing.T) {
	f := newFixture(t)

	_, result, err := f.service.Stop(context.Background(), "ghost", nil)
	require.NoError(t, err)
	assert.Equal(t, docker.AlreadyAbsent, result)
}

func TestStop_InteractiveSelection(t *testing.T) {
	f := newFixture(t)
	f.daemon.AddRunning("a-model", serving.HuggingFaceImage, "9000")
	f.daemon.AddRunning("b-model", serving.HuggingFaceImage, "9001")
	sel := &scriptedSelector{choice: 1}

	name, result, err := f.service.Stop(context.Background(), "", sel)
	require.NoError(t, err)

	assert.Equal(t, []string{"a-model (Port: 9000)", "b-model (Port: 9001)"}, sel.options)
	assert.Equal(t, "b-model", name)
	assert.Equal(t, docker.Removed, result)
	assert.Contains(t, f.daemon.Containers, "a-model")
}

func TestStop_SelectionWithPrompter(t *testing.T) {
	f := newFixture(t)
	f.daemon.AddRunning("lfm2", serving.HuggingFaceImage, "9000")
	var promptOut bytes.Buffer
	p := prompt.New(bytes.NewBufferString("1\n"), &promptOut, true)

	name, _, err := f.service.Stop(context.Background(), "", p)
	require.NoError(t, err)
	assert.Equal(t, "lfm2", name)
	assert.Contains(t, promptOut.String(), "Select a container to stop:\n1) lfm2 (Port: 9000)\n")
}

func TestStop_NothingToSelect(t *testing.T) {
	f := newFixture(t)

	name, result, err := f.service.Stop(context.Background(), "", &scriptedSelector{})
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Equal(t, docker.AlreadyAbsent, result)
	assert.Contains(t, f.out.String(), "No running vLLM containers found.")
}

func TestStop_NonInteractiveSelection(t *testing.T) {
	f := newFixture(t)
	f.daemon.AddRunning("lfm2", serving.HuggingFaceImage, "9000")
	p := prompt.New(bytes.NewBufferString(""), &bytes.Buffer{}, false)

	_, _, err := f.service.Stop(context.Background(), "", p)
	assert.ErrorIs(t, err, prompt.ErrNotInteractive)
	assert.Contains(t, f.daemon.Containers, "lfm2")
}

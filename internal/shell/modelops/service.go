// Package modelops runs standalone vLLM model servers next to the stack.
// This is part of the Imperative Shell - it reads checkpoints and the
// configuration, then hands pure container plans to the Docker facade.
package modelops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
	"github.com/Liquid4All/on-prem-stack/internal/shell/configstore"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker"
)

// HuggingFaceTokenEnv supplies the hub token when no flag is given.
const HuggingFaceTokenEnv = "HUGGING_FACE_TOKEN"

// Lifecycle is the subset of the Docker facade used by model flows.
type Lifecycle interface {
	RunContainer(ctx context.Context, spec docker.ContainerSpec) (string, error)
	ListContainersByImage(ctx context.Context, ancestor string) ([]docker.ContainerDescriptor, error)
	StopContainer(ctx context.Context, name string) (docker.RemoveResult, error)
}

// Selector lets the operator pick one option.
type Selector interface {
	Select(message string, options []string) (int, error)
}

// Service runs, lists and stops model servers.
type Service struct {
	configPath string
	lifecycle  Lifecycle
	out        io.Writer
	logger     *zap.Logger
	newID      func() string
}

// NewService creates a model service. configPath is read only by
// RunCheckpoint, for the stack version.
func NewService(configPath string, lifecycle Lifecycle, out io.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Service{
		configPath: configPath,
		lifecycle:  lifecycle,
		out:        out,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// RunResult describes a started model server.
type RunResult struct {
	ContainerID string
	Name        string
	Image       string
	HostPort    int
	LaunchID    string
}

// =============================================================================
// Run
// =============================================================================

// RunHuggingFace serves a hub model with the upstream vLLM image.
// An empty params.Token falls back to $HUGGING_FACE_TOKEN; without either
// nothing is started.
func (s *Service) RunHuggingFace(ctx context.Context, params serving.HuggingFaceParams) (*RunResult, error) {
	if params.Token == "" {
		params.Token = os.Getenv(HuggingFaceTokenEnv)
	}
	params.LaunchID = s.newID()

	plan, err := serving.BuildHuggingFacePlan(params)
	if err != nil {
		return nil, err
	}

	s.printf("Launching model container %s from %s...\n", plan.Name, params.ModelPath)
	result, err := s.run(ctx, plan, params.HostPort, params.LaunchID)
	if err != nil {
		return nil, err
	}

	s.printf("Model '%s' started successfully\n", result.Name)
	s.printf("The vLLM API will be accessible at http://localhost:%d\n", result.HostPort)
	s.printf("Please wait 1-2 minutes for the model to load before making API calls\n")
	return result, nil
}

// RunCheckpoint serves a local checkpoint directory with the stack's vLLM
// image. The directory must contain model_metadata.json naming the model.
func (s *Service) RunCheckpoint(ctx context.Context, dir string, opts serving.ServerOptions) (*RunResult, error) {
	checkpoint, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	meta, err := readMetadata(checkpoint)
	if err != nil {
		return nil, err
	}

	cfg, err := configstore.Load(s.configPath)
	if err != nil {
		return nil, err
	}

	params := serving.CheckpointParams{
		ServerOptions: opts,
		CheckpointDir: checkpoint,
		ModelName:     meta.ModelName,
		StackVersion:  cfg.Stack.Version,
		LaunchID:      s.newID(),
	}
	plan, err := serving.BuildCheckpointPlan(params)
	if err != nil {
		return nil, err
	}

	s.printf("Launching model container %s from %s...\n", plan.Name, checkpoint)
	result, err := s.run(ctx, plan, opts.HostPort, params.LaunchID)
	if err != nil {
		return nil, err
	}

	s.printf("Model '%s' started successfully\n", result.Name)
	s.printf("The vLLM API will be accessible at http://localhost:%d\n", result.HostPort)
	s.printf("Please wait 1-2 minutes for the model to load before making API calls\n")
	return result, nil
}

func readMetadata(checkpoint string) (serving.CheckpointMetadata, error) {
	info, err := os.Stat(checkpoint)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return serving.CheckpointMetadata{}, serving.NewParamError("",
			"Model checkpoint directory does not exist: "+checkpoint, serving.ErrCheckpointNotFound)
	}
	if err != nil {
		return serving.CheckpointMetadata{}, fmt.Errorf("stat %s: %w", checkpoint, err)
	}

	data, err := os.ReadFile(filepath.Join(checkpoint, serving.MetadataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return serving.CheckpointMetadata{}, serving.NewParamError("",
			serving.ErrMetadataNotFound.Error(), serving.ErrMetadataNotFound)
	}
	if err != nil {
		return serving.CheckpointMetadata{}, fmt.Errorf("read %s: %w", serving.MetadataFile, err)
	}
	return serving.ParseCheckpointMetadata(data)
}

func (s *Service) run(ctx context.Context, plan serving.ContainerPlan, hostPort int, launchID string) (*RunResult, error) {
	id, err := s.lifecycle.RunContainer(ctx, docker.SpecFromPlan(plan))
	if err != nil {
		return nil, err
	}
	s.logger.Info("model server started",
		zap.String("container", plan.Name),
		zap.String("image", plan.Image),
		zap.Int("port", hostPort),
		zap.String("launch_id", launchID),
	)
	return &RunResult{
		ContainerID: id,
		Name:        plan.Name,
		Image:       plan.Image,
		HostPort:    hostPort,
		LaunchID:    launchID,
	}, nil
}

// =============================================================================
// List and Stop
// =============================================================================

// List prints the running vLLM servers started from the upstream image.
func (s *Service) List(ctx context.Context) ([]docker.ContainerDescriptor, error) {
	containers, err := s.lifecycle.ListContainersByImage(ctx, serving.ServerAncestor)
	if err != nil {
		return nil, err
	}

	if len(containers) == 0 {
		s.printf("No running vLLM containers found.\n")
		return containers, nil
	}

	s.printf("Running vLLM containers:\n")
	s.printf("----------------------\n")
	for i, c := range containers {
		s.printf("%d) %s\n", i+1, describe(c))
	}
	return containers, nil
}

// Stop stops and removes the named server. With an empty name the running
// servers are listed and sel picks one. It returns the name it acted on,
// which is empty when there was nothing to choose from.
func (s *Service) Stop(ctx context.Context, name string, sel Selector) (string, docker.RemoveResult, error) {
	if name == "" {
		containers, err := s.lifecycle.ListContainersByImage(ctx, serving.ServerAncestor)
		if err != nil {
			return "", 0, err
		}
		if len(containers) == 0 {
			s.printf("No running vLLM containers found.\n")
			return "", docker.AlreadyAbsent, nil
		}

		options := make([]string, len(containers))
		for i, c := range containers {
			options[i] = describe(c)
		}
		idx, err := sel.Select("Select a container to stop:", options)
		if err != nil {
			return "", 0, err
		}
		name = containers[idx].Name
	}

	result, err := s.lifecycle.StopContainer(ctx, name)
	if err != nil {
		return name, 0, err
	}

	switch result {
	case docker.Removed:
		s.printf("Stopped and removed container: %s\n", name)
	default:
		s.printf("Container %s does not exist, nothing to stop.\n", name)
	}
	return name, result, nil
}

func describe(c docker.ContainerDescriptor) string {
	return fmt.Sprintf("%s (Port: %s)", c.Name, c.Port)
}

func (s *Service) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

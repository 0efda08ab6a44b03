// Package stackops runs the stack-level flows: launch, shutdown, purge,
// smoke test and database check.
// This is part of the Imperative Shell - it sequences the pure stack and
// compose packages with file, Docker and subprocess I/O.
package stackops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	corecompose "github.com/Liquid4All/on-prem-stack/internal/core/compose"
	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
	"github.com/Liquid4All/on-prem-stack/internal/shell/compose"
	"github.com/Liquid4All/on-prem-stack/internal/shell/configstore"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker"
	"github.com/Liquid4All/on-prem-stack/internal/shell/envfile"
)

// =============================================================================
// Service Errors
// =============================================================================

var (
	// ErrEnvFileMissing is returned by Shutdown when launch has never written the env file.
	ErrEnvFileMissing = errors.New("env file does not exist")

	// ErrComposeFileMissing is returned by Launch when the compose file is absent.
	ErrComposeFileMissing = errors.New("compose file does not exist")
)

// =============================================================================
// Collaborators
// =============================================================================

// Lifecycle is the subset of the Docker facade used by stack flows.
type Lifecycle interface {
	Ping(ctx context.Context) error
	EnsureVolume(ctx context.Context, name string) (docker.EnsureResult, error)
	RemoveVolume(ctx context.Context, name string) (docker.RemoveResult, error)
	RemoveNetwork(ctx context.Context, name string) (docker.RemoveResult, error)
}

// ComposeRunner runs one compose action.
type ComposeRunner interface {
	Run(ctx context.Context, action compose.Action, opts compose.Options) error
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(question string, def bool) (bool, error)
}

// Paths locates the stack's files.
type Paths struct {
	Config      string
	EnvFile     string
	ComposeFile string
}

// DefaultComposeFile is the compose project shipped with the stack.
const DefaultComposeFile = "docker-compose.yaml"

// DefaultPaths returns the file names used in the working directory.
func DefaultPaths() Paths {
	return Paths{
		Config:      configstore.DefaultPath,
		EnvFile:     envfile.DefaultPath,
		ComposeFile: DefaultComposeFile,
	}
}

// =============================================================================
// Service
// =============================================================================

// Service runs stack flows. User-facing progress goes to out; diagnostics
// go to the logger.
type Service struct {
	paths     Paths
	lifecycle Lifecycle
	runner    ComposeRunner
	out       io.Writer
	logger    *zap.Logger
}

// NewService creates a stack service.
// lifecycle and runner may be nil for flows that do not touch Docker
// (Test and DBCheck).
func NewService(paths Paths, lifecycle Lifecycle, runner ComposeRunner, out io.Writer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Service{
		paths:     paths,
		lifecycle: lifecycle,
		runner:    runner,
		out:       out,
		logger:    logger,
	}
}

func (s *Service) composeOptions() compose.Options {
	return compose.Options{
		ComposeFile: s.paths.ComposeFile,
		EnvFile:     s.paths.EnvFile,
	}
}

func (s *Service) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// =============================================================================
// Launch
// =============================================================================

// LaunchOptions selects the upgrades applied before launch.
type LaunchOptions struct {
	UpgradeStack bool
	UpgradeModel bool
}

// LaunchResult describes a completed launch.
type LaunchResult struct {
	Config  *stack.Config
	Env     stack.EnvironmentSet
	Project *corecompose.Project
	Volume  docker.EnsureResult
}

// Launch persists the configuration, writes the env file and brings the
// compose project up.
//
// Nothing outside liquid.yaml is touched until the configuration validates
// and the compose file loads with the materialized environment.
func (s *Service) Launch(ctx context.Context, opts LaunchOptions) (*LaunchResult, error) {
	cfg, err := configstore.Load(s.paths.Config)
	if err != nil {
		return nil, err
	}

	if cfg.ApplyUpgrades(opts.UpgradeStack, opts.UpgradeModel) {
		s.logger.Info("applied upgrades",
			zap.String("version", cfg.Stack.Version),
			zap.String("model_image", cfg.Stack.ModelImage),
		)
	}
	if !cfg.RefreshModelName() {
		s.logger.Warn("model image does not name a liquidai model, keeping model_name",
			zap.String("model_image", cfg.Stack.ModelImage),
			zap.String("model_name", cfg.Stack.ModelName),
		)
	}

	if err := stack.Validate(cfg); err != nil {
		return nil, err
	}
	if err := configstore.Save(cfg, s.paths.Config); err != nil {
		return nil, err
	}

	env := stack.Materialize(cfg)

	project, err := s.preflight(ctx, env)
	if err != nil {
		return nil, err
	}

	if err := envfile.Write(s.paths.EnvFile, env); err != nil {
		return nil, err
	}

	if err := s.lifecycle.Ping(ctx); err != nil {
		return nil, err
	}

	volume, err := s.lifecycle.EnsureVolume(ctx, serving.PostgresVolume)
	if err != nil {
		return nil, fmt.Errorf("ensure volume %s: %w", serving.PostgresVolume, err)
	}
	s.logger.Debug("postgres volume", zap.Stringer("result", volume))

	if err := s.runner.Run(ctx, compose.Up, s.composeOptions()); err != nil {
		return nil, err
	}

	s.printf("The on-prem stack is now running.\n")
	s.printf("Model '%s' is accessible at http://localhost:%d\n", cfg.Stack.ModelName, serving.ServerPort)
	s.printf("Please wait 1-2 minutes for the model to load before making API calls\n")

	return &LaunchResult{
		Config:  cfg,
		Env:     env,
		Project: project,
		Volume:  volume,
	}, nil
}

func (s *Service) preflight(ctx context.Context, env stack.EnvironmentSet) (*corecompose.Project, error) {
	content, err := os.ReadFile(s.paths.ComposeFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.paths.ComposeFile, ErrComposeFileMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.paths.ComposeFile, err)
	}

	project, err := corecompose.Preflight(ctx, string(content), env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.paths.ComposeFile, err)
	}

	if !project.HasVolume(serving.PostgresVolume) {
		s.logger.Warn("compose file does not declare the postgres volume",
			zap.String("volume", serving.PostgresVolume),
		)
	}
	s.logger.Debug("compose preflight passed", zap.Int("services", len(project.Services)))
	return project, nil
}

// =============================================================================
// Shutdown
// =============================================================================

// Shutdown brings the compose project down, keeping the postgres volume.
func (s *Service) Shutdown(ctx context.Context) error {
	exists, err := envfile.Exists(s.paths.EnvFile)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s: %w", s.paths.EnvFile, ErrEnvFileMissing)
	}

	if err := s.runner.Run(ctx, compose.Down, s.composeOptions()); err != nil {
		return err
	}
	s.printf("Stack has been shut down.\n")
	return nil
}

// =============================================================================
// Purge
// =============================================================================

// PurgeResult describes what Purge removed.
type PurgeResult struct {
	Confirmed bool
	Volume    docker.RemoveResult
	Network   docker.RemoveResult
	EnvFile   bool
}

// Purge removes every stack component after confirmation: containers, the
// postgres volume, the stack network and the env file.
//
// Each step runs even when an earlier one failed; the failures are returned
// together.
func (s *Service) Purge(ctx context.Context, force bool, confirm Confirmer) (*PurgeResult, error) {
	result := &PurgeResult{}

	if !force {
		s.printf("This will remove all Liquid Labs components:\n")
		s.printf("  - Stop and remove all containers\n")
		s.printf("  - Delete the %s volume (all database data will be lost)\n", serving.PostgresVolume)
		s.printf("  - Remove %s\n", serving.StackNetwork)
		s.printf("  - Remove the %s file\n", s.paths.EnvFile)

		ok, err := confirm.Confirm("Are you sure?", false)
		if err != nil {
			return result, err
		}
		if !ok {
			s.printf("Cleanup cancelled.\n")
			return result, nil
		}
	}
	result.Confirmed = true

	var errs []error

	if err := s.runner.Run(ctx, compose.Down, s.composeOptions()); err != nil {
		s.logger.Warn("compose down failed", zap.Error(err))
		errs = append(errs, err)
	}

	volume, err := s.lifecycle.RemoveVolume(ctx, serving.PostgresVolume)
	if err != nil {
		errs = append(errs, fmt.Errorf("remove volume %s: %w", serving.PostgresVolume, err))
	}
	result.Volume = volume

	network, err := s.lifecycle.RemoveNetwork(ctx, serving.StackNetwork)
	if err != nil {
		errs = append(errs, fmt.Errorf("remove network %s: %w", serving.StackNetwork, err))
	}
	result.Network = network

	removed, err := envfile.Remove(s.paths.EnvFile)
	if err != nil {
		errs = append(errs, err)
	}
	result.EnvFile = removed

	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	s.printf("Cleanup complete. All Liquid Labs components have been removed.\n")
	return result, nil
}

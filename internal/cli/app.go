// Package cli builds the liquidai command tree.
// Commands parse flags, construct the shell services and translate their
// errors into operator hints; the flows themselves live in stackops and
// modelops.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Liquid4All/on-prem-stack/internal/shell/compose"
	"github.com/Liquid4All/on-prem-stack/internal/shell/configstore"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker"
	"github.com/Liquid4All/on-prem-stack/internal/shell/envfile"
	"github.com/Liquid4All/on-prem-stack/internal/shell/prompt"
	"github.com/Liquid4All/on-prem-stack/internal/shell/smoke"
	"github.com/Liquid4All/on-prem-stack/internal/shell/stackops"
)

// =============================================================================
// Settings
// =============================================================================

// Settings are the CLI's own knobs, distinct from the stack document.
type Settings struct {
	Config      string         `mapstructure:"config"`
	EnvFile     string         `mapstructure:"env_file"`
	ComposeFile string         `mapstructure:"compose_file"`
	APIURL      string         `mapstructure:"api_url"`
	Docker      DockerSettings `mapstructure:"docker"`
	Log         LogSettings    `mapstructure:"log"`
	NoColor     bool           `mapstructure:"no_color"`
}

// DockerSettings selects the daemon.
type DockerSettings struct {
	Host string `mapstructure:"host"` // "" uses DOCKER_HOST or the default socket
}

// LogSettings configures diagnostics on stderr.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() Settings {
	return Settings{
		Config:      configstore.DefaultPath,
		EnvFile:     envfile.DefaultPath,
		ComposeFile: stackops.DefaultComposeFile,
		APIURL:      smoke.DefaultBaseURL,
		Log: LogSettings{
			Level:  "warn",
			Format: "console",
		},
	}
}

func (s Settings) paths() stackops.Paths {
	return stackops.Paths{
		Config:      s.Config,
		EnvFile:     s.EnvFile,
		ComposeFile: s.ComposeFile,
	}
}

// =============================================================================
// App
// =============================================================================

// Prompter is what commands need from the terminal.
type Prompter interface {
	configstore.Prompter
	Confirm(question string, def bool) (bool, error)
	Select(message string, options []string) (int, error)
}

// App carries the settings and collaborators shared by every command.
type App struct {
	Settings Settings
	Logger   *zap.Logger
	Out      io.Writer
	Err      io.Writer
	Prompter Prompter

	// Configure runs after flag parsing and before any command. It may
	// replace Settings and Logger.
	Configure func(cmd *cobra.Command) error

	// DockerClient connects to the daemon.
	DockerClient func(ctx context.Context) (docker.Client, error)

	// ComposeRunner locates docker compose.
	ComposeRunner func() (stackops.ComposeRunner, error)

	// Version is printed by --version.
	Version string
}

// NewApp creates an app wired to the real terminal, daemon and compose CLI.
func NewApp() *App {
	app := &App{
		Settings: DefaultSettings(),
		Logger:   zap.NewNop(),
		Out:      os.Stdout,
		Err:      os.Stderr,
		Prompter: prompt.NewTerminal(),
		Version:  "dev",
	}
	app.DockerClient = func(ctx context.Context) (docker.Client, error) {
		c, err := docker.NewDockerClient(ctx, app.Settings.Docker.Host, app.Logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	app.ComposeRunner = func() (stackops.ComposeRunner, error) {
		r, err := compose.NewRunner(app.Logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return app
}

// lifecycle connects to the daemon. The returned func closes the client.
func (a *App) lifecycle(ctx context.Context) (*docker.Lifecycle, func(), error) {
	c, err := a.DockerClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := c.Close(); err != nil {
			a.Logger.Debug("closing docker client", zap.Error(err))
		}
	}
	return docker.NewLifecycle(c, a.Logger), closeFn, nil
}

// stackService builds a stack service backed by the daemon and compose.
func (a *App) stackService(ctx context.Context) (*stackops.Service, func(), error) {
	runner, err := a.ComposeRunner()
	if err != nil {
		return nil, nil, err
	}
	lc, closeFn, err := a.lifecycle(ctx)
	if err != nil {
		return nil, nil, err
	}
	return stackops.NewService(a.Settings.paths(), lc, runner, a.Out, a.Logger), closeFn, nil
}

// purgeService builds a stack service that still runs when the daemon or
// compose is unavailable. The missing collaborator fails its own purge
// steps; the remaining steps, such as removing the env file, still run.
func (a *App) purgeService(ctx context.Context) (*stackops.Service, func()) {
	var runner stackops.ComposeRunner
	if r, err := a.ComposeRunner(); err != nil {
		a.Logger.Warn("compose unavailable, purge will skip compose down", zap.Error(err))
		runner = unavailable{err: err}
	} else {
		runner = r
	}

	var lc stackops.Lifecycle
	closeFn := func() {}
	if l, c, err := a.lifecycle(ctx); err != nil {
		a.Logger.Warn("docker unavailable, purge will skip volume and network removal", zap.Error(err))
		lc = unavailable{err: err}
	} else {
		lc, closeFn = l, c
	}
	return stackops.NewService(a.Settings.paths(), lc, runner, a.Out, a.Logger), closeFn
}

// unavailable stands in for a collaborator that could not be constructed.
type unavailable struct{ err error }

func (u unavailable) Run(context.Context, compose.Action, compose.Options) error { return u.err }

func (u unavailable) Ping(context.Context) error { return u.err }

func (u unavailable) EnsureVolume(context.Context, string) (docker.EnsureResult, error) {
	return 0, u.err
}

func (u unavailable) RemoveVolume(context.Context, string) (docker.RemoveResult, error) {
	return 0, u.err
}

func (u unavailable) RemoveNetwork(context.Context, string) (docker.RemoveResult, error) {
	return 0, u.err
}

// offlineStackService builds a stack service for flows that need neither
// the daemon nor compose.
func (a *App) offlineStackService() *stackops.Service {
	return stackops.NewService(a.Settings.paths(), nil, nil, a.Out, a.Logger)
}

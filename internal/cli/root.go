package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Persistent flag names. cmd/liquidai binds them to settings keys.
const (
	FlagConfig      = "config"
	FlagEnvFile     = "env-file"
	FlagComposeFile = "compose-file"
	FlagAPIURL      = "api-url"
	FlagDockerHost  = "docker-host"
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"
	FlagNoColor     = "no-color"
)

// NewRootCommand builds the liquidai command tree over app.
func NewRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidai",
		Short: "Liquid Labs on-prem stack CLI",
		Long: `Command line interface for the Liquid Labs on-prem stack.
It launches and tears down the compose stack, runs standalone vLLM model
servers and manages the liquid.yaml configuration.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Configure != nil {
				if err := app.Configure(cmd); err != nil {
					return err
				}
			}
			if app.Settings.NoColor {
				color.NoColor = true
			}
			return nil
		},
	}
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	s := &app.Settings
	flags := cmd.PersistentFlags()
	flags.StringVar(&s.Config, FlagConfig, s.Config, "Path to the stack configuration file")
	flags.StringVar(&s.EnvFile, FlagEnvFile, s.EnvFile, "Path to the env file handed to docker compose")
	flags.StringVar(&s.ComposeFile, FlagComposeFile, s.ComposeFile, "Path to the stack's compose file")
	flags.StringVar(&s.APIURL, FlagAPIURL, s.APIURL, "Base URL of the stack API used by 'stack test'")
	flags.StringVar(&s.Docker.Host, FlagDockerHost, s.Docker.Host, "Docker daemon address (default: DOCKER_HOST or the local socket)")
	flags.StringVar(&s.Log.Level, FlagLogLevel, s.Log.Level, "Log level (debug, info, warn, error)")
	flags.StringVar(&s.Log.Format, FlagLogFormat, s.Log.Format, "Log format (console, json)")
	flags.BoolVar(&s.NoColor, FlagNoColor, s.NoColor, "Disable coloured output")

	cmd.AddCommand(
		newStackCommand(app),
		newModelCommand(app),
		newConfigCommand(app),
		newDBCommand(app),
	)
	return cmd
}

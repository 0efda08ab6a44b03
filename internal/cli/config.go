package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
	"github.com/Liquid4All/on-prem-stack/internal/shell/configstore"
)

// secretMask replaces secret values in 'config show'.
const secretMask = "********"

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and migrate the stack configuration",
	}
	cmd.AddCommand(
		newConfigShowCommand(app),
		newConfigGetCommand(app),
		newConfigMigrateCommand(app),
	)
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stack configuration",
		Long: `Print the stack configuration.
The file is created with defaults when it does not exist. Secrets are
masked unless --reveal is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configstore.Load(app.Settings.Config)
			if err != nil {
				return app.withHints(err)
			}

			shown := *cfg
			if !reveal {
				maskSecrets(&shown)
			}
			data, err := stack.Marshal(&shown)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "%s\n", color.New(color.Faint).Sprintf("# %s", app.Settings.Config))
			_, err = app.Out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print secrets in clear text")
	return cmd
}

func maskSecrets(cfg *stack.Config) {
	for _, s := range []*string{
		&cfg.Stack.JWTSecret,
		&cfg.Stack.APISecret,
		&cfg.Stack.AuthSecret,
		&cfg.Database.Password,
	} {
		if *s != "" {
			*s = secretMask
		}
	}
}

func newConfigGetCommand(app *App) *cobra.Command {
	var opts stack.LookupOptions
	var optional bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value by dotted key",
		Example: `  liquidai config get stack.model_name
  liquidai config get database.port`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configstore.Load(app.Settings.Config)
			if err != nil {
				return app.withHints(err)
			}

			opts.Required = !optional
			value, err := configstore.GetValue(cfg, args[0], opts, app.Prompter)
			if err != nil {
				return app.withHints(err)
			}
			fmt.Fprintln(app.Out, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Default, "default", "", "Value used when the key is unset")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "Ask for the value on a terminal when the key is unset")
	cmd.Flags().BoolVar(&optional, "optional", false, "Print an empty line instead of failing when the key is unset")
	return cmd
}

func newConfigMigrateCommand(app *App) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import a legacy .env file into the stack configuration",
		Long: `Import a .env file written by earlier releases into liquid.yaml.
The env file is renamed with a .bak suffix afterwards. An existing
liquid.yaml is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = app.Settings.EnvFile
			}
			if _, err := configstore.Migrate(from, app.Settings.Config); err != nil {
				return app.withHints(err)
			}
			fmt.Fprintf(app.Out, "Migrated %s to %s (original kept as %s%s)\n",
				from, app.Settings.Config, from, configstore.BackupSuffix)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Legacy env file to import (default: --env-file)")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/Liquid4All/on-prem-stack/internal/shell/stackops"
)

func newStackCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Manage the on-prem compose stack",
	}
	cmd.AddCommand(
		newStackLaunchCommand(app),
		newStackShutdownCommand(app),
		newStackPurgeCommand(app),
		newStackTestCommand(app),
	)
	return cmd
}

func newStackLaunchCommand(app *App) *cobra.Command {
	var opts stackops.LaunchOptions
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch the on-prem stack",
		Long: `Launch the on-prem stack.
This command will:
- Create liquid.yaml with defaults and generated secrets if it doesn't exist
- Write the .env file consumed by docker compose
- Create the postgres_data volume if it doesn't exist
- Start all services using docker compose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := app.stackService(cmd.Context())
			if err != nil {
				return app.withHints(err)
			}
			defer closeFn()

			_, err = svc.Launch(cmd.Context(), opts)
			return app.withHints(err)
		},
	}
	cmd.Flags().BoolVar(&opts.UpgradeStack, "upgrade-stack", false, "Upgrade the stack version to the latest release")
	cmd.Flags().BoolVar(&opts.UpgradeModel, "upgrade-model", false, "Upgrade the model image to the latest release")
	return cmd
}

func newStackShutdownCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop the on-prem stack, keeping its data",
		Long: `Stop the on-prem stack.
Containers are removed; the postgres_data volume is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := app.stackService(cmd.Context())
			if err != nil {
				return app.withHints(err)
			}
			defer closeFn()

			return app.withHints(svc.Shutdown(cmd.Context()))
		},
	}
}

func newStackPurgeCommand(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove every on-prem stack component",
		Long: `Remove every on-prem stack component.
This command will:
- Stop and remove all containers
- Delete the postgres_data volume (all database data will be lost)
- Remove liquid_labs_network
- Remove the .env file
liquid.yaml is kept. Every step is attempted even when Docker or
docker compose is unavailable; failed steps are reported together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn := app.purgeService(cmd.Context())
			defer closeFn()

			_, err := svc.Purge(cmd.Context(), force, app.Prompter)
			return app.withHints(err)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

func newStackTestCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test request to the served model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.offlineStackService().Test(cmd.Context(), app.Settings.APIURL)
			return app.withHints(err)
		},
	}
}

func newDBCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the stack database",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check that Postgres is reachable and the schema exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.offlineStackService().DBCheck(cmd.Context())
			return app.withHints(err)
		},
	})
	return cmd
}

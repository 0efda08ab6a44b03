package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Liquid4All/on-prem-stack/internal/cli"
)

// Version information (set by build)
var Version = "dev"

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess = 0
	ExitError   = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancelled on SIGINT/SIGTERM; in-flight Docker and compose calls observe it.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.NewApp()
	app.Version = Version
	app.Configure = func(cmd *cobra.Command) error {
		settings, err := LoadSettings(cmd.Flags())
		if err != nil {
			return err
		}
		app.Settings = *settings
		app.Logger = SetupLogger(settings.Log, os.Stderr)
		return nil
	}

	err := cli.NewRootCommand(app).ExecuteContext(ctx)
	_ = app.Logger.Sync()
	if err != nil {
		cli.PrintError(os.Stderr, err)
		return ExitError
	}
	return ExitSuccess
}

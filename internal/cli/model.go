package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
	"github.com/Liquid4All/on-prem-stack/internal/shell/modelops"
)

func newModelCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Run standalone vLLM model servers",
	}
	cmd.AddCommand(
		newModelRunHFCommand(app),
		newModelRunCheckpointCommand(app),
		newModelListCommand(app),
		newModelStopCommand(app),
	)
	return cmd
}

// modelService connects to the daemon. The returned func closes the client.
func (a *App) modelService(cmd *cobra.Command) (*modelops.Service, func(), error) {
	lc, closeFn, err := a.lifecycle(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return modelops.NewService(a.Settings.Config, lc, a.Out, a.Logger), closeFn, nil
}

func bindServerFlags(flags *pflag.FlagSet, opts *serving.ServerOptions) {
	flags.IntVar(&opts.HostPort, "port", opts.HostPort, "Host port for the vLLM API")
	flags.StringVar(&opts.GPU, "gpu", opts.GPU, `GPUs to use: "all" or comma-separated indices`)
	flags.Float64Var(&opts.GPUMemoryUtilization, "gpu-memory-utilization", opts.GPUMemoryUtilization, "Fraction of GPU memory vLLM may use")
	flags.IntVar(&opts.MaxNumSeqs, "max-num-seqs", opts.MaxNumSeqs, "Maximum number of concurrent sequences")
}

func newModelRunHFCommand(app *App) *cobra.Command {
	params := serving.HuggingFaceParams{
		ServerOptions: serving.DefaultServerOptions(),
		MaxModelLen:   serving.DefaultMaxModelLen,
	}
	cmd := &cobra.Command{
		Use:   "run-hf",
		Short: "Serve a Hugging Face model with vLLM",
		Example: `  # Serve LFM2 on port 9000 using every GPU
  liquidai model run-hf --name lfm2 --path LiquidAI/LFM2-1.2B`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate before touching the daemon so a missing token has no side effects.
			check := params
			if check.Token == "" {
				check.Token = os.Getenv(modelops.HuggingFaceTokenEnv)
			}
			if err := serving.ValidateHuggingFaceParams(check); err != nil {
				return app.withHints(err)
			}

			svc, closeFn, err := app.modelService(cmd)
			if err != nil {
				return app.withHints(err)
			}
			defer closeFn()

			_, err = svc.RunHuggingFace(cmd.Context(), params)
			return app.withHints(err)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&params.Name, "name", "", "Container and served model name")
	flags.StringVar(&params.ModelPath, "path", "", "Hugging Face model path, e.g. LiquidAI/LFM2-1.2B")
	bindServerFlags(flags, &params.ServerOptions)
	flags.IntVar(&params.MaxModelLen, "max-model-len", params.MaxModelLen, "Maximum model context length")
	flags.StringVar(&params.Token, "hf-token", "", "Hugging Face token (default: $"+modelops.HuggingFaceTokenEnv+")")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newModelRunCheckpointCommand(app *App) *cobra.Command {
	opts := serving.DefaultServerOptions()
	var path string
	cmd := &cobra.Command{
		Use:   "run-checkpoint",
		Short: "Serve a local model checkpoint with the stack's vLLM image",
		Long: `Serve a local model checkpoint with the stack's vLLM image.
The checkpoint directory is mounted read-only and must contain
model_metadata.json with a "model_name" field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serving.ValidateServerOptions(opts); err != nil {
				return app.withHints(err)
			}

			svc, closeFn, err := app.modelService(cmd)
			if err != nil {
				return app.withHints(err)
			}
			defer closeFn()

			_, err = svc.RunCheckpoint(cmd.Context(), path, opts)
			return app.withHints(err)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&path, "path", "", "Path to the checkpoint directory")
	bindServerFlags(flags, &opts)
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newModelListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List running vLLM model servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := app.modelService(cmd)
			if err != nil {
				return app.withHints(err)
			}
			defer closeFn()

			_, err = svc.List(cmd.Context())
			return app.withHints(err)
		},
	}
}

func newModelStopCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [name]",
		Short: "Stop and remove a vLLM model server",
		Long: `Stop and remove a vLLM model server.
Without a name, the running servers are listed and one is chosen interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}

			svc, closeFn, err := app.modelService(cmd)
			if err != nil {
				return app.withHints(err)
			}
			defer closeFn()

			_, _, err = svc.Stop(cmd.Context(), name, app.Prompter)
			return app.withHints(err)
		},
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	cerr "github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/Liquid4All/on-prem-stack/internal/core/compose"
	"github.com/Liquid4All/on-prem-stack/internal/core/serving"
	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
	shellcompose "github.com/Liquid4All/on-prem-stack/internal/shell/compose"
	"github.com/Liquid4All/on-prem-stack/internal/shell/configstore"
	"github.com/Liquid4All/on-prem-stack/internal/shell/database"
	"github.com/Liquid4All/on-prem-stack/internal/shell/docker"
	"github.com/Liquid4All/on-prem-stack/internal/shell/prompt"
	"github.com/Liquid4All/on-prem-stack/internal/shell/smoke"
	"github.com/Liquid4All/on-prem-stack/internal/shell/stackops"
)

// withHints attaches the operator hint for known failures. The original
// error chain is preserved for errors.Is.
func (a *App) withHints(err error) error {
	if err == nil {
		return nil
	}
	s := a.Settings

	var statusErr *smoke.StatusError
	var parseErr *stack.ConfigParseError
	var subErr *shellcompose.SubprocessError

	switch {
	case errors.Is(err, docker.ErrConnectionFailed):
		return cerr.WithHint(err, "Start Docker (or Docker Desktop) and try again")
	case errors.Is(err, docker.ErrPortAlreadyAllocated):
		return cerr.WithHint(err, "Pick a free host port with --port, or stop the server using it ('liquidai model list')")
	case errors.Is(err, shellcompose.ErrComposeNotFound):
		return cerr.WithHint(err, "Install Docker with the compose plugin")
	case errors.As(err, &subErr):
		return cerr.WithHint(err, "Inspect the stack with 'docker compose --env-file "+s.EnvFile+" -f "+s.ComposeFile+" logs'")
	case errors.Is(err, stackops.ErrEnvFileMissing):
		return cerr.WithHint(err, "Run 'liquidai stack launch' first")
	case errors.Is(err, stackops.ErrComposeFileMissing):
		return cerr.WithHint(err, "Run liquidai from the directory containing the stack's compose file, or pass --compose-file")
	case errors.Is(err, compose.ErrUnresolvedVariable):
		return cerr.WithHint(err, "The compose file references variables that "+s.Config+" does not provide")
	case errors.As(err, &parseErr):
		return cerr.WithHint(err, "Fix "+parseErr.Path+", or move it aside to regenerate the defaults")
	case errors.Is(err, stack.ErrInvalidConfig):
		return cerr.WithHint(err, "Fix the listed fields in "+s.Config)
	case errors.Is(err, stack.ErrMissingRequiredInput):
		return cerr.WithHint(err, "Set the key in "+s.Config+" or pass --default")
	case errors.Is(err, configstore.ErrConfigExists):
		return cerr.WithHint(err, "Migration only creates a new file; move "+s.Config+" aside to migrate again")
	case errors.Is(err, serving.ErrMissingToken):
		return cerr.WithHint(err, "Create a token at https://huggingface.co/settings/tokens")
	case errors.Is(err, serving.ErrCheckpointNotFound),
		errors.Is(err, serving.ErrMetadataNotFound),
		errors.Is(err, serving.ErrModelNameMissing):
		return cerr.WithHint(err, "A checkpoint directory must contain "+serving.MetadataFile+` with a "model_name" field`)
	case errors.Is(err, database.ErrConnectionFailed):
		return cerr.WithHint(err, "Is the stack running? Start it with 'liquidai stack launch'")
	case errors.Is(err, database.ErrSchemaMissing):
		return cerr.WithHint(err, "The schema is created when the stack API first starts; wait a minute and retry")
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized:
		return cerr.WithHint(err, "The API rejected stack.api_secret; relaunch the stack after changing it")
	case errors.Is(err, prompt.ErrNotInteractive):
		return cerr.WithHint(err, "Pass the container name as an argument")
	case errors.Is(err, context.Canceled):
		return cerr.WithHint(err, "Interrupted")
	}
	return err
}

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	hintLabel  = color.New(color.FgYellow)
)

// PrintError writes err and its hints to w.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorLabel.Sprint("Error:"), err)
	for _, hint := range cerr.GetAllHints(err) {
		fmt.Fprintf(w, "%s %s\n", hintLabel.Sprint("Hint:"), hint)
	}
}

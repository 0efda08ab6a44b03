// Package compose runs docker compose for the stack.
package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Action is a compose subcommand.
type Action string

const (
	Up   Action = "up"
	Down Action = "down"
)

// ErrComposeNotFound is returned when neither compose flavour is installed.
var ErrComposeNotFound = errors.New("neither docker CLI with compose plugin nor docker-compose found in PATH")

// Options selects the files handed to compose.
type Options struct {
	ComposeFile string
	EnvFile     string
	Dir         string    // working directory; "" for the current one
	Stdout      io.Writer // nil for os.Stdout
	Stderr      io.Writer // nil for os.Stderr
}

// SubprocessError reports a compose invocation that exited non-zero.
type SubprocessError struct {
	Args     []string
	ExitCode int
	Output   string // captured stderr tail
	Err      error
}

func (e *SubprocessError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// maxCapturedOutput bounds the stderr kept for error messages.
const maxCapturedOutput = 4096

// Runner executes compose commands. Each Run is a single attempt.
type Runner struct {
	// Command is the compose entrypoint, e.g. ["docker", "compose"].
	Command []string
	logger  *zap.Logger
}

// NewRunner creates a runner using the compose flavour found in PATH.
func NewRunner(logger *zap.Logger) (*Runner, error) {
	command, err := DetectCommand()
	if err != nil {
		return nil, err
	}
	return NewRunnerWithCommand(command, logger), nil
}

// NewRunnerWithCommand creates a runner with an explicit entrypoint.
func NewRunnerWithCommand(command []string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Command: command, logger: logger}
}

// detectTimeout bounds each "compose version" probe.
const detectTimeout = 10 * time.Second

// DetectCommand prefers the docker compose plugin, falling back to
// docker-compose. A docker CLI without the plugin does not count.
func DetectCommand() ([]string, error) {
	for _, command := range [][]string{{"docker", "compose"}, {"docker-compose"}} {
		if commandWorks(command) {
			return command, nil
		}
	}
	return nil, ErrComposeNotFound
}

// commandWorks runs "<command> version" and reports whether it succeeded.
func commandWorks(command []string) bool {
	if _, err := exec.LookPath(command[0]); err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	args := append(append([]string{}, command[1:]...), "version")
	return exec.CommandContext(ctx, command[0], args...).Run() == nil
}

// BuildArgs returns the compose arguments for action.
//
// Example:
//
//	BuildArgs(Up, Options{ComposeFile: "docker-compose.yaml", EnvFile: ".env"})
//	// ["--env-file", ".env", "-f", "docker-compose.yaml", "up", "-d", "--wait"]
func BuildArgs(action Action, opts Options) ([]string, error) {
	var args []string
	if opts.EnvFile != "" {
		args = append(args, "--env-file", opts.EnvFile)
	}
	if opts.ComposeFile != "" {
		args = append(args, "-f", opts.ComposeFile)
	}

	switch action {
	case Up:
		args = append(args, "up", "-d", "--wait")
	case Down:
		args = append(args, "down")
	default:
		return nil, fmt.Errorf("unsupported compose action %q", action)
	}
	return args, nil
}

// Run executes compose with output streamed to opts.Stdout and opts.Stderr.
func (r *Runner) Run(ctx context.Context, action Action, opts Options) error {
	if len(r.Command) == 0 {
		return ErrComposeNotFound
	}

	args, err := BuildArgs(action, opts)
	if err != nil {
		return err
	}
	fullArgs := append(append([]string{}, r.Command[1:]...), args...)

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	var captured bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command[0], fullArgs...)
	cmd.Dir = opts.Dir
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &captured)

	r.logger.Debug("running compose",
		zap.String("command", r.Command[0]),
		zap.Strings("args", fullArgs),
	)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		subErr := &SubprocessError{
			Args:     append([]string{r.Command[0]}, fullArgs...),
			ExitCode: exitCode,
			Output:   tail(captured.String(), maxCapturedOutput),
			Err:      err,
		}
		r.logger.Error("docker compose failed",
			zap.String("action", string(action)),
			zap.Int("exit_code", exitCode),
			zap.Error(err),
		)
		return subErr
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

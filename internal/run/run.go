// Package run provides the process execution layer shared by all vendor tool wrappers.
package run

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/spacetelescope/caldpctl/internal/logging"
)

// Command describes one external tool invocation.
type Command struct {
	// Name is the binary name resolved via PATH.
	Name string
	// Args is the argument vector, excluding the binary name.
	Args []string
	// Dir optionally overrides the working directory.
	Dir string
	// Env optionally appends KEY=VALUE entries to the inherited environment.
	Env []string
	// Stdin optionally feeds bytes to the child's standard input.
	Stdin []byte
}

// String renders the invocation for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes external commands. Implementations other than ExecRunner
// exist for tests, which record invocations instead of spawning processes.
type Runner interface {
	// Run executes the command, streaming output to the runner's logger.
	Run(ctx context.Context, cmd Command) error
	// Output executes the command and returns its trimmed standard output.
	Output(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands via os/exec with output forwarded to a logger.
type ExecRunner struct {
	logger *slog.Logger
}

// NewExecRunner constructs an ExecRunner bound to the provided logger.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run executes the command and logs each output line.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	r.logger.Debug("running command", "cmd", cmd.Name, "args", cmd.Args)

	c := r.build(ctx, cmd)
	c.Stdout = logging.NewWriter(r.logger)
	c.Stderr = logging.NewWriterAt(r.logger, logging.LevelWarn)

	if err := c.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", cmd.String(), err)
	}
	return nil
}

// Output executes the command and captures stdout; stderr still goes to the logger.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) (string, error) {
	r.logger.Debug("running command", "cmd", cmd.Name, "args", cmd.Args)

	var out bytes.Buffer
	c := r.build(ctx, cmd)
	c.Stdout = &out
	c.Stderr = logging.NewWriterAt(r.logger, logging.LevelWarn)

	if err := c.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w", cmd.String(), err)
	}
	return strings.TrimSpace(out.String()), nil
}

func (r *ExecRunner) build(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}
	return c
}

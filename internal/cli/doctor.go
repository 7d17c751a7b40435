package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacetelescope/caldpctl/internal/run"
)

// newDoctorCommand creates the "doctor" subcommand that runs environment preflight checks.
func newDoctorCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			runner := runnerFor(opts, logger)
			if err := runDoctorChecks(ctx, logger, runner, exec.LookPath); err != nil {
				return err
			}

			logger.Info("doctor checks completed successfully")
			return nil
		},
	}

	return cmd
}

// toolCheck pairs a vendor binary with a cheap invocation proving it responds.
type toolCheck struct {
	binary string
	probe  run.Command
}

// doctorChecks lists every vendor tool the commands shell out to.
func doctorChecks() []toolCheck {
	return []toolCheck{
		{binary: "aws", probe: run.Command{Name: "aws", Args: []string{"--version"}}},
		{binary: "awsudo", probe: run.Command{Name: "awsudo", Args: []string{"--help"}}},
		{binary: "docker", probe: run.Command{Name: "docker", Args: []string{"info"}}},
		{binary: "git", probe: run.Command{Name: "git", Args: []string{"version"}}},
		{binary: "conda", probe: run.Command{Name: "conda", Args: []string{"--version"}}},
	}
}

// runDoctorChecks probes each vendor tool and collects fatal issues so one
// run reports everything that is missing. lookPath is exec.LookPath outside
// of tests.
func runDoctorChecks(ctx context.Context, logger *slog.Logger, runner run.Runner, lookPath func(string) (string, error)) error {
	var fatalErrs []error

	for _, tc := range doctorChecks() {
		if _, err := lookPath(tc.binary); err != nil {
			err = fmt.Errorf("%s binary not found in PATH: %w", tc.binary, err)
			logger.Error("tool check failed", "tool", tc.binary, "error", err)
			fatalErrs = append(fatalErrs, err)
			continue
		}
		if err := runner.Run(ctx, tc.probe); err != nil {
			logger.Error("tool check failed", "tool", tc.binary, "error", err)
			fatalErrs = append(fatalErrs, err)
			continue
		}
		logger.Info("tool check ok", "tool", tc.binary)
	}

	if len(fatalErrs) > 0 {
		return fmt.Errorf("doctor found %d fatal issue(s); see log for details", len(fatalErrs))
	}

	return nil
}

// Package cli defines the command-line interface for caldpctl.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spacetelescope/caldpctl/internal/config"
	"github.com/spacetelescope/caldpctl/internal/logging"
	"github.com/spacetelescope/caldpctl/internal/run"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	LogLevel   logging.Level

	// Runner overrides the process runner; nil selects the real ExecRunner.
	// Tests inject a recording stub here.
	Runner run.Runner
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: config.DefaultPath,
		LogLevel:   logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caldpctl",
		Short: "caldpctl is the operations helper for the HST calibration pipeline",
		Long: "caldpctl wraps the vendor tooling used around HST calibration data processing: " +
			"source checks (style, lint, security), container registry login, and " +
			"conda environment bootstrap from the astroconda release manifests.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyBaseEnv(cmd, opts); err != nil {
				return err
			}
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "Path to caldpctl.yaml configuration file")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("vars", "", "Additional tool environment variables in k=v,k2=v2 format")

	cmd.AddCommand(
		newCheckCommand(opts),
		newECRCommand(opts),
		newEnvCommand(opts),
		newDoctorCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

// runnerFor returns the injected runner or a real one bound to the logger.
func runnerFor(opts *Options, logger *slog.Logger) run.Runner {
	if opts.Runner != nil {
		return opts.Runner
	}
	return run.NewExecRunner(logger)
}

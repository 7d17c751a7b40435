package cli

import (
	"github.com/spf13/cobra"

	"github.com/spacetelescope/caldpctl/internal/checks"
	"github.com/spacetelescope/caldpctl/internal/exitcodes"
)

// newCheckCommand creates the "check" subcommand that runs source checks
// through their external checker tools.
func newCheckCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [style|lint|security|test|all]...",
		Short: "Run style, lint, security, and test checks against the source tree",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, toolEnv, err := loadToolConfig(cmd, opts)
			if err != nil {
				return err
			}

			var ce checkEnv
			if err := parseEnv(&ce); err != nil {
				return err
			}

			srcDir := cfg.SourceDir
			if ce.SourceDir != "" {
				srcDir = ce.SourceDir
			}
			if cmd.Flags().Changed("src") {
				srcDir = cmd.Flag("src").Value.String()
			}

			selected, err := checks.Select(checks.Resolve(cfg.Checks), args)
			if err != nil {
				return exitcodes.WithCode(exitcodes.CmdlineError, err)
			}

			runner := runnerFor(opts, logger)
			if err := checks.RunAll(cmd.Context(), runner, logger, selected, srcDir, toolEnv); err != nil {
				return exitcodes.WithCode(exitcodes.CheckError, err)
			}

			logger.Info("all checks passed", "src", srcDir)
			return nil
		},
	}

	cmd.Flags().String("src", "", "Source directory to check (defaults to the configured sourceDir)")

	return cmd
}

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spacetelescope/caldpctl/internal/conda"
	"github.com/spacetelescope/caldpctl/internal/exitcodes"
)

// newEnvCommand creates the "env" subtree for calibration environments.
func newEnvCommand(opts *Options) *cobra.Command {
	return newGroupCommand("env", "Manage calibration software environments",
		newEnvCreateCommand(opts),
	)
}

// newEnvCreateCommand creates the "env create" subcommand that bootstraps a
// conda environment from the astroconda release manifests. The positional
// parameters mirror the historical install script and are all optional.
func newEnvCreateCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [CHANNEL] [PY_VER] [ENV_NAME] [CONDA_DIR] [OS]",
		Short: "Create a calibration environment from the release manifests",
		Args:  cobra.MaximumNArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, toolEnv, err := loadToolConfig(cmd, opts)
			if err != nil {
				return err
			}

			var ce condaEnv
			if err := parseEnv(&ce); err != nil {
				return err
			}

			params := conda.Params{
				Channel:       ce.Channel,
				PythonVersion: ce.PythonVersion,
				EnvName:       ce.EnvName,
				CondaDir:      ce.CondaDir,
				OSName:        ce.OSName,
			}
			positional := []*string{
				&params.Channel,
				&params.PythonVersion,
				&params.EnvName,
				&params.CondaDir,
				&params.OSName,
			}
			for i, arg := range args {
				*positional[i] = arg
			}

			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			params = params.WithDefaults(cfg.Conda, home)

			runner := runnerFor(opts, logger)
			boot := conda.NewBootstrapper(runner, logger, cfg.Conda.ManifestRepo)
			boot.Env = toolEnv
			if err := boot.Create(cmd.Context(), params); err != nil {
				return exitcodes.WithCode(exitcodes.BootstrapError, err)
			}
			return nil
		},
	}

	return cmd
}

package cli

import (
	envparse "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// baseEnv defines root CLI defaults sourced from CALDPCTL_* env vars.
type baseEnv struct {
	// ConfigPath is the caldpctl.yaml path from CALDPCTL_CONFIG.
	ConfigPath string `env:"CALDPCTL_CONFIG"`
	// LogLevel is the logging level from CALDPCTL_LOG_LEVEL.
	LogLevel string `env:"CALDPCTL_LOG_LEVEL"`
}

// checkEnv captures CALDPCTL_* inputs for the check command.
type checkEnv struct {
	// SourceDir is the check target directory from CALDPCTL_SRC.
	SourceDir string `env:"CALDPCTL_SRC"`
}

// ecrEnv captures CALDPCTL_* inputs for the registry login flow.
type ecrEnv struct {
	// Region is the registry region from CALDPCTL_AWS_REGION.
	Region string `env:"CALDPCTL_AWS_REGION"`
	// AdminRole is the default role name from CALDPCTL_ADMIN_ROLE.
	AdminRole string `env:"CALDPCTL_ADMIN_ROLE"`
}

// condaEnv captures CALDPCTL_* inputs for the environment bootstrap.
type condaEnv struct {
	// Channel is the release channel from CALDPCTL_CHANNEL.
	Channel string `env:"CALDPCTL_CHANNEL"`
	// PythonVersion is the interpreter version from CALDPCTL_PY_VER.
	PythonVersion string `env:"CALDPCTL_PY_VER"`
	// EnvName is the environment name from CALDPCTL_CONDA_ENV.
	EnvName string `env:"CALDPCTL_CONDA_ENV"`
	// CondaDir is the conda install directory from CALDPCTL_CONDA_DIR.
	CondaDir string `env:"CALDPCTL_CONDA_DIR"`
	// OSName is the kernel name override from CALDPCTL_OS.
	OSName string `env:"CALDPCTL_OS"`
}

// parseEnv fills target from CALDPCTL_* env vars via caarlos0/env.
func parseEnv(target any) error {
	return envparse.Parse(target)
}

// applyBaseEnv folds CALDPCTL_* root settings into opts and flags, with
// explicit flags taking precedence over the environment.
func applyBaseEnv(cmd *cobra.Command, opts *Options) error {
	var base baseEnv
	if err := parseEnv(&base); err != nil {
		return err
	}
	// Persistent flags live on the root command; Changed must be checked there.
	rootFlags := cmd.Root().PersistentFlags()
	if base.ConfigPath != "" && !rootFlags.Changed("config") {
		opts.ConfigPath = base.ConfigPath
	}
	if base.LogLevel != "" && !rootFlags.Changed("log-level") {
		if err := rootFlags.Set("log-level", base.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

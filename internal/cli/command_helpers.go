package cli

import (
	"github.com/spf13/cobra"

	"github.com/spacetelescope/caldpctl/internal/config"
	"github.com/spacetelescope/caldpctl/internal/envfile"
	"github.com/spacetelescope/caldpctl/internal/exitcodes"
)

// newGroupCommand builds a cobra.Command that groups subcommands.
func newGroupCommand(use, short string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	if len(subcommands) > 0 {
		cmd.AddCommand(subcommands...)
	}
	return cmd
}

// loadToolConfig loads caldpctl.yaml and builds the KEY=VALUE environment
// passed to every spawned vendor tool: OS environment, then the config's
// envFiles, then any --vars overrides, later sources winning.
func loadToolConfig(cmd *cobra.Command, opts *Options) (*config.Config, []string, error) {
	cfg, envMap, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	inline, err := envfile.ParseInlineVars(cmd.Flag("vars").Value.String())
	if err != nil {
		return nil, nil, exitcodes.WithCode(exitcodes.CmdlineError, err)
	}
	envMap = envfile.Merge(envMap, inline)

	return cfg, envMap.Environ(), nil
}

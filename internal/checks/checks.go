// Package checks defines the style, lint, security, and test source checks
// and runs them through their external checker tools.
package checks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spacetelescope/caldpctl/internal/config"
	"github.com/spacetelescope/caldpctl/internal/run"
)

// Check names accepted by the CLI.
const (
	NameStyle    = "style"
	NameLint     = "lint"
	NameSecurity = "security"
	NameTest     = "test"
)

// Check describes one independent source check. Checks share no state and
// their relative order carries no meaning.
type Check struct {
	// Name identifies the check (style, lint, security).
	Name string
	// Command is the external checker binary.
	Command string
	// Args precede the source directory on the command line.
	Args []string
}

// Invocation builds the full command for the check against srcDir.
func (c Check) Invocation(srcDir string) run.Command {
	args := make([]string, 0, len(c.Args)+1)
	args = append(args, c.Args...)
	args = append(args, srcDir)
	return run.Command{Name: c.Command, Args: args}
}

// Defaults returns the built-in check set:
//   - style fails when the formatter would rewrite any file
//   - lint fails on violations, with the two formatter-compatibility codes
//     excluded and the line length threshold at 88
//   - security scans recursively and reports findings at or above
//     low severity / low confidence
//   - test runs the unit test suite with coverage over the source package
func Defaults() []Check {
	return []Check{
		{
			Name:    NameStyle,
			Command: "black",
			Args:    []string{"--check"},
		},
		{
			Name:    NameLint,
			Command: "flake8",
			Args:    []string{"--count", "--max-line-length=88", "--extend-ignore=E203,W503"},
		},
		{
			Name:    NameSecurity,
			Command: "bandit",
			Args:    []string{"-r", "-l", "-i"},
		},
		{
			Name:    NameTest,
			Command: "pytest",
			Args:    []string{"--cov"},
		},
	}
}

// Resolve returns the default checks with any config overrides applied.
// An override replaces the command and/or argument list of the named check.
func Resolve(overrides map[string]config.CheckSpec) []Check {
	out := Defaults()
	for i, c := range out {
		spec, ok := overrides[c.Name]
		if !ok {
			continue
		}
		if spec.Command != "" {
			out[i].Command = spec.Command
		}
		if len(spec.Args) > 0 {
			out[i].Args = spec.Args
		}
	}
	return out
}

// Select filters checks by name; the single name "all" (or no names) selects
// every check. Unknown names are an error.
func Select(all []Check, names []string) ([]Check, error) {
	if len(names) == 0 || (len(names) == 1 && names[0] == "all") {
		return all, nil
	}
	byName := make(map[string]Check, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}
	var out []Check
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			known := make([]string, 0, len(byName))
			for k := range byName {
				known = append(known, k)
			}
			sort.Strings(known)
			return nil, fmt.Errorf("unknown check %q, expected one of %v or \"all\"", name, known)
		}
		out = append(out, c)
	}
	return out, nil
}

// RunAll executes every selected check and collects failures rather than
// stopping at the first, so a single run reports the full picture. env
// entries (KEY=VALUE) are appended to each checker's environment so that
// envFiles settings reach the tools.
func RunAll(ctx context.Context, runner run.Runner, logger *slog.Logger, selected []Check, srcDir string, env []string) error {
	var failed []string
	for _, c := range selected {
		inv := c.Invocation(srcDir)
		inv.Env = env
		logger.Info("running check", "check", c.Name, "cmd", inv.String())
		if err := runner.Run(ctx, inv); err != nil {
			logger.Error("check failed", "check", c.Name, "error", err)
			failed = append(failed, c.Name)
			continue
		}
		logger.Info("check passed", "check", c.Name)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d check(s) failed: %v", len(failed), failed)
	}
	return nil
}

// Package conda bootstraps the HST calibration software environment from the
// OS- and channel-specific release manifests published in the
// astroconda-releases repository.
package conda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spacetelescope/caldpctl/internal/config"
	"github.com/spacetelescope/caldpctl/internal/retry"
	"github.com/spacetelescope/caldpctl/internal/run"
)

// CloneDir is the local working copy of the release-manifest repository.
// It is removed before and after every bootstrap.
const CloneDir = "astroconda-releases"

// Params holds the five bootstrap parameters after defaulting.
type Params struct {
	// Channel is the calibration software release channel (e.g. "stable").
	Channel string
	// PythonVersion records the interpreter version the manifests target.
	PythonVersion string
	// EnvName is the conda environment to create.
	EnvName string
	// CondaDir is the conda installation directory.
	CondaDir string
	// OSName is the kernel name used to select a manifest ("Linux", "Darwin").
	OSName string
}

// KernelName reports the running kernel the way `uname -s` would.
func KernelName() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	default:
		return runtime.GOOS
	}
}

// OSLabel maps a kernel name to the asset label used in manifest filenames.
// The mapping is deliberately two-valued: anything but Darwin or Linux yields
// an empty label, which produces a malformed manifest name downstream. The
// shell tooling this replaces had the same hole; it is logged rather than
// fixed because the intended behavior for other platforms is unconfirmed.
func OSLabel(osName string) string {
	switch osName {
	case "Darwin":
		return "macos"
	case "Linux":
		return "linux"
	}
	return ""
}

// WithDefaults fills unset parameters from config and the environment:
// channel "stable", env name "caldp_<channel>", conda dir "$HOME/miniconda3",
// and the detected kernel name.
func (p Params) WithDefaults(cfg config.CondaConfig, home string) Params {
	if p.Channel == "" {
		p.Channel = cfg.Channel
	}
	if p.Channel == "" {
		p.Channel = config.DefaultChannel
	}
	if p.PythonVersion == "" {
		p.PythonVersion = cfg.PythonVersion
	}
	if p.PythonVersion == "" {
		p.PythonVersion = config.DefaultPythonVersion
	}
	if p.EnvName == "" {
		p.EnvName = cfg.EnvName
	}
	if p.EnvName == "" {
		p.EnvName = "caldp_" + p.Channel
	}
	if p.CondaDir == "" {
		p.CondaDir = cfg.CondaDir
	}
	if p.CondaDir == "" {
		p.CondaDir = filepath.Join(home, "miniconda3")
	}
	if p.OSName == "" {
		p.OSName = KernelName()
	}
	return p
}

// ManifestPath returns the manifest file for a channel and OS label, relative
// to the current working directory where the repository is cloned.
func ManifestPath(channel, osLabel string) string {
	return filepath.Join(CloneDir, "caldp", channel, "latest-"+osLabel+".yml")
}

// Bootstrapper creates calibration environments from release manifests.
type Bootstrapper struct {
	Runner run.Runner
	Logger *slog.Logger
	// Repo is the git URL of the release-manifest repository.
	Repo string
	// Env appends KEY=VALUE entries to the git and conda invocations,
	// carrying envFiles settings (proxies, conda channels) into the flow.
	Env []string
	// Retry tunes the clone retry schedule.
	Retry retry.Options
}

// NewBootstrapper constructs a Bootstrapper with the default retry schedule.
func NewBootstrapper(runner run.Runner, logger *slog.Logger, repo string) *Bootstrapper {
	if repo == "" {
		repo = config.DefaultManifestRepo
	}
	return &Bootstrapper{
		Runner: runner,
		Logger: logger,
		Repo:   repo,
		Retry:  retry.DefaultOptions(),
	}
}

// Create clones the manifest repository, creates the named environment from
// the channel's OS-specific manifest, and removes the clone regardless of
// outcome. Side effect: an existing environment of the same name is replaced.
func (b *Bootstrapper) Create(ctx context.Context, p Params) error {
	osLabel := OSLabel(p.OSName)
	if osLabel == "" {
		// Known gap carried over from the original tooling: the manifest
		// name is malformed on unrecognized platforms.
		b.Logger.Warn("unrecognized OS name; manifest label is empty", "os", p.OSName)
	}

	condaBin := filepath.Join(p.CondaDir, "bin", "conda")
	integration := filepath.Join(p.CondaDir, "etc", "profile.d", "conda.sh")
	if _, err := os.Stat(integration); err != nil {
		return fmt.Errorf("conda shell integration not found at %s: %w", integration, err)
	}

	// Stale clones from interrupted runs would confuse git.
	if err := os.RemoveAll(CloneDir); err != nil {
		return fmt.Errorf("remove stale clone %s: %w", CloneDir, err)
	}

	// The clone is deleted regardless of outcome, including a clone that
	// failed partway through its final attempt.
	defer func() {
		if err := os.RemoveAll(CloneDir); err != nil {
			b.Logger.Warn("failed to remove clone", "dir", CloneDir, "error", err)
		}
	}()

	b.Logger.Info("cloning release manifests", "repo", b.Repo)
	err := retry.Do(ctx, b.Retry, func() error {
		_ = os.RemoveAll(CloneDir)
		return b.Runner.Run(ctx, run.Command{
			Name: "git",
			Args: []string{"clone", "--depth", "1", b.Repo, CloneDir},
			Env:  b.Env,
		})
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", b.Repo, err)
	}

	manifest := ManifestPath(p.Channel, osLabel)
	b.describeManifest(manifest)

	b.Logger.Info("creating environment",
		"env", p.EnvName, "channel", p.Channel, "python", p.PythonVersion, "manifest", manifest)

	err = b.Runner.Run(ctx, run.Command{
		Name: condaBin,
		Args: []string{"env", "create", "-n", p.EnvName, "-f", manifest},
		Env:  b.Env,
	})
	if err != nil {
		return fmt.Errorf("create environment %q: %w", p.EnvName, err)
	}

	b.Logger.Info("environment ready", "env", p.EnvName)
	return nil
}

// describeManifest logs a short summary of the manifest about to be applied.
// Failures here are informational only; conda is the authority on validity.
func (b *Bootstrapper) describeManifest(path string) {
	m, err := ReadManifest(path)
	if err != nil {
		b.Logger.Warn("could not inspect manifest", "manifest", path, "error", err)
		return
	}
	b.Logger.Info("manifest loaded",
		"manifest", path, "name", m.Name, "dependencies", len(m.Dependencies))
	for _, dep := range m.Dependencies {
		if s, ok := dep.(string); ok && strings.HasPrefix(s, "python") {
			b.Logger.Debug("manifest pins interpreter", "spec", s)
		}
	}
}

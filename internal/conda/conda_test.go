package conda

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacetelescope/caldpctl/internal/config"
	"github.com/spacetelescope/caldpctl/internal/retry"
	"github.com/spacetelescope/caldpctl/internal/run"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOSLabel(t *testing.T) {
	tests := []struct {
		os   string
		want string
	}{
		{os: "Darwin", want: "macos"},
		{os: "Linux", want: "linux"},
		// Documented gap: anything else yields an empty label.
		{os: "Windows_NT", want: ""},
		{os: "SunOS", want: ""},
		{os: "", want: ""},
		{os: "linux", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.os, func(t *testing.T) {
			assert.Equal(t, tc.want, OSLabel(tc.os))
		})
	}
}

func TestParamsWithDefaults(t *testing.T) {
	home := "/home/caldp"

	p := Params{}.WithDefaults(config.CondaConfig{}, home)

	assert.Equal(t, "stable", p.Channel)
	assert.Equal(t, "3.6.10", p.PythonVersion)
	assert.Equal(t, "caldp_stable", p.EnvName)
	assert.Equal(t, filepath.Join(home, "miniconda3"), p.CondaDir)
	assert.Equal(t, KernelName(), p.OSName)
}

func TestParamsWithDefaultsDerivedEnvName(t *testing.T) {
	p := Params{Channel: "latest"}.WithDefaults(config.CondaConfig{}, "/home/caldp")
	assert.Equal(t, "caldp_latest", p.EnvName)
}

func TestParamsWithDefaultsKeepsExplicitValues(t *testing.T) {
	in := Params{
		Channel:       "dev",
		PythonVersion: "3.7.1",
		EnvName:       "scratch",
		CondaDir:      "/tmp/conda",
		OSName:        "Darwin",
	}
	assert.Equal(t, in, in.WithDefaults(config.CondaConfig{}, "/home/caldp"))
}

func TestManifestPath(t *testing.T) {
	want := filepath.Join("astroconda-releases", "caldp", "stable", "latest-linux.yml")
	assert.Equal(t, want, ManifestPath("stable", "linux"))
}

// condaDirWithIntegration builds a fake conda install with the shell
// integration file the bootstrap requires.
func condaDirWithIntegration(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	profile := filepath.Join(dir, "etc", "profile.d")
	require.NoError(t, os.MkdirAll(profile, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(profile, "conda.sh"), []byte("# conda shell integration\n"), 0o644))
	return dir
}

func TestBootstrapCreate(t *testing.T) {
	chdir(t, t.TempDir())
	condaDir := condaDirWithIntegration(t)

	stub := &run.Stub{}
	boot := NewBootstrapper(stub, discardLogger(), "")

	params := Params{
		Channel:       "stable",
		PythonVersion: "3.6.10",
		EnvName:       "caldp_stable",
		CondaDir:      condaDir,
		OSName:        "Linux",
	}
	require.NoError(t, boot.Create(context.Background(), params))

	clones := stub.Named("git")
	require.Len(t, clones, 1)
	assert.Equal(t, []string{"clone", "--depth", "1", config.DefaultManifestRepo, CloneDir}, clones[0].Args)

	creates := stub.Named(filepath.Join(condaDir, "bin", "conda"))
	require.Len(t, creates, 1)
	manifest := filepath.Join("astroconda-releases", "caldp", "stable", "latest-linux.yml")
	assert.Equal(t, []string{"env", "create", "-n", "caldp_stable", "-f", manifest}, creates[0].Args)
}

func TestBootstrapCreateRequiresShellIntegration(t *testing.T) {
	chdir(t, t.TempDir())

	stub := &run.Stub{}
	boot := NewBootstrapper(stub, discardLogger(), "")

	params := Params{Channel: "stable", EnvName: "caldp_stable", CondaDir: t.TempDir(), OSName: "Linux"}
	err := boot.Create(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conda shell integration")
	assert.Empty(t, stub.Commands)
}

func TestBootstrapCreateRemovesCloneOnFailure(t *testing.T) {
	chdir(t, t.TempDir())
	condaDir := condaDirWithIntegration(t)

	stub := &run.Stub{
		RunFunc: func(cmd run.Command) error {
			if cmd.Name == "git" {
				// Simulate a successful clone so removal is observable.
				return os.MkdirAll(filepath.Join(CloneDir, "caldp"), 0o755)
			}
			return fmt.Errorf("manifest is malformed")
		},
	}
	boot := NewBootstrapper(stub, discardLogger(), "")
	boot.Retry = retry.Options{MaxAttempts: 1, MinSleep: 0, MaxSleep: 0, Backoff: 0}

	params := Params{Channel: "stable", EnvName: "caldp_stable", CondaDir: condaDir, OSName: "Linux"}
	err := boot.Create(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create environment "caldp_stable"`)

	// The clone is deleted regardless of outcome.
	_, statErr := os.Stat(CloneDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBootstrapCreateRemovesPartialCloneWhenCloneFails(t *testing.T) {
	chdir(t, t.TempDir())
	condaDir := condaDirWithIntegration(t)

	stub := &run.Stub{
		RunFunc: func(cmd run.Command) error {
			// A clone interrupted partway leaves a partial directory behind.
			if err := os.MkdirAll(filepath.Join(CloneDir, ".git"), 0o755); err != nil {
				return err
			}
			return fmt.Errorf("remote hung up")
		},
	}
	boot := NewBootstrapper(stub, discardLogger(), "")
	boot.Retry = retry.Options{MaxAttempts: 1, MinSleep: 0, MaxSleep: 0, Backoff: 0}

	params := Params{Channel: "stable", EnvName: "caldp_stable", CondaDir: condaDir, OSName: "Linux"}
	err := boot.Create(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clone")

	// Even a failed clone is cleaned up.
	_, statErr := os.Stat(CloneDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBootstrapCreatePassesToolEnv(t *testing.T) {
	chdir(t, t.TempDir())
	condaDir := condaDirWithIntegration(t)

	stub := &run.Stub{}
	boot := NewBootstrapper(stub, discardLogger(), "")
	boot.Env = []string{"HTTPS_PROXY=http://proxy:3128"}

	params := Params{Channel: "stable", EnvName: "caldp_stable", CondaDir: condaDir, OSName: "Linux"}
	require.NoError(t, boot.Create(context.Background(), params))

	require.Len(t, stub.Commands, 2)
	for _, cmd := range stub.Commands {
		assert.Equal(t, boot.Env, cmd.Env, "command %s", cmd.Name)
	}
}

func TestBootstrapCreateRetriesClone(t *testing.T) {
	chdir(t, t.TempDir())
	condaDir := condaDirWithIntegration(t)

	attempts := 0
	stub := &run.Stub{
		RunFunc: func(cmd run.Command) error {
			if cmd.Name == "git" {
				attempts++
				if attempts == 1 {
					return fmt.Errorf("remote hung up")
				}
			}
			return nil
		},
	}
	boot := NewBootstrapper(stub, discardLogger(), "")
	boot.Retry = retry.Options{MaxAttempts: 3, MinSleep: time.Millisecond, MaxSleep: 2 * time.Millisecond, Backoff: 0.001}

	params := Params{Channel: "stable", EnvName: "caldp_stable", CondaDir: condaDir, OSName: "Linux"}
	require.NoError(t, boot.Create(context.Background(), params))
	assert.Equal(t, 2, attempts)
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest-linux.yml")
	content := []byte(`name: caldp_stable
channels:
  - defaults
  - http://ssb.stsci.edu/astroconda
dependencies:
  - python=3.6.10
  - hstcal=2.4.1
  - pip:
      - crds
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "caldp_stable", m.Name)
	assert.Len(t, m.Channels, 2)
	assert.Len(t, m.Dependencies, 3)
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

// Package config contains the loader and strongly typed model for caldpctl.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spacetelescope/caldpctl/internal/envfile"
)

const (
	// DefaultPath is the config file consulted when --config is not given.
	DefaultPath = "caldpctl.yaml"
	// DefaultSourceDir is the package directory the source checks target.
	DefaultSourceDir = "caldp"
	// DefaultRegion is the registry region used by the login flow.
	DefaultRegion = "us-east-1"
	// DefaultChannel is the calibration software release channel.
	DefaultChannel = "stable"
	// DefaultPythonVersion pins the interpreter the pipeline is validated against.
	DefaultPythonVersion = "3.6.10"
	// DefaultManifestRepo is the remote release-manifest repository.
	DefaultManifestRepo = "https://github.com/astroconda/astroconda-releases.git"
)

// Config represents the caldpctl.yaml file after parsing and defaulting.
type Config struct {
	// EnvFiles lists .env files loaded and merged into the tool environment.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// SourceDir is the directory the check commands run against.
	SourceDir string `yaml:"sourceDir,omitempty"`
	// Checks overrides individual check definitions keyed by name.
	Checks map[string]CheckSpec `yaml:"checks,omitempty"`
	// ECR configures the registry login flow.
	ECR ECRConfig `yaml:"ecr,omitempty"`
	// Conda configures the calibration environment bootstrap.
	Conda CondaConfig `yaml:"conda,omitempty"`
}

// CheckSpec describes one externally executed source check.
type CheckSpec struct {
	// Command is the checker binary name.
	Command string `yaml:"command,omitempty"`
	// Args is the argument list placed before the source directory.
	Args []string `yaml:"args,omitempty"`
}

// ECRConfig describes registry login settings.
type ECRConfig struct {
	// Region is the registry region (e.g. "us-east-1").
	Region string `yaml:"region,omitempty"`
	// AdminRole is the default admin role name assumed for login.
	AdminRole string `yaml:"adminRole,omitempty"`
}

// CondaConfig describes bootstrap defaults for the calibration environment.
type CondaConfig struct {
	// Channel selects the release channel (e.g. "stable", "latest").
	Channel string `yaml:"channel,omitempty"`
	// PythonVersion records the interpreter version the environment targets.
	PythonVersion string `yaml:"pythonVersion,omitempty"`
	// EnvName names the environment; empty derives "caldp_<channel>".
	EnvName string `yaml:"envName,omitempty"`
	// CondaDir is the conda install directory; empty means $HOME/miniconda3.
	CondaDir string `yaml:"condaDir,omitempty"`
	// ManifestRepo is the git URL of the release-manifest repository.
	ManifestRepo string `yaml:"manifestRepo,omitempty"`
}

// Load reads and parses the config file, applies defaults, and merges the OS
// environment with any declared envFiles. A missing file at the default path
// is not an error; the built-in defaults are used instead.
func Load(path string) (*Config, envfile.Vars, error) {
	cfg := &Config{}

	usingDefault := path == "" || path == DefaultPath
	if path == "" {
		path = DefaultPath
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && usingDefault:
		// No config file is the common case; everything has a default.
	default:
		return nil, nil, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg.applyDefaults()

	baseDir := filepath.Dir(path)
	fileVars, err := envfile.LoadEnvFiles(baseDir, cfg.EnvFiles)
	if err != nil {
		return nil, nil, err
	}
	envMap := envfile.Merge(envfile.FromOS(), fileVars)

	return cfg, envMap, nil
}

func (c *Config) applyDefaults() {
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.ECR.Region == "" {
		c.ECR.Region = DefaultRegion
	}
	if c.Conda.Channel == "" {
		c.Conda.Channel = DefaultChannel
	}
	if c.Conda.PythonVersion == "" {
		c.Conda.PythonVersion = DefaultPythonVersion
	}
	if c.Conda.ManifestRepo == "" {
		c.Conda.ManifestRepo = DefaultManifestRepo
	}
}

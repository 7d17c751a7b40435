package conda

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the subset of a conda environment file caldpctl cares about.
type Manifest struct {
	// Name is the environment name declared in the manifest.
	Name string `yaml:"name,omitempty"`
	// Channels lists the package channels the manifest draws from.
	Channels []string `yaml:"channels,omitempty"`
	// Dependencies holds package specs; entries are either strings
	// ("numpy=1.17") or nested maps (the pip block).
	Dependencies []any `yaml:"dependencies,omitempty"`
}

// ReadManifest parses a conda environment manifest from disk.
func ReadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %q: %w", path, err)
	}
	return &m, nil
}

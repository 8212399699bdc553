// Package config loads generation settings from a YAML file. Values from
// the file act as defaults; command-line flags override them.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// File mirrors the vkbgen.yaml schema.
type File struct {
	// Registry is the path to the Vulkan registry XML file.
	Registry string `json:"registry,omitempty"`

	// Template is the path to the header template.
	Template string `json:"template,omitempty"`

	// Output is the path of the generated header.
	Output string `json:"output,omitempty"`

	// RegistryURL overrides the download location of the registry.
	RegistryURL string `json:"registryURL,omitempty"`

	// Offline forbids any network access.
	Offline bool `json:"offline,omitempty"`

	// Download forces a fresh registry download even when the local file
	// exists.
	Download bool `json:"download,omitempty"`

	// Strict turns unresolved dependency warnings into errors.
	Strict bool `json:"strict,omitempty"`
}

// Load reads and unmarshals a config file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return &f, nil
}

package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/topomind/pkg/core"
)

// Manifest is the declarative form of a set of tool contracts, loaded from
// YAML or JSON at startup or over a dynamic registration endpoint.
type Manifest struct {
	Tools []core.Contract `json:"tools" yaml:"tools"`
}

// Validate checks the manifest for structural problems before registration.
func (m *Manifest) Validate() error {
	if len(m.Tools) == 0 {
		return fmt.Errorf("manifest declares no tools")
	}
	seen := make(map[string]bool, len(m.Tools))
	for i, c := range m.Tools {
		if c.Name == "" {
			return fmt.Errorf("tool %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate tool %q in manifest", c.Name)
		}
		seen[c.Name] = true
		if c.ConnectorName == "" {
			return fmt.Errorf("tool %q declares no connector", c.Name)
		}
	}
	return nil
}

// ParseJSON loads a manifest from JSON and validates it.
func ParseJSON(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON payload")
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse json manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// ParseYAML loads a manifest from YAML and validates it.
func ParseYAML(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty YAML payload")
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse yaml manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// LoadManifest loads a tool manifest from a YAML or JSON file.
func LoadManifest(path string) (*Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("manifest path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return parseManifestAuto(data)
	}
}

func parseManifestAuto(data []byte) (*Manifest, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if manifest, err := ParseJSON(data); err == nil {
			return manifest, nil
		}
	}
	if manifest, err := ParseYAML(data); err == nil {
		return manifest, nil
	}
	if manifest, err := ParseJSON(data); err == nil {
		return manifest, nil
	}
	return nil, fmt.Errorf("unsupported manifest format")
}

// Apply upserts every manifest contract into the registry and returns the
// outcome per tool, keyed by name.
func (m *Manifest) Apply(registry *Registry) (map[string]RegistrationOutcome, error) {
	outcomes := make(map[string]RegistrationOutcome, len(m.Tools))
	for _, c := range m.Tools {
		outcome, err := registry.RegisterOrUpdate(c)
		if err != nil {
			return outcomes, err
		}
		outcomes[c.Name] = outcome
	}
	return outcomes, nil
}

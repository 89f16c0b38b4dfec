package taxonomy

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// REGISTRY LOADING — Embedded YAML
// ============================================================================

//go:embed registry.yaml
var registryYAML []byte

type registryFile struct {
	States    []*Region            `yaml:"states"`
	Districts map[string][]*Region `yaml:"districts"`
	Crops     []*Crop              `yaml:"crops"`
}

// Load parses the embedded registry.
func Load() (*Registry, error) {
	return Parse(registryYAML)
}

// Parse builds a Registry from YAML bytes. States must be declared before
// the districts that reference them; a district under an unknown state is
// a load error, not a silent orphan.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse taxonomy registry: %w", err)
	}
	if len(file.States) == 0 {
		return nil, fmt.Errorf("taxonomy registry declares no states")
	}

	reg := &Registry{}
	stateNames := make(map[string]bool, len(file.States))
	for _, s := range file.States {
		s.Kind = KindState
		stateNames[s.Name] = true
		reg.regions = append(reg.regions, s)
	}
	states := make([]string, 0, len(file.Districts))
	for state := range file.Districts {
		states = append(states, state)
	}
	sort.Strings(states)
	for _, state := range states {
		if !stateNames[state] {
			return nil, fmt.Errorf("district list references unknown state %q", state)
		}
		for _, d := range file.Districts[state] {
			d.Kind = KindDistrict
			d.Parent = state
			reg.regions = append(reg.regions, d)
		}
	}
	reg.crops = file.Crops

	reg.index()
	return reg, nil
}

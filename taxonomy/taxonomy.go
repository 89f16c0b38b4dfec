package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// CANONICAL TAXONOMY — Regions and Crops with Aliases
// ============================================================================
// Fixed registries of recognized entities. Immutable after load.
// Resolution policy: exact (case-insensitive) → normalized → token-overlap
// fuzzy with an explicit acceptance threshold. Ambiguous fuzzy matches are
// rejected, never guessed.
// ============================================================================

// RegionKind distinguishes states from districts.
type RegionKind string

const (
	KindState    RegionKind = "state"
	KindDistrict RegionKind = "district"
)

// Region is a canonical state or district.
// Parent is the canonical state name for districts, empty for states.
type Region struct {
	Name    string     `yaml:"name" json:"name"`
	Kind    RegionKind `yaml:"-" json:"kind"`
	Parent  string     `yaml:"-" json:"parent,omitempty"`
	Aliases []string   `yaml:"aliases" json:"aliases,omitempty"`
}

// Crop is a canonical crop with its aliases.
type Crop struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

// Registry holds the loaded taxonomy. Read-only after Load.
type Registry struct {
	regions    []*Region
	crops      []*Crop
	regionIdx  map[string]*Region // normalized name/alias → region
	cropIdx    map[string]*Crop   // normalized name/alias → crop
	regionAmbi map[string]bool    // normalized keys claimed by >1 region
}

// Regions returns all regions, states first, in registry order.
func (r *Registry) Regions() []*Region { return r.regions }

// Crops returns all crops in registry order.
func (r *Registry) Crops() []*Crop { return r.crops }

// States returns all state regions.
func (r *Registry) States() []*Region {
	var out []*Region
	for _, reg := range r.regions {
		if reg.Kind == KindState {
			out = append(out, reg)
		}
	}
	return out
}

// DistrictsOf returns the districts of a state, sorted by canonical name.
func (r *Registry) DistrictsOf(state string) []*Region {
	var out []*Region
	for _, reg := range r.regions {
		if reg.Kind == KindDistrict && reg.Parent == state {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) index() {
	r.regionIdx = make(map[string]*Region)
	r.cropIdx = make(map[string]*Crop)
	r.regionAmbi = make(map[string]bool)

	for _, reg := range r.regions {
		for _, key := range append([]string{reg.Name}, reg.Aliases...) {
			norm := Normalize(key)
			if prev, ok := r.regionIdx[norm]; ok && prev != reg {
				// Same alias claimed by two regions (e.g. a district named
				// after its state). Exact lookups on it are ambiguous.
				r.regionAmbi[norm] = true
				continue
			}
			r.regionIdx[norm] = reg
		}
	}
	for _, c := range r.crops {
		for _, key := range append([]string{c.Name}, c.Aliases...) {
			r.cropIdx[Normalize(key)] = c
		}
	}
}

// ============================================================================
// RESOLUTION ERRORS
// ============================================================================

// NotFoundError reports an input that matched no taxonomy entry.
type NotFoundError struct {
	Input       string
	Want        string // "region", "state", "district", "crop"
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("no recognizable %s name in %q", e.Want, e.Input)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// AmbiguousError reports an input that fuzzy-matched more than one entry
// equally well. Ambiguous matches are never silently guessed.
type AmbiguousError struct {
	Input      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous between: %s", e.Input, strings.Join(e.Candidates, ", "))
}

package taxonomy

import (
	"sort"
)

// ============================================================================
// ENTITY RESOLVER — Free Text → Canonical Entry
// ============================================================================
// Matching policy (per entity kind):
//   1. exact match on normalized name/alias
//   2. token-overlap fuzzy match against the full alias set, accepted only
//      when a single best candidate clears the threshold
// Ties at the best score are rejected as ambiguous.
// ============================================================================

// DefaultThreshold is the minimum Dice similarity a fuzzy match must reach.
const DefaultThreshold = 0.6

// Resolver fuzzy-matches free-text tokens to taxonomy entries.
type Resolver struct {
	reg       *Registry
	threshold float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithThreshold overrides the fuzzy acceptance threshold.
func WithThreshold(t float64) Option {
	return func(r *Resolver) { r.threshold = t }
}

// NewResolver creates a resolver over a loaded registry.
func NewResolver(reg *Registry, opts ...Option) *Resolver {
	r := &Resolver{reg: reg, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Region resolves free text to any region (state or district).
func (r *Resolver) Region(text string) (*Region, error) {
	return r.region(text, "", nil)
}

// State resolves free text to a state.
func (r *Resolver) State(text string) (*Region, error) {
	return r.region(text, KindState, nil)
}

// District resolves free text to a district. When inState is non-nil the
// district's parent must be that state; a name match in the wrong state
// is NotFound, not a silent cross-state merge.
func (r *Resolver) District(text string, inState *Region) (*Region, error) {
	return r.region(text, KindDistrict, inState)
}

func (r *Resolver) region(text string, kind RegionKind, inState *Region) (*Region, error) {
	accept := func(reg *Region) bool {
		if kind != "" && reg.Kind != kind {
			return false
		}
		if inState != nil && reg.Kind == KindDistrict && reg.Parent != inState.Name {
			return false
		}
		return true
	}

	want := "region"
	if kind != "" {
		want = string(kind)
	}

	norm := Normalize(text)
	if norm == "" {
		return nil, &NotFoundError{Input: text, Want: want}
	}

	if !r.reg.regionAmbi[norm] {
		if reg, ok := r.reg.regionIdx[norm]; ok && accept(reg) {
			return reg, nil
		}
	}

	// Fuzzy pass over every name and alias of acceptable regions.
	var best float64
	var bestRegions []*Region
	for _, reg := range r.reg.regions {
		if !accept(reg) {
			continue
		}
		score := bestAliasScore(text, reg.Name, reg.Aliases)
		switch {
		case score > best:
			best = score
			bestRegions = []*Region{reg}
		case score == best && score > 0:
			bestRegions = append(bestRegions, reg)
		}
	}

	if best < r.threshold || len(bestRegions) == 0 {
		return nil, &NotFoundError{Input: text, Want: want}
	}
	if len(bestRegions) > 1 {
		names := make([]string, len(bestRegions))
		for i, reg := range bestRegions {
			names[i] = reg.Name
		}
		sort.Strings(names)
		return nil, &AmbiguousError{Input: text, Candidates: names}
	}
	return bestRegions[0], nil
}

// Crop resolves free text to a crop. A NotFound error carries up to three
// nearest crop names as suggestions.
func (r *Resolver) Crop(text string) (*Crop, error) {
	norm := Normalize(text)
	if norm == "" {
		return nil, &NotFoundError{Input: text, Want: "crop"}
	}
	if c, ok := r.reg.cropIdx[norm]; ok {
		return c, nil
	}

	var best float64
	var bestCrops []*Crop
	for _, c := range r.reg.crops {
		score := bestAliasScore(text, c.Name, c.Aliases)
		switch {
		case score > best:
			best = score
			bestCrops = []*Crop{c}
		case score == best && score > 0:
			bestCrops = append(bestCrops, c)
		}
	}

	if best >= r.threshold && len(bestCrops) == 1 {
		return bestCrops[0], nil
	}
	if best >= r.threshold && len(bestCrops) > 1 {
		names := make([]string, len(bestCrops))
		for i, c := range bestCrops {
			names[i] = c.Name
		}
		sort.Strings(names)
		return nil, &AmbiguousError{Input: text, Candidates: names}
	}
	return nil, &NotFoundError{Input: text, Want: "crop", Suggestions: r.NearestCrops(text, 3)}
}

// NearestCrops ranks crop names by similarity to the input, best first.
// Used for "did you mean" suggestions; never for silent acceptance.
func (r *Resolver) NearestCrops(text string, n int) []string {
	type scored struct {
		name  string
		score float64
	}
	var all []scored
	for _, c := range r.reg.crops {
		if s := bestAliasScore(text, c.Name, c.Aliases); s > 0 {
			all = append(all, scored{c.Name, s})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].name < all[j].name
	})
	if len(all) > n {
		all = all[:n]
	}
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = s.name
	}
	return out
}

func bestAliasScore(text, name string, aliases []string) float64 {
	best := Similarity(text, name)
	for _, a := range aliases {
		if s := Similarity(text, a); s > best {
			best = s
		}
	}
	return best
}

package query

import (
	"fmt"

	"github.com/agriq-org/agriq/taxonomy"
)

// ============================================================================
// QUERY INTENTS — Typed Output of the Parser
// ============================================================================
// One Intent per successfully parsed sub-question. Consumed once by the
// executor; never mutated after binding.
// ============================================================================

// IntentType classifies the computation a sub-question requests.
type IntentType string

const (
	IntentRainfallAggregate IntentType = "rainfall_aggregate"
	IntentRainfallCompare   IntentType = "rainfall_compare"
	IntentCropRank          IntentType = "crop_rank"
	IntentDistrictExtreme   IntentType = "district_extreme"
	IntentCrossStateCompare IntentType = "cross_state_district_compare"
	IntentTrend             IntentType = "trend"
	IntentCorrelation       IntentType = "correlation"
	IntentPolicyArgument    IntentType = "policy_argument"
)

// YearSpecKind says how the year scope was phrased.
type YearSpecKind string

const (
	YearsAll      YearSpecKind = "all"       // no year mentioned
	YearsExplicit YearSpecKind = "explicit"  // "2022", "2018-2022"
	YearsLastN    YearSpecKind = "last_n"    // "last 3 years", "last decade"
	YearsLatest   YearSpecKind = "latest"    // "most recent year available"
)

// YearSpec is an unresolved year scope. "last N" and "latest" are
// resolved by the executor against the years the data actually has,
// never against the wall clock.
type YearSpec struct {
	Kind  YearSpecKind `json:"kind"`
	Years []int        `json:"years,omitempty"` // explicit only, sorted
	N     int          `json:"n,omitempty"`     // last_n only
}

// Intent is one bound sub-question.
//
// Regions and Crops are in role order for the intent type:
// rainfall_compare holds [left, right]; cross_state_district_compare
// holds [highest-state, lowest-state]; policy_argument crops hold
// [promoted, compared-against].
type Intent struct {
	Type    IntentType
	Regions []*taxonomy.Region
	Crops   []*taxonomy.Crop
	Years   YearSpec
	TopN    int
	Lowest  bool   // district_extreme: minimum instead of maximum
	Raw     string // the sub-question text this intent came from
}

// ============================================================================
// PARSE FAILURES
// ============================================================================

// ErrKind tags the two failure classes the parser can produce.
type ErrKind string

const (
	ErrUnrecognizedIntent ErrKind = "unrecognized_intent"
	ErrUnresolvedEntity   ErrKind = "unresolved_entity"
)

// ParseError degrades a single sub-question to a failed fragment. It
// never aborts sibling sub-questions.
type ParseError struct {
	Kind   ErrKind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Parsed is the outcome of parsing one segment: exactly one of Intent
// or Err is set.
type Parsed struct {
	Segment string
	Intent  *Intent
	Err     *ParseError
}

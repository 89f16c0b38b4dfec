package engine

import (
	"github.com/agriq-org/agriq/query"
)

// ============================================================================
// ENGINE TYPES — Fragments, Citations, Per-Intent Payloads
// ============================================================================
// The executor turns one bound Intent into one Fragment. A Fragment is
// render-ready: a prose answer, the structured numbers behind it, and
// the citations that say which dataset slice produced them.
// ============================================================================

// Dataset display names used in citations.
const (
	DatasetRainfall = "IMD Rainfall Data"
	DatasetCrops    = "Agriculture Production Data"
)

// FailureCode classifies why a fragment could not be answered.
// Failures are per-fragment; sibling fragments are unaffected.
type FailureCode string

const (
	FailUnrecognizedIntent FailureCode = "unrecognized_intent"
	FailUnresolvedEntity   FailureCode = "unresolved_entity"
	FailNoDataForScope     FailureCode = "no_data_for_scope"
	FailInsufficientSeries FailureCode = "insufficient_series"
)

// Citation names the dataset slice an answer was computed from.
type Citation struct {
	Dataset string `json:"dataset"`
	Metric  string `json:"metric"`
	Region  string `json:"region"`
	Years   string `json:"years"`
}

// Fragment is the answer to one sub-question.
//
// Exactly one payload pointer is populated on success, matching Intent.
// On failure OK is false, Failure is set, and Answer explains what went
// wrong, naming what the data does have where that helps. A cross-state
// fragment with one failed half keeps its payload, so the surviving
// half's result is never lost.
type Fragment struct {
	Question string           `json:"question"`
	Intent   query.IntentType `json:"intent,omitempty"`
	OK       bool             `json:"ok"`
	Failure  FailureCode      `json:"failure,omitempty"`
	Answer   string           `json:"answer"`

	Rainfall        *RainfallResult        `json:"rainfall,omitempty"`
	RainfallCompare *RainfallCompareResult `json:"rainfallCompare,omitempty"`
	CropRank        *CropRankResult        `json:"cropRank,omitempty"`
	DistrictExtreme *DistrictExtremeResult `json:"districtExtreme,omitempty"`
	CrossState      *CrossStateResult      `json:"crossState,omitempty"`
	Trend           *TrendResult           `json:"trend,omitempty"`
	Correlation     *CorrelationResult     `json:"correlation,omitempty"`
	Policy          *PolicyResult          `json:"policy,omitempty"`

	Citations []Citation `json:"citations,omitempty"`
}

// Failed builds a failure fragment. Also used by callers that fail a
// segment before it ever reaches the executor.
func Failed(question string, intent query.IntentType, code FailureCode, reason string) *Fragment {
	return &Fragment{Question: question, Intent: intent, Failure: code, Answer: reason}
}

// ============================================================================
// PER-INTENT PAYLOADS
// ============================================================================

// RainfallResult is the rainfall aggregate for one state.
type RainfallResult struct {
	State  string          `json:"state"`
	Years  []int           `json:"years"`
	MeanMM float64         `json:"meanMm"`
	ByYear map[int]float64 `json:"byYear"`
}

// RainfallCompareResult compares two states' rainfall over a common scope.
type RainfallCompareResult struct {
	Left         RainfallResult `json:"left"`
	Right        RainfallResult `json:"right"`
	DifferenceMM float64        `json:"differenceMm"` // left minus right
	Wetter       string         `json:"wetter"`
}

// CropRankEntry is one row of a production ranking.
type CropRankEntry struct {
	Crop       string  `json:"crop"`
	Production float64 `json:"production"` // tonnes
}

// CropRankResult ranks crops by total production within a region scope.
type CropRankResult struct {
	Region string          `json:"region"`
	Years  []int           `json:"years,omitempty"`
	Top    []CropRankEntry `json:"top"`
}

// DistrictExtremeResult names the single district with the highest (or
// lowest) production of a crop in a state.
type DistrictExtremeResult struct {
	State      string  `json:"state"`
	Crop       string  `json:"crop"`
	Years      []int   `json:"years,omitempty"`
	District   string  `json:"district"`
	Production float64 `json:"production"`
	Lowest     bool    `json:"lowest"`
}

// ExtremeHalf is one side of a cross-state comparison. The two halves
// succeed or fail independently.
type ExtremeHalf struct {
	Result  *DistrictExtremeResult `json:"result,omitempty"`
	Failure FailureCode            `json:"failure,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
}

// CrossStateResult pairs the highest-producing district of one state
// with the lowest-producing district of another.
type CrossStateResult struct {
	Crop    string      `json:"crop"`
	Highest ExtremeHalf `json:"highest"`
	Lowest  ExtremeHalf `json:"lowest"`
}

// TrendPoint is one year of a production series.
type TrendPoint struct {
	Year       int     `json:"year"`
	Production float64 `json:"production"`
}

// TrendResult describes how production moved over the year scope.
type TrendResult struct {
	Region       string       `json:"region"` // empty means all states
	Crop         string       `json:"crop"`
	Points       []TrendPoint `json:"points"`
	SlopePerYear float64      `json:"slopePerYear"` // tonnes per year
	Direction    string       `json:"direction"`    // "increasing", "decreasing", "stable"
}

// CorrelationResult relates a crop's production to annual rainfall over
// the years both series cover.
type CorrelationResult struct {
	State     string  `json:"state"`
	Crop      string  `json:"crop"`
	Years     []int   `json:"years"`
	Pearson   float64 `json:"pearson"`
	Strength  string  `json:"strength"`  // "weak", "moderate", "strong"
	Direction string  `json:"direction"` // "positive", "negative"
}

// PolicyArgument is one evidence-backed claim.
type PolicyArgument struct {
	Claim     string     `json:"claim"`
	Evidence  string     `json:"evidence"`
	Citations []Citation `json:"citations,omitempty"`
}

// PolicyResult collects the arguments for promoting one crop over
// another in a state. Every claim is backed by computed numbers; the
// engine never editorializes beyond what the data shows.
type PolicyResult struct {
	State     string           `json:"state"`
	Promoted  string           `json:"promoted"`
	Baseline  string           `json:"baseline"`
	Arguments []PolicyArgument `json:"arguments"`
}

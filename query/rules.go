package query

import (
	"regexp"
)

// ============================================================================
// INTENT RULES — Ordered Pattern Table
// ============================================================================
// Every rule is evaluated against the segment; among the rules that
// match, the highest specificity wins, with the earlier rule winning a
// tie. So "which district in Punjab has the highest Wheat production"
// lands on district_extreme even though the generic crop-ranking
// patterns would also bite.
//
// Captured spans are raw text; the parser trims filler words and binds
// them through the taxonomy resolver.
// ============================================================================

// name matches a proper name of at most three words greedily; lazyName
// stops as early as the surrounding pattern allows. The three-word cap
// keeps a trailing capture from swallowing the rest of the clause, and
// span trimming plus fuzzy resolution absorbs the odd extra word.
// Digits never belong to a name, which keeps years out of spans.
const (
	name     = `[A-Za-z]+(?:\s+[A-Za-z]+){0,2}`
	lazyName = `[A-Za-z]+(?:\s+[A-Za-z]+)*?`
)

// spans carries the raw role spans a rule extracted, in role order.
type spans struct {
	regions []string
	crops   []string
}

type rule struct {
	intent      IntentType
	specificity int
	match       func(seg string) (spans, bool)
}

// firstMatch tries the patterns in order and returns the submatches of
// the first one that hits.
func firstMatch(seg string, pats []*regexp.Regexp) []string {
	for _, re := range pats {
		if m := re.FindStringSubmatch(seg); m != nil {
			return m
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// cross_state_district_compare: both a highest-in-state and a
// lowest-in-state clause must be present.
// ----------------------------------------------------------------------------

var (
	crossHighRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhighest\s+(` + lazyName + `)\s+produc\w+\s+(?:district\s+)?in\s+(` + name + `)`),
		regexp.MustCompile(`(?i)\bhighest\s+production\s+of\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	}
	crossLowRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\blowest\s+(` + lazyName + `)\s+produc\w+\s+(?:district\s+)?in\s+(` + name + `)`),
		regexp.MustCompile(`(?i)\blowest\s+production\s+of\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	}
)

func matchCrossState(seg string) (spans, bool) {
	high := firstMatch(seg, crossHighRes)
	low := firstMatch(seg, crossLowRes)
	if high == nil || low == nil {
		return spans{}, false
	}
	return spans{
		regions: []string{high[2], low[2]},
		crops:   []string{high[1], low[1]},
	}, true
}

// ----------------------------------------------------------------------------
// Single-pattern rule families.
// ----------------------------------------------------------------------------

var rainfallCompareRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcompare\b.*\brainfall\s+(?:in|of|between|for|across)\s+(` + name + `)\s+(?:and|with|vs\.?|versus)\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\brainfall\s+(?:comparison|difference)\s+between\s+(` + name + `)\s+and\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\b(?:which|did)\b.*\b(?:of|between)\s+(` + name + `)\s+(?:and|or)\s+(` + name + `)\s+(?:received|got|gets|receives)\s+(?:more|less|higher|lower)\s+rainfall`),
}

var policyRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpromot\w+\s+(` + lazyName + `)\s+(?:over|instead\s+of|rather\s+than)\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\b(?:case|argument|arguments)\s+for\s+(` + lazyName + `)\s+(?:over|versus|vs\.?|against)\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\b(` + lazyName + `)\s+(?:vs\.?|versus)\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
}

var correlationRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:correlat\w+|relationship)\s+(?:of\s+|between\s+)?(` + lazyName + `)\s+(?:and|with|against)\s+(?:the\s+)?(?:annual\s+)?(?:rainfall|precipitation|climate)\s+in\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\b(?:correlat\w+|relationship)\s+(?:of\s+|between\s+)?(?:the\s+)?(?:annual\s+)?(?:rainfall|precipitation|climate)\s+(?:and|with|against)\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\bhow\s+does\s+(?:the\s+)?rainfall\s+affect\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
}

// correlationCropFirst marks which correlation patterns capture the crop
// before the state versus rainfall first.
var correlationCropFirst = []bool{true, true, true}

var trendWithRegionRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btrend\s+(?:of|in|for)\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\bhow\s+has\s+(` + lazyName + `)\s+(?:production\s+)?changed\s+in\s+(` + name + `)`),
}

var trendBareRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btrend\s+(?:of|in|for)\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\bhow\s+has\s+(` + name + `)\s+(?:production\s+)?changed`),
}

var districtExtremeRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bdistrict\s+(?:in|of)\s+(` + name + `)\s+(?:has|had|with|produces|produced|grows|grew)\s+(?:the\s+)?(?:highest|lowest|most|least|maximum|minimum)\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\b(?:highest|lowest|maximum|minimum|top|bottom)\s+(?:producer|production)\s+of\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\bwhich\s+district\s+produc\w+\s+(?:the\s+)?(?:most|least)\s+(` + lazyName + `)\s+in\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\b(?:highest|lowest|most|least|maximum|minimum)\s+(` + lazyName + `)\s+produc\w+\s+in\s+(` + name + `)`),
}

// districtExtremeStateFirst records, per pattern, whether the state span
// is the first capture group.
var districtExtremeStateFirst = []bool{true, false, false, false}

var cropRankRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btop\s+(?:\d+\s+)?crops?\s+(?:produced\s+|grown\s+)?(?:in|of|by)\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\b(?:most|major|main|leading)\s+(?:produced\s+|grown\s+|important\s+)?crops?\s+(?:in|of)\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\bcrops?\s+(?:produced|grown|cultivated)\s+in\s+(` + name + `)`),
}

var rainfallAggregateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:average|mean|total|annual|yearly)\s+(?:annual\s+|yearly\s+)?rainfall\s+(?:in|of|for|at|over|across)\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\brainfall\s+(?:in|of|for|at|over|across)\s+(` + name + `)`),
	regexp.MustCompile(`(?i)\bhow\s+much\s+rain(?:fall)?\s+(?:did|does|has)\s+(` + name + `)\s+(?:get|receive|received)`),
}

// matchRegions adapts a pattern family that captures role spans in
// fixed group positions.
func matchRegions(pats []*regexp.Regexp, nRegions, nCrops int) func(string) (spans, bool) {
	return func(seg string) (spans, bool) {
		m := firstMatch(seg, pats)
		if m == nil {
			return spans{}, false
		}
		sp := spans{}
		g := 1
		for i := 0; i < nCrops; i++ {
			sp.crops = append(sp.crops, m[g])
			g++
		}
		for i := 0; i < nRegions; i++ {
			sp.regions = append(sp.regions, m[g])
			g++
		}
		return sp, true
	}
}

// matchIndexed is like matchRegions for two-group crop+state families
// where group order varies per pattern.
func matchIndexed(pats []*regexp.Regexp, cropFirst []bool) func(string) (spans, bool) {
	return func(seg string) (spans, bool) {
		for i, re := range pats {
			m := re.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			if cropFirst[i] {
				return spans{crops: []string{m[1]}, regions: []string{m[2]}}, true
			}
			return spans{crops: []string{m[2]}, regions: []string{m[1]}}, true
		}
		return spans{}, false
	}
}

var rules = []rule{
	{IntentCrossStateCompare, 90, matchCrossState},
	{IntentRainfallCompare, 80, func(seg string) (spans, bool) {
		m := firstMatch(seg, rainfallCompareRes)
		if m == nil {
			return spans{}, false
		}
		return spans{regions: []string{m[1], m[2]}}, true
	}},
	{IntentPolicyArgument, 75, matchRegions(policyRes, 1, 2)},
	{IntentCorrelation, 70, matchIndexed(correlationRes, correlationCropFirst)},
	{IntentTrend, 66, matchIndexed(trendWithRegionRes, []bool{true, true})},
	{IntentTrend, 65, func(seg string) (spans, bool) {
		m := firstMatch(seg, trendBareRes)
		if m == nil {
			return spans{}, false
		}
		return spans{crops: []string{m[1]}}, true
	}},
	{IntentDistrictExtreme, 60, matchIndexed(districtExtremeRes, invert(districtExtremeStateFirst))},
	{IntentCropRank, 50, matchRegions(cropRankRes, 1, 0)},
	{IntentRainfallAggregate, 40, matchRegions(rainfallAggregateRes, 1, 0)},
}

func invert(bs []bool) []bool {
	out := make([]bool, len(bs))
	for i, b := range bs {
		out[i] = !b
	}
	return out
}

// matchIntent runs every rule and returns the most specific hit.
func matchIntent(seg string) (IntentType, spans, bool) {
	best := -1
	var bestType IntentType
	var bestSpans spans
	for _, r := range rules {
		sp, ok := r.match(seg)
		if ok && r.specificity > best {
			best = r.specificity
			bestType = r.intent
			bestSpans = sp
		}
	}
	return bestType, bestSpans, best >= 0
}

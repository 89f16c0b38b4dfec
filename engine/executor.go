package engine

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/agriq-org/agriq/dataset"
	"github.com/agriq-org/agriq/query"
	"github.com/agriq-org/agriq/taxonomy"
)

// ============================================================================
// EXECUTOR — Dispatcher + Intent Handlers
// ============================================================================
// Entry point: Execute(intent)
//
// Pipeline:
//   1. Get the harmonized table from the store (lazy first-use build)
//   2. Resolve the symbolic year scope against the data's actual years
//   3. Dispatch on intent type
//   4. Return a Fragment: prose answer + structured payload + citations
//
// All computation is local and deterministic. A failed fragment carries
// a FailureCode; the only error Execute returns is a dataset build
// failure, which is fatal for the whole question.
// ============================================================================

// Executor runs bound intents against the harmonized dataset.
type Executor struct {
	store      *dataset.Store
	log        *zap.Logger
	stableBand float64
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the execution logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithTrendTolerance overrides the stable-band fraction used to call a
// trend flat. The default reports slopes under 0.5% of the series mean
// per year as stable.
func WithTrendTolerance(frac float64) Option {
	return func(e *Executor) {
		if frac > 0 {
			e.stableBand = frac
		}
	}
}

// New creates an executor over a dataset store.
func New(store *dataset.Store, opts ...Option) *Executor {
	e := &Executor{store: store, log: zap.NewNop(), stableBand: stableSlopeFraction}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute answers one bound intent. Per-intent problems (missing data,
// short series) come back as failed fragments, never as errors.
func (e *Executor) Execute(in *query.Intent) (*Fragment, error) {
	tbl, err := e.store.Table()
	if err != nil {
		return nil, err
	}

	var frag *Fragment
	switch in.Type {
	case query.IntentRainfallAggregate:
		frag = e.rainfallAggregate(tbl, in)
	case query.IntentRainfallCompare:
		frag = e.rainfallCompare(tbl, in)
	case query.IntentCropRank:
		frag = e.cropRank(tbl, in)
	case query.IntentDistrictExtreme:
		frag = e.districtExtreme(tbl, in)
	case query.IntentCrossStateCompare:
		frag = e.crossState(tbl, in)
	case query.IntentTrend:
		frag = e.trend(tbl, in)
	case query.IntentCorrelation:
		frag = e.correlation(tbl, in)
	case query.IntentPolicyArgument:
		frag = e.policyArgument(tbl, in)
	default:
		frag = Failed(in.Raw, in.Type, FailUnrecognizedIntent,
			fmt.Sprintf("no handler for intent %q", in.Type))
	}

	e.log.Debug("intent executed",
		zap.String("intent", string(in.Type)),
		zap.Bool("ok", frag.OK),
		zap.String("failure", string(frag.Failure)))
	return frag, nil
}

// ============================================================================
// YEAR SCOPE RESOLUTION
// ============================================================================

// scopeYears pins a symbolic year scope to the years a series actually
// has. "last N" and "latest" resolve against available, never against
// the wall clock. A nil years result means no restriction. For explicit
// requests, missing lists the requested years the data does not cover.
func scopeYears(spec query.YearSpec, available []int) (years, missing []int) {
	switch spec.Kind {
	case query.YearsExplicit:
		have := make(map[int]bool, len(available))
		for _, y := range available {
			have[y] = true
		}
		for _, y := range spec.Years {
			if !have[y] {
				missing = append(missing, y)
			}
		}
		return spec.Years, missing

	case query.YearsLastN:
		if len(available) > spec.N {
			return available[len(available)-spec.N:], nil
		}
		return available, nil

	case query.YearsLatest:
		if len(available) == 0 {
			return nil, nil
		}
		return available[len(available)-1:], nil

	default:
		return nil, nil
	}
}

func restrictSeries(series map[int]float64, years []int) map[int]float64 {
	if years == nil {
		return series
	}
	out := make(map[int]float64, len(years))
	for _, y := range years {
		if v, ok := series[y]; ok {
			out[y] = v
		}
	}
	return out
}

// rainfallState maps a region to the state its rainfall is reported
// under. Rainfall is harmonized at state level, so a district question
// answers with its parent state's figure.
func rainfallState(r *taxonomy.Region) string {
	if r.Kind == taxonomy.KindDistrict {
		return r.Parent
	}
	return r.Name
}

// ============================================================================
// RAINFALL HANDLERS
// ============================================================================

func rainfallFor(tbl *dataset.Table, region *taxonomy.Region, spec query.YearSpec) (*RainfallResult, FailureCode, string) {
	state := rainfallState(region)
	series := tbl.RainfallSeries(state)
	if len(series) == 0 {
		return nil, FailNoDataForScope,
			fmt.Sprintf("no rainfall data covers %s", state)
	}
	available := sortedYearsOf(series)

	years, missing := scopeYears(spec, available)
	if len(missing) > 0 {
		return nil, FailNoDataForScope,
			fmt.Sprintf("no rainfall data for %s in %s (available years: %s)",
				state, formatYears(missing), formatYears(available))
	}
	if years == nil {
		years = available
	}

	byYear := restrictSeries(series, years)
	return &RainfallResult{
		State:  state,
		Years:  years,
		MeanMM: seriesMean(series, years),
		ByYear: byYear,
	}, "", ""
}

func (e *Executor) rainfallAggregate(tbl *dataset.Table, in *query.Intent) *Fragment {
	res, code, reason := rainfallFor(tbl, in.Regions[0], in.Years)
	if code != "" {
		return Failed(in.Raw, in.Type, code, reason)
	}

	answer := fmt.Sprintf("Average annual rainfall in %s over %s was %s.",
		res.State, formatYears(res.Years), formatMM(res.MeanMM))
	if in.Regions[0].Kind == taxonomy.KindDistrict {
		answer = fmt.Sprintf("Rainfall is tracked at state level; %s is in %s. %s",
			in.Regions[0].Name, res.State, answer)
	}

	return &Fragment{
		Question:  in.Raw,
		Intent:    in.Type,
		OK:        true,
		Answer:    answer,
		Rainfall:  res,
		Citations: []Citation{rainfallCitation(res.State, res.Years)},
	}
}

func (e *Executor) rainfallCompare(tbl *dataset.Table, in *query.Intent) *Fragment {
	left, code, reason := rainfallFor(tbl, in.Regions[0], in.Years)
	if code != "" {
		return Failed(in.Raw, in.Type, code, reason)
	}
	right, code, reason := rainfallFor(tbl, in.Regions[1], in.Years)
	if code != "" {
		return Failed(in.Raw, in.Type, code, reason)
	}

	diff := left.MeanMM - right.MeanMM
	wetter := left.State
	if diff < 0 {
		wetter = right.State
	}
	res := &RainfallCompareResult{Left: *left, Right: *right, DifferenceMM: diff, Wetter: wetter}

	answer := fmt.Sprintf("Over %s, %s averaged %s of annual rainfall against %s for %s; %s received more by %s.",
		formatYears(left.Years), left.State, formatMM(left.MeanMM),
		formatMM(right.MeanMM), right.State, wetter, formatMM(absf(diff)))
	if diff == 0 {
		answer = fmt.Sprintf("Over %s, %s and %s averaged the same annual rainfall of %s.",
			formatYears(left.Years), left.State, right.State, formatMM(left.MeanMM))
	}

	return &Fragment{
		Question:        in.Raw,
		Intent:          in.Type,
		OK:              true,
		Answer:          answer,
		RainfallCompare: res,
		Citations: []Citation{
			rainfallCitation(left.State, left.Years),
			rainfallCitation(right.State, right.Years),
		},
	}
}

// ============================================================================
// PRODUCTION HANDLERS
// ============================================================================

func (e *Executor) cropRank(tbl *dataset.Table, in *query.Intent) *Fragment {
	region := in.Regions[0]
	available := tbl.Years(dataset.MetricProductionTonnes)

	years, missing := scopeYears(in.Years, available)
	if len(missing) > 0 {
		return Failed(in.Raw, in.Type, FailNoDataForScope,
			fmt.Sprintf("no production data for %s (available years: %s)",
				formatYears(missing), formatYears(available)))
	}

	totals := tbl.CropTotals(region, years)
	if len(totals) == 0 {
		return Failed(in.Raw, in.Type, FailNoDataForScope,
			fmt.Sprintf("no crop production data for %s over %s (available years: %s)",
				region.Name, formatYears(years), formatYears(available)))
	}

	entries := make([]CropRankEntry, 0, len(totals))
	for crop, total := range totals {
		entries = append(entries, CropRankEntry{Crop: crop, Production: total})
	}
	// Descending by production; ties alphabetical so rankings are stable.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Production != entries[j].Production {
			return entries[i].Production > entries[j].Production
		}
		return entries[i].Crop < entries[j].Crop
	})
	if in.TopN > 0 && len(entries) > in.TopN {
		entries = entries[:in.TopN]
	}

	parts := make([]string, len(entries))
	for i, en := range entries {
		parts[i] = fmt.Sprintf("%s (%s)", en.Crop, formatTonnes(en.Production))
	}
	answer := fmt.Sprintf("Top crops in %s by production over %s: %s.",
		region.Name, formatYears(years), strings.Join(parts, ", "))

	return &Fragment{
		Question: in.Raw,
		Intent:   in.Type,
		OK:       true,
		Answer:   answer,
		CropRank: &CropRankResult{Region: region.Name, Years: years, Top: entries},
		Citations: []Citation{
			productionCitation(region.Name, years),
		},
	}
}

// extremeFor finds the single district with the highest or lowest
// production of a crop in a state. The input list is sorted by district
// name, so ties resolve to the alphabetically first district.
func extremeFor(tbl *dataset.Table, state *taxonomy.Region, crop string, spec query.YearSpec, lowest bool) (*DistrictExtremeResult, FailureCode, string) {
	available := tbl.ProductionYearsFor(state, crop)
	if len(available) == 0 {
		return nil, FailNoDataForScope,
			fmt.Sprintf("no %s production data for %s", crop, state.Name)
	}

	years, missing := scopeYears(spec, available)
	if len(missing) > 0 {
		return nil, FailNoDataForScope,
			fmt.Sprintf("no %s production data for %s in %s (available years: %s)",
				crop, state.Name, formatYears(missing), formatYears(available))
	}

	list := tbl.DistrictProduction(state.Name, crop, years)
	if len(list) == 0 {
		return nil, FailNoDataForScope,
			fmt.Sprintf("no %s production data for %s over %s (available years: %s)",
				crop, state.Name, formatYears(years), formatYears(available))
	}

	pick := list[0]
	for _, dv := range list[1:] {
		if (!lowest && dv.Production > pick.Production) || (lowest && dv.Production < pick.Production) {
			pick = dv
		}
	}

	return &DistrictExtremeResult{
		State:      state.Name,
		Crop:       crop,
		Years:      years,
		District:   pick.District,
		Production: pick.Production,
		Lowest:     lowest,
	}, "", ""
}

func (e *Executor) districtExtreme(tbl *dataset.Table, in *query.Intent) *Fragment {
	res, code, reason := extremeFor(tbl, in.Regions[0], in.Crops[0].Name, in.Years, in.Lowest)
	if code != "" {
		return Failed(in.Raw, in.Type, code, reason)
	}

	qualifier := "highest"
	if res.Lowest {
		qualifier = "lowest"
	}
	answer := fmt.Sprintf("%s had the %s %s production in %s over %s at %s.",
		res.District, qualifier, res.Crop, res.State, formatYears(res.Years), formatTonnes(res.Production))

	return &Fragment{
		Question:        in.Raw,
		Intent:          in.Type,
		OK:              true,
		Answer:          answer,
		DistrictExtreme: res,
		Citations:       []Citation{productionCitation(res.State, res.Years)},
	}
}

func (e *Executor) crossState(tbl *dataset.Table, in *query.Intent) *Fragment {
	highCrop := in.Crops[0].Name
	lowCrop := in.Crops[len(in.Crops)-1].Name

	var res CrossStateResult
	res.Crop = highCrop

	if r, code, reason := extremeFor(tbl, in.Regions[0], highCrop, in.Years, false); code != "" {
		res.Highest = ExtremeHalf{Failure: code, Reason: reason}
	} else {
		res.Highest = ExtremeHalf{Result: r}
	}
	if r, code, reason := extremeFor(tbl, in.Regions[1], lowCrop, in.Years, true); code != "" {
		res.Lowest = ExtremeHalf{Failure: code, Reason: reason}
	} else {
		res.Lowest = ExtremeHalf{Result: r}
	}

	// The halves fail independently, but the fragment only counts as
	// answered when both succeed; a surviving half still ships its result.
	if res.Highest.Result == nil && res.Lowest.Result == nil {
		return Failed(in.Raw, in.Type, FailNoDataForScope,
			fmt.Sprintf("%s; %s", res.Highest.Reason, res.Lowest.Reason))
	}

	var parts []string
	var cites []Citation
	if r := res.Highest.Result; r != nil {
		parts = append(parts, fmt.Sprintf("%s had the highest %s production in %s at %s",
			r.District, r.Crop, r.State, formatTonnes(r.Production)))
		cites = append(cites, productionCitation(r.State, r.Years))
	} else {
		parts = append(parts, res.Highest.Reason)
	}
	if r := res.Lowest.Result; r != nil {
		parts = append(parts, fmt.Sprintf("%s had the lowest %s production in %s at %s",
			r.District, r.Crop, r.State, formatTonnes(r.Production)))
		cites = append(cites, productionCitation(r.State, r.Years))
	} else {
		parts = append(parts, res.Lowest.Reason)
	}

	frag := &Fragment{
		Question:   in.Raw,
		Intent:     in.Type,
		OK:         res.Highest.Result != nil && res.Lowest.Result != nil,
		Answer:     strings.Join(parts, "; ") + ".",
		CrossState: &res,
		Citations:  cites,
	}
	if !frag.OK {
		frag.Failure = res.Highest.Failure
		if frag.Failure == "" {
			frag.Failure = res.Lowest.Failure
		}
	}
	return frag
}

// ============================================================================
// SERIES HANDLERS
// ============================================================================

func (e *Executor) trend(tbl *dataset.Table, in *query.Intent) *Fragment {
	crop := in.Crops[0].Name
	var region *taxonomy.Region
	scopeName := "all states"
	if len(in.Regions) > 0 {
		region = in.Regions[0]
		scopeName = region.Name
	}

	series := tbl.ProductionSeries(region, crop)
	available := sortedYearsOf(series)

	years, missing := scopeYears(in.Years, available)
	if len(missing) > 0 {
		return Failed(in.Raw, in.Type, FailNoDataForScope,
			fmt.Sprintf("no %s production data for %s in %s (available years: %s)",
				crop, scopeName, formatYears(missing), formatYears(available)))
	}
	series = restrictSeries(series, years)

	if len(series) < 2 {
		return Failed(in.Raw, in.Type, FailInsufficientSeries,
			fmt.Sprintf("a trend needs at least two years of %s production data for %s; found %d",
				crop, scopeName, len(series)))
	}

	pointYears := sortedYearsOf(series)
	points := make([]TrendPoint, len(pointYears))
	for i, y := range pointYears {
		points[i] = TrendPoint{Year: y, Production: series[y]}
	}

	slope := leastSquaresSlope(series)
	direction := trendDirection(slope, seriesMean(series, pointYears), e.stableBand)

	var answer string
	if direction == "stable" {
		answer = fmt.Sprintf("%s production in %s was stable over %s.",
			crop, scopeName, formatYears(pointYears))
	} else {
		answer = fmt.Sprintf("%s production in %s was %s over %s, moving by about %s per year.",
			crop, scopeName, direction, formatYears(pointYears), formatTonnes(absf(slope)))
	}

	return &Fragment{
		Question: in.Raw,
		Intent:   in.Type,
		OK:       true,
		Answer:   answer,
		Trend: &TrendResult{
			Region:       regionName(region),
			Crop:         crop,
			Points:       points,
			SlopePerYear: slope,
			Direction:    direction,
		},
		Citations: []Citation{productionCitation(scopeName, pointYears)},
	}
}

func (e *Executor) correlation(tbl *dataset.Table, in *query.Intent) *Fragment {
	state := in.Regions[0]
	crop := in.Crops[0].Name

	prod := tbl.ProductionSeries(state, crop)
	rain := tbl.RainfallSeries(state.Name)

	if in.Years.Kind != query.YearsAll {
		available := sortedYearsOf(prod)
		years, missing := scopeYears(in.Years, available)
		if len(missing) > 0 {
			return Failed(in.Raw, in.Type, FailNoDataForScope,
				fmt.Sprintf("no %s production data for %s in %s (available years: %s)",
					crop, state.Name, formatYears(missing), formatYears(available)))
		}
		prod = restrictSeries(prod, years)
		rain = restrictSeries(rain, years)
	}

	r, shared, ok := pearson(prod, rain)
	if !ok {
		reason := fmt.Sprintf("correlating %s production with rainfall in %s needs at least two overlapping years; found %d",
			crop, state.Name, len(shared))
		if len(shared) >= 2 {
			reason = fmt.Sprintf("%s production and rainfall in %s show no variation over %s, so no correlation can be computed",
				crop, state.Name, formatYears(shared))
		}
		return Failed(in.Raw, in.Type, FailInsufficientSeries, reason)
	}

	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	strength := correlationStrength(r)

	answer := fmt.Sprintf("%s production and annual rainfall in %s show a %s %s correlation (r = %.2f) across %s.",
		crop, state.Name, strength, direction, r, formatYears(shared))

	return &Fragment{
		Question: in.Raw,
		Intent:   in.Type,
		OK:       true,
		Answer:   answer,
		Correlation: &CorrelationResult{
			State:     state.Name,
			Crop:      crop,
			Years:     shared,
			Pearson:   r,
			Strength:  strength,
			Direction: direction,
		},
		Citations: []Citation{
			rainfallCitation(state.Name, shared),
			productionCitation(state.Name, shared),
		},
	}
}

// ============================================================================
// POLICY ARGUMENTS
// ============================================================================

func (e *Executor) policyArgument(tbl *dataset.Table, in *query.Intent) *Fragment {
	state := in.Regions[0]
	promoted := in.Crops[0].Name
	baseline := in.Crops[len(in.Crops)-1].Name

	promSeries := tbl.ProductionSeries(state, promoted)
	baseSeries := tbl.ProductionSeries(state, baseline)
	if len(promSeries) == 0 || len(baseSeries) == 0 {
		missingCrop := promoted
		if len(promSeries) > 0 {
			missingCrop = baseline
		}
		return Failed(in.Raw, in.Type, FailNoDataForScope,
			fmt.Sprintf("no %s production data for %s, so the comparison cannot be made", missingCrop, state.Name))
	}

	years, missing := scopeYears(in.Years, sortedYearsOf(promSeries))
	if len(missing) > 0 {
		return Failed(in.Raw, in.Type, FailNoDataForScope,
			fmt.Sprintf("no %s production data for %s in %s (available years: %s)",
				promoted, state.Name, formatYears(missing), formatYears(sortedYearsOf(promSeries))))
	}
	promSeries = restrictSeries(promSeries, years)
	baseSeries = restrictSeries(baseSeries, years)

	cite := productionCitation(state.Name, sortedYearsOf(promSeries))
	res := &PolicyResult{State: state.Name, Promoted: promoted, Baseline: baseline}

	// Argument 1: production scale.
	promYears := sortedYearsOf(promSeries)
	baseYears := sortedYearsOf(baseSeries)
	promTotal := seriesMean(promSeries, promYears) * float64(len(promYears))
	baseTotal := seriesMean(baseSeries, baseYears) * float64(len(baseYears))
	res.Arguments = append(res.Arguments, PolicyArgument{
		Claim: "Production scale",
		Evidence: fmt.Sprintf("%s output in %s totalled %s over %s against %s for %s.",
			promoted, state.Name, formatTonnes(promTotal), formatYears(promYears),
			formatTonnes(baseTotal), baseline),
		Citations: []Citation{cite},
	})

	// Argument 2: trajectory, when both series support a slope.
	if len(promSeries) >= 2 && len(baseSeries) >= 2 {
		promSlope := leastSquaresSlope(promSeries)
		baseSlope := leastSquaresSlope(baseSeries)
		res.Arguments = append(res.Arguments, PolicyArgument{
			Claim: "Production trajectory",
			Evidence: fmt.Sprintf("%s production is %s by about %s per year, while %s is %s by about %s per year.",
				promoted, e.slopeWord(promSlope, seriesMean(promSeries, promYears)), formatTonnes(absf(promSlope)),
				baseline, e.slopeWord(baseSlope, seriesMean(baseSeries, baseYears)), formatTonnes(absf(baseSlope))),
			Citations: []Citation{cite},
		})
	}

	// Argument 3: geographic spread across the state's districts.
	promDistricts := len(tbl.DistrictProduction(state.Name, promoted, nil))
	baseDistricts := len(tbl.DistrictProduction(state.Name, baseline, nil))
	res.Arguments = append(res.Arguments, PolicyArgument{
		Claim: "Geographic spread",
		Evidence: fmt.Sprintf("%s is grown in %d district(s) of %s, %s in %d.",
			promoted, promDistricts, state.Name, baseline, baseDistricts),
		Citations: []Citation{cite},
	})

	var evidences []string
	for _, a := range res.Arguments {
		evidences = append(evidences, a.Evidence)
	}
	answer := fmt.Sprintf("Comparing %s against %s in %s: %s",
		promoted, baseline, state.Name, strings.Join(evidences, " "))

	return &Fragment{
		Question:  in.Raw,
		Intent:    in.Type,
		OK:        true,
		Answer:    answer,
		Policy:    res,
		Citations: []Citation{cite},
	}
}

func (e *Executor) slopeWord(slope, mean float64) string {
	switch trendDirection(slope, mean, e.stableBand) {
	case "increasing":
		return "growing"
	case "decreasing":
		return "declining"
	default:
		return "holding steady"
	}
}

// ============================================================================
// CITATION HELPERS
// ============================================================================

func rainfallCitation(state string, years []int) Citation {
	return Citation{
		Dataset: DatasetRainfall,
		Metric:  string(dataset.MetricRainfallMM),
		Region:  state,
		Years:   formatYears(years),
	}
}

func productionCitation(region string, years []int) Citation {
	return Citation{
		Dataset: DatasetCrops,
		Metric:  string(dataset.MetricProductionTonnes),
		Region:  region,
		Years:   formatYears(years),
	}
}

func regionName(r *taxonomy.Region) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

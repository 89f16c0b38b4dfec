package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriq-org/agriq/dataset"
	"github.com/agriq-org/agriq/query"
	"github.com/agriq-org/agriq/taxonomy"
)

// ============================================================================
// FIXTURE
// ============================================================================
// One grid cell each for Tamil Nadu (9N 79E) and Kerala (9N 75E), one
// observation per year 2018-2022, so the annual state figure equals
// that day's value. Tamil Nadu's rainfall rises 800→1200 mm while
// Kerala's falls 2000→1600 mm. Punjab has production data but no grid
// coverage, which exercises the missing-rainfall paths.
// ============================================================================

func fixtureGrid() *dataset.RainfallGrid {
	days := make([]time.Time, 5)
	values := make([][][]float64, 5)
	kerala := []float64{2000, 1900, 1800, 1700, 1600}
	tamilNadu := []float64{800, 900, 1000, 1100, 1200}
	for i := 0; i < 5; i++ {
		days[i] = time.Date(2018+i, time.July, 1, 0, 0, 0, 0, time.UTC)
		values[i] = [][]float64{{kerala[i], tamilNadu[i]}}
	}
	return &dataset.RainfallGrid{
		Lats:   []float64{9},
		Lons:   []float64{75, 79},
		Days:   days,
		Values: values,
	}
}

func fixtureRows() []dataset.CropRow {
	var rows []dataset.CropRow
	add := func(state, district, crop string, year int, production float64) {
		rows = append(rows, dataset.CropRow{
			State: state, District: district, Crop: crop, Year: year, Production: production,
		})
	}
	for i, year := 0, 2018; year <= 2022; i, year = i+1, year+1 {
		add("Tamil Nadu", "Thanjavur", "Rice", year, float64(100+20*i))
		add("Tamil Nadu", "Coimbatore", "Rice", year, 50)
		add("Kerala", "Palakkad", "Rice", year, float64(300-20*i))
		add("Kerala", "Kozhikode", "Coconut", year, float64(10+10*i))
		add("Kerala", "Ernakulam", "Banana", year, 100)
		add("Punjab", "Ludhiana", "Wheat", year, float64(500+20*i))
		add("Punjab", "Amritsar", "Wheat", year, 300)
		add("Punjab", "Ludhiana", "Rice", year, float64(200+10*i))
		add("Punjab", "Patiala", "Rice", year, 100)
	}
	add("Tamil Nadu", "Coimbatore", "Maize", 2022, 400)
	add("Punjab", "Bathinda", "Wheat", 2022, 100)
	return rows
}

func fixtureExecutor(t *testing.T) (*Executor, *taxonomy.Resolver) {
	t.Helper()
	reg, err := taxonomy.Load()
	require.NoError(t, err)
	res := taxonomy.NewResolver(reg)
	store := dataset.NewStore(
		dataset.RainfallLoaderFunc(func() (*dataset.RainfallGrid, error) { return fixtureGrid(), nil }),
		dataset.CropLoaderFunc(func() ([]dataset.CropRow, error) { return fixtureRows(), nil }),
		res,
	)
	return New(store), res
}

func mustState(t *testing.T, res *taxonomy.Resolver, name string) *taxonomy.Region {
	t.Helper()
	s, err := res.State(name)
	require.NoError(t, err)
	return s
}

func mustRegion(t *testing.T, res *taxonomy.Resolver, name string) *taxonomy.Region {
	t.Helper()
	r, err := res.Region(name)
	require.NoError(t, err)
	return r
}

func mustCrop(t *testing.T, res *taxonomy.Resolver, name string) *taxonomy.Crop {
	t.Helper()
	c, err := res.Crop(name)
	require.NoError(t, err)
	return c
}

func run(t *testing.T, e *Executor, in *query.Intent) *Fragment {
	t.Helper()
	frag, err := e.Execute(in)
	require.NoError(t, err)
	return frag
}

// ============================================================================
// RAINFALL
// ============================================================================

func TestRainfallAggregateExplicitYear(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentRainfallAggregate,
		Regions: []*taxonomy.Region{mustState(t, res, "Tamil Nadu")},
		Years:   query.YearSpec{Kind: query.YearsExplicit, Years: []int{2022}},
	})

	require.True(t, frag.OK)
	require.NotNil(t, frag.Rainfall)
	assert.InDelta(t, 1200, frag.Rainfall.MeanMM, 1e-9)
	assert.Contains(t, frag.Answer, "Tamil Nadu")
	assert.Contains(t, frag.Answer, "2022")

	require.Len(t, frag.Citations, 1)
	assert.Equal(t, DatasetRainfall, frag.Citations[0].Dataset)
	assert.Equal(t, "2022", frag.Citations[0].Years)
}

func TestRainfallAggregateDistrictUsesParentState(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentRainfallAggregate,
		Regions: []*taxonomy.Region{mustRegion(t, res, "Thanjavur")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	assert.Equal(t, "Tamil Nadu", frag.Rainfall.State)
	assert.InDelta(t, 1000, frag.Rainfall.MeanMM, 1e-9)
	assert.Contains(t, frag.Answer, "state level")
}

func TestRainfallAggregateLastN(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentRainfallAggregate,
		Regions: []*taxonomy.Region{mustState(t, res, "Tamil Nadu")},
		Years:   query.YearSpec{Kind: query.YearsLastN, N: 2},
	})

	require.True(t, frag.OK)
	assert.Equal(t, []int{2021, 2022}, frag.Rainfall.Years)
	assert.InDelta(t, 1150, frag.Rainfall.MeanMM, 1e-9)
}

func TestRainfallAggregateMissingYearNamesAvailable(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentRainfallAggregate,
		Regions: []*taxonomy.Region{mustState(t, res, "Tamil Nadu")},
		Years:   query.YearSpec{Kind: query.YearsExplicit, Years: []int{2025}},
	})

	assert.False(t, frag.OK)
	assert.Equal(t, FailNoDataForScope, frag.Failure)
	assert.Contains(t, frag.Answer, "2025")
	assert.Contains(t, frag.Answer, "2018-2022")
}

func TestRainfallAggregateNoCoverage(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentRainfallAggregate,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	assert.False(t, frag.OK)
	assert.Equal(t, FailNoDataForScope, frag.Failure)
	assert.Contains(t, frag.Answer, "Punjab")
}

func TestRainfallCompare(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type: query.IntentRainfallCompare,
		Regions: []*taxonomy.Region{
			mustState(t, res, "Tamil Nadu"),
			mustState(t, res, "Kerala"),
		},
		Years: query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	require.NotNil(t, frag.RainfallCompare)
	assert.InDelta(t, 1000, frag.RainfallCompare.Left.MeanMM, 1e-9)
	assert.InDelta(t, 1800, frag.RainfallCompare.Right.MeanMM, 1e-9)
	assert.Equal(t, "Kerala", frag.RainfallCompare.Wetter)
	assert.InDelta(t, -800, frag.RainfallCompare.DifferenceMM, 1e-9)
	assert.Len(t, frag.Citations, 2)
}

// ============================================================================
// PRODUCTION
// ============================================================================

func TestCropRank(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentCropRank,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Years:   query.YearSpec{Kind: query.YearsAll},
		TopN:    10,
	})

	require.True(t, frag.OK)
	require.NotNil(t, frag.CropRank)
	require.Len(t, frag.CropRank.Top, 2)
	assert.Equal(t, CropRankEntry{Crop: "Wheat", Production: 4300}, frag.CropRank.Top[0])
	assert.Equal(t, CropRankEntry{Crop: "Rice", Production: 1600}, frag.CropRank.Top[1])
}

func TestCropRankTopNAndLatestYear(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentCropRank,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Years:   query.YearSpec{Kind: query.YearsLatest},
		TopN:    1,
	})

	require.True(t, frag.OK)
	assert.Equal(t, []int{2022}, frag.CropRank.Years)
	require.Len(t, frag.CropRank.Top, 1)
	assert.Equal(t, CropRankEntry{Crop: "Wheat", Production: 980}, frag.CropRank.Top[0])
}

func TestDistrictExtremeHighestAndLowest(t *testing.T) {
	e, res := fixtureExecutor(t)

	frag := run(t, e, &query.Intent{
		Type:    query.IntentDistrictExtreme,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Wheat")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})
	require.True(t, frag.OK)
	assert.Equal(t, "Ludhiana", frag.DistrictExtreme.District)
	assert.InDelta(t, 2700, frag.DistrictExtreme.Production, 1e-9)

	frag = run(t, e, &query.Intent{
		Type:    query.IntentDistrictExtreme,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Wheat")},
		Years:   query.YearSpec{Kind: query.YearsAll},
		Lowest:  true,
	})
	require.True(t, frag.OK)
	assert.Equal(t, "Bathinda", frag.DistrictExtreme.District)
	assert.Contains(t, frag.Answer, "lowest")
}

func TestDistrictExtremeNoDataNamesAvailableYears(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentDistrictExtreme,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Wheat")},
		Years:   query.YearSpec{Kind: query.YearsExplicit, Years: []int{2010}},
	})

	assert.False(t, frag.OK)
	assert.Equal(t, FailNoDataForScope, frag.Failure)
	assert.Contains(t, frag.Answer, "2010")
	assert.Contains(t, frag.Answer, "2018-2022")
}

func TestCrossStateCompare(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type: query.IntentCrossStateCompare,
		Regions: []*taxonomy.Region{
			mustState(t, res, "Tamil Nadu"),
			mustState(t, res, "Punjab"),
		},
		Crops: []*taxonomy.Crop{mustCrop(t, res, "Rice")},
		Years: query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	require.NotNil(t, frag.CrossState)
	require.NotNil(t, frag.CrossState.Highest.Result)
	require.NotNil(t, frag.CrossState.Lowest.Result)
	assert.Equal(t, "Thanjavur", frag.CrossState.Highest.Result.District)
	assert.Equal(t, "Patiala", frag.CrossState.Lowest.Result.District)
}

func TestCrossStateCompareHalfFailure(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type: query.IntentCrossStateCompare,
		Regions: []*taxonomy.Region{
			mustState(t, res, "Tamil Nadu"),
			mustState(t, res, "Punjab"),
		},
		Crops: []*taxonomy.Crop{mustCrop(t, res, "Jowar"), mustCrop(t, res, "Wheat")},
		Years: query.YearSpec{Kind: query.YearsAll},
	})

	// One failed half fails the fragment, but the surviving half still
	// ships its result and the answer names both outcomes.
	assert.False(t, frag.OK)
	assert.Equal(t, FailNoDataForScope, frag.Failure)
	assert.Nil(t, frag.CrossState.Highest.Result)
	assert.Equal(t, FailNoDataForScope, frag.CrossState.Highest.Failure)
	require.NotNil(t, frag.CrossState.Lowest.Result)
	assert.Equal(t, "Bathinda", frag.CrossState.Lowest.Result.District)
	assert.Contains(t, frag.Answer, "Jowar")
	assert.Contains(t, frag.Answer, "Bathinda")
}

// ============================================================================
// TREND AND CORRELATION
// ============================================================================

func TestTrendIncreasing(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentTrend,
		Regions: []*taxonomy.Region{mustState(t, res, "Tamil Nadu")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Rice")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	require.NotNil(t, frag.Trend)
	assert.Len(t, frag.Trend.Points, 5)
	assert.InDelta(t, 20, frag.Trend.SlopePerYear, 1e-9)
	assert.Equal(t, "increasing", frag.Trend.Direction)
	assert.Contains(t, frag.Answer, "increasing")
}

func TestTrendStable(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentTrend,
		Regions: []*taxonomy.Region{mustState(t, res, "Kerala")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Banana")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	assert.Equal(t, "stable", frag.Trend.Direction)
	assert.Contains(t, frag.Answer, "stable")
}

func TestTrendInsufficientSeries(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentTrend,
		Regions: []*taxonomy.Region{mustState(t, res, "Tamil Nadu")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Maize")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	assert.False(t, frag.OK)
	assert.Equal(t, FailInsufficientSeries, frag.Failure)
	assert.Contains(t, frag.Answer, "Maize")
}

func TestCorrelationStrongPositive(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentCorrelation,
		Regions: []*taxonomy.Region{mustState(t, res, "Tamil Nadu")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Rice")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	require.NotNil(t, frag.Correlation)
	assert.InDelta(t, 1.0, frag.Correlation.Pearson, 1e-9)
	assert.Equal(t, "strong", frag.Correlation.Strength)
	assert.Equal(t, "positive", frag.Correlation.Direction)
	assert.Equal(t, []int{2018, 2019, 2020, 2021, 2022}, frag.Correlation.Years)
	assert.Len(t, frag.Citations, 2)
}

func TestCorrelationStrongNegative(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentCorrelation,
		Regions: []*taxonomy.Region{mustState(t, res, "Kerala")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Coconut")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	assert.InDelta(t, -1.0, frag.Correlation.Pearson, 1e-9)
	assert.Equal(t, "negative", frag.Correlation.Direction)
}

func TestCorrelationNoSharedYears(t *testing.T) {
	e, res := fixtureExecutor(t)
	// Punjab has production data but no rainfall coverage.
	frag := run(t, e, &query.Intent{
		Type:    query.IntentCorrelation,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Wheat")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	assert.False(t, frag.OK)
	assert.Equal(t, FailInsufficientSeries, frag.Failure)
}

func TestCorrelationRejectsUncoveredYearScope(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentCorrelation,
		Regions: []*taxonomy.Region{mustState(t, res, "Tamil Nadu")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Rice")},
		Years:   query.YearSpec{Kind: query.YearsExplicit, Years: []int{2050}},
	})

	// An uncovered explicit scope fails instead of answering over the
	// years the data happens to share.
	assert.False(t, frag.OK)
	assert.Equal(t, FailNoDataForScope, frag.Failure)
	assert.Contains(t, frag.Answer, "2050")
	assert.Contains(t, frag.Answer, "2018-2022")
}

func TestCorrelationZeroVariance(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentCorrelation,
		Regions: []*taxonomy.Region{mustState(t, res, "Kerala")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Banana")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	assert.False(t, frag.OK)
	assert.Equal(t, FailInsufficientSeries, frag.Failure)
	assert.Contains(t, frag.Answer, "no variation")
}

// ============================================================================
// POLICY
// ============================================================================

func TestPolicyArgument(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentPolicyArgument,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Rice"), mustCrop(t, res, "Wheat")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	require.True(t, frag.OK)
	require.NotNil(t, frag.Policy)
	assert.Equal(t, "Rice", frag.Policy.Promoted)
	assert.Equal(t, "Wheat", frag.Policy.Baseline)
	require.Len(t, frag.Policy.Arguments, 3)
	for _, arg := range frag.Policy.Arguments {
		assert.NotEmpty(t, arg.Evidence)
		assert.NotEmpty(t, arg.Citations)
	}
}

func TestPolicyArgumentMissingCrop(t *testing.T) {
	e, res := fixtureExecutor(t)
	frag := run(t, e, &query.Intent{
		Type:    query.IntentPolicyArgument,
		Regions: []*taxonomy.Region{mustState(t, res, "Punjab")},
		Crops:   []*taxonomy.Crop{mustCrop(t, res, "Turmeric"), mustCrop(t, res, "Wheat")},
		Years:   query.YearSpec{Kind: query.YearsAll},
	})

	assert.False(t, frag.OK)
	assert.Equal(t, FailNoDataForScope, frag.Failure)
	assert.Contains(t, frag.Answer, "Turmeric")
}

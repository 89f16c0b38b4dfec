package dataset

import (
	"sort"

	"github.com/agriq-org/agriq/taxonomy"
)

// ============================================================================
// HARMONIZED TABLE — Read-Only Query Surface
// ============================================================================
// Built once by the Store; immutable afterward, so every method here is
// safe for concurrent use without locking.
// ============================================================================

type prodKey struct {
	District string
	Year     int
	Crop     string
}

// Table is the harmonized dataset.
type Table struct {
	rainfall      map[string]map[int]float64 // state → year → annual mm
	production    map[prodKey]float64        // district-level tonnes
	districtState map[string]string          // canonical district → state
	rainYears     []int
	prodYears     []int
	stats         BuildStats
}

// Stats reports what the build did.
func (t *Table) Stats() BuildStats { return t.stats }

// Records materializes every harmonized row, rainfall first, in a
// deterministic order. Intended for export and tests, not hot paths.
func (t *Table) Records() []Record {
	var out []Record
	for state, years := range t.rainfall {
		for year, mm := range years {
			out = append(out, Record{Region: state, Year: year, Metric: MetricRainfallMM, Value: mm})
		}
	}
	for k, v := range t.production {
		out = append(out, Record{Region: k.District, Year: k.Year, Crop: k.Crop, Metric: MetricProductionTonnes, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Crop < b.Crop
	})
	return out
}

// Years returns the sorted years present for a metric.
func (t *Table) Years(metric MetricKind) []int {
	if metric == MetricRainfallMM {
		return t.rainYears
	}
	return t.prodYears
}

// LatestYear returns the most recent year with data for a metric.
func (t *Table) LatestYear(metric MetricKind) (int, bool) {
	years := t.Years(metric)
	if len(years) == 0 {
		return 0, false
	}
	return years[len(years)-1], true
}

// Rainfall returns the annual rainfall for a state and year.
func (t *Table) Rainfall(state string, year int) (float64, bool) {
	v, ok := t.rainfall[state][year]
	return v, ok
}

// RainfallSeries returns a state's full year → annual mm series.
func (t *Table) RainfallSeries(state string) map[int]float64 {
	out := make(map[int]float64, len(t.rainfall[state]))
	for y, v := range t.rainfall[state] {
		out[y] = v
	}
	return out
}

// Production returns the tonnes for one (district, year, crop) key.
func (t *Table) Production(district, crop string, year int) (float64, bool) {
	v, ok := t.production[prodKey{District: district, Year: year, Crop: crop}]
	return v, ok
}

// CropTotals sums production per crop within a region scope. A state
// scope aggregates all of its districts; years restricts to the given
// years (nil means all). Crops with no records in scope are absent from
// the map, never reported as zero.
func (t *Table) CropTotals(region *taxonomy.Region, years []int) map[string]float64 {
	yearSet := toYearSet(years)
	totals := make(map[string]float64)
	for k, v := range t.production {
		if !t.inScope(k.District, region) {
			continue
		}
		if yearSet != nil && !yearSet[k.Year] {
			continue
		}
		totals[k.Crop] += v
	}
	return totals
}

// DistrictProduction aggregates one crop's production per district of a
// state over the year scope. Districts with no records are absent.
func (t *Table) DistrictProduction(state, crop string, years []int) []DistrictValue {
	yearSet := toYearSet(years)
	totals := make(map[string]float64)
	for k, v := range t.production {
		if k.Crop != crop || t.districtState[k.District] != state {
			continue
		}
		if yearSet != nil && !yearSet[k.Year] {
			continue
		}
		totals[k.District] += v
	}
	out := make([]DistrictValue, 0, len(totals))
	for d, v := range totals {
		out = append(out, DistrictValue{District: d, Production: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].District < out[j].District })
	return out
}

// ProductionSeries returns the year → total tonnes series for a crop in
// a region scope (state scopes sum their districts).
func (t *Table) ProductionSeries(region *taxonomy.Region, crop string) map[int]float64 {
	out := make(map[int]float64)
	for k, v := range t.production {
		if k.Crop != crop || !t.inScope(k.District, region) {
			continue
		}
		out[k.Year] += v
	}
	return out
}

// ProductionYearsFor lists the sorted years with any record for a crop
// in a region scope. Used to name what IS available in failure reasons.
func (t *Table) ProductionYearsFor(region *taxonomy.Region, crop string) []int {
	series := t.ProductionSeries(region, crop)
	years := make([]int, 0, len(series))
	for y := range series {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (t *Table) inScope(district string, region *taxonomy.Region) bool {
	if region == nil {
		return true
	}
	if region.Kind == taxonomy.KindDistrict {
		return district == region.Name
	}
	return t.districtState[district] == region.Name
}

func toYearSet(years []int) map[int]bool {
	if len(years) == 0 {
		return nil
	}
	set := make(map[int]bool, len(years))
	for _, y := range years {
		set[y] = true
	}
	return set
}

package engine

import (
	"math"
	"sort"
)

// ============================================================================
// SERIES STATISTICS — Slope, Pearson, Classification
// ============================================================================
// Simple estimators over short annual series. Inputs arrive as
// year → value maps; everything here sorts by year first so results
// are deterministic.
// ============================================================================

// stableSlopeFraction is the flat band for trend classification: a
// fitted slope smaller than this fraction of the series mean per year
// is reported as "stable".
const stableSlopeFraction = 0.005

// Pearson strength thresholds on |r|.
const (
	weakBelow   = 0.3
	strongAbove = 0.7
)

func sortedYearsOf(series map[int]float64) []int {
	years := make([]int, 0, len(series))
	for y := range series {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// leastSquaresSlope fits value = a + b*year and returns b.
// Needs at least two points; callers guard for that.
func leastSquaresSlope(series map[int]float64) float64 {
	years := sortedYearsOf(series)
	n := float64(len(years))

	var sumX, sumY, sumXY, sumXX float64
	for _, y := range years {
		x := float64(y)
		v := series[y]
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// trendDirection classifies a fitted slope against the series mean.
// band is the stable fraction, usually stableSlopeFraction.
func trendDirection(slope, mean, band float64) string {
	flat := band * math.Abs(mean)
	switch {
	case math.Abs(slope) <= flat:
		return "stable"
	case slope > 0:
		return "increasing"
	default:
		return "decreasing"
	}
}

// pearson computes the correlation coefficient of the two series over
// their shared years. ok is false when fewer than two years are shared
// or either series has zero variance over them.
func pearson(a, b map[int]float64) (r float64, shared []int, ok bool) {
	for y := range a {
		if _, has := b[y]; has {
			shared = append(shared, y)
		}
	}
	sort.Ints(shared)
	if len(shared) < 2 {
		return 0, shared, false
	}

	n := float64(len(shared))
	var meanA, meanB float64
	for _, y := range shared {
		meanA += a[y]
		meanB += b[y]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for _, y := range shared {
		da := a[y] - meanA
		db := b[y] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, shared, false
	}
	return cov / math.Sqrt(varA*varB), shared, true
}

// correlationStrength buckets |r|.
func correlationStrength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs < weakBelow:
		return "weak"
	case abs < strongAbove:
		return "moderate"
	default:
		return "strong"
	}
}

func seriesMean(series map[int]float64, years []int) float64 {
	if len(years) == 0 {
		return 0
	}
	var sum float64
	for _, y := range years {
		sum += series[y]
	}
	return sum / float64(len(years))
}

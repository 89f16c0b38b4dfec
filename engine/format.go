package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// FORMATTERS — Numbers and Year Scopes for Prose Answers
// ============================================================================

// formatMM renders a rainfall figure.
func formatMM(v float64) string {
	return fmt.Sprintf("%.1f mm", v)
}

// formatTonnes renders a production figure with thousands grouping.
// Small magnitudes (slopes, mostly) keep one decimal.
func formatTonnes(v float64) string {
	if math.Abs(v) < 100 {
		return fmt.Sprintf("%.1f tonnes", v)
	}
	return groupThousands(math.Round(v)) + " tonnes"
}

func groupThousands(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out
}

// formatYears renders a year scope: "2022", "2018-2022" when the years
// are contiguous, a comma list otherwise, and "all available years"
// when the scope is unrestricted.
func formatYears(years []int) string {
	switch {
	case len(years) == 0:
		return "all available years"
	case len(years) == 1:
		return strconv.Itoa(years[0])
	}

	contiguous := true
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous {
		return fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
	}

	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

package taxonomy

import (
	"strings"
	"unicode"
)

// ============================================================================
// SIMILARITY — Deterministic Token-Overlap Matching
// ============================================================================
// Sørensen–Dice coefficient over normalized token sets. The threshold and
// the ambiguity rule live in the Resolver; this file is pure string math.
// ============================================================================

// Normalize lowercases, strips punctuation and collapses whitespace.
// "Tamil-Nadu " and "tamil nadu" normalize to the same key.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits a normalized string into its word set.
func Tokens(s string) []string {
	norm := Normalize(s)
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

// Similarity returns the Dice coefficient of the two token sets:
// 2·|A∩B| / (|A|+|B|), in [0,1]. Order and repetition are ignored.
func Similarity(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	overlap := 0
	seen := make(map[string]bool, len(tb))
	for _, t := range tb {
		if set[t] && !seen[t] {
			overlap++
			seen[t] = true
		}
	}
	return 2 * float64(overlap) / float64(len(uniq(ta))+len(uniq(tb)))
}

func uniq(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

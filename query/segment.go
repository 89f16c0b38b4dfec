package query

import (
	"regexp"
	"strings"
)

// ============================================================================
// SEGMENTATION — Splitting Multi-Part Questions
// ============================================================================
// Each segment is parsed independently and produces its own answer
// fragment, so a failure in one part never drags down the others.
//
// Boundaries, in order of confidence:
//   1. sentence punctuation (. ? ! ;)
//   2. the connectors "also" and "in parallel"
//   3. "and" immediately followed by a verb cue ("and compare", "and
//      list"). A bare "and" joining noun phrases ("Rice and Wheat",
//      "Tamil Nadu and Karnataka") is never a boundary.
// ============================================================================

var sentenceRe = regexp.MustCompile(`[.?!;]+`)

// verbCues are words that open a new request clause after "and".
var verbCues = map[string]bool{
	"compare":   true,
	"list":      true,
	"identify":  true,
	"analyze":   true,
	"analyse":   true,
	"correlate": true,
	"show":      true,
	"what":      true,
	"which":     true,
	"find":      true,
	"give":      true,
}

// Segment splits a free-text question into independently answerable
// sub-questions, preserving their order of appearance. Empty and
// whitespace-only pieces are dropped.
func Segment(question string) []string {
	var out []string
	for _, sentence := range sentenceRe.Split(question, -1) {
		out = append(out, splitClauses(sentence)...)
	}
	return out
}

func splitClauses(sentence string) []string {
	words := strings.Fields(sentence)

	var segs []string
	var cur []string
	flush := func() {
		// A trailing "and" or comma belongs to the boundary, not the clause.
		for len(cur) > 0 {
			last := normalizeWord(cur[len(cur)-1])
			if last != "and" && last != "then" && last != "" {
				break
			}
			cur = cur[:len(cur)-1]
		}
		if seg := strings.Trim(strings.Join(cur, " "), " ,:"); seg != "" {
			segs = append(segs, seg)
		}
		cur = nil
	}

	for i := 0; i < len(words); i++ {
		w := normalizeWord(words[i])

		if w == "also" {
			flush()
			continue
		}
		if w == "in" && i+1 < len(words) && normalizeWord(words[i+1]) == "parallel" {
			flush()
			i++
			continue
		}
		if w == "and" && i+1 < len(words) && verbCues[normalizeWord(words[i+1])] {
			flush()
			continue
		}
		cur = append(cur, words[i])
	}
	flush()
	return segs
}

// normalizeWord lowercases and strips surrounding punctuation so that
// "Also," and "also" compare equal.
func normalizeWord(w string) string {
	return strings.Trim(strings.ToLower(w), ",:()\"'")
}

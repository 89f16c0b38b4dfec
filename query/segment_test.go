package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentSentences(t *testing.T) {
	got := Segment("Compare average annual rainfall in Tamil Nadu and Karnataka. In parallel, list the top 3 crops produced in Punjab.")
	assert.Equal(t, []string{
		"Compare average annual rainfall in Tamil Nadu and Karnataka",
		"list the top 3 crops produced in Punjab",
	}, got)
}

func TestSegmentAndBeforeVerbCue(t *testing.T) {
	got := Segment("What is the average rainfall in Kerala and which district in Punjab has the highest Wheat production")
	assert.Equal(t, []string{
		"What is the average rainfall in Kerala",
		"which district in Punjab has the highest Wheat production",
	}, got)
}

func TestSegmentBareAndJoinsNounPhrases(t *testing.T) {
	// "and" between entity names is never a boundary.
	got := Segment("Compare average annual rainfall in Tamil Nadu and Karnataka")
	assert.Equal(t, []string{"Compare average annual rainfall in Tamil Nadu and Karnataka"}, got)

	got = Segment("Give arguments for promoting Maize over Rice and Wheat in Punjab")
	assert.Len(t, got, 1)
}

func TestSegmentAlso(t *testing.T) {
	got := Segment("Show rainfall in Kerala, and also identify the district with the highest production of Rice in Tamil Nadu")
	assert.Equal(t, []string{
		"Show rainfall in Kerala",
		"identify the district with the highest production of Rice in Tamil Nadu",
	}, got)
}

func TestSegmentDropsEmptyPieces(t *testing.T) {
	assert.Empty(t, Segment("   "))
	assert.Empty(t, Segment("?!"))
}

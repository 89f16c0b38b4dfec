package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Load()
	require.NoError(t, err)
	return reg
}

func TestLoadEmbeddedRegistry(t *testing.T) {
	reg := loadTestRegistry(t)

	assert.NotEmpty(t, reg.States())
	assert.NotEmpty(t, reg.Crops())
	assert.NotEmpty(t, reg.DistrictsOf("Tamil Nadu"))

	for _, d := range reg.DistrictsOf("Punjab") {
		assert.Equal(t, KindDistrict, d.Kind)
		assert.Equal(t, "Punjab", d.Parent)
	}
}

func TestResolveRegionExact(t *testing.T) {
	res := NewResolver(loadTestRegistry(t))

	for _, input := range []string{"Tamil Nadu", "tamil nadu", "TAMIL NADU", "tamilnadu", "Tamil-Nadu"} {
		reg, err := res.Region(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "Tamil Nadu", reg.Name)
		assert.Equal(t, KindState, reg.Kind)
	}
}

func TestResolveRegionAliases(t *testing.T) {
	res := NewResolver(loadTestRegistry(t))

	reg, err := res.Region("Orissa")
	require.NoError(t, err)
	assert.Equal(t, "Odisha", reg.Name)

	d, err := res.Region("Trichy")
	require.NoError(t, err)
	assert.Equal(t, "Tiruchirappalli", d.Name)
	assert.Equal(t, "Tamil Nadu", d.Parent)
}

func TestResolveRegionNotFound(t *testing.T) {
	res := NewResolver(loadTestRegistry(t))

	_, err := res.Region("Atlantis")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Atlantis", nf.Input)
}

func TestResolveDistrictParentConsistency(t *testing.T) {
	res := NewResolver(loadTestRegistry(t))

	punjab, err := res.State("Punjab")
	require.NoError(t, err)
	kerala, err := res.State("Kerala")
	require.NoError(t, err)

	// Ludhiana is in Punjab; binding it against Kerala must fail rather
	// than silently crossing state lines.
	_, err = res.District("Ludhiana", punjab)
	require.NoError(t, err)

	_, err = res.District("Ludhiana", kerala)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestResolveCrop(t *testing.T) {
	res := NewResolver(loadTestRegistry(t))

	c, err := res.Crop("paddy")
	require.NoError(t, err)
	assert.Equal(t, "Rice", c.Name)

	c, err = res.Crop("sugar cane")
	require.NoError(t, err)
	assert.Equal(t, "Sugarcane", c.Name)

	_, err = res.Crop("vibranium")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "crop", nf.Want)
}

func TestResolveCropSuggestions(t *testing.T) {
	res := NewResolver(loadTestRegistry(t))

	// "millet" brushes several millet aliases without a single clean
	// winner; when that lands as not-found, suggestions must surface.
	_, err := res.Crop("millet")
	var nf *NotFoundError
	if errors.As(err, &nf) {
		assert.NotEmpty(t, nf.Suggestions)
	}
}

func TestFuzzyAcceptsPartialTokenOverlap(t *testing.T) {
	res := NewResolver(loadTestRegistry(t), WithThreshold(0.6))

	// "Pradesh" alone overlaps several states equally and must be
	// rejected, never guessed.
	_, err := res.Region("Pradesh")
	require.Error(t, err)

	// A fuller mention resolves.
	reg, err := res.Region("the Andhra Pradesh region")
	if err == nil {
		assert.Equal(t, "Andhra Pradesh", reg.Name)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("Tamil Nadu", "tamil nadu"), 1e-9)
	assert.InDelta(t, 2.0/3.0, Similarity("West Bengal", "bengal"), 1e-9)
	assert.Zero(t, Similarity("", "Kerala"))
	assert.Zero(t, Similarity("Kerala", "Punjab"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "tamil nadu", Normalize("  Tamil--Nadu?! "))
	assert.Equal(t, "top 5 crops", Normalize("Top 5 crops"))
	assert.Equal(t, "", Normalize("  ?! "))
}

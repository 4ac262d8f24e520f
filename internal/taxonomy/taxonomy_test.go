package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionsComplete(t *testing.T) {
	for c := Unknown; c < numCategories; c++ {
		d := definitions[c]
		assert.NotEmpty(t, d.label, "category %d has no label", c)
		assert.NotEmpty(t, d.style.Name, "category %d has no style", c)
		assert.NotEmpty(t, d.style.Icon, "category %d has no icon", c)
		assert.NotEmpty(t, d.bucketTitle, "category %d has no bucket title", c)
	}
}

func TestCoarseLabels(t *testing.T) {
	assert.Equal(t, []string{"Greenwashing", "Genuine Sustainability", "Marketing Hype"}, CoarseLabels())
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, ok := ParseCategory(c.Label())
		require.True(t, ok)
		assert.Equal(t, c, got)
	}

	got, ok := ParseCategory("greenwashing")
	assert.False(t, ok, "lookup is exact, not case-insensitive")
	assert.Equal(t, Unknown, got)
}

func TestStyleFallback(t *testing.T) {
	assert.Equal(t, UnknownStyle(), StyleFor("Certification-Based Claim"))
	assert.Equal(t, UnknownStyle(), Category(42).Style())
	assert.Equal(t, "greenwashing", StyleFor("Greenwashing").Name)
	assert.Equal(t, "❓", UnknownStyle().Icon)
}

func TestIndicatorsBelongToOneBucket(t *testing.T) {
	seen := map[string]bool{}
	for _, label := range CoarseLabels() {
		seen[label] = true
	}

	perBucket := map[Category]int{}
	for _, ind := range Indicators() {
		require.False(t, seen[ind.Label], "duplicate label %q", ind.Label)
		seen[ind.Label] = true

		require.True(t, ind.Category.valid(), "indicator %q has no valid bucket", ind.Label)
		got, ok := BucketOf(ind.Label)
		require.True(t, ok)
		assert.Equal(t, ind.Category, got)
		perBucket[ind.Category]++
	}

	for _, c := range Categories() {
		assert.Positive(t, perBucket[c], "bucket %s is empty", c)
	}

	_, ok := BucketOf("Not an indicator")
	assert.False(t, ok)
}

func TestIndicatorLabelsMatchTable(t *testing.T) {
	labels := IndicatorLabels()
	require.Len(t, labels, len(Indicators()))
	for i, ind := range Indicators() {
		assert.Equal(t, ind.Label, labels[i])
	}
}

func TestExamples(t *testing.T) {
	require.NotEmpty(t, Examples())
	for _, ex := range Examples() {
		assert.NotEmpty(t, ex.Text)
		assert.True(t, ex.Expected.valid(), "example %q expects an unknown category", ex.Name)

		got, ok := ExampleByName(ex.Name)
		require.True(t, ok)
		assert.Equal(t, ex.Text, got.Text)
	}

	_, ok := ExampleByName("nope")
	assert.False(t, ok)
}

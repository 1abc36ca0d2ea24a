package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_EqualInputsYield100(t *testing.T) {
	t.Parallel()

	tags := []string{"fashion", "minimal"}
	words := []string{"style"}

	r := Calculate(tags, words, tags, words, DefaultHashtagWeight, DefaultKeywordWeight)
	assert.Equal(t, 100.0, r.SimilarityScore)
}

func TestCalculate_DisjointInputsYield0(t *testing.T) {
	t.Parallel()

	r := Calculate([]string{"a"}, []string{"b"}, []string{"c"}, []string{"d"}, DefaultHashtagWeight, DefaultKeywordWeight)
	assert.Equal(t, 0.0, r.SimilarityScore)
}

func TestCalculate_Symmetric(t *testing.T) {
	t.Parallel()

	a := Calculate([]string{"a", "b"}, nil, []string{"b", "c"}, nil, DefaultHashtagWeight, DefaultKeywordWeight)
	b := Calculate([]string{"b", "c"}, nil, []string{"a", "b"}, nil, DefaultHashtagWeight, DefaultKeywordWeight)

	assert.Equal(t, a.SimilarityScore, b.SimilarityScore)
}

func TestCalculate_Bounds(t *testing.T) {
	t.Parallel()

	r := Calculate([]string{"fashion", "minimal", "eco"}, nil, []string{"fashion"}, nil, DefaultHashtagWeight, DefaultKeywordWeight)
	assert.GreaterOrEqual(t, r.SimilarityScore, 0.0)
	assert.LessOrEqual(t, r.SimilarityScore, 100.0)
}

func TestTFIDF_DefaultIDF(t *testing.T) {
	t.Parallel()

	got := TFIDF([]string{"a", "a"}, []string{"a"}, nil)
	assert.Equal(t, 50.0, got)
}

func TestCaptionToneSimilarity_NoDataIsNeutral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50.0, CaptionToneSimilarity(nil, []string{"hi"}))
}

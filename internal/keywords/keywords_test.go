package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTFIDF_TopTerms(t *testing.T) {
	docs := []string{
		"The dragon guards the dragon gold in the mountain.",
		"A wizard and a hobbit travel to the mountain.",
		"Love letters in Paris, 1920.",
	}
	e := NewTFIDF()
	require.NoError(t, e.Fit(docs))

	top := e.TopTerms(0, 2)
	assert.Equal(t, []string{"dragon", "gold"}, top)

	// stop words and digits never become terms
	for _, term := range e.TopTerms(2, 10) {
		assert.NotEqual(t, "in", term)
		assert.NotContains(t, term, "1")
	}
	assert.Zero(t, e.Weight(0, "the"))
	assert.Greater(t, e.Weight(1, "wizard"), e.Weight(1, "mountain"), "rarer terms weigh more")
}

func TestTFIDF_EmptyDocumentHasNoTerms(t *testing.T) {
	e := NewTFIDF()
	require.NoError(t, e.Fit([]string{"", "castles and knights"}))
	assert.Empty(t, e.TopTerms(0, 5))
	assert.Len(t, e.TopTerms(1, 5), 2)
	assert.Nil(t, e.TopTerms(5, 5))
}

func TestTFIDF_KeepsOnlyWholeASCIIWords(t *testing.T) {
	e := NewTFIDF()
	require.NoError(t, e.Fit([]string{"covid19 café résumé naïve 1920s", "Dragons of_old dragons"}))

	assert.Empty(t, e.TopTerms(0, 10))
	for _, fragment := range []string{"covid", "caf", "sum", "na", "ve", "s", "of", "old"} {
		assert.Zero(t, e.Weight(0, fragment), fragment)
		assert.Zero(t, e.Weight(1, fragment), fragment)
	}
	assert.Equal(t, []string{"dragons"}, e.TopTerms(1, 10))
}

func TestTFIDF_FitErrors(t *testing.T) {
	assert.Error(t, NewTFIDF().Fit(nil))
	assert.Error(t, NewTFIDF().Fit([]string{"the and of", "123"}))
}

func TestLoadSecondary_ByPosition(t *testing.T) {
	sec, err := LoadSecondary(strings.NewReader("title,keywords1\nA,dragon  quest\nB,\nC,romance paris\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dragon", "quest"}, sec[0])
	_, ok := sec[1]
	assert.False(t, ok)
	assert.Equal(t, []string{"romance", "paris"}, sec[2])
}

func TestLoadSecondary_ByIDColumn(t *testing.T) {
	sec, err := LoadSecondary(strings.NewReader("id,keywords1\n42,space\n7,sea\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"space"}, sec[42])
	assert.Equal(t, []string{"sea"}, sec[7])
}

func TestLoadSecondary_Errors(t *testing.T) {
	_, err := LoadSecondary(strings.NewReader("title,words\nA,b\n"))
	assert.Error(t, err)
	_, err = LoadSecondary(strings.NewReader("id,keywords1\nx,b\n"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Merge([]string{"a", "b"}, []string{"b", "c", "a"}))
	assert.Empty(t, Merge(nil, nil))
}

func TestExtractor_JoinsSecondaryByID(t *testing.T) {
	x := Extractor{TopN: 1, Secondary: Secondary{30: {"ocean"}, 99: {"ignored"}}}
	got, err := x.Extract([]int{10, 30}, []string{"pirates sail", ""})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 1)
	assert.Equal(t, []string{"ocean"}, got[1], "empty description still receives secondary keywords")

	_, err = x.Extract([]int{1}, nil)
	assert.Error(t, err)
}

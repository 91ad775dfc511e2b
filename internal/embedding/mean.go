package embedding

import (
	"strings"

	"bookchat/internal/domain"
)

// MeanEmbedder averages the word vectors of a keyword set.
// Unknown words count as zero vectors, so they pull the mean toward the origin
// instead of being skipped.
type MeanEmbedder struct {
	words domain.WordVectors
}

// NewMeanEmbedder wraps a word-vector lookup.
func NewMeanEmbedder(words domain.WordVectors) *MeanEmbedder {
	return &MeanEmbedder{words: words}
}

// Dimension returns the vector size of the underlying lookup.
func (e *MeanEmbedder) Dimension() int { return e.words.Dimension() }

// Embed returns the mean vector of keywords. An empty set yields the zero vector.
func (e *MeanEmbedder) Embed(keywords []string) []float64 {
	dim := e.words.Dimension()
	out := make([]float64, dim)
	if len(keywords) == 0 {
		return out
	}
	for _, kw := range keywords {
		if !e.words.HasWord(kw) {
			continue
		}
		for i, x := range e.words.VectorOf(kw) {
			out[i] += x
		}
	}
	n := float64(len(keywords))
	for i := range out {
		out[i] /= n
	}
	return out
}

// Tokenize splits free text into lowercase whitespace-separated words, matching
// the case of extracted book keywords and the vocabulary.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

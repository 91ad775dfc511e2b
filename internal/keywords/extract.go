package keywords

import (
	"errors"
	"fmt"
)

// Extractor combines TF-IDF terms with the secondary keyword source.
type Extractor struct {
	TopN      int
	Secondary Secondary
}

// Extract returns one keyword list per book. ids and descriptions are parallel slices
// in corpus order; secondary keywords are joined on the id, never on position.
func (x Extractor) Extract(ids []int, descriptions []string) ([][]string, error) {
	if len(ids) != len(descriptions) {
		return nil, fmt.Errorf("ids and descriptions length mismatch: %d != %d", len(ids), len(descriptions))
	}
	if len(ids) == 0 {
		return nil, errors.New("no books to extract keywords from")
	}
	tfidf := NewTFIDF()
	if err := tfidf.Fit(descriptions); err != nil {
		return nil, err
	}
	out := make([][]string, len(ids))
	for i, id := range ids {
		out[i] = Merge(tfidf.TopTerms(i, x.TopN), x.Secondary[id])
	}
	return out, nil
}

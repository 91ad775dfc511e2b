// Package keywords derives a keyword set per book from its description and a
// secondary precomputed keyword source.
package keywords

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// TFIDF ranks description terms by term frequency times smoothed inverse document frequency.
// Rows are L2-normalized, so weights are comparable within a row.
type TFIDF struct {
	vocabulary   map[string]int
	idf          []float64
	rows         []map[int]float64
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewTFIDF creates an unfitted extractor using the English stop word list.
func NewTFIDF() *TFIDF {
	return &TFIDF{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`),
		stopwords:    defaultStopwords(),
	}
}

// Fit builds the vocabulary and per-document weights from descriptions, one per book in corpus order.
func (e *TFIDF) Fit(descriptions []string) error {
	if len(descriptions) == 0 {
		return errors.New("empty corpus for TF-IDF fit")
	}
	docs := make([][]string, len(descriptions))
	df := make(map[string]int)
	for i, text := range descriptions {
		tokens := e.tokenize(text)
		docs[i] = tokens
		seen := make(map[string]struct{})
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in descriptions")
	}
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(descriptions))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	e.rows = make([]map[int]float64, len(docs))
	for i, tokens := range docs {
		row := make(map[int]float64)
		for _, tok := range tokens {
			row[e.vocabulary[tok]]++
		}
		norm := 0.0
		for idx, count := range row {
			w := count * e.idf[idx]
			row[idx] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for idx := range row {
				row[idx] /= norm
			}
		}
		e.rows[i] = row
	}
	e.prepared = true
	return nil
}

// Weight returns the normalized weight of term in document row, or 0.
func (e *TFIDF) Weight(row int, term string) float64 {
	if !e.prepared || row < 0 || row >= len(e.rows) {
		return 0
	}
	idx, ok := e.vocabulary[term]
	if !ok {
		return 0
	}
	return e.rows[row][idx]
}

// TopTerms returns the n highest-weighted terms of document row.
// Ties are broken alphabetically. A document without terms yields nil.
func (e *TFIDF) TopTerms(row, n int) []string {
	if !e.prepared || row < 0 || row >= len(e.rows) || n <= 0 {
		return nil
	}
	type pair struct {
		term   string
		weight float64
	}
	terms := make([]string, len(e.vocabulary))
	for term, idx := range e.vocabulary {
		terms[idx] = term
	}
	pairs := make([]pair, 0, len(e.rows[row]))
	for idx, w := range e.rows[row] {
		pairs = append(pairs, pair{terms[idx], w})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].weight != pairs[j].weight {
			return pairs[i].weight > pairs[j].weight
		}
		return pairs[i].term < pairs[j].term
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pairs[i].term
	}
	return out
}

// tokenize keeps whole words made only of ASCII letters. Words are runs of
// Unicode letters, digits and underscores, so "covid19" and "café" are
// dropped instead of being cut into fragments.
func (e *TFIDF) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if !asciiLetters(t) {
			continue
		}
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func asciiLetters(word string) bool {
	for i := 0; i < len(word); i++ {
		if c := word[i]; c < 'a' || c > 'z' {
			return false
		}
	}
	return word != ""
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "about", "above", "across", "after", "afterwards", "again", "against", "all", "almost", "alone", "along",
		"already", "also", "although", "always", "am", "among", "amongst", "amoungst", "amount", "an", "and", "another",
		"any", "anyhow", "anyone", "anything", "anyway", "anywhere", "are", "around", "as", "at", "back", "be", "became",
		"because", "become", "becomes", "becoming", "been", "before", "beforehand", "behind", "being", "below", "beside",
		"besides", "between", "beyond", "bill", "both", "bottom", "but", "by", "call", "can", "cannot", "cant", "co", "con",
		"could", "couldnt", "cry", "de", "describe", "detail", "do", "done", "down", "due", "during", "each", "eg", "eight",
		"either", "eleven", "else", "elsewhere", "empty", "enough", "etc", "even", "ever", "every", "everyone", "everything",
		"everywhere", "except", "few", "fifteen", "fifty", "fill", "find", "fire", "first", "five", "for", "former",
		"formerly", "forty", "found", "four", "from", "front", "full", "further", "get", "give", "go", "had", "has", "hasnt",
		"have", "he", "hence", "her", "here", "hereafter", "hereby", "herein", "hereupon", "hers", "herself", "him",
		"himself", "his", "how", "however", "hundred", "i", "ie", "if", "in", "inc", "indeed", "interest", "into", "is", "it",
		"its", "itself", "keep", "last", "latter", "latterly", "least", "less", "ltd", "made", "many", "may", "me",
		"meanwhile", "might", "mill", "mine", "more", "moreover", "most", "mostly", "move", "much", "must", "my", "myself",
		"name", "namely", "neither", "never", "nevertheless", "next", "nine", "no", "nobody", "none", "noone", "nor", "not",
		"nothing", "now", "nowhere", "of", "off", "often", "on", "once", "one", "only", "onto", "or", "other", "others",
		"otherwise", "our", "ours", "ourselves", "out", "over", "own", "part", "per", "perhaps", "please", "put", "rather",
		"re", "same", "see", "seem", "seemed", "seeming", "seems", "serious", "several", "she", "should", "show", "side",
		"since", "sincere", "six", "sixty", "so", "some", "somehow", "someone", "something", "sometime", "sometimes",
		"somewhere", "still", "such", "system", "take", "ten", "than", "that", "the", "their", "them", "themselves", "then",
		"thence", "there", "thereafter", "thereby", "therefore", "therein", "thereupon", "these", "they", "thick", "thin",
		"third", "this", "those", "though", "three", "through", "throughout", "thru", "thus", "to", "together", "too", "top",
		"toward", "towards", "twelve", "twenty", "two", "un", "under", "until", "up", "upon", "us", "very", "via", "was",
		"we", "well", "were", "what", "whatever", "when", "whence", "whenever", "where", "whereafter", "whereas", "whereby",
		"wherein", "whereupon", "wherever", "whether", "which", "while", "whither", "who", "whoever", "whole", "whom",
		"whose", "why", "will", "with", "within", "without", "would", "yet", "you", "your", "yours", "yourself", "yourselves",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

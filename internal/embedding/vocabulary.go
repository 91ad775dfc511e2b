// Package embedding maps keyword sets to fixed-length vectors using pretrained word vectors.
package embedding

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Vocabulary is an in-memory word-vector table. Read-only after load.
type Vocabulary struct {
	dimension int
	vectors   map[string][]float64
}

// NewVocabulary builds a vocabulary from a map. Every vector must have the same length.
func NewVocabulary(vectors map[string][]float64) (*Vocabulary, error) {
	dim := -1
	for w, v := range vectors {
		if dim < 0 {
			dim = len(v)
		}
		if len(v) != dim || dim == 0 {
			return nil, fmt.Errorf("word %q has dimension %d, want %d", w, len(v), dim)
		}
	}
	if dim < 0 {
		return nil, errors.New("empty vocabulary")
	}
	return &Vocabulary{dimension: dim, vectors: vectors}, nil
}

// LoadGloVeFile reads a GloVe text file (no header) from path.
func LoadGloVeFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadGloVe(f)
}

// LoadGloVe parses lines of the form "word v1 v2 ... vD".
// The first line fixes D; any later line with a different width is an error.
func LoadGloVe(r io.Reader) (*Vocabulary, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	v := &Vocabulary{dimension: -1, vectors: make(map[string][]float64)}
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: no vector values", line)
		}
		dim := len(fields) - 1
		if v.dimension < 0 {
			v.dimension = dim
		} else if dim != v.dimension {
			return nil, fmt.Errorf("line %d: dimension %d, want %d", line, dim, v.dimension)
		}
		vec := make([]float64, dim)
		for i, s := range fields[1:] {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vec[i] = f
		}
		v.vectors[fields[0]] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if v.dimension < 0 {
		return nil, errors.New("empty vocabulary")
	}
	return v, nil
}

// HasWord reports whether token has a vector.
func (v *Vocabulary) HasWord(token string) bool {
	_, ok := v.vectors[token]
	return ok
}

// VectorOf returns the vector for token, or nil. Callers must not modify it.
func (v *Vocabulary) VectorOf(token string) []float64 { return v.vectors[token] }

// Dimension returns D.
func (v *Vocabulary) Dimension() int { return v.dimension }

// Size returns the number of words.
func (v *Vocabulary) Size() int { return len(v.vectors) }

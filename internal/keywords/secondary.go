package keywords

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Secondary holds precomputed keywords keyed by book ID.
type Secondary map[int][]string

// LoadSecondaryFile reads the secondary keyword CSV at path.
func LoadSecondaryFile(path string) (Secondary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSecondary(f)
}

// LoadSecondary parses a CSV with a keywords1 column of space-separated words.
// Rows are keyed by the id column when present, otherwise by their data row
// position, which matches the row position of the books file.
func LoadSecondary(r io.Reader) (Secondary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Secondary{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	kwCol, idCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "keywords1":
			kwCol = i
		case "id":
			idCol = i
		}
	}
	if kwCol < 0 {
		return nil, errors.New("keywords csv missing column \"keywords1\"")
	}

	out := make(Secondary)
	for pos := 0; ; pos++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", pos, err)
		}
		id := pos
		if idCol >= 0 && idCol < len(rec) {
			if id, err = strconv.Atoi(strings.TrimSpace(rec[idCol])); err != nil {
				return nil, fmt.Errorf("row %d id: %w", pos, err)
			}
		}
		if kwCol >= len(rec) {
			continue
		}
		if words := strings.Fields(rec[kwCol]); len(words) > 0 {
			out[id] = words
		}
	}
	return out, nil
}

// Merge returns the deduplicated union of the keyword lists, in first-seen order.
func Merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, l := range lists {
		for _, w := range l {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

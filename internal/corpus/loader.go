package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RawRow is one line of the books CSV before normalization.
// Index is the zero-based data row position and becomes the book ID.
type RawRow struct {
	Index          int
	Title          string
	Author         string
	Rating         float64
	NumRatings     int
	Description    string
	HasDescription bool
	Language       string
	Genres         []string
}

var requiredColumns = []string{"title", "author", "rating", "numRatings", "description", "language", "genres"}

// LoadFile reads the books CSV at path.
func LoadFile(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load parses a books CSV. The header must contain every required column; extra columns are ignored.
func Load(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("books csv is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("books csv missing column %q", c)
		}
	}

	var rows []RawRow
	for idx := 0; ; idx++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx, err)
		}
		field := func(name string) string {
			i := cols[name]
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		row := RawRow{
			Index:    idx,
			Title:    field("title"),
			Author:   field("author"),
			Language: field("language"),
		}
		row.Description = field("description")
		row.HasDescription = strings.TrimSpace(row.Description) != ""
		if row.Rating, err = parseFloat(field("rating")); err != nil {
			return nil, fmt.Errorf("row %d rating: %w", idx, err)
		}
		if row.NumRatings, err = parseInt(field("numRatings")); err != nil {
			return nil, fmt.Errorf("row %d numRatings: %w", idx, err)
		}
		if row.Genres, err = ParseGenres(field("genres")); err != nil {
			return nil, fmt.Errorf("row %d genres: %w", idx, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseGenres decodes a serialized list literal such as ['Fantasy', "Children's"].
// An empty cell yields no genres.
func ParseGenres(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a list literal: %q", s)
	}
	body := s[1 : len(s)-1]
	var out []string
	i := 0
	for i < len(body) {
		c := body[i]
		switch {
		case c == ' ' || c == ',' || c == '\t':
			i++
		case c == '\'' || c == '"':
			quote := c
			var b strings.Builder
			i++
			closed := false
			for i < len(body) {
				ch := body[i]
				if ch == '\\' && i+1 < len(body) {
					b.WriteByte(body[i+1])
					i += 2
					continue
				}
				if ch == quote {
					closed = true
					i++
					break
				}
				b.WriteByte(ch)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated string in %q", s)
			}
			out = append(out, b.String())
		default:
			return nil, fmt.Errorf("unexpected %q in %q", c, s)
		}
	}
	return out, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// some exports write counts as floats ("1234.0")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

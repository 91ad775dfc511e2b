// Package corpus turns the raw book snapshot into the immutable, filterable catalog.
package corpus

import (
	"sort"
	"strings"

	"bookchat/internal/domain"
)

// Options controls how raw rows are cleaned.
type Options struct {
	Language            string
	MinDescriptionWords int
}

// Normalize applies the corpus cleaning rules in order: dedup by title (first wins),
// language filter, minimum description length, drop missing descriptions.
// Authors and genres are lowercased and RatingTotal is computed.
func Normalize(rows []RawRow, opts Options) []domain.BookRecord {
	seen := make(map[string]struct{}, len(rows))
	out := make([]domain.BookRecord, 0, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.Title]; dup {
			continue
		}
		seen[r.Title] = struct{}{}

		if opts.Language != "" && r.Language != opts.Language {
			continue
		}
		if !r.HasDescription || len(strings.Fields(r.Description)) < opts.MinDescriptionWords {
			continue
		}
		genres := make([]string, len(r.Genres))
		for i, g := range r.Genres {
			genres[i] = strings.ToLower(g)
		}
		out = append(out, domain.BookRecord{
			ID:          r.Index,
			Title:       r.Title,
			Author:      strings.ToLower(r.Author),
			Description: r.Description,
			Language:    r.Language,
			Genres:      genres,
			Rating:      r.Rating,
			NumRatings:  r.NumRatings,
			RatingTotal: r.Rating * float64(r.NumRatings),
		})
	}
	return out
}

// Corpus is the read-only book catalog. It is safe for concurrent use once built.
type Corpus struct {
	books []domain.BookRecord
	byID  map[int]int
}

// New wraps books in a Corpus. The slice must not be modified afterwards.
func New(books []domain.BookRecord) *Corpus {
	byID := make(map[int]int, len(books))
	for i, b := range books {
		byID[b.ID] = i
	}
	return &Corpus{books: books, byID: byID}
}

// Len returns the number of books.
func (c *Corpus) Len() int { return len(c.books) }

// Books returns the books in corpus order.
func (c *Corpus) Books() []domain.BookRecord { return c.books }

// Book looks a record up by its stable ID.
func (c *Corpus) Book(id int) (domain.BookRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.BookRecord{}, false
	}
	return c.books[i], true
}

// FilterByGenres returns up to limit books carrying every requested genre,
// best RatingTotal first. Matching is exact and case-insensitive per genre.
func (c *Corpus) FilterByGenres(genres []string, limit int) []domain.CandidateEntry {
	want := make([]string, 0, len(genres))
	for _, g := range genres {
		want = append(want, strings.ToLower(strings.TrimSpace(g)))
	}
	return c.top(func(b *domain.BookRecord) bool { return MatchGenres(b.Genres, want) }, limit)
}

// FilterByAuthor returns up to limit books whose author contains the substring.
func (c *Corpus) FilterByAuthor(author string, limit int) []domain.CandidateEntry {
	needle := strings.ToLower(author)
	return c.top(func(b *domain.BookRecord) bool { return strings.Contains(b.Author, needle) }, limit)
}

// MatchGenres reports whether every wanted genre is a member of have.
func MatchGenres(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.ToLower(h) == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (c *Corpus) top(match func(*domain.BookRecord) bool, limit int) []domain.CandidateEntry {
	var hits []*domain.BookRecord
	for i := range c.books {
		if match(&c.books[i]) {
			hits = append(hits, &c.books[i])
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].RatingTotal > hits[j].RatingTotal })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.CandidateEntry, len(hits))
	for i, b := range hits {
		out[i] = domain.CandidateEntry{ID: b.ID, Title: b.Title, Author: b.Author}
	}
	return out
}

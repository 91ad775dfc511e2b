package domain

import "context"

// BookRecord is a single cleaned book from the corpus snapshot.
// ID is the row position in the source file and never changes after load.
type BookRecord struct {
	ID          int
	Title       string
	Author      string
	Description string
	Language    string
	Genres      []string
	Rating      float64
	NumRatings  int
	RatingTotal float64
	Keywords    []string
	Vector      []float64
}

// CandidateEntry is the session-side snapshot of a book offered for selection.
type CandidateEntry struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Neighbor is one hit of a nearest-neighbor query.
type Neighbor struct {
	ID       int
	Distance float64
}

// Recommendation is a book suggested to the user.
type Recommendation struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Genres []string `json:"genres"`
}

// Selection is what recommendations are computed from: a corpus book when
// HasBook is set, free-text keywords otherwise.
type Selection struct {
	BookID   int    `json:"book_id,omitempty"`
	HasBook  bool   `json:"has_book"`
	Keywords string `json:"keywords,omitempty"`
}

// WordVectors is a pretrained word-embedding lookup.
type WordVectors interface {
	HasWord(token string) bool
	VectorOf(token string) []float64
	Dimension() int
}

// Embedder maps a keyword set to a fixed-length vector.
type Embedder interface {
	Dimension() int
	Embed(keywords []string) []float64
}

// VectorIndex answers k-nearest-neighbor queries over the corpus vectors.
type VectorIndex interface {
	Dimension() int
	Query(vector []float64, k int) ([]Neighbor, error)
}

// Catalog is the read-only view of the corpus the dialogue filters over.
type Catalog interface {
	Book(id int) (BookRecord, bool)
	FilterByGenres(genres []string, limit int) []CandidateEntry
	FilterByAuthor(author string, limit int) []CandidateEntry
}

// Recommender produces recommendations for a selected book or free-text keywords.
type Recommender interface {
	Recommend(ctx context.Context, sel Selection) ([]Recommendation, error)
}

// Package recommend retrieves books similar to a selected book or to free-text keywords.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"bookchat/internal/domain"
	"bookchat/internal/embedding"
)

// Config controls neighbor retrieval.
type Config struct {
	// Neighbors is how many hits are requested from the index (query point included).
	Neighbors int
	// Results is how many recommendations are returned.
	Results int
	// DropFirstKeywordMatch discards the nearest hit of keyword queries as well,
	// even though a keyword vector never matches itself.
	DropFirstKeywordMatch bool
}

// DefaultConfig returns 6 neighbors and 5 results.
func DefaultConfig() Config {
	return Config{Neighbors: 6, Results: 5}
}

// FailureError reports that a recommendation could not be produced.
type FailureError struct {
	Query string
	Err   error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("recommendation for %s failed: %v", e.Query, e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

// ErrUnknownBook is the cause used when a book id is not in the corpus.
var ErrUnknownBook = errors.New("unknown book id")

// BookSource resolves stable book ids.
type BookSource interface {
	Book(id int) (domain.BookRecord, bool)
}

// Engine combines the embedder and the vector index. It holds no mutable state.
type Engine struct {
	books    BookSource
	embedder domain.Embedder
	index    domain.VectorIndex
	config   Config
	logger   zerolog.Logger
}

// NewEngine wires an engine. Zero config values fall back to DefaultConfig.
func NewEngine(books BookSource, embedder domain.Embedder, index domain.VectorIndex, cfg Config, logger zerolog.Logger) *Engine {
	def := DefaultConfig()
	if cfg.Results <= 0 {
		cfg.Results = def.Results
	}
	if cfg.Neighbors <= cfg.Results {
		cfg.Neighbors = cfg.Results + 1
	}
	return &Engine{
		books:    books,
		embedder: embedder,
		index:    index,
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}
}

// RecommendBook returns books nearest to the given book, excluding the book itself.
func (e *Engine) RecommendBook(ctx context.Context, id int) (recs []domain.Recommendation, err error) {
	query := fmt.Sprintf("book %d", id)
	defer e.recoverFailure(query, &err)

	if err := ctx.Err(); err != nil {
		return nil, &FailureError{Query: query, Err: err}
	}
	book, ok := e.books.Book(id)
	if !ok {
		return nil, &FailureError{Query: query, Err: ErrUnknownBook}
	}
	hits, err := e.index.Query(book.Vector, e.config.Neighbors)
	if err != nil {
		return nil, &FailureError{Query: query, Err: err}
	}
	hits = excludeSelf(hits, id)
	recs = e.resolve(hits)
	e.logger.Debug().Int("book_id", id).Int("results", len(recs)).Msg("book recommendation")
	return recs, nil
}

// RecommendKeywords embeds whitespace-separated keywords and returns the nearest books.
func (e *Engine) RecommendKeywords(ctx context.Context, text string) (recs []domain.Recommendation, err error) {
	query := fmt.Sprintf("keywords %q", text)
	defer e.recoverFailure(query, &err)

	if err := ctx.Err(); err != nil {
		return nil, &FailureError{Query: query, Err: err}
	}
	vec := e.embedder.Embed(embedding.Tokenize(text))
	hits, err := e.index.Query(vec, e.config.Neighbors)
	if err != nil {
		return nil, &FailureError{Query: query, Err: err}
	}
	if e.config.DropFirstKeywordMatch && len(hits) > 0 {
		hits = hits[1:]
	}
	recs = e.resolve(hits)
	e.logger.Debug().Str("keywords", text).Int("results", len(recs)).Msg("keyword recommendation")
	return recs, nil
}

// Recommend answers a dialogue selection: the chosen book when HasBook is set,
// the keyword text otherwise.
func (e *Engine) Recommend(ctx context.Context, sel domain.Selection) ([]domain.Recommendation, error) {
	if sel.HasBook {
		return e.RecommendBook(ctx, sel.BookID)
	}
	return e.RecommendKeywords(ctx, sel.Keywords)
}

// excludeSelf drops the query book wherever it ranks; if it is absent
// (an identical vector outranked it past k), the first hit is dropped instead.
func excludeSelf(hits []domain.Neighbor, id int) []domain.Neighbor {
	for i, h := range hits {
		if h.ID == id {
			out := make([]domain.Neighbor, 0, len(hits)-1)
			out = append(out, hits[:i]...)
			return append(out, hits[i+1:]...)
		}
	}
	if len(hits) > 0 {
		return hits[1:]
	}
	return hits
}

func (e *Engine) resolve(hits []domain.Neighbor) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, e.config.Results)
	for _, h := range hits {
		if len(out) == e.config.Results {
			break
		}
		b, ok := e.books.Book(h.ID)
		if !ok {
			continue
		}
		out = append(out, domain.Recommendation{ID: b.ID, Title: b.Title, Author: b.Author, Genres: b.Genres})
	}
	return out
}

func (e *Engine) recoverFailure(query string, err *error) {
	if r := recover(); r != nil {
		e.logger.Error().Str("query", query).Interface("panic", r).Msg("recommendation panicked")
		*err = &FailureError{Query: query, Err: fmt.Errorf("panic: %v", r)}
	}
}

// Package service assembles the read-only recommendation catalog at startup.
package service

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"bookchat/internal/chat"
	"bookchat/internal/config"
	"bookchat/internal/corpus"
	"bookchat/internal/domain"
	"bookchat/internal/embedding"
	"bookchat/internal/keywords"
	"bookchat/internal/recommend"
	"bookchat/internal/vectorindex"
)

// Build stages reported in BuildError.
const (
	StageLoadBooks    = "load_books"
	StageNormalize    = "normalize"
	StageLoadKeywords = "load_keywords"
	StageLoadVectors  = "load_vectors"
	StageKeywords     = "keywords"
	StageIndex        = "index"
)

// BuildError aborts startup: the catalog could not be assembled.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("catalog build failed at %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ErrEmptyCorpus is returned when no book survives normalization.
var ErrEmptyCorpus = errors.New("no books left after normalization")

// Options are the inputs of a build.
type Options struct {
	BooksPath      string
	KeywordsPath   string
	EmbeddingsPath string
	Corpus         corpus.Options
	TopN           int
	Recommend      recommend.Config
}

// OptionsFromConfig maps the application config onto build options.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	return Options{
		BooksPath:      cfg.Corpus.BooksPath,
		KeywordsPath:   cfg.Corpus.KeywordsPath,
		EmbeddingsPath: cfg.Embeddings.Path,
		Corpus: corpus.Options{
			Language:            cfg.Corpus.Language,
			MinDescriptionWords: cfg.Corpus.MinDescriptionWords,
		},
		TopN: cfg.Keywords.TopN,
		Recommend: recommend.Config{
			Neighbors:             cfg.Recommend.Neighbors,
			Results:               cfg.Recommend.Results,
			DropFirstKeywordMatch: cfg.Recommend.DropFirstKeywordMatch,
		},
	}
}

// Catalog is everything the dialogue reads. It is immutable once built.
type Catalog struct {
	Corpus     *corpus.Corpus
	Vocabulary *embedding.Vocabulary
	Index      *vectorindex.Index
	Engine     *recommend.Engine
	logger     zerolog.Logger
}

// Build loads the files named in opts and assembles the catalog.
// A missing secondary keyword file is tolerated; every other failure is a *BuildError.
func Build(opts Options, logger zerolog.Logger) (*Catalog, error) {
	log := logger.With().Str("component", "service").Logger()
	start := time.Now()

	rows, err := corpus.LoadFile(opts.BooksPath)
	if err != nil {
		return nil, &BuildError{Stage: StageLoadBooks, Err: err}
	}
	log.Info().Str("path", opts.BooksPath).Int("rows", len(rows)).Msg("books loaded")

	var secondary keywords.Secondary
	if opts.KeywordsPath != "" {
		secondary, err = keywords.LoadSecondaryFile(opts.KeywordsPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("path", opts.KeywordsPath).Msg("secondary keyword file missing; using TF-IDF terms only")
			secondary = nil
		case err != nil:
			return nil, &BuildError{Stage: StageLoadKeywords, Err: err}
		default:
			log.Info().Str("path", opts.KeywordsPath).Int("books", len(secondary)).Msg("secondary keywords loaded")
		}
	}

	words, err := embedding.LoadGloVeFile(opts.EmbeddingsPath)
	if err != nil {
		return nil, &BuildError{Stage: StageLoadVectors, Err: err}
	}
	log.Info().Str("path", opts.EmbeddingsPath).Int("words", words.Size()).Int("dimension", words.Dimension()).Msg("word vectors loaded")

	cat, err := BuildFrom(rows, secondary, words, opts, logger)
	if err != nil {
		return nil, err
	}
	log.Info().Int("books", cat.Corpus.Len()).Dur("elapsed", time.Since(start)).Msg("catalog ready")
	return cat, nil
}

// BuildFrom assembles the catalog from already loaded inputs.
func BuildFrom(rows []corpus.RawRow, secondary keywords.Secondary, words *embedding.Vocabulary, opts Options, logger zerolog.Logger) (*Catalog, error) {
	books := corpus.Normalize(rows, opts.Corpus)
	if len(books) == 0 {
		return nil, &BuildError{Stage: StageNormalize, Err: ErrEmptyCorpus}
	}

	ids := make([]int, len(books))
	descriptions := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
		descriptions[i] = b.Description
	}
	extractor := keywords.Extractor{TopN: opts.TopN, Secondary: secondary}
	lists, err := extractor.Extract(ids, descriptions)
	if err != nil {
		return nil, &BuildError{Stage: StageKeywords, Err: err}
	}

	embedder := embedding.NewMeanEmbedder(words)
	vectors := make([][]float64, len(books))
	for i := range books {
		books[i].Keywords = lists[i]
		books[i].Vector = embedder.Embed(lists[i])
		vectors[i] = books[i].Vector
	}
	index, err := vectorindex.Build(ids, vectors)
	if err != nil {
		return nil, &BuildError{Stage: StageIndex, Err: err}
	}

	c := corpus.New(books)
	return &Catalog{
		Corpus:     c,
		Vocabulary: words,
		Index:      index,
		Engine:     recommend.NewEngine(c, embedder, index, opts.Recommend, logger),
		logger:     logger,
	}, nil
}

// Catalog and Engine satisfy the dialogue's dependencies.
var (
	_ domain.Catalog     = (*corpus.Corpus)(nil)
	_ domain.Recommender = (*recommend.Engine)(nil)
	_ domain.VectorIndex = (*vectorindex.Index)(nil)
)

// NewMachine returns a dialogue machine over this catalog.
func (c *Catalog) NewMachine() *chat.Machine {
	return chat.NewMachine(c.Corpus, c.Engine, c.logger)
}

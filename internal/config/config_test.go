package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "English", cfg.Corpus.Language)
	assert.Equal(t, 4, cfg.Corpus.MinDescriptionWords)
	assert.Equal(t, 5, cfg.Keywords.TopN)
	assert.Equal(t, 6, cfg.Recommend.Neighbors)
	assert.Equal(t, 5, cfg.Recommend.Results)
	assert.False(t, cfg.Recommend.DropFirstKeywordMatch)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("corpus:\n  books_path: books.csv\nembeddings:\n  path: glove.txt\nrecommend:\n  drop_first_keyword_match: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "books.csv", cfg.Corpus.BooksPath)
	assert.Equal(t, "glove.txt", cfg.Embeddings.Path)
	assert.True(t, cfg.Recommend.DropFirstKeywordMatch)
	assert.Equal(t, 6, cfg.Recommend.Neighbors)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 4, cfg.Corpus.MinDescriptionWords)
}

func TestLoad_ExplicitZeroMinDescriptionWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("corpus:\n  books_path: books.csv\n  min_description_words: 0\nembeddings:\n  path: glove.txt\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Corpus.MinDescriptionWords)
	assert.Equal(t, "English", cfg.Corpus.Language)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKCHAT_BOOKS_PATH", "/data/books.csv")
	t.Setenv("BOOKCHAT_ADDR", ":9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/data/books.csv", cfg.Corpus.BooksPath)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Keywords.TopN = 8

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, loaded.Keywords.TopN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"missing books path", func(c *AppConfig) { c.Corpus.BooksPath = "" }},
		{"missing embeddings", func(c *AppConfig) { c.Embeddings.Path = "" }},
		{"zero top n", func(c *AppConfig) { c.Keywords.TopN = 0 }},
		{"neighbors not above results", func(c *AppConfig) { c.Recommend.Neighbors = 5 }},
		{"zero ttl", func(c *AppConfig) { c.Server.SessionTTLMinutes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

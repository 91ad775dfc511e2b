package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookchat/internal/config"
	"bookchat/internal/logging"
	"bookchat/internal/service"
)

func TestBuildCatalog_FailureReachesLog(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.AppConfig{
		Corpus:     config.CorpusConfig{BooksPath: filepath.Join(dir, "missing.csv"), Language: "English", MinDescriptionWords: 4},
		Embeddings: config.EmbeddingsConfig{Path: filepath.Join(dir, "missing.txt")},
		Keywords:   config.KeywordsConfig{TopN: 5},
		Log:        config.LogConfig{Level: "info", Format: "json"},
	}
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	startup := logConfig(cfg)
	assert.Nil(t, startup.Output, "startup logs go to stderr")

	var buf bytes.Buffer
	startup.Output = &buf
	logging.Init(startup)

	_, err := buildCatalog(cfg)
	var be *service.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, service.StageLoadBooks, be.Stage)
	assert.Contains(t, buf.String(), "catalog build failed")
	assert.Contains(t, buf.String(), "missing.csv")
}

func TestTUILogConfig(t *testing.T) {
	info := tuiLogConfig(logging.Config{Level: "info", Format: "json"})
	assert.Equal(t, io.Discard, info.Output)

	debug := tuiLogConfig(logging.Config{Level: "debug", Format: "console"})
	assert.Nil(t, debug.Output)
	assert.Equal(t, "console", debug.Format)
}

func TestLogConfig_WithoutConfig(t *testing.T) {
	assert.Equal(t, logging.Config{Level: "info", Format: "json"}, logConfig(nil))
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CorpusConfig points at the book snapshot and controls normalization.
type CorpusConfig struct {
	BooksPath           string `yaml:"books_path"`
	KeywordsPath        string `yaml:"keywords_path"`
	Language            string `yaml:"language"`
	MinDescriptionWords int    `yaml:"min_description_words"`
}

// EmbeddingsConfig locates the pretrained word vectors (GloVe text format).
type EmbeddingsConfig struct {
	Path string `yaml:"path"`
}

// KeywordsConfig configures TF-IDF keyword extraction.
type KeywordsConfig struct {
	TopN int `yaml:"top_n"`
}

// RecommendConfig configures nearest-neighbor retrieval.
type RecommendConfig struct {
	Neighbors             int  `yaml:"neighbors"`
	Results               int  `yaml:"results"`
	DropFirstKeywordMatch bool `yaml:"drop_first_keyword_match"`
}

// ServerConfig configures the HTTP chat transport.
type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	SessionTTLMinutes int      `yaml:"session_ttl_minutes"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Keywords   KeywordsConfig   `yaml:"keywords"`
	Recommend  RecommendConfig  `yaml:"recommend"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	// keys absent from the file keep their defaults; explicit zeros survive
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/bookchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/bookchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings the catalog build or the dialogue cannot work with.
func (c *AppConfig) Validate() error {
	if c.Corpus.BooksPath == "" {
		return errors.New("corpus.books_path is required")
	}
	if c.Embeddings.Path == "" {
		return errors.New("embeddings.path is required")
	}
	if c.Corpus.MinDescriptionWords < 0 {
		return fmt.Errorf("corpus.min_description_words must be non-negative, got %d", c.Corpus.MinDescriptionWords)
	}
	if c.Keywords.TopN < 1 {
		return fmt.Errorf("keywords.top_n must be positive, got %d", c.Keywords.TopN)
	}
	if c.Recommend.Results < 1 {
		return fmt.Errorf("recommend.results must be positive, got %d", c.Recommend.Results)
	}
	if c.Recommend.Neighbors <= c.Recommend.Results {
		return fmt.Errorf("recommend.neighbors must exceed recommend.results, got %d <= %d", c.Recommend.Neighbors, c.Recommend.Results)
	}
	if c.Server.SessionTTLMinutes < 1 {
		return fmt.Errorf("server.session_ttl_minutes must be positive, got %d", c.Server.SessionTTLMinutes)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bookchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Corpus: CorpusConfig{
			BooksPath:           "assets/books_1.Best_Books_Ever.csv",
			KeywordsPath:        "assets/books_modified.csv",
			Language:            "English",
			MinDescriptionWords: 4,
		},
		Embeddings: EmbeddingsConfig{Path: "assets/glove.twitter.27B.50d.txt"},
		Keywords:   KeywordsConfig{TopN: 5},
		Recommend:  RecommendConfig{Neighbors: 6, Results: 5},
		Server: ServerConfig{
			Addr:              ":5000",
			AllowedOrigins:    []string{"*"},
			SessionTTLMinutes: 60,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Corpus.Language == "" {
		cfg.Corpus.Language = def.Corpus.Language
	}
	if cfg.Keywords.TopN == 0 {
		cfg.Keywords.TopN = def.Keywords.TopN
	}
	if cfg.Recommend.Neighbors == 0 {
		cfg.Recommend.Neighbors = def.Recommend.Neighbors
	}
	if cfg.Recommend.Results == 0 {
		cfg.Recommend.Results = def.Recommend.Results
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if cfg.Server.SessionTTLMinutes == 0 {
		cfg.Server.SessionTTLMinutes = def.Server.SessionTTLMinutes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

// applyEnvOverrides lets BOOKCHAT_* variables (typically from .env) replace file paths and addresses.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("BOOKCHAT_BOOKS_PATH"); v != "" {
		cfg.Corpus.BooksPath = v
	}
	if v := os.Getenv("BOOKCHAT_KEYWORDS_PATH"); v != "" {
		cfg.Corpus.KeywordsPath = v
	}
	if v := os.Getenv("BOOKCHAT_EMBEDDINGS_PATH"); v != "" {
		cfg.Embeddings.Path = v
	}
	if v := os.Getenv("BOOKCHAT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BOOKCHAT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

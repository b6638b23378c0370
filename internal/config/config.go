package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible
// embedding provider.
type OpenAIEmbedderConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Model             string  `yaml:"model"`
	Dimension         int     `yaml:"dimension"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// EmbedderConfig selects and configures the embedding provider.
// Selection happens once at process start; the pipelines only ever
// see the Embedder interface.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// SegmenterConfig configures how page text is split into chunks.
type SegmenterConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL              string `yaml:"url"`
	APIKeyEnv        string `yaml:"api_key_env"`
	CollectionPrefix string `yaml:"collection_prefix"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
}

// BadgerConfig configures the embedded persistent vector store.
type BadgerConfig struct {
	Path string `yaml:"path"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
	Badger *BadgerConfig `yaml:"badger,omitempty"`
}

// RetrievalConfig tunes query-time retrieval.
type RetrievalConfig struct {
	TopK           int     `yaml:"top_k"`
	ScoreThreshold float32 `yaml:"score_threshold"`
	ContextBudget  int     `yaml:"context_budget"`
}

// IngestConfig tunes ingestion.
type IngestConfig struct {
	Concurrency      int `yaml:"concurrency"`
	SummarySentences int `yaml:"summary_sentences"`
}

// ChatConfig configures answer generation over retrieved context.
type ChatConfig struct {
	APIKeyEnv   string  `yaml:"api_key_env"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Segmenter   SegmenterConfig   `yaml:"segmenter"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Chat        ChatConfig        `yaml:"chat"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not
// exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then
// ~/.config/pdfrag/config.yaml. If neither exists, it writes defaults
// to the user path and returns them.
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
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as
// needed.
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

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pdfrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{
			Type:   "openai",
			OpenAI: &OpenAIEmbedderConfig{},
		},
		Segmenter:   SegmenterConfig{ChunkSize: 1000, ChunkOverlap: 200},
		VectorStore: VectorStoreConfig{Type: "badger", Badger: &BadgerConfig{}},
		Retrieval:   RetrievalConfig{TopK: 8, ScoreThreshold: 0.45, ContextBudget: 4000},
		Ingest:      IngestConfig{Concurrency: 4, SummarySentences: 5},
		Chat:        ChatConfig{},
		Logging:     LoggingConfig{Level: "info"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Segmenter.ChunkSize == 0 {
		cfg.Segmenter.ChunkSize = 1000
	}
	if cfg.Segmenter.ChunkOverlap == 0 {
		cfg.Segmenter.ChunkOverlap = 200
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 8
	}
	if cfg.Retrieval.ScoreThreshold == 0 {
		cfg.Retrieval.ScoreThreshold = 0.45
	}
	if cfg.Retrieval.ContextBudget == 0 {
		cfg.Retrieval.ContextBudget = 4000
	}
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = 4
	}
	if cfg.Ingest.SummarySentences == 0 {
		cfg.Ingest.SummarySentences = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-large"
		}
		if o.Dimension == 0 {
			o.Dimension = 1024
		}
		if o.RequestsPerSecond == 0 {
			o.RequestsPerSecond = 5
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "badger"
	}
	if cfg.VectorStore.Type == "badger" {
		if cfg.VectorStore.Badger == nil {
			cfg.VectorStore.Badger = &BadgerConfig{}
		}
		if cfg.VectorStore.Badger.Path == "" {
			cfg.VectorStore.Badger.Path = defaultBadgerPath()
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		q := cfg.VectorStore.Qdrant
		if q.APIKeyEnv == "" {
			q.APIKeyEnv = "QDRANT_API_KEY"
		}
		if q.CollectionPrefix == "" {
			q.CollectionPrefix = "pdfrag"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-4o"
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 1500
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = 0.2
	}
}

func defaultBadgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "pdfrag-data")
	}
	return filepath.Join(home, ".local", "share", "pdfrag", "vectors")
}

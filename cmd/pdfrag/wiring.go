package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"pdfrag/internal/config"
	"pdfrag/internal/domain"
	"pdfrag/internal/embedding/openai"
	"pdfrag/internal/llm"
	"pdfrag/internal/vectorstore/badger"
	"pdfrag/internal/vectorstore/memory"
	"pdfrag/internal/vectorstore/qdrant"
)

// newEmbedder selects the embedding provider from config. The rest of
// the program only ever sees the domain.Embedder interface.
func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "openai", "":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, errors.New("openai embedder config missing")
		}
		key := os.Getenv(o.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("missing API key in env %s", o.APIKeyEnv)
		}
		return openai.NewClient(openai.Config{
			APIKey:            key,
			BaseURL:           o.BaseURL,
			Model:             o.Model,
			Dimension:         o.Dimension,
			RequestsPerSecond: o.RequestsPerSecond,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

// newStore selects the vector store backend from config and returns
// it with a release func for any underlying resources.
func newStore(cfg *config.AppConfig, dimension int) (domain.VectorStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.VectorStore.Type {
	case "badger", "":
		b := cfg.VectorStore.Badger
		if b == nil {
			return nil, nil, errors.New("badger store config missing")
		}
		st, err := badger.Open(b.Path, dimension)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		if q == nil {
			return nil, nil, errors.New("qdrant store config missing")
		}
		st, err := qdrant.NewStore(qdrant.Config{
			URL:              q.URL,
			APIKey:           os.Getenv(q.APIKeyEnv),
			CollectionPrefix: q.CollectionPrefix,
			Dimension:        dimension,
			Timeout:          time.Duration(q.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, noop, nil
	case "memory":
		return memory.NewStore(dimension), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

func newAnswerer(cfg *config.AppConfig) (*llm.Answerer, error) {
	key := os.Getenv(cfg.Chat.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.Chat.APIKeyEnv)
	}
	return llm.NewAnswerer(llm.Config{
		APIKey:      key,
		BaseURL:     cfg.Chat.BaseURL,
		Model:       cfg.Chat.Model,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
	})
}

// configuredDimension reads the declared embedding dimensionality
// without constructing a provider, for commands that only touch the
// store.
func configuredDimension(cfg *config.AppConfig) int {
	if cfg.Embedder.OpenAI != nil && cfg.Embedder.OpenAI.Dimension > 0 {
		return cfg.Embedder.OpenAI.Dimension
	}
	return 1024
}

func requireFileKey() (string, error) {
	if fileKey == "" {
		return "", errors.New("--key is required")
	}
	return fileKey, nil
}

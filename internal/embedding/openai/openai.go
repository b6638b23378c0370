package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"pdfrag/internal/domain"
)

const providerName = "openai"

// Client is an OpenAI-compatible embeddings provider. Dimensionality
// is declared up front so every vector written under it is checked
// against the same D.
type Client struct {
	client    *openai.Client
	model     string
	dimension int
	limiter   *rate.Limiter
}

var _ domain.Embedder = (*Client)(nil)

// Config configures the embeddings client. BaseURL may point at any
// OpenAI-compatible backend.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Dimension         int
	RequestsPerSecond float64
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.LargeEmbedding3)
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1024
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return providerName }

// Dimension returns the dimensionality every produced vector has.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request; the result is ordered like
// the input.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = sanitize(t)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Cause: err}
	}
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      input,
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: c.dimension,
	})
	if err != nil {
		return nil, &domain.ProviderError{Provider: providerName, Cause: err}
	}
	if len(resp.Data) != len(input) {
		return nil, &domain.MalformedResponseError{
			Provider: providerName,
			Detail:   fmt.Sprintf("requested %d embeddings, got %d", len(input), len(resp.Data)),
		}
	}

	vectors := make([][]float32, len(input))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, &domain.MalformedResponseError{
				Provider: providerName,
				Detail:   fmt.Sprintf("embedding index %d out of range", d.Index),
			}
		}
		if len(d.Embedding) == 0 {
			return nil, &domain.MalformedResponseError{Provider: providerName, Detail: "empty embedding vector"}
		}
		if len(d.Embedding) != c.dimension {
			return nil, &domain.MalformedResponseError{
				Provider: providerName,
				Detail:   fmt.Sprintf("embedding has %d dimensions, want %d", len(d.Embedding), c.dimension),
			}
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, &domain.MalformedResponseError{
				Provider: providerName,
				Detail:   fmt.Sprintf("no embedding returned for input %d", i),
			}
		}
	}
	return vectors, nil
}

// sanitize strips literal newlines, which some backends treat as
// token boundaries, and maps the empty string to a single space so an
// empty query still embeds instead of erroring.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if text == "" {
		return " "
	}
	return text
}

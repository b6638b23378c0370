package domain

import "context"

// Embedder converts free text into a fixed-dimensionality vector.
// All vectors stored in one namespace must come from the same
// embedder; mixing providers silently corrupts similarity scores.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Segmenter splits one page's text into chunks suitable for
// embedding and retrieval.
type Segmenter interface {
	Segment(pageText string, pageNumber int) []Chunk
}

// PDFParser turns raw PDF bytes into ordered per-page text.
// A malformed PDF surfaces as a single *ParseError, never a partial
// page list.
type PDFParser interface {
	Parse(data []byte) ([]Page, error)
}

// VectorStore persists vectors under isolated per-document
// namespaces. Upsert is idempotent by point ID; Query returns matches
// in descending score order with ties broken consistently within one
// call.
type VectorStore interface {
	Upsert(ctx context.Context, namespace string, points []Point) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
	Fetch(ctx context.Context, namespace string, ids []string) (map[string]Point, error)
	DeleteNamespace(ctx context.Context, namespace string) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

// Pipeline turns PDF bytes into embedded, metadata-tagged points in
// the document's namespace. It is a stateless orchestrator: safe to
// call concurrently, holds nothing between calls.
type Pipeline struct {
	parser      domain.PDFParser
	segmenter   domain.Segmenter
	embedder    domain.Embedder
	store       domain.VectorStore
	logger      arbor.ILogger
	concurrency int
}

func NewPipeline(parser domain.PDFParser, segmenter domain.Segmenter, embedder domain.Embedder, store domain.VectorStore, logger arbor.ILogger, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Pipeline{
		parser:      parser,
		segmenter:   segmenter,
		embedder:    embedder,
		store:       store,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Ingest parses, segments, embeds and upserts one document. Any
// embedding failure aborts the whole run before the upsert, so a
// document is never left queryable-but-incomplete; re-running under
// the same fileKey converges via idempotent point IDs.
func (p *Pipeline) Ingest(ctx context.Context, pdfBytes []byte, fileKey string) ([]domain.Chunk, error) {
	if fileKey == "" {
		return nil, errors.New("ingest: fileKey is required")
	}
	namespace := vectorstore.NamespaceKey(fileKey)

	pages, err := p.parser.Parse(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", fileKey, err)
	}

	var chunks []domain.Chunk
	for _, page := range pages {
		chunks = append(chunks, p.segmenter.Segment(page.Text, page.Number)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("ingest %s: document produced no text chunks", fileKey)
	}

	p.logger.Debug().
		Str("file_key", fileKey).
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Msg("Segmented document")

	// fan out per-chunk embedding, join before upsert; chunk order
	// does not matter since each point carries its own id and page
	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range chunks {
		g.Go(func() error {
			vec, err := p.embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d (page %d): %w", i, chunks[i].PageNumber, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", fileKey, err)
	}

	points := make([]domain.Point, len(chunks))
	for i, ch := range chunks {
		points[i] = domain.Point{
			ID:         ch.ID,
			Vector:     vectors[i],
			Text:       ch.Text,
			PageNumber: ch.PageNumber,
		}
	}
	if err := p.store.Upsert(ctx, namespace, points); err != nil {
		return nil, fmt.Errorf("ingest %s: %w", fileKey, err)
	}

	// a store that accepts writes but silently drops them must
	// surface here, not at query time
	fetched, err := p.store.Fetch(ctx, namespace, []string{points[0].ID})
	if err != nil {
		return nil, fmt.Errorf("ingest %s: verify write: %w", fileKey, err)
	}
	if _, ok := fetched[points[0].ID]; !ok {
		return nil, &domain.StoreError{
			Op:        "verify write",
			Namespace: namespace,
			Cause:     errors.New("upserted point not fetchable"),
		}
	}

	p.logger.Info().
		Str("file_key", fileKey).
		Str("namespace", namespace).
		Int("points", len(points)).
		Msg("Ingested document")

	return chunks, nil
}

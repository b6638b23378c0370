package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

// Options tune query-time retrieval. Zero values fall back to the
// defaults below.
type Options struct {
	TopK           int
	ScoreThreshold float32
	ContextBudget  int
}

const (
	defaultTopK           = 8
	defaultScoreThreshold = 0.45
	defaultContextBudget  = 4000
)

// Retriever turns a question into a ranked, budget-limited context
// string with page citations, read from one document's namespace.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
	logger   arbor.ILogger
	opts     Options
}

func NewRetriever(embedder domain.Embedder, store domain.VectorStore, logger arbor.ILogger, opts Options) *Retriever {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.ScoreThreshold <= 0 {
		opts.ScoreThreshold = defaultScoreThreshold
	}
	if opts.ContextBudget <= 0 {
		opts.ContextBudget = defaultContextBudget
	}
	return &Retriever{embedder: embedder, store: store, logger: logger, opts: opts}
}

// Retrieve embeds the query, searches the document's namespace and
// assembles the context. Matches below the relevance threshold are
// dropped, but when nothing clears it all returned matches are used
// anyway: attempting an answer on weak evidence beats refusing
// outright. Only a store that returned nothing at all yields the
// no-content sentinel.
func (r *Retriever) Retrieve(ctx context.Context, query, fileKey string) (domain.Context, error) {
	if fileKey == "" {
		return domain.Context{}, errors.New("retrieve: fileKey is required")
	}
	namespace := vectorstore.NamespaceKey(fileKey)

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return domain.Context{}, fmt.Errorf("retrieve %s: %w", fileKey, err)
	}
	matches, err := r.store.Query(ctx, namespace, vec, r.opts.TopK)
	if err != nil {
		return domain.Context{}, fmt.Errorf("retrieve %s: %w", fileKey, err)
	}
	if len(matches) == 0 {
		r.logger.Warn().Str("file_key", fileKey).Msg("No matches in namespace")
		return domain.Context{Text: domain.NoContentSentinel}, nil
	}

	qualifying := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score > r.opts.ScoreThreshold {
			qualifying = append(qualifying, m)
		}
	}
	if len(qualifying) == 0 {
		r.logger.Debug().
			Str("file_key", fileKey).
			Int("matches", len(matches)).
			Msg("No match cleared the relevance threshold, using all")
		qualifying = append(qualifying, matches...)
	}
	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].Score > qualifying[j].Score
	})

	parts := make([]string, len(qualifying))
	for i, m := range qualifying {
		parts[i] = fmt.Sprintf("[Page %d] %s", m.PageNumber, m.Text)
	}
	text := truncateBytes(strings.Join(parts, "\n\n"), r.opts.ContextBudget)

	out := domain.Context{
		Text:     text,
		Matches:  len(qualifying),
		MinScore: qualifying[len(qualifying)-1].Score,
		MaxScore: qualifying[0].Score,
		Found:    true,
	}
	r.logger.Debug().
		Str("file_key", fileKey).
		Int("matches", out.Matches).
		Str("score_range", fmt.Sprintf("%.3f..%.3f", out.MinScore, out.MaxScore)).
		Int("context_bytes", len(out.Text)).
		Msg("Assembled context")
	return out, nil
}

// truncateBytes hard-cuts s to at most budget bytes without splitting
// a UTF-8 sequence. A mid-sentence cut is the accepted price of a
// predictable prompt size.
func truncateBytes(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

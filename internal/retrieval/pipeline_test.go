package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfrag/internal/common"
	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

type stubEmbedder struct {
	dim int
	vec []float32
	err error
}

func (s *stubEmbedder) Name() string   { return "stub" }
func (s *stubEmbedder) Dimension() int { return s.dim }
func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, s.err
}
func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = s.vec
	}
	return out, s.err
}

type stubStore struct {
	matches      []domain.Match
	err          error
	gotNamespace string
	gotTopK      int
}

func (s *stubStore) Upsert(ctx context.Context, ns string, pts []domain.Point) error { return nil }
func (s *stubStore) Query(ctx context.Context, ns string, vec []float32, topK int) ([]domain.Match, error) {
	s.gotNamespace = ns
	s.gotTopK = topK
	return s.matches, s.err
}
func (s *stubStore) Fetch(ctx context.Context, ns string, ids []string) (map[string]domain.Point, error) {
	return nil, nil
}
func (s *stubStore) DeleteNamespace(ctx context.Context, ns string) error { return nil }

func newTestRetriever(store domain.VectorStore, opts Options) *Retriever {
	emb := &stubEmbedder{dim: 3, vec: []float32{1, 0, 0}}
	return NewRetriever(emb, store, common.GetLogger(), opts)
}

func TestRetrieveFiltersBelowThreshold(t *testing.T) {
	store := &stubStore{matches: []domain.Match{
		{Score: 0.9, Text: "strong match", PageNumber: 1},
		{Score: 0.5, Text: "decent match", PageNumber: 2},
		{Score: 0.3, Text: "weak match", PageNumber: 3},
	}}
	r := newTestRetriever(store, Options{})

	result, err := r.Retrieve(context.Background(), "question", "doc.pdf")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 2, result.Matches)
	assert.Contains(t, result.Text, "strong match")
	assert.Contains(t, result.Text, "decent match")
	assert.NotContains(t, result.Text, "weak match")
	assert.Equal(t, float32(0.9), result.MaxScore)
	assert.Equal(t, float32(0.5), result.MinScore)
}

func TestRetrieveFallsBackToAllMatches(t *testing.T) {
	store := &stubStore{matches: []domain.Match{
		{Score: 0.2, Text: "second best", PageNumber: 5},
		{Score: 0.3, Text: "best of a bad lot", PageNumber: 4},
	}}
	r := newTestRetriever(store, Options{})

	result, err := r.Retrieve(context.Background(), "question", "doc.pdf")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 2, result.Matches)
	// descending score order: 0.3 before 0.2
	first := strings.Index(result.Text, "best of a bad lot")
	second := strings.Index(result.Text, "second best")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestRetrieveNoMatchesReturnsSentinel(t *testing.T) {
	r := newTestRetriever(&stubStore{}, Options{})

	result, err := r.Retrieve(context.Background(), "question", "doc.pdf")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, domain.NoContentSentinel, result.Text)
	assert.Zero(t, result.Matches)
}

func TestRetrieveContextBudget(t *testing.T) {
	big := strings.Repeat("a", 3000)
	store := &stubStore{matches: []domain.Match{
		{Score: 0.9, Text: big, PageNumber: 1},
		{Score: 0.8, Text: big, PageNumber: 2},
	}}
	r := newTestRetriever(store, Options{})

	result, err := r.Retrieve(context.Background(), "question", "doc.pdf")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Text), 4000)
	assert.True(t, result.Found)
}

func TestRetrieveRendersPageCitations(t *testing.T) {
	store := &stubStore{matches: []domain.Match{
		{Score: 0.7, Text: "the answer", PageNumber: 3},
	}}
	r := newTestRetriever(store, Options{})

	result, err := r.Retrieve(context.Background(), "question", "doc.pdf")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "[Page 3] the answer")
}

func TestRetrieveUsesSanitizedNamespaceAndTopK(t *testing.T) {
	store := &stubStore{matches: []domain.Match{{Score: 0.9, Text: "x", PageNumber: 1}}}
	r := newTestRetriever(store, Options{TopK: 12})

	_, err := r.Retrieve(context.Background(), "question", "my file.pdf")
	require.NoError(t, err)
	assert.Equal(t, vectorstore.NamespaceKey("my file.pdf"), store.gotNamespace)
	assert.Equal(t, 12, store.gotTopK)
}

func TestRetrieveRequiresFileKey(t *testing.T) {
	r := newTestRetriever(&stubStore{}, Options{})
	_, err := r.Retrieve(context.Background(), "question", "")
	require.Error(t, err)
}

func TestTruncateBytesKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 10) // 2 bytes each
	out := truncateBytes(s, 5)
	assert.Equal(t, 4, len(out))
	assert.Equal(t, "éé", out)
	assert.Equal(t, "abc", truncateBytes("abc", 10))
}

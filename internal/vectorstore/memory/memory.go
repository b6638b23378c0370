package memory

import (
	"context"
	"sort"
	"sync"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

// Store is an in-process vector store using brute-force cosine
// similarity, partitioned by namespace. Useful for tests and local
// experiments.
type Store struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]map[string]domain.Point
}

var _ domain.VectorStore = (*Store)(nil)

func NewStore(dimension int) *Store {
	return &Store{
		dimension: dimension,
		points:    make(map[string]map[string]domain.Point),
	}
}

func (s *Store) Upsert(ctx context.Context, namespace string, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return &domain.DimensionMismatchError{Want: s.dimension, Got: len(p.Vector)}
		}
	}
	ns := s.points[namespace]
	if ns == nil {
		ns = make(map[string]domain.Point, len(points))
		s.points[namespace] = ns
	}
	for _, p := range points {
		ns[p.ID] = p
	}
	return nil
}

func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Match, error) {
	if len(vector) != s.dimension {
		return nil, &domain.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}
	if topK <= 0 {
		topK = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		point domain.Point
		score float32
	}
	ns := s.points[namespace]
	results := make([]scored, 0, len(ns))
	for _, p := range ns {
		results = append(results, scored{point: p, score: vectorstore.Cosine(p.Vector, vector)})
	}
	// tie-break on ID so ordering is stable within one call
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].point.ID < results[j].point.ID
	})
	if topK > len(results) {
		topK = len(results)
	}
	matches := make([]domain.Match, 0, topK)
	for _, r := range results[:topK] {
		matches = append(matches, domain.Match{
			Score:      r.score,
			Text:       r.point.Text,
			PageNumber: r.point.PageNumber,
		})
	}
	return matches, nil
}

func (s *Store) Fetch(ctx context.Context, namespace string, ids []string) (map[string]domain.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Point, len(ids))
	ns := s.points[namespace]
	for _, id := range ids {
		if p, ok := ns[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.points, namespace)
	return nil
}

// Count reports how many points a namespace holds.
func (s *Store) Count(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points[namespace])
}

package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

// Store is an embedded, persistent vector store on BadgerDB. Search
// is brute-force cosine over one namespace's points, which is plenty
// for single-document corpora.
type Store struct {
	db        *badgerhold.Store
	dimension int
}

var _ domain.VectorStore = (*Store)(nil)

type record struct {
	Key        string
	Namespace  string
	PointID    string
	Vector     []float32
	Text       string
	PageNumber int
}

func recordKey(namespace, id string) string { return namespace + "/" + id }

// Open opens (or creates) the store at path.
func Open(path string, dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, errors.New("badger store needs a positive dimension")
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %s: %w", path, err)
	}
	return &Store{db: db, dimension: dimension}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Upsert(ctx context.Context, namespace string, points []domain.Point) error {
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return &domain.DimensionMismatchError{Want: s.dimension, Got: len(p.Vector)}
		}
	}
	for _, p := range points {
		rec := record{
			Key:        recordKey(namespace, p.ID),
			Namespace:  namespace,
			PointID:    p.ID,
			Vector:     p.Vector,
			Text:       p.Text,
			PageNumber: p.PageNumber,
		}
		if err := s.db.Upsert(rec.Key, &rec); err != nil {
			return &domain.StoreError{Op: "upsert", Namespace: namespace, Cause: err}
		}
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
	var recs []record
	if err := s.db.Find(&recs, badgerhold.Where("Namespace").Eq(namespace)); err != nil {
		return nil, &domain.StoreError{Op: "query", Namespace: namespace, Cause: err}
	}

	type scored struct {
		rec   record
		score float32
	}
	results := make([]scored, 0, len(recs))
	for _, r := range recs {
		results = append(results, scored{rec: r, score: vectorstore.Cosine(r.Vector, vector)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].rec.PointID < results[j].rec.PointID
	})
	if topK > len(results) {
		topK = len(results)
	}
	matches := make([]domain.Match, 0, topK)
	for _, r := range results[:topK] {
		matches = append(matches, domain.Match{
			Score:      r.score,
			Text:       r.rec.Text,
			PageNumber: r.rec.PageNumber,
		})
	}
	return matches, nil
}

func (s *Store) Fetch(ctx context.Context, namespace string, ids []string) (map[string]domain.Point, error) {
	out := make(map[string]domain.Point, len(ids))
	for _, id := range ids {
		var rec record
		err := s.db.Get(recordKey(namespace, id), &rec)
		if errors.Is(err, badgerhold.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, &domain.StoreError{Op: "fetch", Namespace: namespace, Cause: err}
		}
		out[id] = domain.Point{
			ID:         rec.PointID,
			Vector:     rec.Vector,
			Text:       rec.Text,
			PageNumber: rec.PageNumber,
		}
	}
	return out, nil
}

func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	err := s.db.DeleteMatching(&record{}, badgerhold.Where("Namespace").Eq(namespace))
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return &domain.StoreError{Op: "delete namespace", Namespace: namespace, Cause: err}
	}
	return nil
}

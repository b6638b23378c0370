package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pdfrag/internal/domain"
)

// Store is a minimal REST client to Qdrant. Each namespace maps to
// its own collection (prefix + "-" + namespace key), which is the
// isolation boundary: a query can only ever see one document's
// points. Collections use cosine distance and are created on first
// write.
type Store struct {
	url       string
	apiKey    string
	prefix    string
	dimension int
	client    *http.Client

	mu      sync.Mutex
	ensured map[string]bool
}

var _ domain.VectorStore = (*Store)(nil)

type Config struct {
	URL              string
	APIKey           string
	CollectionPrefix string
	Dimension        int
	Timeout          time.Duration
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant URL is required")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New("qdrant store needs a positive dimension")
	}
	if cfg.CollectionPrefix == "" {
		cfg.CollectionPrefix = "pdfrag"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		prefix:    cfg.CollectionPrefix,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: timeout},
		ensured:   make(map[string]bool),
	}, nil
}

func (s *Store) collection(namespace string) string {
	return s.prefix + "-" + namespace
}

func (s *Store) Upsert(ctx context.Context, namespace string, points []domain.Point) error {
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return &domain.DimensionMismatchError{Want: s.dimension, Got: len(p.Vector)}
		}
	}
	if err := s.ensureCollection(ctx, namespace); err != nil {
		return err
	}
	pts := make([]map[string]any, 0, len(points))
	for _, p := range points {
		pts = append(pts, map[string]any{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]any{
				"text":        p.Text,
				"page_number": p.PageNumber,
			},
		})
	}
	body := map[string]any{"points": pts}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection(namespace))
	if err := s.do(ctx, http.MethodPut, url, body, nil); err != nil {
		return &domain.StoreError{Op: "upsert", Namespace: namespace, Cause: err}
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
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection(namespace))
	if err := s.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		// a namespace that was never written to is empty, not broken
		if isNotFound(err) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "query", Namespace: namespace, Cause: err}
	}
	matches := make([]domain.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		m := domain.Match{Score: r.Score}
		if v, ok := r.Payload["text"].(string); ok {
			m.Text = v
		}
		if v, ok := r.Payload["page_number"].(float64); ok {
			m.PageNumber = int(v)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *Store) Fetch(ctx context.Context, namespace string, ids []string) (map[string]domain.Point, error) {
	req := map[string]any{
		"ids":          ids,
		"with_payload": true,
		"with_vector":  true,
	}
	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points", s.url, s.collection(namespace))
	if err := s.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, &domain.StoreError{Op: "fetch", Namespace: namespace, Cause: err}
	}
	out := make(map[string]domain.Point, len(resp.Result))
	for _, r := range resp.Result {
		p := domain.Point{ID: r.ID, Vector: r.Vector}
		if v, ok := r.Payload["text"].(string); ok {
			p.Text = v
		}
		if v, ok := r.Payload["page_number"].(float64); ok {
			p.PageNumber = int(v)
		}
		out[r.ID] = p
	}
	return out, nil
}

func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	url := fmt.Sprintf("%s/collections/%s", s.url, s.collection(namespace))
	if err := s.do(ctx, http.MethodDelete, url, nil, nil); err != nil {
		if isNotFound(err) {
			return nil
		}
		return &domain.StoreError{Op: "delete namespace", Namespace: namespace, Cause: err}
	}
	s.mu.Lock()
	delete(s.ensured, namespace)
	s.mu.Unlock()
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, namespace string) error {
	s.mu.Lock()
	done := s.ensured[namespace]
	s.mu.Unlock()
	if done {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	url := fmt.Sprintf("%s/collections/%s", s.url, s.collection(namespace))
	if err := s.do(ctx, http.MethodPut, url, body, nil); err != nil {
		var se *statusError
		// an existing collection is fine; same name + same config is a no-op
		if !errors.As(err, &se) || se.code != http.StatusConflict {
			return &domain.StoreError{Op: "create collection", Namespace: namespace, Cause: err}
		}
	}
	s.mu.Lock()
	s.ensured[namespace] = true
	s.mu.Unlock()
	return nil
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return e.status }

func isNotFound(err error) bool {
	var se *statusError
	cause := err
	var store *domain.StoreError
	if errors.As(err, &store) {
		cause = store.Cause
	}
	return errors.As(cause, &se) && se.code == http.StatusNotFound
}

func (s *Store) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, status: fmt.Sprintf("qdrant %s %s failed: %s", method, url, resp.Status)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfrag/internal/domain"
)

func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	store, err := NewStore(Config{URL: ts.URL, Dimension: 3, APIKey: "secret"})
	require.NoError(t, err)
	return store
}

func TestUpsertCreatesCollectionAndWritesPoints(t *testing.T) {
	var createdCollection bool
	var upsertBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /collections/pdfrag-ns", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		vectors := body["vectors"].(map[string]any)
		assert.Equal(t, float64(3), vectors["size"])
		assert.Equal(t, "Cosine", vectors["distance"])
		createdCollection = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /collections/pdfrag-ns/points", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upsertBody))
		w.WriteHeader(http.StatusOK)
	})

	store := newTestStore(t, mux)
	err := store.Upsert(context.Background(), "ns", []domain.Point{
		{ID: "id-1", Vector: []float32{1, 0, 0}, Text: "hello", PageNumber: 2},
	})
	require.NoError(t, err)
	assert.True(t, createdCollection)

	points := upsertBody["points"].([]any)
	require.Len(t, points, 1)
	p := points[0].(map[string]any)
	assert.Equal(t, "id-1", p["id"])
	payload := p["payload"].(map[string]any)
	assert.Equal(t, "hello", payload["text"])
	assert.Equal(t, float64(2), payload["page_number"])
}

func TestUpsertToleratesExistingCollection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /collections/pdfrag-ns", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	mux.HandleFunc("PUT /collections/pdfrag-ns/points", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	store := newTestStore(t, mux)
	err := store.Upsert(context.Background(), "ns", []domain.Point{
		{ID: "id-1", Vector: []float32{1, 0, 0}},
	})
	require.NoError(t, err)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	store := newTestStore(t, http.NewServeMux())
	err := store.Upsert(context.Background(), "ns", []domain.Point{
		{ID: "id-1", Vector: []float32{1, 0}},
	})
	var dimErr *domain.DimensionMismatchError
	require.ErrorAs(t, err, &dimErr)
}

func TestQueryParsesMatches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collections/pdfrag-ns/points/search", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(8), body["limit"])
		assert.Equal(t, true, body["with_payload"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"score": 0.91, "payload": map[string]any{"text": "first", "page_number": 1}},
				{"score": 0.42, "payload": map[string]any{"text": "second", "page_number": 7}},
			},
		})
	})

	store := newTestStore(t, mux)
	matches, err := store.Query(context.Background(), "ns", []float32{1, 0, 0}, 8)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.InDelta(t, 0.91, matches[0].Score, 1e-6)
	assert.Equal(t, "first", matches[0].Text)
	assert.Equal(t, 1, matches[0].PageNumber)
	assert.Equal(t, 7, matches[1].PageNumber)
}

func TestQueryMissingCollectionIsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collections/pdfrag-ns/points/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	store := newTestStore(t, mux)
	matches, err := store.Query(context.Background(), "ns", []float32{1, 0, 0}, 8)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestQueryServerErrorIsStoreError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collections/pdfrag-ns/points/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	store := newTestStore(t, mux)
	_, err := store.Query(context.Background(), "ns", []float32{1, 0, 0}, 8)
	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "query", storeErr.Op)
}

func TestFetchParsesPoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collections/pdfrag-ns/points", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"id-1"}, body["ids"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"id": "id-1", "vector": []float32{1, 0, 0}, "payload": map[string]any{"text": "hello", "page_number": 4}},
			},
		})
	})

	store := newTestStore(t, mux)
	points, err := store.Fetch(context.Background(), "ns", []string{"id-1"})
	require.NoError(t, err)
	require.Contains(t, points, "id-1")
	assert.Equal(t, "hello", points["id-1"].Text)
	assert.Equal(t, 4, points["id-1"].PageNumber)
}

func TestDeleteNamespace(t *testing.T) {
	deleted := false
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /collections/pdfrag-ns", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.WriteHeader(http.StatusOK)
	})

	store := newTestStore(t, mux)
	require.NoError(t, store.DeleteNamespace(context.Background(), "ns"))
	assert.True(t, deleted)
}

func TestDeleteNamespaceMissingIsNoop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /collections/pdfrag-ns", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	store := newTestStore(t, mux)
	require.NoError(t, store.DeleteNamespace(context.Background(), "ns"))
}

package openai

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

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
}

// newTestClient wires a Client at a stub embeddings endpoint. handle
// receives the decoded request and returns the response payload.
func newTestClient(t *testing.T, dimension int, handle func(req embeddingRequest) (int, any)) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := handle(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	client, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           ts.URL + "/v1",
		Model:             "test-embedding",
		Dimension:         dimension,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return client
}

func vectorOf(dimension int, fill float32) []float32 {
	v := make([]float32, dimension)
	for i := range v {
		v[i] = fill
	}
	return v
}

func okResponse(req embeddingRequest, dimension int) (int, any) {
	data := make([]embeddingData, len(req.Input))
	for i := range req.Input {
		data[i] = embeddingData{Index: i, Embedding: vectorOf(dimension, float32(i+1))}
	}
	return http.StatusOK, embeddingResponse{Object: "list", Data: data, Model: req.Model}
}

func TestEmbed(t *testing.T) {
	var got embeddingRequest
	client := newTestClient(t, 4, func(req embeddingRequest) (int, any) {
		got = req
		return okResponse(req, 4)
	})

	vec, err := client.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, vectorOf(4, 1), vec)
	assert.Equal(t, []string{"hello world"}, got.Input)
	assert.Equal(t, "test-embedding", got.Model)
	assert.Equal(t, 4, got.Dimensions)
}

func TestEmbedSanitizesInput(t *testing.T) {
	var got embeddingRequest
	client := newTestClient(t, 4, func(req embeddingRequest) (int, any) {
		got = req
		return okResponse(req, 4)
	})

	_, err := client.Embed(context.Background(), "line one\nline two\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"line one line two "}, got.Input)

	_, err = client.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{" "}, got.Input)
}

func TestEmbedBatchOrdersByIndex(t *testing.T) {
	client := newTestClient(t, 2, func(req embeddingRequest) (int, any) {
		// indices deliberately out of order
		return http.StatusOK, embeddingResponse{Object: "list", Data: []embeddingData{
			{Index: 1, Embedding: []float32{2, 2}},
			{Index: 0, Embedding: []float32{1, 1}},
		}}
	})

	vectors, err := client.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 1}, vectors[0])
	assert.Equal(t, []float32{2, 2}, vectors[1])
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	client := newTestClient(t, 2, func(req embeddingRequest) (int, any) {
		t.Fatal("no request expected for empty input")
		return 0, nil
	})

	vectors, err := client.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedMalformedResponses(t *testing.T) {
	cases := []struct {
		name string
		data []embeddingData
	}{
		{name: "no data", data: nil},
		{name: "empty vector", data: []embeddingData{{Index: 0, Embedding: nil}}},
		{name: "wrong dimension", data: []embeddingData{{Index: 0, Embedding: []float32{1, 2}}}},
		{name: "index out of range", data: []embeddingData{{Index: 5, Embedding: vectorOf(4, 1)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, 4, func(req embeddingRequest) (int, any) {
				return http.StatusOK, embeddingResponse{Object: "list", Data: tc.data}
			})

			_, err := client.Embed(context.Background(), "text")
			var malformed *domain.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, providerName, malformed.Provider)
		})
	}
}

func TestEmbedProviderError(t *testing.T) {
	client := newTestClient(t, 4, func(req embeddingRequest) (int, any) {
		return http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"message": "backend exploded", "type": "server_error"},
		}
	})

	_, err := client.Embed(context.Background(), "text")
	var provider *domain.ProviderError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, providerName, provider.Provider)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	client, err := NewClient(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 1024, client.Dimension())
	assert.Equal(t, providerName, client.Name())
}

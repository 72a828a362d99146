package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertBatches(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vectors/upsert", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("Api-Key"))

		var req struct {
			Vectors   []Item `json:"vectors"`
			Namespace string `json:"namespace"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "algebra_quadratic_equations", req.Namespace)
		batches = append(batches, len(req.Vectors))

		json.NewEncoder(w).Encode(map[string]int{"upsertedCount": len(req.Vectors)})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)

	items := make([]Item, 250)
	for i := range items {
		items[i] = Item{ID: "chunk", Values: []float32{0.1, 0.2}}
	}

	n, err := client.Upsert(context.Background(), "algebra_quadratic_equations", items)
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, []int{100, 100, 50}, batches)
}

func TestQuerySendsFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(5), req["topK"])
		assert.Equal(t, true, req["includeMetadata"])

		filter := req["filter"].(map[string]interface{})
		assert.Equal(t, "CBSE", filter["board"])
		ctFilter := filter["content_type"].(map[string]interface{})
		assert.ElementsMatch(t, []interface{}{"worked_example", "practice_problem"}, ctFilter["$in"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"matches": []Match{
				{ID: "c1", Score: 0.91, Metadata: map[string]interface{}{"topic": "quadratic_equations"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)

	matches, err := client.Query(context.Background(), "algebra_quadratic_equations",
		[]float32{0.5, 0.5}, 5, Filter{
			"board":        "CBSE",
			"content_type": In("worked_example", "practice_problem"),
		})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ID)
	assert.InDelta(t, 0.91, matches[0].Score, 1e-9)
}

func TestNamespaceCountMissingNamespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"namespaces": map[string]interface{}{
				"biology_digestive_system": map[string]int{"vectorCount": 42},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)

	n, err := client.NamespaceCount(context.Background(), "biology_digestive_system")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = client.NamespaceCount(context.Background(), "algebra_quadratic_equations")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)

	_, err := client.Query(context.Background(), "ns", []float32{0.1}, 5, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

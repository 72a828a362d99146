// Package vectorstore is a small REST client for Pinecone-compatible vector
// indexes: upsert, filtered query and namespace stats over plain HTTP.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Filter is the metadata predicate sent with a query. Values are either
// scalars (equality) or operator objects built with In / NotIn.
type Filter map[string]interface{}

// In matches any of the given values.
func In(values ...string) map[string]interface{} {
	vs := make([]interface{}, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return map[string]interface{}{"$in": vs}
}

// NotIn excludes all of the given values.
func NotIn(values ...string) map[string]interface{} {
	vs := make([]interface{}, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return map[string]interface{}{"$nin": vs}
}

// Lte matches values at or below the bound.
func Lte(v float64) map[string]interface{} {
	return map[string]interface{}{"$lte": v}
}

// Gte matches values at or above the bound.
func Gte(v float64) map[string]interface{} {
	return map[string]interface{}{"$gte": v}
}

// Between matches values inside the inclusive range.
func Between(min, max float64) map[string]interface{} {
	return map[string]interface{}{"$gte": min, "$lte": max}
}

// Item is one vector with its metadata, used for upserts.
type Item struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Match is one query hit.
type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NamespaceStats is the per-namespace vector count from describe_index_stats.
type NamespaceStats struct {
	VectorCount int `json:"vectorCount"`
}

type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

func NewClient(host, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		host:   host,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type upsertRequest struct {
	Vectors   []Item `json:"vectors"`
	Namespace string `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// Upsert writes vectors into a namespace in batches of 100.
func (c *Client) Upsert(ctx context.Context, namespace string, items []Item) (int, error) {
	const batchSize = 100
	total := 0
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		var resp upsertResponse
		err := c.post(ctx, "/vectors/upsert", upsertRequest{
			Vectors:   items[start:end],
			Namespace: namespace,
		}, &resp)
		if err != nil {
			return total, fmt.Errorf("upsert batch at %d: %w", start, err)
		}
		total += resp.UpsertedCount
	}
	return total, nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	Filter          Filter    `json:"filter,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

// Query runs a similarity search restricted to vectors whose metadata
// satisfies the filter. A nil filter searches the whole namespace.
func (c *Client) Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]Match, error) {
	var resp queryResponse
	err := c.post(ctx, "/query", queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       namespace,
		Filter:          filter,
		IncludeMetadata: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

type statsResponse struct {
	Namespaces map[string]NamespaceStats `json:"namespaces"`
}

// Stats returns vector counts per namespace.
func (c *Client) Stats(ctx context.Context) (map[string]NamespaceStats, error) {
	var resp statsResponse
	if err := c.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		return nil, err
	}
	if resp.Namespaces == nil {
		resp.Namespaces = map[string]NamespaceStats{}
	}
	return resp.Namespaces, nil
}

// NamespaceCount returns the number of vectors in one namespace, zero when
// the namespace does not exist yet.
func (c *Client) NamespaceCount(ctx context.Context, namespace string) (int, error) {
	stats, err := c.Stats(ctx)
	if err != nil {
		return 0, err
	}
	return stats[namespace].VectorCount, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vector index request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vector index returned %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

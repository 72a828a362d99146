package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/malharwork/agneez-poc/internal/config"
	"github.com/malharwork/agneez-poc/pkg/logger"
)

// Embedder turns text into query vectors.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingService calls an OpenAI-compatible /embeddings endpoint and
// caches query vectors in redis keyed by model and text hash. Cache failures
// are logged and ignored so redis being down never blocks retrieval.
type EmbeddingService struct {
	config config.EmbeddingConfig
	client *http.Client
	cache  *redis.Client
}

func NewEmbeddingService(cfg config.EmbeddingConfig, cache *redis.Client) *EmbeddingService {
	return &EmbeddingService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := s.cacheKey(text)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var vec []float32
			if err := json.Unmarshal(cached, &vec); err == nil {
				return vec, nil
			}
		}
	}

	vectors, err := s.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding API returned no vectors")
	}

	if s.cache != nil {
		if data, err := json.Marshal(vectors[0]); err == nil {
			if err := s.cache.Set(ctx, key, data, s.config.CacheTTL).Err(); err != nil {
				logger.Log.Warn("embedding cache write failed", zap.Error(err))
			}
		}
	}
	return vectors[0], nil
}

func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonData, err := json.Marshal(embeddingRequest{
		Model: s.config.Model,
		Input: texts,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.config.BaseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", result.Error.Message)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(result.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding API returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (s *EmbeddingService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(s.config.Model + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}

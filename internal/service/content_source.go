package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/malharwork/agneez-poc/internal/config"
	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/pkg/logger"
)

// ContentSource supplies raw curriculum material for one (topic, level,
// board) placement. The bool reports whether material exists.
type ContentSource interface {
	Document(ctx context.Context, topicKey string, level model.Level, board model.Board) (curriculum.SeedDocument, bool, error)
}

// MinioContentSource reads authored curriculum documents from an object
// store bucket. Objects are JSON files keyed <topic>/<level>/<board>.json.
type MinioContentSource struct {
	client *minio.Client
	bucket string
}

func NewMinioContentSource(cfg config.ContentConfig) (*MinioContentSource, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}
	return &MinioContentSource{client: client, bucket: cfg.MinioBucket}, nil
}

type storedDocument struct {
	Sections []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"sections"`
	Prerequisites      []string `json:"prerequisites"`
	LearningObjectives []string `json:"learning_objectives"`
}

func (s *MinioContentSource) Document(ctx context.Context, topicKey string, level model.Level, board model.Board) (curriculum.SeedDocument, bool, error) {
	key := fmt.Sprintf("%s/%s/%s.json", topicKey, level, board)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return curriculum.SeedDocument{}, false, err
	}
	defer obj.Close()

	var stored storedDocument
	if err := json.NewDecoder(obj).Decode(&stored); err != nil {
		// A missing object surfaces as a read error here, not at GetObject.
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return curriculum.SeedDocument{}, false, nil
		}
		logger.Log.Warn("curriculum object unreadable",
			zap.String("key", key), zap.Error(err))
		return curriculum.SeedDocument{}, false, nil
	}

	doc := curriculum.SeedDocument{
		Prerequisites:      stored.Prerequisites,
		LearningObjectives: stored.LearningObjectives,
	}
	for _, sec := range stored.Sections {
		doc.Sections = append(doc.Sections, curriculum.SeedSection{
			Title:   sec.Title,
			Content: sec.Content,
		})
	}
	return doc, len(doc.Sections) > 0, nil
}

// SeedContentSource serves the embedded curriculum. It ignores the board
// since the seed material is board-neutral.
type SeedContentSource struct{}

func (SeedContentSource) Document(_ context.Context, topicKey string, level model.Level, _ model.Board) (curriculum.SeedDocument, bool, error) {
	doc, ok := curriculum.SeedDocumentFor(topicKey, level)
	return doc, ok, nil
}

// LayeredContentSource tries sources in order and serves the first hit, so
// authored bucket content wins over the embedded seed.
type LayeredContentSource struct {
	sources []ContentSource
}

func NewLayeredContentSource(sources ...ContentSource) *LayeredContentSource {
	return &LayeredContentSource{sources: sources}
}

func (s *LayeredContentSource) Document(ctx context.Context, topicKey string, level model.Level, board model.Board) (curriculum.SeedDocument, bool, error) {
	for _, src := range s.sources {
		doc, ok, err := src.Document(ctx, topicKey, level, board)
		if err != nil {
			logger.Log.Warn("content source failed, trying next",
				zap.String("topic", topicKey), zap.Error(err))
			continue
		}
		if ok {
			return doc, true, nil
		}
	}
	return curriculum.SeedDocument{}, false, nil
}

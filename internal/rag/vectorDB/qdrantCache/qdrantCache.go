package qdrantCache

import (
	"context"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

var _ vectorDB.AnswerCache = (*Cache)(nil)

// Cache stores full answers keyed by the query embedding. A near-identical
// question (cosine >= the cutoff) short-circuits retrieval and generation
// entirely.
type Cache struct {
	client *qdrant.Client
	logger *logger_i.Logger
}

func New(ctx context.Context, host string, port int) (*Cache, error) {
	logger := logger_i.NewLogger("answer_cache")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, kbmodel.WrapProvider("qdrant", err)
	}

	if err := ensureCollection(ctx, client); err != nil {
		return nil, kbmodel.WrapProvider("qdrant", err)
	}

	return &Cache{client: client, logger: logger}, nil
}

func ensureCollection(ctx context.Context, client *qdrant.Client) error {
	exists, err := client.CollectionExists(ctx, config.CacheCollectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: config.CacheCollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(config.EmbeddingDimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (c *Cache) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	result, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.CacheCollectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		c.logger.Error("cache query failed", "error", err)
		return "", false, kbmodel.WrapProvider("qdrant", err)
	}
	if len(result) == 0 || result[0].Score < config.CacheSimilarityCutoff {
		return "", false, nil
	}

	c.logger.Debug("cache hit", "score", result[0].Score)
	return result[0].Payload["answer"].GetStringValue(), true, nil
}

func (c *Cache) SaveToCache(ctx context.Context, id string, queryVector []float32, answer string) error {
	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.CacheCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(queryVector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":    answer,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		c.logger.Error("cache save failed", "error", err)
		return kbmodel.WrapProvider("qdrant", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

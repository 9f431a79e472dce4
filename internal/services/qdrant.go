package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/resume-analyzer/internal/logger"
)

// cacheNamespace scopes deterministic point ids for cached embeddings.
var cacheNamespace = uuid.MustParse("6f1c2d1e-4b7a-5f3e-9c1d-2a8b7e4f0c59")

// QdrantService caches job description embeddings in a Qdrant collection.
type QdrantService interface {
	EmbeddingCache
	InitCollection(ctx context.Context) error
	Close() error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64) (QdrantService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		logger.Info().Str("collection", q.collectionName).Msg("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	logger.Info().Str("collection", q.collectionName).Msg("✅ Qdrant collection created successfully")
	return nil
}

// Lookup implements EmbeddingCache.
func (q *qdrantService) Lookup(ctx context.Context, modelID, text string) ([]float32, bool, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewID(CachePointID(modelID, text))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get point: %w", err)
	}

	for _, point := range points {
		vec := point.GetVectors().GetVector().GetData()
		if len(vec) > 0 {
			return vec, true, nil
		}
	}

	return nil, false, nil
}

// Store implements EmbeddingCache.
func (q *qdrantService) Store(ctx context.Context, modelID, text string, vector []float32) error {
	if uint64(len(vector)) != q.vectorSize {
		return fmt.Errorf("%w: collection expects %d, got %d", ErrVectorLengthMismatch, q.vectorSize, len(vector))
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(CachePointID(modelID, text)),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"model_id": modelID,
			"text":     text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Delete implements EmbeddingCache.
func (q *qdrantService) Delete(ctx context.Context, modelID, text string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points:         qdrant.NewPointsSelector(qdrant.NewID(CachePointID(modelID, text))),
	})
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}

	return nil
}

func (q *qdrantService) Close() error {
	return q.client.Close()
}

// CachePointID derives a stable point id from the embedding model and text, so a
// cached vector is never reused across model versions.
func CachePointID(modelID, text string) string {
	return uuid.NewSHA1(cacheNamespace, []byte(modelID+"\x00"+text)).String()
}

package services

import (
	"context"
	"fmt"
	"math"

	"alfredoptarigan/resume-analyzer/internal/logger"
)

// Embedder encodes text into a fixed-length dense vector.
//
// Implementations must be deterministic for the same model and input text.
type Embedder interface {
	ModelID() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingCache stores job description vectors keyed by model and text.
type EmbeddingCache interface {
	Lookup(ctx context.Context, modelID, text string) ([]float32, bool, error)
	Store(ctx context.Context, modelID, text string, vector []float32) error
	Delete(ctx context.Context, modelID, text string) error
}

type SimilarityScorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (float64, error)
}

type similarityScorer struct {
	embedder Embedder
	jdCache  EmbeddingCache
}

type SimilarityOption func(*similarityScorer)

// WithJobDescriptionCache caches job description embeddings. Resume text is
// never cached.
func WithJobDescriptionCache(cache EmbeddingCache) SimilarityOption {
	return func(s *similarityScorer) {
		s.jdCache = cache
	}
}

func NewSimilarityScorer(embedder Embedder, opts ...SimilarityOption) SimilarityScorer {
	s := &similarityScorer{embedder: embedder}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score implements SimilarityScorer. The result is cosine similarity as a
// percentage rounded to two decimals; it is not clamped to [0, 100].
func (s *similarityScorer) Score(ctx context.Context, resumeText, jobDescription string) (float64, error) {
	resumeVec, err := s.embedder.Embed(ctx, resumeText)
	if err != nil {
		return 0, asModelError("embed_resume", fmt.Errorf("failed to embed resume: %w", err))
	}

	jobVec, err := s.embedJobDescription(ctx, jobDescription, len(resumeVec))
	if err != nil {
		return 0, asModelError("embed_job_description", fmt.Errorf("failed to embed job description: %w", err))
	}

	cos, err := Cosine(resumeVec, jobVec)
	if err != nil {
		return 0, NewModelUnavailableError("cosine", err)
	}

	return ToPercentage(cos), nil
}

// embedJobDescription serves the vector from the cache when one of length dim
// is stored. A cached vector of another length is stale and gets evicted.
func (s *similarityScorer) embedJobDescription(ctx context.Context, text string, dim int) ([]float32, error) {
	if s.jdCache == nil {
		return s.embedder.Embed(ctx, text)
	}

	modelID := s.embedder.ModelID()
	if vec, ok, err := s.jdCache.Lookup(ctx, modelID, text); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("⚠️  Embedding cache lookup failed")
	} else if ok && len(vec) == dim {
		logger.Ctx(ctx).Debug().Msg("Job description embedding cache hit")
		return vec, nil
	} else if ok {
		logger.Ctx(ctx).Warn().
			Int("cached_dim", len(vec)).
			Int("expected_dim", dim).
			Msg("⚠️  Evicting stale job description embedding")
		if err := s.jdCache.Delete(ctx, modelID, text); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("⚠️  Embedding cache delete failed")
		}
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.jdCache.Store(ctx, modelID, text, vec); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("⚠️  Embedding cache store failed")
	}
	return vec, nil
}

// Cosine computes cosine similarity between two vectors of equal length.
// A zero vector yields 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrVectorLengthMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, nil
	}
	return dot / den, nil
}

// ToPercentage maps a cosine value to a percentage with two decimals. Halves
// round away from zero.
func ToPercentage(cos float64) float64 {
	return math.Round(cos*100*100) / 100
}

// Package app wires the analysis pipeline from configuration.
package app

import (
	"context"
	"fmt"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// Pipeline holds the long-lived components shared by the API server and the
// CLI.
type Pipeline struct {
	Loader   services.DocumentLoader
	Analyzer services.AnalyzerService
	Gemini   services.GeminiService
	Cache    services.QdrantService
}

// Build initializes the model client, the optional embedding cache and the
// analyzer. Models are warmed up when cfg.Analysis.ModelWarmup is set.
func Build(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey,
		services.WithNERModel(cfg.Gemini.NERModel),
		services.WithEmbeddingModel(cfg.Gemini.EmbeddingModel),
		services.WithChunking(cfg.Analysis.NERChunkSize, cfg.Analysis.NERChunkOverlap),
		services.WithMaxRetries(cfg.Worker.RetryMaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}
	logger.Info().Str("model_id", geminiService.ModelID()).Msg("✅ Gemini AI initialized successfully")

	if cfg.Analysis.ModelWarmup {
		warmCtx, cancel := ctx, context.CancelFunc(func() {})
		if cfg.Analysis.InferenceTimeout > 0 {
			warmCtx, cancel = context.WithTimeout(ctx, cfg.Analysis.InferenceTimeout)
		}
		err := geminiService.Warmup(warmCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to warm up models: %w", err)
		}
		logger.Info().Msg("✅ Models warmed up")
	}

	p := &Pipeline{
		Loader: services.NewDocumentLoader(cfg.Storage.MaxFileSize),
		Gemini: geminiService,
	}

	var scorerOpts []services.SimilarityOption
	if cfg.CacheEnabled() {
		cache, err := initCache(ctx, cfg)
		if err != nil {
			// The cache is an optimization; analysis works without it.
			logger.Warn().Err(err).Msg("⚠️  Embedding cache disabled")
		} else {
			p.Cache = cache
			scorerOpts = append(scorerOpts, services.WithJobDescriptionCache(cache))
		}
	}

	p.Analyzer = services.NewAnalyzerService(
		services.NewPDFParserService(),
		services.NewSkillExtractor(geminiService),
		services.NewSimilarityScorer(geminiService, scorerOpts...),
		cfg.Analysis.InferenceTimeout,
	)
	logger.Info().Bool("cache", p.Cache != nil).Msg("✅ Analyzer service initialized")

	return p, nil
}

func initCache(ctx context.Context, cfg *config.Config) (services.QdrantService, error) {
	cache, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Qdrant.VectorSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
	}

	if err := cache.InitCollection(ctx); err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
	}
	logger.Info().Str("collection", cfg.Qdrant.Collection).Msg("✅ Qdrant initialized successfully")

	return cache, nil
}

// Close releases the cache connection, if any.
func (p *Pipeline) Close() error {
	if p.Cache != nil {
		return p.Cache.Close()
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

type AnalyzerService interface {
	Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisReport, error)
}

type analyzerService struct {
	pdfParser        PDFParserService
	skillExtractor   SkillExtractor
	scorer           SimilarityScorer
	inferenceTimeout time.Duration
}

// NewAnalyzerService wires the pipeline stages. A zero inferenceTimeout leaves
// model calls bounded only by the caller's context.
func NewAnalyzerService(
	pdfParser PDFParserService,
	skillExtractor SkillExtractor,
	scorer SimilarityScorer,
	inferenceTimeout time.Duration,
) AnalyzerService {
	return &analyzerService{
		pdfParser:        pdfParser,
		skillExtractor:   skillExtractor,
		scorer:           scorer,
		inferenceTimeout: inferenceTimeout,
	}
}

// Analyze implements AnalyzerService. The first failing stage aborts the run;
// no partial report is returned.
func (a *analyzerService) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisReport, error) {
	log := logger.Ctx(ctx)
	start := time.Now()

	experienceLevel := req.ExperienceLevel
	if experienceLevel == "" {
		experienceLevel = models.DefaultExperienceLevel
	}

	// Step 1: Extract text
	log.Debug().Str("filename", req.Document.Filename).Msg("📄 Extracting resume text...")
	content, err := a.pdfParser.ExtractTextWithMetaData(req.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to extract resume text: %w", err)
	}
	resumeText := content.Text

	// Step 2: Extract skills
	log.Debug().Int("pages", content.PageCount).Int("chars", len(resumeText)).Msg("🔍 Extracting skills...")
	var skills []string
	err = a.withInferenceTimeout(ctx, func(ctx context.Context) error {
		var err error
		skills, err = a.skillExtractor.ExtractSkills(ctx, resumeText)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract skills: %w", asModelError("extract_skills", err))
	}

	// Step 3: Similarity
	log.Debug().Msg("🤖 Scoring similarity...")
	var score float64
	err = a.withInferenceTimeout(ctx, func(ctx context.Context) error {
		var err error
		score, err = a.scorer.Score(ctx, resumeText, req.JobDescription)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to score similarity: %w", asModelError("score_similarity", err))
	}

	// Step 4: Match skills
	matched, missing := MatchSkills(skills, req.RequiredSkills)

	// Step 5: Insights
	insights, err := GenerateInsights(experienceLevel, matched, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to generate insights: %w", err)
	}

	log.Info().
		Float64("similarity_score", score).
		Int("extracted_skills", len(skills)).
		Int("matched_skills", len(matched)).
		Int("missing_skills", len(missing)).
		Dur("duration", time.Since(start)).
		Msg("✅ Analysis completed")

	return &models.AnalysisReport{
		SimilarityScore: score,
		ExtractedSkills: skills,
		MatchedSkills:   matched,
		MissingSkills:   missing,
		Insights:        insights,
		ResumeText:      resumeText,
	}, nil
}

func (a *analyzerService) withInferenceTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.inferenceTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, a.inferenceTimeout)
	defer cancel()

	err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return NewModelUnavailableError("inference", fmt.Errorf("exceeded %s: %w: %w", a.inferenceTimeout, context.DeadlineExceeded, err))
	}
	return err
}

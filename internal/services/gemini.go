package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"alfredoptarigan/resume-analyzer/internal/logger"
)

const (
	defaultNERModel       = "gemini-2.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
	maxEmbeddingChars     = 40000
	warmupText            = "resume analyzer warm-up"
)

// GeminiService serves both model capabilities of the pipeline. The underlying
// genai client is safe for concurrent use.
type GeminiService interface {
	Embedder
	EntityRecognizer
	Warmup(ctx context.Context) error
}

type geminiService struct {
	client        *genai.Client
	modelName     string
	embedModel    string
	chunker       TextChunker
	promptBuilder *PromptBuilder
	chunkSize     int
	chunkOverlap  int
	maxRetries    int
}

type GeminiOption func(*geminiService)

func WithNERModel(model string) GeminiOption {
	return func(g *geminiService) {
		if model = strings.TrimSpace(model); model != "" {
			g.modelName = model
		}
	}
}

func WithEmbeddingModel(model string) GeminiOption {
	return func(g *geminiService) {
		if model = strings.TrimSpace(model); model != "" {
			g.embedModel = model
		}
	}
}

// WithChunking sets how long texts are split before recognition.
func WithChunking(size, overlap int) GeminiOption {
	return func(g *geminiService) {
		g.chunkSize = size
		g.chunkOverlap = overlap
	}
}

func WithMaxRetries(n int) GeminiOption {
	return func(g *geminiService) {
		if n > 0 {
			g.maxRetries = n
		}
	}
}

func NewGeminiService(ctx context.Context, apiKey string, opts ...GeminiOption) (GeminiService, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, NewModelUnavailableError("init", errors.New("gemini api key is required (set GEMINI_API_KEY)"))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, NewModelUnavailableError("init", fmt.Errorf("failed to create gemini client: %w", err))
	}

	g := &geminiService{
		client:        client,
		modelName:     defaultNERModel,
		embedModel:    defaultEmbeddingModel,
		chunker:       NewTextChunker(),
		promptBuilder: NewPromptBuilder(),
		chunkSize:     defaultChunkSize,
		chunkOverlap:  200,
		maxRetries:    1,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// ModelID implements Embedder.
func (g *geminiService) ModelID() string {
	return "gemini:" + g.embedModel
}

// Embed implements Embedder.
func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbeddingChars)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// RecognizeEntities implements EntityRecognizer.
func (g *geminiService) RecognizeEntities(ctx context.Context, text string) ([]Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	chunks := g.chunker.ChunkText(text, g.chunkSize, g.chunkOverlap)
	var entities []Entity

	for i, chunk := range chunks {
		prompt := g.promptBuilder.BuildEntityRecognitionPrompt(chunk)

		response, err := g.generateWithRetry(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to recognize entities in chunk %d/%d: %w", i+1, len(chunks), err)
		}

		found, err := parseEntities(response, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entities in chunk %d/%d: %w", i+1, len(chunks), err)
		}

		logger.Ctx(ctx).Debug().
			Int("chunk", i+1).
			Int("chunks", len(chunks)).
			Int("entities", len(found)).
			Msg("Entities recognized")

		entities = append(entities, found...)
	}

	return entities, nil
}

// Warmup implements GeminiService. It embeds a probe string so that a bad key or
// model name fails at startup.
func (g *geminiService) Warmup(ctx context.Context) error {
	if _, err := g.Embed(ctx, warmupText); err != nil {
		return NewModelUnavailableError("warmup", err)
	}
	return nil
}

func (g *geminiService) generate(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

func (g *geminiService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		result, err := g.generate(ctx, prompt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < g.maxRetries {
			logger.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("⚠️ Generation failed. Retrying...")
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", g.maxRetries, lastErr)
}

// parseEntities decodes a recognizer response. Entities whose text does not
// occur in source are dropped.
func parseEntities(response, source string) ([]Entity, error) {
	jsonStr := extractJSON(response)

	var payload struct {
		Entities []Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		var list []Entity
		if errList := json.Unmarshal([]byte(jsonStr), &list); errList != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
		payload.Entities = list
	}

	entities := make([]Entity, 0, len(payload.Entities))
	for _, ent := range payload.Entities {
		if ent.Text == "" || !strings.Contains(source, ent.Text) {
			continue
		}
		ent.Label = strings.ToUpper(strings.TrimSpace(ent.Label))
		entities = append(entities, ent)
	}
	return entities, nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	// Prefer whichever structure opens first
	if startObj != -1 && endObj > startObj && (startArr == -1 || startObj < startArr) {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

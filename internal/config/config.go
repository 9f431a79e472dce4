package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"alfredoptarigan/resume-analyzer/internal/logger"
)

type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Qdrant   QdrantConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Analysis AnalysisConfig
	Log      logger.Config
}

type ServerConfig struct {
	Port string
	Env  string
}

type GeminiConfig struct {
	APIKey         string
	NERModel       string
	EmbeddingModel string
}

// QdrantConfig configures the job description embedding cache.
// An empty URL disables the cache.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type StorageConfig struct {
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency      int
	QueueSize        int
	RetryMaxAttempts int
}

type AnalysisConfig struct {
	InferenceTimeout time.Duration
	NERChunkSize     int
	NERChunkOverlap  int
	ModelWarmup      bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			NERModel:       getEnv("GEMINI_NER_MODEL", "gemini-2.5-flash"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "job_description_embeddings"),
			VectorSize: uint64(getEnvAsInt64("QDRANT_VECTOR_SIZE", 768)),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:        getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
		Analysis: AnalysisConfig{
			InferenceTimeout: getEnvAsDuration("INFERENCE_TIMEOUT", "30s"),
			NERChunkSize:     getEnvAsInt("NER_CHUNK_SIZE", 4000),
			NERChunkOverlap:  getEnvAsInt("NER_CHUNK_OVERLAP", 200),
			ModelWarmup:      getEnvAsBool("MODEL_WARMUP", true),
		},
		Log: logger.Config{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "pretty"),
			TimeFormat:   getEnv("LOG_TIME_FORMAT", ""),
			ReportCaller: getEnvAsBool("LOG_REPORT_CALLER", false),
		},
	}
}

// CacheEnabled reports whether a Qdrant endpoint was configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.Qdrant.URL) != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

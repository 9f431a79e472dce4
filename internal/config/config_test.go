package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "QDRANT_URL", "INFERENCE_TIMEOUT", "WORKER_CONCURRENCY", "MODEL_WARMUP"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "text-embedding-004", cfg.Gemini.EmbeddingModel)
	assert.Equal(t, 30*time.Second, cfg.Analysis.InferenceTimeout)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, uint64(768), cfg.Qdrant.VectorSize)
	assert.True(t, cfg.Analysis.ModelWarmup)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("QDRANT_URL", "http://qdrant:6334")
	t.Setenv("INFERENCE_TIMEOUT", "5s")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("MODEL_WARMUP", "false")
	t.Setenv("MAX_FILE_SIZE", "1024")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Analysis.InferenceTimeout)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, int64(1024), cfg.Storage.MaxFileSize)
	assert.False(t, cfg.Analysis.ModelWarmup)
	assert.True(t, cfg.CacheEnabled())
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")

	assert.Equal(t, 2*time.Second, getEnvAsDuration("SOME_TIMEOUT", "2s"))
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// buildPDF writes a minimal uncompressed PDF with one page per entry. An empty
// entry produces a page without text operators.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i,
		))

		stream := "q Q"
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

func pdfDocument(pages ...string) models.Document {
	return models.Document{Data: buildPDF(pages...), Format: models.FormatPDF, Filename: "resume.pdf"}
}

type MockEntityRecognizer struct {
	mock.Mock
}

func (m *MockEntityRecognizer) RecognizeEntities(ctx context.Context, text string) ([]Entity, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Entity), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) ModelID() string {
	return "mock-embedding"
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// bagOfWordsEmbedder is a deterministic local embedder: one dimension per
// vocabulary word, counting occurrences.
type bagOfWordsEmbedder struct {
	vocab []string
}

func (b *bagOfWordsEmbedder) ModelID() string {
	return "bag-of-words"
}

func (b *bagOfWordsEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	words := strings.Fields(strings.ToLower(text))
	vec := make([]float32, len(b.vocab))
	for i, v := range b.vocab {
		for _, w := range words {
			if w == v {
				vec[i]++
			}
		}
	}
	return vec, nil
}

type memoryEmbeddingCache struct {
	mu      sync.Mutex
	vectors map[string][]float32
	lookups int
	stores  int
	deletes int
}

func newMemoryEmbeddingCache() *memoryEmbeddingCache {
	return &memoryEmbeddingCache{vectors: make(map[string][]float32)}
}

func (c *memoryEmbeddingCache) Lookup(_ context.Context, modelID, text string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	v, ok := c.vectors[modelID+"\x00"+text]
	return v, ok, nil
}

func (c *memoryEmbeddingCache) Store(_ context.Context, modelID, text string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores++
	c.vectors[modelID+"\x00"+text] = vector
	return nil
}

func (c *memoryEmbeddingCache) Delete(_ context.Context, modelID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	delete(c.vectors, modelID+"\x00"+text)
	return nil
}

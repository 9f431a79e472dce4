package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type fakeWorker struct {
	got    *models.AnalyzeRequest
	report *models.AnalysisReport
	err    error
}

func (f *fakeWorker) Start(context.Context) {}
func (f *fakeWorker) Stop()                 {}

func (f *fakeWorker) Submit(_ context.Context, req *models.AnalyzeRequest) (*models.AnalysisReport, error) {
	f.got = req
	return f.report, f.err
}

func newTestApp(worker services.Worker, maxFileSize int64) *fiber.App {
	app := fiber.New()
	h := NewAnalyzeHandler(services.NewDocumentLoader(maxFileSize), worker)
	app.Post("/api/v1/analyze", h.HandleAnalyze)
	return app
}

type multipartField struct {
	name, value string
}

func multipartBody(t *testing.T, filename string, file []byte, fields ...multipartField) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	for _, f := range fields {
		require.NoError(t, w.WriteField(f.name, f.value))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doAnalyze(t *testing.T, app *fiber.App, body *bytes.Buffer, contentType string) (int, []byte, string) {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := &bytes.Buffer{}
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes(), resp.Header.Get(requestIDHeader)
}

func TestHandleAnalyze_Success(t *testing.T) {
	worker := &fakeWorker{report: &models.AnalysisReport{
		SimilarityScore: 42.5,
		ExtractedSkills: []string{"Python"},
		MatchedSkills:   []string{"Python"},
		MissingSkills:   []string{"Rust"},
		Insights:        []string{services.InsightAddMoreSkills},
		ResumeText:      "Python developer",
	}}
	app := newTestApp(worker, 1024)

	body, ct := multipartBody(t, "resume.pdf", []byte("%PDF-1.4 fake"),
		multipartField{"job_description", "Python and Rust engineer"},
		multipartField{"required_skills", "Python"},
		multipartField{"required_skills", " Rust "},
		multipartField{"required_skills", "  "},
	)

	status, raw, requestID := doAnalyze(t, app, body, ct)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.NotEmpty(t, requestID)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 42.5, report.SimilarityScore)
	assert.Equal(t, []string{"Rust"}, report.MissingSkills)

	require.NotNil(t, worker.got)
	assert.Equal(t, "Python and Rust engineer", worker.got.JobDescription)
	assert.Equal(t, "", worker.got.ExperienceLevel)
	assert.Equal(t, []string{"Python", " Rust ", "  "}, worker.got.RequiredSkills)
	assert.Equal(t, models.FormatPDF, worker.got.Document.Format)
	assert.Equal(t, []byte("%PDF-1.4 fake"), worker.got.Document.Data)
}

func TestHandleAnalyze_PassesFormValuesUnchanged(t *testing.T) {
	worker := &fakeWorker{report: &models.AnalysisReport{}}
	app := newTestApp(worker, 1024)

	body, ct := multipartBody(t, "resume.pdf", []byte("%PDF-1.4"),
		multipartField{"experience_level", " senior "},
		multipartField{"required_skills", " Python"},
		multipartField{"required_skills", ""},
	)

	status, raw, _ := doAnalyze(t, app, body, ct)
	require.Equal(t, fiber.StatusOK, status, string(raw))

	require.NotNil(t, worker.got)
	assert.Equal(t, " senior ", worker.got.ExperienceLevel)
	assert.Equal(t, []string{" Python", ""}, worker.got.RequiredSkills)
}

func TestHandleAnalyze_NoRequiredSkills(t *testing.T) {
	worker := &fakeWorker{report: &models.AnalysisReport{}}
	app := newTestApp(worker, 1024)

	body, ct := multipartBody(t, "resume.pdf", []byte("%PDF-1.4"))

	status, _, _ := doAnalyze(t, app, body, ct)
	require.Equal(t, fiber.StatusOK, status)

	require.NotNil(t, worker.got)
	assert.NotNil(t, worker.got.RequiredSkills)
	assert.Empty(t, worker.got.RequiredSkills)
}

func TestHandleAnalyze_MissingResume(t *testing.T) {
	worker := &fakeWorker{}
	app := newTestApp(worker, 1024)

	body, ct := multipartBody(t, "", nil, multipartField{"job_description", "x"})

	status, raw, _ := doAnalyze(t, app, body, ct)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(raw), "resume file is required")
	assert.Nil(t, worker.got)
}

func TestHandleAnalyze_FileTooLarge(t *testing.T) {
	worker := &fakeWorker{}
	app := newTestApp(worker, 8)

	body, ct := multipartBody(t, "resume.pdf", bytes.Repeat([]byte("a"), 64))

	status, _, _ := doAnalyze(t, app, body, ct)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Nil(t, worker.got)
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"unsupported", services.NewUnsupportedFormatError("extract", "docx"), fiber.StatusUnsupportedMediaType, "unsupported_format"},
		{"corrupt", services.NewCorruptDocumentError("extract", errors.New("xref")), fiber.StatusUnprocessableEntity, "corrupt_document"},
		{"no required skills", services.NewDivisionUndefinedError("generate_insights"), fiber.StatusUnprocessableEntity, "division_undefined"},
		{"model down", services.NewModelUnavailableError("embed", errors.New("503")), fiber.StatusServiceUnavailable, "model_unavailable"},
		{"model timeout", services.NewModelUnavailableError("inference", context.DeadlineExceeded), fiber.StatusGatewayTimeout, "model_unavailable"},
		{"stopped", services.ErrWorkerStopped, fiber.StatusServiceUnavailable, ""},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeWorker{err: fmt.Errorf("failed to analyze: %w", tt.err)}, 1024)
			body, ct := multipartBody(t, "resume.pdf", []byte("%PDF-1.4"),
				multipartField{"required_skills", "Go"})

			status, raw, _ := doAnalyze(t, app, body, ct)
			assert.Equal(t, tt.status, status)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &resp))
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Equal(t, tt.status, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleAnalyze_KeepsRequestID(t *testing.T) {
	app := newTestApp(&fakeWorker{report: &models.AnalysisReport{}}, 1024)
	body, ct := multipartBody(t, "resume.pdf", []byte("%PDF-1.4"))

	req := httptest.NewRequest("POST", "/api/v1/analyze", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set(requestIDHeader, "req-123")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get(requestIDHeader))
}

package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const requestIDHeader = "X-Request-ID"

type AnalyzeHandler struct {
	loader services.DocumentLoader
	worker services.Worker
}

func NewAnalyzeHandler(loader services.DocumentLoader, worker services.Worker) *AnalyzeHandler {
	return &AnalyzeHandler{
		loader: loader,
		worker: worker,
	}
}

// HandleAnalyze handles POST /api/v1/analyze
//
// Multipart fields: resume (file), job_description, experience_level and
// required_skills (repeatable). Form values reach the analyzer exactly as sent.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	requestID := c.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDHeader, requestID)

	ctx := logger.WithRequestID(c.UserContext(), requestID)
	log := logger.Ctx(ctx)

	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "", "failed to parse multipart form")
	}

	resumeFiles, exists := form.File["resume"]
	if !exists || len(resumeFiles) == 0 {
		return respondError(c, fiber.StatusBadRequest, "", "resume file is required")
	}

	doc, err := h.loader.FromFileHeader(resumeFiles[0])
	if err != nil {
		if errors.Is(err, services.ErrFileTooLarge) {
			return respondError(c, fiber.StatusBadRequest, "", err.Error())
		}
		return respondError(c, fiber.StatusInternalServerError, "", err.Error())
	}

	req := &models.AnalyzeRequest{
		Document:        doc,
		JobDescription:  formValue(form.Value, "job_description"),
		ExperienceLevel: formValue(form.Value, "experience_level"),
		RequiredSkills:  requiredSkills(form.Value["required_skills"]),
	}

	log.Info().
		Str("filename", doc.Filename).
		Int("bytes", len(doc.Data)).
		Int("required_skills", len(req.RequiredSkills)).
		Msg("📥 Analysis requested")

	report, err := h.worker.Submit(ctx, req)
	if err != nil {
		status, kind := statusFor(err)
		log.Warn().Err(err).Int("status", status).Msg("⚠️  Analysis failed")
		return respondError(c, status, kind, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(report)
}

// statusFor maps an analysis failure to an HTTP status and error kind.
func statusFor(err error) (int, string) {
	if errors.Is(err, services.ErrWorkerStopped) {
		return fiber.StatusServiceUnavailable, ""
	}

	kind, ok := services.KindOf(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return fiber.StatusGatewayTimeout, ""
		}
		return fiber.StatusInternalServerError, ""
	}

	switch kind {
	case services.KindUnsupportedFormat:
		return fiber.StatusUnsupportedMediaType, string(kind)
	case services.KindCorruptDocument, services.KindDivisionUndefined:
		return fiber.StatusUnprocessableEntity, string(kind)
	case services.KindModelUnavailable:
		if errors.Is(err, context.DeadlineExceeded) {
			return fiber.StatusGatewayTimeout, string(kind)
		}
		return fiber.StatusServiceUnavailable, string(kind)
	default:
		return fiber.StatusInternalServerError, string(kind)
	}
}

func respondError(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Error: message,
		Kind:  kind,
		Code:  status,
	})
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// requiredSkills returns the repeated field values untouched, or an empty list
// when the field is absent.
func requiredSkills(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

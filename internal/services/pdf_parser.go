package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

const pdfHeaderSearchWindow = 1024

var pdfMagic = []byte("%PDF-")

type PDFParserService interface {
	ExtractText(doc models.Document) (string, error)
	ExtractTextWithMetaData(doc models.Document) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	Filename  string
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

// ExtractText implements PDFParserService.
func (p *pdfParserService) ExtractText(doc models.Document) (string, error) {
	content, err := p.ExtractTextWithMetaData(doc)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

// ExtractTextWithMetaData implements PDFParserService.
//
// Page texts are concatenated in page order without a separator. Pages that carry
// no text contribute an empty string.
func (p *pdfParserService) ExtractTextWithMetaData(doc models.Document) (content *PDFContent, err error) {
	if err := validatePDF(doc); err != nil {
		return nil, err
	}

	// ledongthuc/pdf panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = NewCorruptDocumentError("extract", fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return nil, NewCorruptDocumentError("extract", fmt.Errorf("failed to open PDF: %w", err))
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, NewCorruptDocumentError("extract", fmt.Errorf("failed to read page %d: %w", pageIndex, err))
		}

		textBuilder.WriteString(text)
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		logger.Warn().
			Str("filename", doc.Filename).
			Int("pages", totalPage).
			Msg("⚠️  No extractable text in PDF (image-only pages?)")
	}

	return &PDFContent{
		Text:      text,
		PageCount: totalPage,
		Filename:  doc.Filename,
	}, nil
}

func validatePDF(doc models.Document) error {
	if format := strings.ToLower(strings.TrimSpace(doc.Format)); format != "" && format != models.FormatPDF {
		return NewUnsupportedFormatError("extract", fmt.Sprintf("format %q is not supported", doc.Format))
	}
	if len(doc.Data) == 0 {
		return NewUnsupportedFormatError("extract", "empty document")
	}

	head := doc.Data
	if len(head) > pdfHeaderSearchWindow {
		head = head[:pdfHeaderSearchWindow]
	}
	if !bytes.Contains(head, pdfMagic) {
		return NewUnsupportedFormatError("extract", "missing %PDF- header")
	}
	return nil
}

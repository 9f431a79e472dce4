package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
)

var ErrFileTooLarge = errors.New("file too large")

// DocumentLoader reads resume uploads into memory. Nothing is written to disk.
type DocumentLoader interface {
	FromFileHeader(file *multipart.FileHeader) (models.Document, error)
	FromPath(path string) (models.Document, error)
}

type documentLoader struct {
	maxFileSize int64
}

// NewDocumentLoader returns a loader rejecting files above maxFileSize bytes.
// A non-positive limit disables the check.
func NewDocumentLoader(maxFileSize int64) DocumentLoader {
	return &documentLoader{maxFileSize: maxFileSize}
}

// FromFileHeader implements DocumentLoader.
func (l *documentLoader) FromFileHeader(file *multipart.FileHeader) (models.Document, error) {
	if err := l.checkSize(file.Size); err != nil {
		return models.Document{}, err
	}

	src, err := file.Open()
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return l.read(src, file.Filename)
}

// FromPath implements DocumentLoader.
func (l *documentLoader) FromPath(path string) (models.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if err := l.checkSize(info.Size()); err != nil {
		return models.Document{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return l.read(f, filepath.Base(path))
}

func (l *documentLoader) read(r io.Reader, filename string) (models.Document, error) {
	if l.maxFileSize > 0 {
		r = io.LimitReader(r, l.maxFileSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to read file: %w", err)
	}
	if err := l.checkSize(int64(len(data))); err != nil {
		return models.Document{}, err
	}

	return models.Document{
		Data:     data,
		Format:   FormatFromFilename(filename),
		Filename: filename,
	}, nil
}

func (l *documentLoader) checkSize(size int64) error {
	if l.maxFileSize > 0 && size > l.maxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrFileTooLarge, size, l.maxFileSize)
	}
	return nil
}

// FormatFromFilename returns the lower-cased extension without the dot, or ""
// when the name has none.
func FormatFromFilename(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindCorruptDocument   ErrorKind = "corrupt_document"
	KindModelUnavailable  ErrorKind = "model_unavailable"
	KindDivisionUndefined ErrorKind = "division_undefined"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrModelUnavailable  = errors.New("model unavailable")
	ErrDivisionUndefined = errors.New("match ratio undefined for empty required skills")

	ErrVectorLengthMismatch = errors.New("vector length mismatch")
	ErrWorkerStopped        = errors.New("worker stopped")
)

var baseErrors = map[ErrorKind]error{
	KindUnsupportedFormat: ErrUnsupportedFormat,
	KindCorruptDocument:   ErrCorruptDocument,
	KindModelUnavailable:  ErrModelUnavailable,
	KindDivisionUndefined: ErrDivisionUndefined,
}

// AnalysisError is a fatal pipeline failure of a given kind.
type AnalysisError struct {
	Kind   ErrorKind
	Op     string
	Detail string
	Cause  error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("%s (op: %s)", baseErrors[e.Kind], e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is.
func (e *AnalysisError) Unwrap() []error {
	errs := []error{baseErrors[e.Kind]}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// KindOf returns the kind of the first AnalysisError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

func NewUnsupportedFormatError(op, detail string) error {
	return &AnalysisError{Kind: KindUnsupportedFormat, Op: op, Detail: detail}
}

func NewCorruptDocumentError(op string, cause error) error {
	return &AnalysisError{Kind: KindCorruptDocument, Op: op, Cause: cause}
}

func NewModelUnavailableError(op string, cause error) error {
	return &AnalysisError{Kind: KindModelUnavailable, Op: op, Cause: cause}
}

func NewDivisionUndefinedError(op string) error {
	return &AnalysisError{Kind: KindDivisionUndefined, Op: op}
}

// asModelError keeps an existing AnalysisError intact and classifies anything else
// as a model failure.
func asModelError(op string, err error) error {
	if _, ok := KindOf(err); ok {
		return err
	}
	return NewModelUnavailableError(op, err)
}

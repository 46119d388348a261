package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies extraction failures
type ErrorType string

const (
	ErrorTypeUnsupportedKind ErrorType = "unsupported_kind"
	ErrorTypeDecode          ErrorType = "decode"
	ErrorTypePage            ErrorType = "page"
	ErrorTypeEngineInit      ErrorType = "engine_init"
	ErrorTypeCancelled       ErrorType = "cancelled"
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeConfig          ErrorType = "config"
)

var (
	// ErrUnsupportedKind is wrapped by every unsupported-kind failure.
	ErrUnsupportedKind = errors.New("unsupported file type")

	// ErrNoPages is wrapped when a paged document decodes to zero pages.
	ErrNoPages = errors.New("document has no pages")
)

// ExtractionError is the single failure type returned by an extraction run.
// PageIndex is 1-based and only set for ErrorTypePage.
type ExtractionError struct {
	Type      ErrorType
	PageIndex int
	Message   string
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new extraction error
func NewExtractionError(errType ErrorType, message string, err error) *ExtractionError {
	return &ExtractionError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func UnsupportedKindError(kind Kind) *ExtractionError {
	return NewExtractionError(ErrorTypeUnsupportedKind,
		"Unsupported file type. Please upload a PDF, JPG, PNG, or TXT file",
		fmt.Errorf("%w: %s", ErrUnsupportedKind, kind))
}

func DecodeError(err error) *ExtractionError {
	return NewExtractionError(ErrorTypeDecode,
		"Failed to load the PDF. The file may be corrupt or in an unsupported format", err)
}

func PageError(pageIndex int, err error) *ExtractionError {
	e := NewExtractionError(ErrorTypePage,
		fmt.Sprintf("Failed to process page %d. The page may be damaged or contain unsupported content", pageIndex), err)
	e.PageIndex = pageIndex
	return e
}

func EngineInitError(err error) *ExtractionError {
	return NewExtractionError(ErrorTypeEngineInit, "OCR engine could not be started", err)
}

func ImageError(err error) *ExtractionError {
	return NewExtractionError(ErrorTypePage,
		"Failed to recognize text from the image. It might be in an unsupported format or too complex", err)
}

func CancelledError(err error) *ExtractionError {
	return NewExtractionError(ErrorTypeCancelled, "Extraction cancelled", err)
}

func ValidationError(message string, err error) *ExtractionError {
	return NewExtractionError(ErrorTypeValidation, message, err)
}

func ConfigError(message string, err error) *ExtractionError {
	return NewExtractionError(ErrorTypeConfig, message, err)
}

// IsType reports whether err is an ExtractionError of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *ExtractionError
	return errors.As(err, &e) && e.Type == errType
}

// FailedPage returns the 1-based page index of a page failure.
func FailedPage(err error) (int, bool) {
	var e *ExtractionError
	if errors.As(err, &e) && e.Type == ErrorTypePage && e.PageIndex > 0 {
		return e.PageIndex, true
	}
	return 0, false
}

// RedactionError wraps any failure of the text-understanding service.
// Its message is the underlying cause's message.
type RedactionError struct {
	Err error
}

func (e *RedactionError) Error() string {
	if e.Err == nil {
		return "Failed to redact information due to an AI service error"
	}
	return e.Err.Error()
}

func (e *RedactionError) Unwrap() error {
	return e.Err
}

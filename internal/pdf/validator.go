package pdf

import (
	"bytes"
	"fmt"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
)

// largeDocumentSize triggers a warning, not a rejection
const largeDocumentSize = 100 * 1024 * 1024

// maxScale bounds the render magnification (about 1150 DPI)
const maxScale = 16.0

var pdfMagic = []byte("%PDF-")

// Validator provides input validation for PDF payloads
type Validator struct {
	logger *observability.Logger
}

// NewValidator creates a new validator instance
func NewValidator(logger *observability.Logger) *Validator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Validator{logger: logger}
}

// ValidateData checks that data looks like a PDF container
func (v *Validator) ValidateData(data []byte) error {
	if len(data) == 0 {
		return domain.ValidationError("PDF payload is empty", nil)
	}

	// The header may be preceded by junk bytes; readers accept it within the first KB.
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, pdfMagic) {
		return domain.ValidationError("payload is not a PDF (missing %PDF- header)", nil)
	}

	if len(data) > largeDocumentSize {
		v.logger.Warn().Int("size_mb", len(data)/(1024*1024)).Msg("PDF is very large, processing may take a while")
	}

	return nil
}

// ValidateScale validates the render magnification
func (v *Validator) ValidateScale(scale float64) error {
	if scale <= 0 || scale > maxScale {
		return domain.ValidationError(fmt.Sprintf("scale must be in (0, %.0f], got %g", maxScale, scale), nil)
	}
	return nil
}

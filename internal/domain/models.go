package domain

import (
	"image"
	"strings"
)

// Kind is the declared kind of an input document
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPlainText
	KindImage
	KindPagedDocument
)

func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "plain_text"
	case KindImage:
		return "image"
	case KindPagedDocument:
		return "paged_document"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the accepted kinds.
func (k Kind) Valid() bool {
	return k == KindPlainText || k == KindImage || k == KindPagedDocument
}

// Document is an input payload plus its declared kind.
// The pipeline only reads Data and never keeps it after a call returns.
type Document struct {
	Kind Kind
	Data []byte
	Name string // optional, used for logging and output naming
}

// Page is a single rendered page of a paged document
type Page struct {
	Index  int // 1-based
	Bitmap image.Image
}

// ProgressEvent is a point-in-time progress notification.
type ProgressEvent struct {
	Status   string  `json:"status"`
	Fraction float64 `json:"fraction"`
}

// Percent returns the fraction rounded to a whole percentage.
func (e ProgressEvent) Percent() int {
	return int(e.Fraction*100 + 0.5)
}

// ProgressFunc receives progress events. It is called synchronously and
// never concurrently for the same run.
type ProgressFunc func(ProgressEvent)

// Status labels
const (
	StatusInitializing   = "Initializing OCR engine..."
	StatusRecognizeImage = "Recognizing text from image..."
	StatusComplete       = "Processing complete."
	StatusRedacting      = "Analyzing with AI to redact PII..."
)

// RedactionMarker replaces every masked PII span.
const RedactionMarker = "[REDACTED]"

// PageSeparator joins page texts in an extraction result.
const PageSeparator = "\n\n"

// IsBlank reports whether text has nothing to redact.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

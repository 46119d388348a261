package domain

import (
	"context"
	"image"
)

// Rasterizer opens paged-document containers
type Rasterizer interface {
	// Open decodes the container. It must not render any page.
	Open(ctx context.Context, data []byte) (PagedDocument, error)
}

// PagedDocument is an opened container. Callers must Close it.
type PagedDocument interface {
	NumPages() int

	// RenderPage renders the 1-based page at the given magnification
	// (1.0 = 72 DPI).
	RenderPage(ctx context.Context, index int, scale float64) (image.Image, error)

	Close() error
}

// RecognizerFactory creates one recognition engine per extraction run
type RecognizerFactory interface {
	NewRecognizer(ctx context.Context) (Recognizer, error)
}

// Recognizer runs OCR. onProgress receives the engine's own 0..1 progress
// and may be nil.
type Recognizer interface {
	// RecognizeImage recognizes a rendered bitmap
	RecognizeImage(ctx context.Context, img image.Image, onProgress func(float64)) (string, error)

	// RecognizeBytes recognizes an encoded JPEG or PNG
	RecognizeBytes(ctx context.Context, data []byte, onProgress func(float64)) (string, error)

	// Close releases the engine
	Close() error
}

// GenerateOptions carries generation hints for a TextGenerator.
type GenerateOptions struct {
	// Temperature 0 requests minimum-variance output. It is a hint;
	// services do not guarantee identical output across calls.
	Temperature float32
}

// TextGenerator is an external text-understanding service
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
)

// baseDPI is the resolution of a page rendered at magnification 1.0
const baseDPI = 72.0

// DefaultScale favors recognition accuracy over rendering speed.
const DefaultScale = 3.0

// Converter implements domain.Rasterizer using go-fitz (MuPDF)
type Converter struct {
	logger *observability.Logger
}

// NewConverter creates a new PDF converter instance
func NewConverter(logger *observability.Logger) *Converter {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Converter{logger: logger.WithOperation("rasterize")}
}

// Open decodes a PDF container held in memory. No page is rendered.
func (c *Converter) Open(ctx context.Context, data []byte) (domain.PagedDocument, error) {
	if err := NewValidator(c.logger).ValidateData(data); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	c.logger.Debug().Int("pages", doc.NumPage()).Msg("Opened PDF")
	return &document{doc: doc}, nil
}

// document is an opened fitz document
type document struct {
	doc *fitz.Document
}

func (d *document) NumPages() int {
	return d.doc.NumPage()
}

// RenderPage renders a 1-based page into an RGBA bitmap
func (d *document) RenderPage(ctx context.Context, index int, scale float64) (image.Image, error) {
	if err := NewValidator(nil).ValidateScale(scale); err != nil {
		return nil, err
	}
	if index < 1 || index > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", index, d.doc.NumPage())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := d.doc.ImageDPI(index-1, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index, err)
	}
	return img, nil
}

// Close releases the MuPDF document
func (d *document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

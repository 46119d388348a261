// Package pipeline is the public entry point for MediCloak: it extracts
// text from a document and redacts PII from that text.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/config"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/detect"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/extract"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/llm"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/ocr"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/pdf"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/redact"
)

// Re-export types for the public API
type (
	Document        = domain.Document
	Kind            = domain.Kind
	ProgressEvent   = domain.ProgressEvent
	ProgressFunc    = domain.ProgressFunc
	ExtractionError = domain.ExtractionError
	RedactionError  = domain.RedactionError
)

// Kind constants
const (
	KindPlainText     = domain.KindPlainText
	KindImage         = domain.KindImage
	KindPagedDocument = domain.KindPagedDocument
)

// RedactionMarker replaces every masked PII span.
const RedactionMarker = domain.RedactionMarker

// Extractor turns a document into text
type Extractor interface {
	Extract(ctx context.Context, doc domain.Document, onProgress domain.ProgressFunc) (string, error)
}

// Client wires extraction and redaction together
type Client struct {
	extractor Extractor
	redactor  redact.Interface
	generator *llm.Lazy
	timeout   time.Duration
	logger    *observability.Logger
}

// New creates a Client from configuration. The AI client is created on the
// first redaction, so extraction works without an API key.
func New(cfg *config.Config, logger *observability.Logger) (*Client, error) {
	if logger == nil {
		logger = observability.Nop()
	}

	gen, err := llm.NewGenerator(cfg.Redaction.Provider, cfg.APIKey(), cfg.Redaction.Model)
	if err != nil {
		return nil, domain.ConfigError("invalid redaction provider", err)
	}

	service := extract.NewService(
		pdf.NewConverter(logger),
		ocr.NewFactory(ocr.Config{
			Languages:   cfg.OCR.Languages,
			TessdataDir: cfg.OCR.TessdataDir,
			PageSegMode: cfg.OCR.PageSegMode,
		}, logger),
		extract.WithScale(cfg.OCR.RenderScale),
		extract.WithLogger(logger),
	)

	redactor := redact.WithRetry(
		redact.New(gen, redact.WithLogger(logger)),
		redact.RetryConfig{
			MaxRetries:      cfg.Redaction.MaxRetries,
			InitialInterval: cfg.Redaction.RetryInterval,
			MaxInterval:     30 * time.Second,
		},
	)

	return &Client{
		extractor: service,
		redactor:  redactor,
		generator: gen,
		timeout:   cfg.Redaction.Timeout,
		logger:    logger,
	}, nil
}

// NewWithComponents creates a Client from explicit collaborators
func NewWithComponents(extractor Extractor, redactor redact.Interface, logger *observability.Logger) *Client {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Client{extractor: extractor, redactor: redactor, logger: logger}
}

// Extract converts doc to text, reporting progress to onProgress
func (c *Client) Extract(ctx context.Context, doc domain.Document, onProgress domain.ProgressFunc) (string, error) {
	return c.extractor.Extract(ctx, doc, onProgress)
}

// ExtractFile detects the kind of data from its name and declared MIME type
// and extracts it
func (c *Client) ExtractFile(ctx context.Context, name, declaredMIME string, data []byte, onProgress domain.ProgressFunc) (string, error) {
	doc, err := detect.DocumentFrom(name, declaredMIME, data)
	if err != nil {
		return "", err
	}
	return c.Extract(ctx, doc, onProgress)
}

// Redact replaces every PII span in text with RedactionMarker. A configured
// redaction timeout bounds the whole call, retries included.
func (c *Client) Redact(ctx context.Context, text string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.redactor.Redact(ctx, text)
}

// Result holds the output of Process
type Result struct {
	Extracted string
	Redacted  string
}

// Process extracts doc and redacts the extracted text. onProgress sees the
// extraction events only; callers that show a redaction phase report it
// themselves once extraction has returned.
func (c *Client) Process(ctx context.Context, doc domain.Document, onProgress domain.ProgressFunc) (*Result, error) {
	text, err := c.Extract(ctx, doc, onProgress)
	if err != nil {
		return nil, err
	}

	redacted, err := c.Redact(ctx, text)
	if err != nil {
		return &Result{Extracted: text}, err
	}

	c.logger.Info().
		Str("document", doc.Name).
		Int("extracted_len", len(text)).
		Int("redacted_len", len(redacted)).
		Msg("Document processed")

	return &Result{Extracted: text, Redacted: redacted}, nil
}

// ProcessFile detects the kind of data and runs Process on it
func (c *Client) ProcessFile(ctx context.Context, name, declaredMIME string, data []byte, onProgress domain.ProgressFunc) (*Result, error) {
	doc, err := detect.DocumentFrom(name, declaredMIME, data)
	if err != nil {
		return nil, err
	}
	return c.Process(ctx, doc, onProgress)
}

// OutputName returns the download name for the redacted copy of name:
// everything before the first dot, prefixed and given a .txt extension
func OutputName(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == string(filepath.Separator) {
		base = "document"
	}
	return "redacted_" + base + ".txt"
}

// Close releases the AI client if one was created
func (c *Client) Close() error {
	if c.generator == nil {
		return nil
	}
	return c.generator.Close()
}

// Package ocr implements the recognition engine on top of Tesseract.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
)

// Progress checkpoints reported by a single recognition. Tesseract has no
// incremental progress API, so each call reports these fixed stages.
const (
	progressImageLoaded = 0.1
	progressConfigured  = 0.2
	progressDone        = 1.0
)

// Config configures the Tesseract engine
type Config struct {
	Languages     []string
	TessdataDir   string
	PageSegMode   int // 0 keeps the Tesseract default
	ExtraSettings map[string]string
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{Languages: []string{"eng"}}
}

// Factory implements domain.RecognizerFactory
type Factory struct {
	cfg       Config
	logger    *observability.Logger
	newClient func() client
}

// NewFactory creates a Tesseract recognizer factory
func NewFactory(cfg Config, logger *observability.Logger) *Factory {
	if logger == nil {
		logger = observability.Nop()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultConfig().Languages
	}
	return &Factory{
		cfg:       cfg,
		logger:    logger.WithOperation("ocr"),
		newClient: func() client { return gosseract.NewClient() },
	}
}

// client is the subset of gosseract.Client used here
type client interface {
	SetLanguage(langs ...string) error
	SetTessdataPrefix(prefix string) error
	SetPageSegMode(mode gosseract.PageSegMode) error
	SetVariable(key gosseract.SettableVariable, value string) error
	SetImageFromBytes(data []byte) error
	Text() (string, error)
	Close() error
}

// NewRecognizer starts one engine. The caller owns it and must Close it.
func (f *Factory) NewRecognizer(ctx context.Context) (domain.Recognizer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.newClient()
	if err := f.configure(c); err != nil {
		_ = c.Close()
		return nil, err
	}

	f.logger.Debug().Str("languages", strings.Join(f.cfg.Languages, "+")).Msg("OCR engine started")
	return &Recognizer{client: c, logger: f.logger}, nil
}

func (f *Factory) configure(c client) error {
	if f.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(f.cfg.TessdataDir); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(f.cfg.Languages...); err != nil {
		return fmt.Errorf("set languages: %w", err)
	}
	if f.cfg.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(f.cfg.PageSegMode)); err != nil {
			return fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	for k, v := range f.cfg.ExtraSettings {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return nil
}

// Recognizer is a single Tesseract engine. It is not safe for concurrent use.
type Recognizer struct {
	client client
	logger *observability.Logger
	closed bool
}

// RecognizeImage encodes the bitmap losslessly and recognizes it
func (r *Recognizer) RecognizeImage(ctx context.Context, img image.Image, onProgress func(float64)) (string, error) {
	if img == nil {
		return "", errors.New("nil bitmap")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode bitmap: %w", err)
	}
	return r.RecognizeBytes(ctx, buf.Bytes(), onProgress)
}

// RecognizeBytes recognizes an encoded image
func (r *Recognizer) RecognizeBytes(ctx context.Context, data []byte, onProgress func(float64)) (string, error) {
	if r.closed {
		return "", errors.New("recognizer is closed")
	}
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	report := func(p float64) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	report(0)
	if err := r.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	report(progressImageLoaded)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	report(progressConfigured)

	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	report(progressDone)

	r.logger.Debug().Int("chars", len(text)).Msg("Recognized image")
	return text, nil
}

// Close terminates the engine. Subsequent calls are no-ops.
func (r *Recognizer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}

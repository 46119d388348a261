package redact

import (
	"context"
	"errors"
	"time"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/observability"
)

var errEmptyResponse = errors.New("AI service returned an empty response")

// Redactor masks PII in text using a TextGenerator. It makes exactly one
// Generate call per non-blank input and never retries.
type Redactor struct {
	gen    domain.TextGenerator
	logger *observability.Logger
}

// Option configures a Redactor
type Option func(*Redactor)

// WithLogger sets the logger
func WithLogger(logger *observability.Logger) Option {
	return func(r *Redactor) { r.logger = logger }
}

// New creates a Redactor backed by gen
func New(gen domain.TextGenerator, opts ...Option) *Redactor {
	r := &Redactor{gen: gen, logger: observability.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Redact returns text with every PII span replaced by the redaction marker.
// Blank input is returned unchanged without contacting the service.
func (r *Redactor) Redact(ctx context.Context, text string) (string, error) {
	if domain.IsBlank(text) {
		return text, nil
	}

	start := time.Now()
	out, err := r.gen.Generate(ctx, BuildPrompt(text), domain.GenerateOptions{Temperature: 0})
	if err != nil {
		r.logger.Error().Err(err).Int("input_len", len(text)).Msg("Redaction request failed")
		return "", &domain.RedactionError{Err: err}
	}
	if out == "" {
		r.logger.Error().Int("input_len", len(text)).Msg("Redaction returned no text")
		return "", &domain.RedactionError{Err: errEmptyResponse}
	}

	r.logger.Debug().
		Int("input_len", len(text)).
		Int("output_len", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Redaction complete")
	return out, nil
}

package redact

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/llm"
)

// RetryConfig holds retry configuration for caller-level redaction retries
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// Interface is satisfied by Redactor and by the retry decorator
type Interface interface {
	Redact(ctx context.Context, text string) (string, error)
}

type retrying struct {
	next Interface
	cfg  RetryConfig
}

// WithRetry layers exponential backoff above next. Failures the service
// marks as permanent are returned after the first attempt. MaxRetries of 0
// returns next unchanged.
func WithRetry(next Interface, cfg RetryConfig) Interface {
	if cfg.MaxRetries == 0 {
		return next
	}
	return &retrying{next: next, cfg: cfg}
}

func (r *retrying) Redact(ctx context.Context, text string) (string, error) {
	b := backoff.NewExponentialBackOff()
	if r.cfg.InitialInterval > 0 {
		b.InitialInterval = r.cfg.InitialInterval
	}
	if r.cfg.MaxInterval > 0 {
		b.MaxInterval = r.cfg.MaxInterval
	}
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.cfg.MaxRetries), ctx)

	var out string
	err := backoff.Retry(func() error {
		res, err := r.next.Redact(ctx, text)
		if err != nil {
			if !llm.IsRetryable(errors.Unwrap(err)) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = res
		return nil
	}, policy)
	if err != nil {
		var re *domain.RedactionError
		if errors.As(err, &re) {
			return "", re
		}
		return "", &domain.RedactionError{Err: err}
	}
	return out, nil
}

package llm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

// InitError reports that the backing generator could not be created
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize AI client: %v", e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// OpenFunc creates a generator on first use
type OpenFunc func(ctx context.Context) (domain.TextGenerator, error)

// Lazy defers generator construction until the first Generate call. A
// failed construction is not cached; the next call tries again.
type Lazy struct {
	open OpenFunc

	mu  sync.Mutex
	gen domain.TextGenerator
}

// NewLazy wraps open in a Lazy generator
func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) get(ctx context.Context) (domain.TextGenerator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != nil {
		return l.gen, nil
	}
	gen, err := l.open(ctx)
	if err != nil {
		return nil, &InitError{Err: err}
	}
	l.gen = gen
	return gen, nil
}

func (l *Lazy) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	gen, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return gen.Generate(ctx, prompt, opts)
}

// Close releases the generator if one was created
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen == nil {
		return nil
	}
	var err error
	if c, ok := l.gen.(io.Closer); ok {
		err = c.Close()
	}
	l.gen = nil
	return err
}

// NewGenerator builds a lazily initialized generator for the named provider
func NewGenerator(provider, apiKey, model string) (*Lazy, error) {
	switch provider {
	case "", "gemini":
		return NewLazy(func(ctx context.Context) (domain.TextGenerator, error) {
			return NewGemini(ctx, apiKey, model)
		}), nil
	case "openrouter":
		return NewLazy(func(ctx context.Context) (domain.TextGenerator, error) {
			if apiKey == "" {
				return nil, fmt.Errorf("OpenRouter API key is not configured")
			}
			return NewClient(apiKey, model), nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", provider)
	}
}

var _ domain.TextGenerator = (*Lazy)(nil)

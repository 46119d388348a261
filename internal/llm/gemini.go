package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini generates text with the Google Gemini API
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini opens a Gemini client for the given key
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is not configured")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &Gemini{client: cl, modelName: modelName}, nil
}

func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Generate issues one GenerateContent call and concatenates the text parts
// of the first candidate
func (g *Gemini) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(opts.Temperature)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

var _ domain.TextGenerator = (*Gemini)(nil)

package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrMissingAPIKey is returned by NewGemini without a key
	ErrMissingAPIKey = errors.New("gemini api key is not set")
	// ErrDisabled is returned by Disabled summarizers
	ErrDisabled = errors.New("summaries are disabled")
)

const promptTemplate = `You are a helpful project manager's assistant.
Analyse the team's tasks for today listed below and write a concise, positive and
professional "daily stand-up summary".

Make sure to include:
1. Key achievements (completed tasks).
2. Work in progress (pending tasks).
3. One short line of encouragement.

Format the answer as clear Markdown using bullet points.

Task data:
%s
`

// generator is the slice of the genai client used here
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini summarizes through the Gemini API
type Gemini struct {
	models generator
	model  string
}

// NewGemini creates a Gemini summarizer for model (DefaultModel when empty)
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(client.Models, model), nil
}

func newGemini(g generator, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{models: g, model: model}
}

// Prompt renders the stand-up prompt for entries
func Prompt(entries []Entry) (string, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode entries: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}

// Summarize implements Summarizer
func (g *Gemini) Summarize(ctx context.Context, entries []Entry) (string, error) {
	prompt, err := Prompt(entries)
	if err != nil {
		return "", err
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Disabled is a Summarizer that always fails with its error
type Disabled struct {
	Err error
}

// Summarize implements Summarizer
func (d Disabled) Summarize(context.Context, []Entry) (string, error) {
	if d.Err != nil {
		return "", fmt.Errorf("%w: %w", ErrDisabled, d.Err)
	}
	return "", ErrDisabled
}

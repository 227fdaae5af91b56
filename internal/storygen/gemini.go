// Package storygen produces story text from a user prompt via the Gemini API.
package storygen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	defaultModelName = "gemini-1.5-flash-latest"

	maxAttempts = 3
	retryDelay  = 2 * time.Second

	promptTemplate = `Write a creative and engaging short story with the following requirements:
- Title: Create an interesting title
- Characters: Develop 2-3 main characters with distinct personalities
- Setting: Describe the time and place where the story occurs
- Plot: Include a clear beginning, middle with conflict, and satisfying resolution
- Theme: Convey a meaningful message or lesson
- Style: Use vivid descriptions and natural dialogue

Story topic: %s`
)

// Gemini generates stories with a Gemini generative model.
type Gemini struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// New dials the Gemini API with the given key.
func New(ctx context.Context, apiKey string, log *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: defaultModelName, log: log}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Generate asks the model for a story and returns its text. Transient API
// failures are retried a few times before giving up.
func (g *Gemini) Generate(ctx context.Context, prompt string, wordCount int, genre string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	temp := float32(0.7)
	model.GenerationConfig = genai.GenerationConfig{Temperature: &temp}

	full := buildPrompt(prompt, wordCount, genre)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := model.GenerateContent(ctx, genai.Text(full))
		if err != nil {
			lastErr = err
			g.log.Warn("story generation attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if attempt < maxAttempts {
				select {
				case <-time.After(retryDelay):
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			continue
		}

		text := extractText(resp)
		if text == "" {
			lastErr = fmt.Errorf("model returned no text")
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", maxAttempts, lastErr)
}

func buildPrompt(prompt string, wordCount int, genre string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptTemplate, prompt)
	if genre != "" {
		fmt.Fprintf(&b, "\nGenre: %s (ensure the story follows genre conventions)", genre)
	}
	fmt.Fprintf(&b, "\nWord count: Approximately %d words\n", wordCount)
	b.WriteString("\nAdditional instructions:\n" +
		"- Avoid clichés and overused tropes\n" +
		"- Show character emotions through actions and dialogue\n" +
		"- Maintain consistent pacing throughout the story\n" +
		"- End with a satisfying conclusion that ties up main plot points")
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

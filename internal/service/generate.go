package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/repository"
)

// Generator produces story text from a prompt. Implementations are external
// and fallible; failures surface to the caller, never crash.
type Generator interface {
	Generate(ctx context.Context, prompt string, wordCount int, genre string) (string, error)
}

// GenerateService runs the generation pipeline: call the generator, then
// persist the result as a new story.
type GenerateService interface {
	// GenerateAndSave generates text for the prompt and saves it as a
	// story owned by ownerID. Zero wordCount and empty genre fall back to
	// the owner's preferences. On generation failure nothing is persisted.
	GenerateAndSave(ctx context.Context, ownerID int64, prompt string, wordCount int, genre string) (*model.Story, error)
}

type GenerateServiceImpl struct {
	gen     Generator
	stories repository.StoryRepository
	users   repository.UserRepository
}

// NewGenerateService constructs GenerateService.
func NewGenerateService(gen Generator, stories repository.StoryRepository, users repository.UserRepository) *GenerateServiceImpl {
	return &GenerateServiceImpl{gen: gen, stories: stories, users: users}
}

// GenerateAndSave generates text and persists it as a new story.
func (s *GenerateServiceImpl) GenerateAndSave(ctx context.Context, ownerID int64, prompt string, wordCount int, genre string) (*model.Story, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", errs.ErrValidation)
	}

	if wordCount == 0 || genre == "" {
		prefs, err := s.users.GetPreferences(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if wordCount == 0 {
			wordCount = prefs.DefaultWordCount
		}
		if genre == "" {
			genre = prefs.DefaultGenre
		}
	}
	if wordCount < model.MinWordCount || wordCount > model.MaxWordCount {
		return nil, fmt.Errorf("%w: word count %d outside [%d, %d]",
			errs.ErrValidation, wordCount, model.MinWordCount, model.MaxWordCount)
	}
	if !model.ValidGenre(genre) {
		return nil, fmt.Errorf("%w: unknown genre %q", errs.ErrValidation, genre)
	}

	text, err := s.gen.Generate(ctx, prompt, wordCount, genre)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: generator returned no text", errs.ErrGenerationFailed)
	}

	st := model.Story{
		OwnerID:       ownerID,
		Title:         model.TitleFromPrompt(prompt),
		Prompt:        prompt,
		Body:          text,
		Genre:         genre,
		AllowComments: true,
	}
	st.DeriveCounts()
	id, err := s.stories.Create(ctx, &st)
	if err != nil {
		return nil, err
	}
	st.ID = id

	if err := s.users.TouchReadingHistory(ctx, ownerID, id); err != nil {
		// history is bookkeeping; the story is already saved
		return &st, nil
	}
	return &st, nil
}

// Package service contains application services for stories, tags,
// generation, exports, accounts, and profiles.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/repository"
)

// StoryInput carries the editable fields of a story save.
type StoryInput struct {
	Title         string
	Prompt        string
	Body          string
	Genre         string
	IsPublic      bool
	AllowComments bool
	Tags          string // raw comma-separated
}

// StoryService defines story lifecycle and listing operations. Every
// mutating or revealing call takes the acting owner's id explicitly.
type StoryService interface {
	// Create validates input, derives counters, inserts the story, and
	// reconciles its tags. Returns the new id.
	Create(ctx context.Context, ownerID int64, in StoryInput) (int64, error)
	// Update rewrites a story scoped to (id, owner) and reconciles tags.
	Update(ctx context.Context, storyID, ownerID int64, in StoryInput) error
	// Delete soft-deletes a story. Idempotent for the same owner.
	Delete(ctx context.Context, storyID, ownerID int64) error
	// SetVisibility writes an explicit visibility value atomically.
	SetVisibility(ctx context.Context, storyID, ownerID int64, public bool) (bool, error)
	// ToggleVisibility flips visibility atomically in the store.
	ToggleVisibility(ctx context.Context, storyID, ownerID int64) (bool, error)
	// Get loads an owner's story with its tags, for the edit view.
	Get(ctx context.Context, storyID, ownerID int64) (*model.Story, []model.Tag, error)
	// GetPublic loads a public story with no owner check.
	GetPublic(ctx context.Context, storyID int64) (*model.Story, error)
	// ListOwn lists the owner's library, uncapped, newest first.
	ListOwn(ctx context.Context, ownerID int64, search, genre string) ([]model.StoryListItem, error)
	// ListPublic lists the public catalogue, capped at PublicListLimit.
	ListPublic(ctx context.Context, search, genre string, authorID int64) ([]model.StoryListItem, error)
	// Recent lists the owner's newest stories, capped at limit.
	Recent(ctx context.Context, ownerID int64, limit int) ([]model.StoryListItem, error)
}

// PublicListLimit caps the public catalogue listing.
const PublicListLimit = 100

type StoryServiceImpl struct {
	stories repository.StoryRepository
	tags    TagService
}

// NewStoryService constructs StoryService.
func NewStoryService(stories repository.StoryRepository, tags TagService) *StoryServiceImpl {
	return &StoryServiceImpl{stories: stories, tags: tags}
}

func validateInput(in *StoryInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.Body = strings.TrimSpace(in.Body)
	if in.Title == "" {
		return fmt.Errorf("%w: empty title", errs.ErrValidation)
	}
	if in.Body == "" {
		return fmt.Errorf("%w: empty body", errs.ErrValidation)
	}
	if !model.ValidGenre(in.Genre) {
		return fmt.Errorf("%w: unknown genre %q", errs.ErrValidation, in.Genre)
	}
	return nil
}

// Create inserts a story, then reconciles its tags. Counters are derived
// from the body here so they cannot drift from the stored text.
func (s *StoryServiceImpl) Create(ctx context.Context, ownerID int64, in StoryInput) (int64, error) {
	if err := validateInput(&in); err != nil {
		return 0, err
	}
	st := model.Story{
		OwnerID:       ownerID,
		Title:         in.Title,
		Prompt:        in.Prompt,
		Body:          in.Body,
		Genre:         in.Genre,
		IsPublic:      in.IsPublic,
		AllowComments: in.AllowComments,
	}
	st.DeriveCounts()
	id, err := s.stories.Create(ctx, &st)
	if err != nil {
		return 0, err
	}
	if err := s.tags.SaveStoryTags(ctx, id, in.Tags); err != nil {
		// the story row is saved; the previous (empty) tag set stands
		return id, err
	}
	return id, nil
}

// Update rewrites a story scoped to (id, owner), then reconciles its tags.
func (s *StoryServiceImpl) Update(ctx context.Context, storyID, ownerID int64, in StoryInput) error {
	if err := validateInput(&in); err != nil {
		return err
	}
	st := model.Story{
		ID:            storyID,
		OwnerID:       ownerID,
		Title:         in.Title,
		Prompt:        in.Prompt,
		Body:          in.Body,
		Genre:         in.Genre,
		IsPublic:      in.IsPublic,
		AllowComments: in.AllowComments,
	}
	st.DeriveCounts()
	if err := s.stories.Update(ctx, &st); err != nil {
		return err
	}
	return s.tags.SaveStoryTags(ctx, storyID, in.Tags)
}

// Delete soft-deletes a story.
func (s *StoryServiceImpl) Delete(ctx context.Context, storyID, ownerID int64) error {
	return s.stories.SoftDelete(ctx, storyID, ownerID)
}

// SetVisibility writes an explicit visibility value.
func (s *StoryServiceImpl) SetVisibility(ctx context.Context, storyID, ownerID int64, public bool) (bool, error) {
	return s.stories.SetVisibility(ctx, storyID, ownerID, public)
}

// ToggleVisibility flips visibility atomically.
func (s *StoryServiceImpl) ToggleVisibility(ctx context.Context, storyID, ownerID int64) (bool, error) {
	return s.stories.ToggleVisibility(ctx, storyID, ownerID)
}

// Get loads an owner's story and its tags.
func (s *StoryServiceImpl) Get(ctx context.Context, storyID, ownerID int64) (*model.Story, []model.Tag, error) {
	st, err := s.stories.GetByID(ctx, storyID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.tags.StoryTags(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}
	return st, tags, nil
}

// GetPublic loads a public story.
func (s *StoryServiceImpl) GetPublic(ctx context.Context, storyID int64) (*model.Story, error) {
	return s.stories.GetPublicByID(ctx, storyID)
}

// ListOwn lists the owner's library.
func (s *StoryServiceImpl) ListOwn(ctx context.Context, ownerID int64, search, genre string) ([]model.StoryListItem, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: missing owner", errs.ErrValidation)
	}
	return s.stories.List(ctx, model.StoryFilter{
		OwnerID: ownerID,
		Search:  search,
		Genre:   genre,
	})
}

// ListPublic lists the public catalogue.
func (s *StoryServiceImpl) ListPublic(ctx context.Context, search, genre string, authorID int64) ([]model.StoryListItem, error) {
	return s.stories.List(ctx, model.StoryFilter{
		PublicOnly: true,
		Search:     search,
		Genre:      genre,
		AuthorID:   authorID,
		Limit:      PublicListLimit,
	})
}

// RecentLimit caps the profile's recent-stories listing.
const RecentLimit = 5

// Recent lists the owner's newest stories.
func (s *StoryServiceImpl) Recent(ctx context.Context, ownerID int64, limit int) ([]model.StoryListItem, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: missing owner", errs.ErrValidation)
	}
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	return s.stories.List(ctx, model.StoryFilter{OwnerID: ownerID, Limit: limit})
}

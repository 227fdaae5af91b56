package service

import (
	"context"
	"strings"

	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/repository"
)

// TagService reconciles a story's tag set against raw comma-separated input.
type TagService interface {
	// SaveStoryTags parses raw input and reconciles the story's links to
	// exactly match it.
	SaveStoryTags(ctx context.Context, storyID int64, raw string) error
	// StoryTags returns the tags currently linked to a story.
	StoryTags(ctx context.Context, storyID int64) ([]model.Tag, error)
}

type TagServiceImpl struct {
	tags repository.TagRepository
}

// NewTagService constructs TagService.
func NewTagService(tags repository.TagRepository) *TagServiceImpl {
	return &TagServiceImpl{tags: tags}
}

// ParseTagList splits raw comma-separated input into tag names: each piece
// trimmed, empties dropped, duplicates collapsed on the exact trimmed string
// (case stays significant) preserving first-seen order.
func ParseTagList(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, piece := range strings.Split(raw, ",") {
		name := strings.TrimSpace(piece)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// SaveStoryTags reconciles the story's tag links with the parsed input.
func (s *TagServiceImpl) SaveStoryTags(ctx context.Context, storyID int64, raw string) error {
	return s.tags.Reconcile(ctx, storyID, ParseTagList(raw))
}

// StoryTags returns the tags currently linked to a story.
func (s *TagServiceImpl) StoryTags(ctx context.Context, storyID int64) ([]model.Tag, error) {
	return s.tags.ListForStory(ctx, storyID)
}

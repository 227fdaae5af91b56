// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/tinytales/tinytales-server/internal/model"
)

// StoryRepository owns CRUD and lifecycle transitions for stories.
type StoryRepository interface {
	// Create inserts a new story and returns its id. Word count and
	// reading time must already be derived from the body.
	Create(ctx context.Context, s *model.Story) (int64, error)

	// Update rewrites a story scoped to (id, owner). Returns ErrNotFound
	// when no row matches, hiding whether the story exists at all.
	Update(ctx context.Context, s *model.Story) error

	// SoftDelete marks a story deleted. Idempotent for the same owner.
	SoftDelete(ctx context.Context, storyID, ownerID int64) error

	// SetVisibility writes the explicit target value in one statement and
	// returns the resulting state.
	SetVisibility(ctx context.Context, storyID, ownerID int64, public bool) (bool, error)

	// ToggleVisibility flips is_public atomically in the store and returns
	// the resulting state.
	ToggleVisibility(ctx context.Context, storyID, ownerID int64) (bool, error)

	// GetByID loads a story scoped to its owner, excluding deleted rows.
	GetByID(ctx context.Context, storyID, ownerID int64) (*model.Story, error)

	// GetPublicByID loads a public, non-deleted story with no owner check.
	GetPublicByID(ctx context.Context, storyID int64) (*model.Story, error)

	// List returns stories matching the filter, annotated with favorite
	// and comment counts, newest first.
	List(ctx context.Context, f model.StoryFilter) ([]model.StoryListItem, error)
}

package repository

import (
	"context"

	"github.com/tinytales/tinytales-server/internal/model"
)

// TagRepository maps tag names to stable identifiers and maintains the
// story<->tag association.
type TagRepository interface {
	// GetOrCreate returns the id of the tag with the given name, creating
	// it if absent. Safe under concurrent calls for the same name.
	GetOrCreate(ctx context.Context, name string) (int64, error)

	// Reconcile adjusts a story's links to exactly match names, inserting
	// missing links and deleting stale ones inside one transaction.
	Reconcile(ctx context.Context, storyID int64, names []string) error

	// ListForStory returns the tags linked to a story, name-ordered.
	ListForStory(ctx context.Context, storyID int64) ([]model.Tag, error)
}

package repository

import (
	"context"

	"github.com/tinytales/tinytales-server/internal/model"
)

// UserRepository provides account storage and per-user bookkeeping.
type UserRepository interface {
	// Create inserts a new user together with a default preferences row
	// in one transaction and returns the new id.
	Create(ctx context.Context, u *model.User) (int64, error)
	// GetByID loads a user by id.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByLogin loads a user by username or email.
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	// UpdateProfile rewrites username and email.
	UpdateProfile(ctx context.Context, id int64, username, email string) error
	// UpdatePassword stores a new password hash.
	UpdatePassword(ctx context.Context, id int64, pwdHash []byte) error
	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, id int64) error
	// Stats returns story count and total words across non-deleted stories.
	Stats(ctx context.Context, id int64) (model.Stats, error)
	// GetPreferences loads generation defaults, falling back to defaults
	// when no row exists.
	GetPreferences(ctx context.Context, id int64) (model.Preferences, error)
	// SavePreferences upserts generation defaults.
	SavePreferences(ctx context.Context, p model.Preferences) error
	// TouchReadingHistory upserts a (user, story) read marker.
	TouchReadingHistory(ctx context.Context, userID, storyID int64) error
}

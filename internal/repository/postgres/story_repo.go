package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/model"
)

// StoryRepo implements StoryRepository using PostgreSQL.
type StoryRepo struct{ db *DB }

// NewStoryRepo constructs a story repository.
func NewStoryRepo(db *DB) *StoryRepo { return &StoryRepo{db: db} }

// nullGenre maps the empty genre to NULL for storage.
func nullGenre(g string) any {
	if g == "" {
		return nil
	}
	return g
}

// Create inserts a new story and returns its id.
func (r *StoryRepo) Create(ctx context.Context, s *model.Story) (int64, error) {
	const q = `
INSERT INTO stories (user_id, title, prompt, body, word_count, genre, reading_time, is_public, allow_comments)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id`
	var id int64
	err := r.db.Pool.QueryRow(ctx, q,
		s.OwnerID, s.Title, s.Prompt, s.Body, s.WordCount,
		nullGenre(s.Genre), s.ReadingTime, s.IsPublic, s.AllowComments,
	).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

// Update rewrites a story scoped to (id, owner). A zero-row update maps to
// ErrNotFound: wrong id and wrong owner are indistinguishable to the caller.
func (r *StoryRepo) Update(ctx context.Context, s *model.Story) error {
	const q = `
UPDATE stories
SET title=$3, prompt=$4, body=$5, word_count=$6, genre=$7, reading_time=$8,
    is_public=$9, allow_comments=$10, updated_at=now()
WHERE id=$1 AND user_id=$2 AND is_deleted = FALSE`
	tag, err := r.db.Pool.Exec(ctx, q,
		s.ID, s.OwnerID, s.Title, s.Prompt, s.Body, s.WordCount,
		nullGenre(s.Genre), s.ReadingTime, s.IsPublic, s.AllowComments,
	)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SoftDelete marks a story deleted. Re-deleting an already-deleted story
// for the same owner succeeds silently.
func (r *StoryRepo) SoftDelete(ctx context.Context, storyID, ownerID int64) error {
	const q = `
UPDATE stories SET is_deleted = TRUE, updated_at = now()
WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, storyID, ownerID)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetVisibility writes the explicit target value in a single statement.
func (r *StoryRepo) SetVisibility(ctx context.Context, storyID, ownerID int64, public bool) (bool, error) {
	const q = `
UPDATE stories SET is_public = $3, updated_at = now()
WHERE id=$1 AND user_id=$2 AND is_deleted = FALSE
RETURNING is_public`
	var got bool
	if err := r.db.Pool.QueryRow(ctx, q, storyID, ownerID, public).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, errs.ErrNotFound
		}
		return false, storeErr(err)
	}
	return got, nil
}

// ToggleVisibility flips is_public in one statement. The NOT is evaluated
// by the store, so two concurrent toggles alternate instead of both writing
// the opposite of the same stale read.
func (r *StoryRepo) ToggleVisibility(ctx context.Context, storyID, ownerID int64) (bool, error) {
	const q = `
UPDATE stories SET is_public = NOT is_public, updated_at = now()
WHERE id=$1 AND user_id=$2 AND is_deleted = FALSE
RETURNING is_public`
	var got bool
	if err := r.db.Pool.QueryRow(ctx, q, storyID, ownerID).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, errs.ErrNotFound
		}
		return false, storeErr(err)
	}
	return got, nil
}

const storyColumns = `
SELECT id, user_id, title, prompt, body, word_count, COALESCE(genre, ''),
       reading_time, is_public, allow_comments, is_deleted, created_at, updated_at
FROM stories`

func scanStory(row pgx.Row) (*model.Story, error) {
	var s model.Story
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Title, &s.Prompt, &s.Body, &s.WordCount,
		&s.Genre, &s.ReadingTime, &s.IsPublic, &s.AllowComments,
		&s.IsDeleted, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &s, nil
}

// GetByID loads one story scoped to its owner, excluding deleted rows.
func (r *StoryRepo) GetByID(ctx context.Context, storyID, ownerID int64) (*model.Story, error) {
	const q = storyColumns + `
WHERE id=$1 AND user_id=$2 AND is_deleted = FALSE`
	return scanStory(r.db.Pool.QueryRow(ctx, q, storyID, ownerID))
}

// GetPublicByID loads one public, non-deleted story with no owner check.
func (r *StoryRepo) GetPublicByID(ctx context.Context, storyID int64) (*model.Story, error) {
	const q = storyColumns + `
WHERE id=$1 AND is_public = TRUE AND is_deleted = FALSE`
	return scanStory(r.db.Pool.QueryRow(ctx, q, storyID))
}

// List executes the composed aggregate listing query.
func (r *StoryRepo) List(ctx context.Context, f model.StoryFilter) ([]model.StoryListItem, error) {
	q, args := buildStoryList(f)
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []model.StoryListItem
	for rows.Next() {
		var it model.StoryListItem
		if err = rows.Scan(
			&it.ID, &it.OwnerID, &it.Title, &it.Prompt, &it.Body, &it.WordCount,
			&it.Genre, &it.ReadingTime, &it.IsPublic, &it.AllowComments,
			&it.IsDeleted, &it.CreatedAt, &it.UpdatedAt,
			&it.AuthorName, &it.FavoriteCount, &it.CommentCount,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, storeErr(rows.Err())
}

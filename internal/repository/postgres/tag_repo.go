package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/tinytales/tinytales-server/internal/model"
)

// TagRepo implements TagRepository using PostgreSQL.
type TagRepo struct{ db *DB }

// NewTagRepo constructs a tag repository.
func NewTagRepo(db *DB) *TagRepo { return &TagRepo{db: db} }

// tagUpsert returns the existing id for a name or creates the row, in one
// statement. The DO UPDATE writes the name back to itself so RETURNING also
// yields the id on conflict; a plain DO NOTHING would return no row. Safe
// under concurrent first use of the same name: the unique constraint picks
// one winner and everyone gets its id.
const tagUpsert = `
INSERT INTO tags (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`

// GetOrCreate returns the id of the tag with the given name, creating it
// if absent.
func (r *TagRepo) GetOrCreate(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := r.db.Pool.QueryRow(ctx, tagUpsert, name).Scan(&id); err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

// Reconcile adjusts a story's tag links to exactly match names. The diff is
// computed inside one transaction: missing links are inserted, stale links
// deleted. An interruption rolls back to the previous tag set whole, never
// leaving the story tag-less.
func (r *TagRepo) Reconcile(ctx context.Context, storyID int64, names []string) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storeErr(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const cur = `SELECT tag_id FROM story_tags WHERE story_id=$1`
	rows, err := tx.Query(ctx, cur, storyID)
	if err != nil {
		return err
	}
	linked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		linked[id] = true
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}

	const link = `INSERT INTO story_tags (story_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
	desired := make(map[int64]bool, len(names))
	for _, name := range names {
		var tagID int64
		if err = tx.QueryRow(ctx, tagUpsert, name).Scan(&tagID); err != nil {
			return err
		}
		desired[tagID] = true
		if !linked[tagID] {
			if _, err = tx.Exec(ctx, link, storyID, tagID); err != nil {
				return err
			}
		}
	}

	var stale []int64
	for id := range linked {
		if !desired[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		const unlink = `DELETE FROM story_tags WHERE story_id=$1 AND tag_id = ANY($2)`
		if _, err = tx.Exec(ctx, unlink, storyID, stale); err != nil {
			return err
		}
	}
	return nil
}

// ListForStory returns the tags linked to a story, name-ordered.
func (r *TagRepo) ListForStory(ctx context.Context, storyID int64) ([]model.Tag, error) {
	const q = `
SELECT t.id, t.name
FROM tags t
JOIN story_tags st ON st.tag_id = t.id
WHERE st.story_id=$1
ORDER BY t.name`
	rows, err := r.db.Pool.Query(ctx, q, storyID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err = rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

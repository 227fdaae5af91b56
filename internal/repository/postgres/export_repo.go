package postgres

import (
	"context"

	"github.com/tinytales/tinytales-server/internal/model"
)

// ExportRepo implements ExportRepository using PostgreSQL. The table is
// append-only; nothing here updates or deletes.
type ExportRepo struct{ db *DB }

// NewExportRepo constructs an export repository.
func NewExportRepo(db *DB) *ExportRepo { return &ExportRepo{db: db} }

// Record appends one export record and returns its id.
func (r *ExportRepo) Record(ctx context.Context, rec *model.ExportRecord) (int64, error) {
	const q = `
INSERT INTO story_exports (story_id, user_id, export_type, export_path)
VALUES ($1,$2,$3,$4)
RETURNING id`
	var id int64
	err := r.db.Pool.QueryRow(ctx, q, rec.StoryID, rec.OwnerID, string(rec.Format), rec.Path).Scan(&id)
	if err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

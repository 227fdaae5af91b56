package repository

import (
	"context"

	"github.com/tinytales/tinytales-server/internal/model"
)

// ExportRepository appends export records. Records are never updated or deleted.
type ExportRepository interface {
	// Record appends one export record and returns its id.
	Record(ctx context.Context, rec *model.ExportRecord) (int64, error)
}

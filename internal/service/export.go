package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/export"
	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/repository"
)

// ExportSink persists rendered bytes and returns the full path written.
type ExportSink interface {
	Write(name string, data []byte) (string, error)
}

// ExportResult is a completed export: the rendered bytes plus the file name
// they were stored under.
type ExportResult struct {
	Filename string
	Data     []byte
}

// ExportService renders one story to a file and records the action.
type ExportService interface {
	// Export fetches the story (owner-scoped), renders it, writes the
	// file, then records the export. A failed record does not fail the
	// export: the content was already delivered.
	Export(ctx context.Context, storyID, ownerID int64, format model.ExportFormat) (*ExportResult, error)
}

type ExportServiceImpl struct {
	stories repository.StoryRepository
	exports repository.ExportRepository
	sink    ExportSink
	log     *zap.Logger
	now     func() time.Time
}

// NewExportService constructs ExportService.
func NewExportService(stories repository.StoryRepository, exports repository.ExportRepository, sink ExportSink, log *zap.Logger) *ExportServiceImpl {
	return &ExportServiceImpl{stories: stories, exports: exports, sink: sink, log: log, now: time.Now}
}

// Export renders, writes, and records one export.
func (s *ExportServiceImpl) Export(ctx context.Context, storyID, ownerID int64, format model.ExportFormat) (*ExportResult, error) {
	if !model.ValidExportFormat(format) {
		return nil, fmt.Errorf("%w: unknown export format %q", errs.ErrValidation, format)
	}
	st, err := s.stories.GetByID(ctx, storyID, ownerID)
	if err != nil {
		return nil, err
	}

	data, err := export.Render(st, format)
	if err != nil {
		return nil, err
	}
	name := export.Filename(storyID, format, s.now())
	if _, err := s.sink.Write(name, data); err != nil {
		return nil, err
	}

	// record only after the content write succeeded; never speculatively
	rec := model.ExportRecord{StoryID: storyID, OwnerID: ownerID, Format: format, Path: name}
	if _, err := s.exports.Record(ctx, &rec); err != nil {
		s.log.Warn("export record failed",
			zap.Int64("storyID", storyID),
			zap.Int64("ownerID", ownerID),
			zap.String("format", string(format)),
			zap.Error(err),
		)
	}
	return &ExportResult{Filename: name, Data: data}, nil
}

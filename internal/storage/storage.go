package storage

import (
	"context"

	"github.com/avelior/calex/internal/types"
)

// RunStore persists export-run history
type RunStore interface {
	SaveExportRun(ctx context.Context, run types.ExportRun) error
	GetExportRuns(ctx context.Context, dateKey string) ([]types.ExportRun, error)
}

// Uploader pushes a finished dataset file to object storage
type Uploader interface {
	Upload(ctx context.Context, key, path string) error
}

// NoopStore is a no-op implementation when run history is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveExportRun(_ context.Context, _ types.ExportRun) error { return nil }
func (s *NoopStore) GetExportRuns(_ context.Context, _ string) ([]types.ExportRun, error) {
	return nil, nil
}

// NoopUploader is a no-op implementation when uploading is disabled
type NoopUploader struct{}

func NewNoopUploader() *NoopUploader { return &NoopUploader{} }

func (u *NoopUploader) Upload(_ context.Context, _, _ string) error { return nil }

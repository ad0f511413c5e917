package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/avelior/calex/internal/storage"
	"github.com/avelior/calex/internal/types"
	"github.com/rs/zerolog"
)

// DatasetName is the file and object key of the export dataset.
const DatasetName = "hubspot-calls.csv"

// DatasetSink writes the finished table to disk and uploads it.
type DatasetSink struct {
	dir      string
	uploader storage.Uploader
	logger   zerolog.Logger
}

// NewDatasetSink creates a sink writing under dir.
func NewDatasetSink(dir string, uploader storage.Uploader, logger zerolog.Logger) *DatasetSink {
	return &DatasetSink{dir: dir, uploader: uploader, logger: logger}
}

// Export persists rows as the dataset file, then uploads it. An upload
// failure is logged, not returned: the local file remains usable.
func (s *DatasetSink) Export(ctx context.Context, rows []types.CallRow) error {
	path := filepath.Join(s.dir, DatasetName)
	if err := WriteCSV(path, rows); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	s.logger.Info().Str("path", path).Int("rows", len(rows)).Msg("dataset written")

	if err := s.uploader.Upload(ctx, DatasetName, path); err != nil {
		s.logger.Error().Err(err).Msg("dataset upload failed")
	}
	return nil
}

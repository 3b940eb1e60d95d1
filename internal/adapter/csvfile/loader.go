package csvfile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/groundwater-etl/internal/domain"
)

// FileLoader writes each run's records to a fixed path, replacing the
// previous contents. It implements pipeline.Loader.
type FileLoader struct {
	path   string
	logger *slog.Logger
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string, logger *slog.Logger) *FileLoader {
	return &FileLoader{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (l *FileLoader) Name() string { return "csv" }

// Load creates the parent directory if needed and writes the table.
func (l *FileLoader) Load(_ context.Context, records []domain.FlatRecord) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	if err := WriteTable(records, l.path); err != nil {
		return err
	}
	l.logger.Info("csv written", "path", l.path, "rows", len(records))
	return nil
}

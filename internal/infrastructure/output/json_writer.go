// Package output persists the finished song catalog.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/logging"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	indent   = "    "
	fileMode = os.FileMode(0o644)
)

// JSONWriter writes the catalog as one JSON array, replacing the target
// file atomically
type JSONWriter struct {
	fs     afero.Fs
	path   string
	logger *zap.Logger
}

// NewJSONWriter creates a writer targeting path on fs
func NewJSONWriter(fs afero.Fs, path string, logger *zap.Logger) *JSONWriter {
	return &JSONWriter{
		fs:     fs,
		path:   path,
		logger: logging.OrNop(logger).Named("output"),
	}
}

// Path returns the target file path
func (w *JSONWriter) Path() string {
	return w.path
}

// WriteRecords encodes records and renames a temp file over the target.
// A failed write leaves any previous catalog untouched. A new catalog is
// created 0644; an existing one keeps its permissions.
func (w *JSONWriter) WriteRecords(ctx context.Context, records []domain.SongRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(records)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(w.fs, dir, "."+filepath.Base(w.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		w.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}

	// afero.TempFile creates files 0600
	mode := fileMode
	if info, statErr := w.fs.Stat(w.path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := w.fs.Chmod(tmpName, mode); err != nil {
		w.fs.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := w.fs.Rename(tmpName, w.path); err != nil {
		w.fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", w.path, err)
	}

	w.logger.Info("catalog written", zap.String("path", w.path), zap.Int("records", len(records)))
	return nil
}

// Encode renders records the way the catalog consumers expect: a 4-space
// indented array with non-ASCII and HTML characters kept literal
func Encode(records []domain.SongRecord) ([]byte, error) {
	if records == nil {
		records = []domain.SongRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

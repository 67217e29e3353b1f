// Package filesystem enumerates candidate audio files by name.
package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/songlens/enricher/internal/domain"
	"github.com/spf13/afero"
)

// Scanner lists files in one directory that carry a given extension
type Scanner struct {
	fs        afero.Fs
	dir       string
	extension string
}

// NewScanner creates a scanner for dir. The extension match ignores case
// and a missing leading dot is added.
func NewScanner(fs afero.Fs, dir, extension string) *Scanner {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Scanner{fs: fs, dir: dir, extension: extension}
}

// List returns matching file names (not paths) in lexical order.
// Subdirectories are not descended into.
func (s *Scanner) List(ctx context.Context) ([]string, error) {
	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("stat input directory %s: %w", s.dir, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrInputDirMissing, s.dir)
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		if s.extension == "" || strings.EqualFold(filepath.Ext(entry.Name()), s.extension) {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

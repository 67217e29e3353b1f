// Package dataset loads the tabular audio-feature dataset and resolves
// feature vectors from it.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/songlens/enricher/internal/domain"
	"github.com/spf13/afero"
)

// Column names in the dataset header
const (
	columnTrackName = "track_name"
	columnGenre     = "track_genre"
)

// indexColumns are leftover row-number columns written by dataframe exports
var indexColumns = map[string]bool{
	"":           true,
	"Unnamed: 0": true,
}

// Row is one usable dataset entry
type Row struct {
	Title    string
	Genre    string
	Features domain.FeatureVector
}

// Index is an immutable title-keyed view of the dataset.
// Rows keep file order; the first row wins for a repeated title.
type Index struct {
	rows    []Row
	byTitle map[string]int
	skipped int
}

// Len returns the number of usable rows
func (i *Index) Len() int {
	return len(i.rows)
}

// Skipped returns the number of malformed rows dropped while loading
func (i *Index) Skipped() int {
	return i.skipped
}

// Row returns the n-th usable row
func (i *Index) Row(n int) Row {
	return i.rows[n]
}

// Lookup finds the row whose title matches case-insensitively
func (i *Index) Lookup(title string) (Row, bool) {
	n, ok := i.byTitle[domain.TitleKey(title)]
	if !ok {
		return Row{}, false
	}
	return i.rows[n], true
}

// Load reads the CSV dataset at path from fs
func Load(fs afero.Fs, path string) (*Index, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	index, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return index, nil
}

// Parse builds an Index from CSV content. It fails when a required column
// is absent or no row is usable.
func Parse(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrDatasetEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	index := &Index{byTitle: make(map[string]int)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				index.skipped++
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}

		row, ok := columns.parse(record)
		if !ok {
			index.skipped++
			continue
		}

		key := domain.TitleKey(row.Title)
		if _, exists := index.byTitle[key]; !exists {
			index.byTitle[key] = len(index.rows)
		}
		index.rows = append(index.rows, row)
	}

	if len(index.rows) == 0 {
		return nil, domain.ErrDatasetEmpty
	}
	return index, nil
}

// columnMap holds header positions of the columns we read
type columnMap struct {
	title    int
	genre    int
	features [9]int
	width    int
}

func resolveColumns(header []string) (*columnMap, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if indexColumns[name] {
			continue
		}
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	lookup := func(name string) (int, error) {
		pos, ok := positions[name]
		if !ok {
			return 0, fmt.Errorf("%w: missing column %q", domain.ErrDatasetEmpty, name)
		}
		return pos, nil
	}

	columns := &columnMap{width: len(header)}
	var err error
	if columns.title, err = lookup(columnTrackName); err != nil {
		return nil, err
	}
	if columns.genre, err = lookup(columnGenre); err != nil {
		return nil, err
	}
	for i, name := range domain.FeatureNames {
		if columns.features[i], err = lookup(name); err != nil {
			return nil, err
		}
	}
	return columns, nil
}

// parse extracts a Row from record, rejecting short rows, blank titles and
// non-finite or non-numeric feature values
func (c *columnMap) parse(record []string) (Row, bool) {
	if len(record) < c.width {
		return Row{}, false
	}

	title := strings.TrimSpace(record[c.title])
	if title == "" {
		return Row{}, false
	}

	row := Row{
		Title: title,
		Genre: strings.TrimSpace(record[c.genre]),
	}
	for i, name := range domain.FeatureNames {
		value, err := strconv.ParseFloat(strings.TrimSpace(record[c.features[i]]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return Row{}, false
		}
		row.Features.Set(name, value)
	}
	return row, true
}

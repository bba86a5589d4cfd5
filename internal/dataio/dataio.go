// Package dataio reads the case, population and boundary datasets from local files.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/huangsam/epigrowth/internal/contract"
)

// Errors returned while reading input files.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrDuplicateFIPS = errors.New("duplicate fips")
)

// LocalDataSource implements the DataSource interface by reading files from disk.
type LocalDataSource struct{}

var _ contract.DataSource = &LocalDataSource{} // Compile-time check

// NewLocalDataSource creates a new instance of the local data source.
func NewLocalDataSource() *LocalDataSource {
	return &LocalDataSource{}
}

// Fingerprint returns the xxhash64 of the file contents as 16 hex digits.
func (s *LocalDataSource) Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// columnIndex maps header names to positions and checks that every required column exists.
func columnIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		idx[strings.ToLower(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return idx, nil
}

// newCSVReader returns a csv.Reader that tolerates ragged rows.
func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return reader
}

// field returns the trimmed value of a named column, or "" when the row is short.
func field(row []string, idx map[string]int, name string) string {
	i := idx[strings.ToLower(name)]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

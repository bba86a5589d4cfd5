package dataio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Census column names used from the county population estimates file.
const (
	stateColumn      = "STATE"
	countyColumn     = "COUNTY"
	populationColumn = "POPESTIMATE2019"
)

// LoadPopulation reads a latin-1 encoded census population estimates file and
// returns the population keyed by the five digit FIPS code (STATE + COUNTY).
// State summary rows (COUNTY 000) are kept; they never match a county code.
func (s *LocalDataSource) LoadPopulation(ctx context.Context, path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadPopulation(ctx, charmap.ISO8859_1.NewDecoder().Reader(f))
}

// ReadPopulation parses population rows from UTF-8 CSV.
func ReadPopulation(ctx context.Context, r io.Reader) (map[string]int64, error) {
	reader := newCSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading population header: %w", err)
	}
	idx, err := columnIndex(header, stateColumn, countyColumn, populationColumn)
	if err != nil {
		return nil, err
	}

	population := make(map[string]int64)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		fips, err := joinFIPS(field(row, idx, stateColumn), field(row, idx, countyColumn))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		pop, err := parseCount(field(row, idx, populationColumn))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid population: %w", line, err)
		}
		if _, dup := population[fips]; dup {
			return nil, fmt.Errorf("%w: %s on line %d", ErrDuplicateFIPS, fips, line)
		}
		population[fips] = pop
	}
	return population, nil
}

// joinFIPS builds a county code from a two digit state and a three digit county part.
func joinFIPS(state, county string) (string, error) {
	if state == "" || county == "" || len(state) > 2 || len(county) > 3 {
		return "", fmt.Errorf("invalid state/county code %q/%q", state, county)
	}
	for _, r := range state + county {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid state/county code %q/%q", state, county)
		}
	}
	return strings.Repeat("0", 2-len(state)) + state + strings.Repeat("0", 3-len(county)) + county, nil
}

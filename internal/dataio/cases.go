package dataio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
)

// LoadCases reads a daily county case file with the columns date, county,
// state, fips, cases and deaths. Rows without a FIPS code are kept so that
// national totals include them.
func (s *LocalDataSource) LoadCases(ctx context.Context, path string) ([]schema.CaseRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadCases(ctx, f)
}

// ReadCases parses case records from CSV.
func ReadCases(ctx context.Context, r io.Reader) ([]schema.CaseRecord, error) {
	reader := newCSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading case header: %w", err)
	}
	idx, err := columnIndex(header, "date", "county", "state", "fips", "cases")
	if err != nil {
		return nil, err
	}
	_, hasDeaths := idx["deaths"]

	var records []schema.CaseRecord
	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := contract.ParseDate(field(row, idx, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date: %w", line, err)
		}
		fips, err := contract.NormalizeFIPS(field(row, idx, "fips"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cases, err := parseCount(field(row, idx, "cases"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid cases: %w", line, err)
		}
		var deaths int64
		if hasDeaths {
			if deaths, err = parseCount(field(row, idx, "deaths")); err != nil {
				return nil, fmt.Errorf("line %d: invalid deaths: %w", line, err)
			}
		}

		records = append(records, schema.CaseRecord{
			Date:   date,
			County: field(row, idx, "county"),
			State:  field(row, idx, "state"),
			FIPS:   fips,
			Cases:  cases,
			Deaths: deaths,
		})
	}
	return records, nil
}

// parseCount reads an integer count. Empty values are zero and whole floats like "12.0" are accepted.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt64/2 {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int64(v), nil
}

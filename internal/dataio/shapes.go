package dataio

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
	"github.com/jonas-p/go-shp"
)

// Attribute names read from the county boundary table.
const (
	geoidAttr    = "GEOID"
	stateFPAttr  = "STATEFP"
	countyFPAttr = "COUNTYFP"
	landAttr     = "ALAND"
	waterAttr    = "AWATER"
)

// LoadShapes reads a county boundary shapefile and its attribute table.
// Counties are keyed by GEOID, or by STATEFP + COUNTYFP when GEOID is absent.
// Area is ALAND - AWATER when land exceeds water, and 0 otherwise.
func (s *LocalDataSource) LoadShapes(ctx context.Context, path string) (map[string]schema.CountyShape, error) {
	if !strings.EqualFold(path[max(0, len(path)-4):], ".shp") {
		return nil, fmt.Errorf("shapes file %s must have a .shp extension", path)
	}
	dbfPath := path[:len(path)-3] + "dbf"
	if _, err := os.Stat(dbfPath); err != nil {
		return nil, fmt.Errorf("shapes attribute table: %w", err)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	fields := make(map[string]int)
	for i, f := range reader.Fields() {
		fields[strings.ToUpper(f.String())] = i
	}
	if err := checkShapeFields(fields); err != nil {
		return nil, err
	}

	shapes := make(map[string]schema.CountyShape)
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, geometry := reader.Shape()
		attr := func(name string) string {
			return strings.Trim(reader.ReadAttribute(row, fields[name]), " \x00")
		}

		fips, err := shapeFIPS(fields, attr)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", row, err)
		}
		if _, dup := shapes[fips]; dup {
			return nil, fmt.Errorf("%w: %s in shapes", ErrDuplicateFIPS, fips)
		}
		land, err := parseArea(attr(landAttr))
		if err != nil {
			return nil, fmt.Errorf("shape %d: invalid %s: %w", row, landAttr, err)
		}
		water, err := parseArea(attr(waterAttr))
		if err != nil {
			return nil, fmt.Errorf("shape %d: invalid %s: %w", row, waterAttr, err)
		}

		shapes[fips] = schema.CountyShape{
			FIPS:      fips,
			LandArea:  land,
			WaterArea: water,
			Area:      NetArea(land, water),
			Rings:     polygonRings(geometry),
		}
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return shapes, nil
}

// NetArea returns land minus water, or 0 when water is at least as large as land.
func NetArea(land, water float64) float64 {
	if land > water {
		return land - water
	}
	return 0
}

func checkShapeFields(fields map[string]int) error {
	for _, name := range []string{landAttr, waterAttr} {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	if _, ok := fields[geoidAttr]; ok {
		return nil
	}
	_, hasState := fields[stateFPAttr]
	_, hasCounty := fields[countyFPAttr]
	if !hasState || !hasCounty {
		return fmt.Errorf("%w: %s", ErrMissingColumn, geoidAttr)
	}
	return nil
}

func shapeFIPS(fields map[string]int, attr func(string) string) (string, error) {
	if _, ok := fields[geoidAttr]; ok {
		return contract.NormalizeFIPS(attr(geoidAttr))
	}
	return joinFIPS(attr(stateFPAttr), attr(countyFPAttr))
}

func parseArea(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// polygonRings splits a polygon into its rings. Other geometry types have no rings.
func polygonRings(geometry shp.Shape) [][]schema.Point {
	poly, ok := geometry.(*shp.Polygon)
	if !ok || len(poly.Points) == 0 {
		return nil
	}
	rings := make([][]schema.Point, 0, len(poly.Parts))
	for i, start := range poly.Parts {
		end := int32(len(poly.Points))
		if i+1 < len(poly.Parts) {
			end = poly.Parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(poly.Points) {
			continue
		}
		ring := make([]schema.Point, 0, end-start)
		for _, p := range poly.Points[start:end] {
			ring = append(ring, schema.Point{X: p.X, Y: p.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

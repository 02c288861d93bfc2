// Package airports resolves aerodrome identifiers to the decimal-degree
// coordinates the CFPS point query expects.
package airports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Column names of the Ontario GeoHub airport dataset.
const (
	identColumn     = "AIRPORT_IDENT"
	nameColumn      = "OFFICIAL_NAME"
	longitudeColumn = "LONGITUDE"
	latitudeColumn  = "LATITUDE"
)

var (
	// ErrNotFound is returned when no record matches the requested identifier.
	ErrNotFound = errors.New("location not found")

	// ErrDataIntegrity is returned when a record exists but its coordinates
	// cannot be read.
	ErrDataIntegrity = errors.New("invalid coordinate record")
)

// Coordinate is a longitude/latitude pair in decimal degrees.
type Coordinate struct {
	Longitude float64
	Latitude  float64
}

// String renders the pair as "longitude,latitude" with exactly three decimals,
// the precision CFPS matches against.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.3f,%.3f", c.Longitude, c.Latitude)
}

// Record is a single aerodrome row from the table
type Record struct {
	Ident      string
	Name       string
	Coordinate Coordinate
}

// Table is a CSV coordinate table keyed by airport identifier. The backing
// file is opened and closed on every lookup.
type Table struct {
	fsys fs.FS
	name string
}

// NewTable returns a table reading name from fsys.
func NewTable(fsys fs.FS, name string) *Table {
	return &Table{fsys: fsys, name: name}
}

// OpenFile returns a table backed by a CSV file on disk.
func OpenFile(path string) *Table {
	return NewTable(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// Resolve looks up code and returns its coordinate.
func (t *Table) Resolve(code string) (Coordinate, error) {
	var (
		found  Record
		ok     bool
		badRow error
	)

	err := t.scan(func(row map[string]string) bool {
		if row[identColumn] != code {
			return true
		}
		found, badRow = parseRecord(row)
		ok = true
		return false
	})
	if err != nil {
		return Coordinate{}, err
	}
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if badRow != nil {
		return Coordinate{}, fmt.Errorf("%w for %s: %v", ErrDataIntegrity, code, badRow)
	}

	return found.Coordinate, nil
}

// scan walks every data row, handing it to fn keyed by header name. Scanning
// stops early when fn returns false.
func (t *Table) scan(fn func(row map[string]string) bool) error {
	file, err := t.fsys.Open(t.name)
	if err != nil {
		return fmt.Errorf("open airport table %s: %w", t.name, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read airport table header: %w", err)
	}
	if !hasColumns(header, identColumn, longitudeColumn, latitudeColumn) {
		return fmt.Errorf("%w: table %s is missing %s, %s or %s",
			ErrDataIntegrity, t.name, identColumn, longitudeColumn, latitudeColumn)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read airport table: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}

		if !fn(row) {
			return nil
		}
	}
}

func parseRecord(row map[string]string) (Record, error) {
	lon, err := strconv.ParseFloat(row[longitudeColumn], 64)
	if err != nil {
		return Record{}, fmt.Errorf("longitude %q: %w", row[longitudeColumn], err)
	}

	lat, err := strconv.ParseFloat(row[latitudeColumn], 64)
	if err != nil {
		return Record{}, fmt.Errorf("latitude %q: %w", row[latitudeColumn], err)
	}

	if !validDegrees(lon, 180) {
		return Record{}, fmt.Errorf("longitude %q out of range", row[longitudeColumn])
	}
	if !validDegrees(lat, 90) {
		return Record{}, fmt.Errorf("latitude %q out of range", row[latitudeColumn])
	}

	return Record{
		Ident:      row[identColumn],
		Name:       row[nameColumn],
		Coordinate: Coordinate{Longitude: lon, Latitude: lat},
	}, nil
}

// validDegrees rejects NaN, infinities and magnitudes beyond limit.
func validDegrees(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

func hasColumns(header []string, columns ...string) bool {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, c := range columns {
		if !present[c] {
			return false
		}
	}
	return true
}

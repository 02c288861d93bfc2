package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Cenalian/CFPS-Parsing/internal/airports"
	"github.com/Cenalian/CFPS-Parsing/internal/geolocate"
)

// autoLocation asks for the aerodrome nearest the caller's IP location.
const autoLocation = "AUTO"

// readArgs returns the location code and report type, prompting on in for
// whatever was not given on the command line.
func readArgs(args []string, in io.Reader, out io.Writer) (string, string, error) {
	var location, reportType string
	if len(args) > 0 {
		location = strings.TrimSpace(args[0])
	}
	if len(args) > 1 {
		reportType = strings.TrimSpace(args[1])
	}

	reader := bufio.NewReader(in)
	var err error

	if location == "" {
		location, err = prompt(reader, out, "Enter location code (FIR e.g. CZYZ, aerodrome e.g. CYKF, or AUTO): ")
		if err != nil {
			return "", "", err
		}
	}

	if reportType == "" {
		reportType, err = prompt(reader, out, "Enter report type (sigmet, airmet, notam, metar, taf, pirep, upperwind): ")
		if err != nil {
			return "", "", err
		}
	}

	return location, strings.ToLower(reportType), nil
}

// prompt prints label and reads one non-empty line
func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("error reading input: %w", err)
	}

	value := strings.TrimSpace(input)
	if value == "" {
		return "", fmt.Errorf("no value entered")
	}

	return value, nil
}

// Locator finds the caller's position.
type Locator interface {
	Locate(ctx context.Context) (*geolocate.Location, error)
}

// resolveAutoLocation picks the table aerodrome nearest the caller
func resolveAutoLocation(ctx context.Context, out io.Writer, loc Locator, table *airports.Table, radiusMiles float64) (string, error) {
	fmt.Fprintln(out, "Finding nearest aerodrome to your location...")
	location, err := loc.Locate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get your location: %w", err)
	}

	fmt.Fprintf(out, "Your location: %s, %s (%.4f, %.4f)\n",
		location.City, location.Country,
		location.Latitude, location.Longitude)

	pos := airports.Coordinate{Longitude: location.Longitude, Latitude: location.Latitude}
	rec, distance, err := table.Nearest(pos, radiusMiles)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(out, "Nearest aerodrome: %s %s (%.1f miles away)\n", rec.Ident, rec.Name, distance)
	return rec.Ident, nil
}

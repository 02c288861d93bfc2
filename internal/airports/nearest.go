package airports

import (
	"fmt"
	"math"
)

// Earth's radius in miles
const earthRadiusMiles = 3958.8

// degreesToRadians converts degrees to radians
func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Distance uses the Haversine formula to determine the distance in miles
// between two points.
func Distance(a, b Coordinate) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lon1 := degreesToRadians(a.Longitude)
	lat2 := degreesToRadians(b.Latitude)
	lon2 := degreesToRadians(b.Longitude)

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

// Nearest returns the table aerodrome closest to pos and its distance in
// miles. Rows with unreadable coordinates are skipped.
func (t *Table) Nearest(pos Coordinate, radiusMiles float64) (Record, float64, error) {
	var (
		best     Record
		bestDist = math.Inf(1)
	)

	err := t.scan(func(row map[string]string) bool {
		rec, err := parseRecord(row)
		if err != nil {
			return true
		}
		if d := Distance(pos, rec.Coordinate); d < bestDist {
			best, bestDist = rec, d
		}
		return true
	})
	if err != nil {
		return Record{}, 0, err
	}

	if best.Ident == "" || bestDist > radiusMiles {
		return Record{}, 0, fmt.Errorf("%w: no aerodrome within %.1f miles", ErrNotFound, radiusMiles)
	}

	return best, bestDist, nil
}

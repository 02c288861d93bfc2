package airports

import "embed"

//go:embed assets/ontario_official_airports.csv
var embeddedFiles embed.FS

// Embedded returns the Ontario aerodrome table compiled into the binary.
// Source: https://geohub.lio.gov.on.ca/datasets/f03edc813b4542bdad0f1bbaa58b70b6
func Embedded() *Table {
	return NewTable(embeddedFiles, "assets/ontario_official_airports.csv")
}

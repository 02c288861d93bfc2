// Package cfps builds queries for the NAV CANADA Collaborative Flight
// Planning Services (CFPS) weather API and fetches their responses.
package cfps

import (
	"fmt"
	"slices"

	"github.com/Cenalian/CFPS-Parsing/internal/airports"
)

// DefaultBaseURL is the alpha endpoint every CFPS search goes through.
const DefaultBaseURL = "https://plan.navcanada.ca/weather/api/alpha/?"

// RegionPlaceholder is sent in place of a coordinate for FIR queries.
const RegionPlaceholder = "00.000,00.000"

// Regions are the seven Canadian flight information regions. A specific
// aerodrome can be queried as a region, but a region cannot be queried as a
// site, so these are matched first.
var Regions = []string{"CZEG", "CZQM", "CZQX", "CZUL", "CZVR", "CZWG", "CZYZ"}

// Scope says whether a location code names a region or a single aerodrome.
// The query geometry and location kind are derived from it.
type Scope int

const (
	ScopeSite Scope = iota
	ScopeRegion
)

// Geometry is the query parameter name: polygon for regions, point for sites.
func (s Scope) Geometry() string {
	if s == ScopeRegion {
		return "polygon"
	}
	return "point"
}

// Kind is the location type token embedded in the query value.
func (s Scope) Kind() string {
	if s == ScopeRegion {
		return "FIR"
	}
	return "site"
}

func (s Scope) String() string {
	if s == ScopeRegion {
		return "region"
	}
	return "site"
}

// IsRegion reports whether code is one of the seven FIR codes. The match is
// exact and case sensitive.
func IsRegion(code string) bool {
	return slices.Contains(Regions, code)
}

// Query is a resolved location ready to be turned into a URL.
type Query struct {
	Code       string
	Scope      Scope
	Coordinate string
}

// Resolver turns an aerodrome code into a coordinate.
type Resolver interface {
	Resolve(code string) (airports.Coordinate, error)
}

// Builder assembles CFPS query URLs.
type Builder struct {
	baseURL  string
	resolver Resolver
}

// NewBuilder creates a builder. An empty baseURL uses DefaultBaseURL.
func NewBuilder(baseURL string, resolver Resolver) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{baseURL: baseURL, resolver: resolver}
}

// Describe classifies code and resolves its coordinate. Region codes never
// touch the resolver.
func (b *Builder) Describe(code string) (Query, error) {
	if IsRegion(code) {
		return Query{Code: code, Scope: ScopeRegion, Coordinate: RegionPlaceholder}, nil
	}

	coord, err := b.resolver.Resolve(code)
	if err != nil {
		return Query{}, fmt.Errorf("resolve %s: %w", code, err)
	}

	return Query{Code: code, Scope: ScopeSite, Coordinate: coord.String()}, nil
}

// BuildURL returns the full query URL for code and reportType.
func (b *Builder) BuildURL(code, reportType string) (string, error) {
	q, err := b.Describe(code)
	if err != nil {
		return "", err
	}
	return b.URL(q, reportType), nil
}

// URL renders q against the builder's endpoint. The '-' ahead of the
// coordinate is a literal token CFPS expects, not a sign applied to it.
func (b *Builder) URL(q Query, reportType string) string {
	return b.baseURL + q.Scope.Geometry() + "=" + q.Code + "|" + q.Scope.Kind() + "|-" + q.Coordinate +
		"&alpha=" + reportType
}

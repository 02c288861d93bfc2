// Package report maps report-type keywords to their decoders.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Cenalian/CFPS-Parsing/internal/upperwind"
)

// ErrUnsupportedType is returned for keywords outside the known report types.
var ErrUnsupportedType = errors.New("unsupported report type")

// Type is a CFPS report type.
type Type int

const (
	SIGMET Type = iota + 1
	AIRMET
	NOTAM
	METAR
	TAF
	PIREP
	UpperWind
)

// Types lists every supported report type in display order.
var Types = []Type{SIGMET, AIRMET, NOTAM, METAR, TAF, PIREP, UpperWind}

var keywords = map[Type]string{
	SIGMET:    "sigmet",
	AIRMET:    "airmet",
	NOTAM:     "notam",
	METAR:     "metar",
	TAF:       "taf",
	PIREP:     "pirep",
	UpperWind: "upperwind",
}

// Keyword is the lower-case name CFPS uses for the alpha parameter.
func (t Type) Keyword() string {
	return keywords[t]
}

func (t Type) String() string {
	switch t {
	case UpperWind:
		return "Winds aloft"
	case 0:
		return "unknown"
	}
	return strings.ToUpper(keywords[t])
}

// ParseType matches keyword case-insensitively against the known types.
func ParseType(keyword string) (Type, error) {
	k := strings.ToLower(strings.TrimSpace(keyword))
	for _, t := range Types {
		if keywords[t] == k {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, k)
}

// Outcome is the result of dispatching a query. It is one of Placeholder,
// UpperWinds or NoData.
type Outcome interface {
	outcome()
}

// Placeholder is returned for report types that are recognised but not
// decoded yet.
type Placeholder struct {
	Type Type
	URL  string
}

// UpperWinds carries a decoded winds aloft report.
type UpperWinds struct {
	URL    string
	Report *upperwind.Report
}

// NoData means the service returned nothing for the query.
type NoData struct {
	Type Type
	URL  string
}

func (Placeholder) outcome() {}
func (UpperWinds) outcome()  {}
func (NoData) outcome()      {}

// UpperWindDecoder decodes winds aloft responses.
type UpperWindDecoder interface {
	Decode(ctx context.Context, url string) (*upperwind.Report, error)
}

// Dispatcher routes a query URL to the decoder for its report type.
type Dispatcher struct {
	upperWinds UpperWindDecoder
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(upperWinds UpperWindDecoder, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		upperWinds: upperWinds,
		logger:     logger.Named("dispatcher"),
	}
}

// Dispatch decodes url as the report type named by keyword. Unknown keywords
// return ErrUnsupportedType.
func (d *Dispatcher) Dispatch(ctx context.Context, keyword, url string) (Outcome, error) {
	t, err := ParseType(keyword)
	if err != nil {
		return nil, err
	}
	return d.DispatchType(ctx, t, url)
}

// DispatchType decodes url as report type t.
func (d *Dispatcher) DispatchType(ctx context.Context, t Type, url string) (Outcome, error) {
	d.logger.Debug("Dispatching report", zap.Stringer("type", t), zap.String("url", url))

	switch t {
	case SIGMET, AIRMET, NOTAM, METAR, TAF, PIREP:
		return Placeholder{Type: t, URL: url}, nil
	case UpperWind:
		rpt, err := d.upperWinds.Decode(ctx, url)
		if errors.Is(err, upperwind.ErrNoData) {
			return NoData{Type: t, URL: url}, nil
		}
		if err != nil {
			return nil, err
		}
		if n := rpt.Failed(); n > 0 {
			d.logger.Warn("Some winds aloft elements failed to decode",
				zap.Int("failed", n),
				zap.Int("total", len(rpt.Elements)))
		}
		return UpperWinds{URL: url, Report: rpt}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedType, int(t))
	}
}

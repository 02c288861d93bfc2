// Package upperwind decodes CFPS winds aloft (FB) forecasts.
//
// The API wraps each forecast twice: the response envelope holds a list of
// elements whose "text" field is itself a JSON document. Decoding happens in
// two separate steps so a malformed element only fails itself.
//
// Decoded text is a positional array:
//
//	[report_type, issuer, approx_issue_time, data_based_on, valid_at,
//	 use_start, use_end, null, null, null, null, levels]
//
// The four null slots have never carried a value and their meaning is
// unknown; they are kept as raw JSON. Each level is
// [altitude_ft, direction_deg, speed_kt, temperature_c, unused]. Temperature
// is sometimes null for reasons upstream has not documented, and the last
// value has only ever been 0.
package upperwind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// BothLevels asks CFPS for the low level (CWAO, 3000-18000 ft) and high level
// (KWNO, 24000-53000 ft) feeds together.
const BothLevels = "&upperwind_choice=both"

// ErrNoData is returned when the service has nothing for the location. It is
// a normal outcome, not a decode failure.
var ErrNoData = errors.New("no winds aloft data reported")

// Decode stages.
const (
	StageFetch    = "fetch"
	StageEnvelope = "envelope"
	StageElement  = "element"
)

// DecodeError describes a failure to fetch or decode a winds aloft response.
// Index is the element position for StageElement failures.
type DecodeError struct {
	Stage string
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Stage == StageElement {
		return fmt.Sprintf("winds aloft %s %d: %v", e.Stage, e.Index, e.Err)
	}
	return fmt.Sprintf("winds aloft %s: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Envelope is the outer response document. Elements stay raw until each is
// decoded on its own.
type Envelope struct {
	Data []json.RawMessage `json:"data"`
}

// Element is one encoded forecast in the envelope.
type Element struct {
	Location string `json:"location"`
	Text     string `json:"text"`
}

// Level is the forecast at one altitude. A nil Temperature means the feed
// gave none; it is never the same as 0°C.
type Level struct {
	AltitudeFeet  int
	WindDirection int
	WindSpeed     int
	Temperature   *int
	Unused        *int
}

// Forecast is a decoded element text.
type Forecast struct {
	ReportType      string
	Issuer          string
	ApproxIssueTime string // as sent; JSON text when not a string
	DataBasedOn     time.Time
	ValidAt         time.Time
	UseStart        time.Time
	UseEnd          time.Time
	Reserved        []json.RawMessage
	Levels          []Level
}

// ElementResult pairs an element's location with its forecast, or with the
// error that stopped it from decoding.
type ElementResult struct {
	Location string
	Forecast *Forecast
	Err      error
}

// Report is the decoded response, elements in the order received.
type Report struct {
	Elements []ElementResult
}

// Failed returns the number of elements that did not decode.
func (r *Report) Failed() int {
	n := 0
	for _, e := range r.Elements {
		if e.Err != nil {
			n++
		}
	}
	return n
}

// Fetcher retrieves a URL's body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Decoder fetches and decodes winds aloft reports.
type Decoder struct {
	fetcher Fetcher
}

// NewDecoder creates a decoder using fetcher for HTTP access.
func NewDecoder(fetcher Fetcher) *Decoder {
	return &Decoder{fetcher: fetcher}
}

// WithBothLevels appends the low+high level selector to a query URL.
func WithBothLevels(url string) string {
	return url + BothLevels
}

// Decode fetches url, with both level feeds selected, and decodes the result.
func (d *Decoder) Decode(ctx context.Context, url string) (*Report, error) {
	body, err := d.fetcher.Fetch(ctx, WithBothLevels(url))
	if err != nil {
		return nil, &DecodeError{Stage: StageFetch, Err: err}
	}
	return Parse(body)
}

// Parse decodes a response body. It returns ErrNoData for an empty or absent
// data list, a *DecodeError if the envelope is malformed, and otherwise a
// report whose elements carry their own errors.
func Parse(body []byte) (*Report, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Stage: StageEnvelope, Err: err}
	}

	if len(env.Data) == 0 {
		return nil, ErrNoData
	}

	report := &Report{Elements: make([]ElementResult, 0, len(env.Data))}
	for i, raw := range env.Data {
		res := parseElement(raw)
		if res.Err != nil {
			res.Err = &DecodeError{Stage: StageElement, Index: i, Err: res.Err}
		}

		report.Elements = append(report.Elements, res)
	}

	return report, nil
}

// parseElement decodes one envelope element. A field of the wrong type still
// leaves the location set when the element is an object.
func parseElement(raw json.RawMessage) ElementResult {
	var el Element
	if err := json.Unmarshal(raw, &el); err != nil {
		return ElementResult{Location: el.Location, Err: fmt.Errorf("decode element: %w", err)}
	}

	fc, err := ParseText(el.Text)
	if err != nil {
		return ElementResult{Location: el.Location, Err: err}
	}
	return ElementResult{Location: el.Location, Forecast: fc}
}

// Positions within the decoded text array.
const (
	posReportType = iota
	posIssuer
	posApproxIssue
	posDataBasedOn
	posValidAt
	posUseStart
	posUseEnd
	headerFields
)

// ParseText decodes one element's text field.
func ParseText(text string) (*Forecast, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}

	// header fields plus the trailing levels array
	if len(fields) < headerFields+1 {
		return nil, fmt.Errorf("expected at least %d fields, got %d", headerFields+1, len(fields))
	}

	fc := &Forecast{}
	var err error

	if fc.ReportType, err = stringAt(fields, posReportType, "report type"); err != nil {
		return nil, err
	}
	if fc.Issuer, err = stringAt(fields, posIssuer, "issuer"); err != nil {
		return nil, err
	}
	// Approximate issue time is informational and not always a timestamp.
	fc.ApproxIssueTime = rawString(fields[posApproxIssue])

	if fc.DataBasedOn, err = timeAt(fields, posDataBasedOn, "data based on"); err != nil {
		return nil, err
	}
	if fc.ValidAt, err = timeAt(fields, posValidAt, "valid at"); err != nil {
		return nil, err
	}
	if fc.UseStart, err = timeAt(fields, posUseStart, "use start"); err != nil {
		return nil, err
	}
	if fc.UseEnd, err = timeAt(fields, posUseEnd, "use end"); err != nil {
		return nil, err
	}

	last := len(fields) - 1
	fc.Reserved = fields[headerFields:last]

	if fc.Levels, err = parseLevels(fields[last]); err != nil {
		return nil, err
	}

	return fc, nil
}

func stringAt(fields []json.RawMessage, pos int, name string) (string, error) {
	var s string
	if err := json.Unmarshal(fields[pos], &s); err != nil {
		return "", fmt.Errorf("%s (field %d): %w", name, pos, err)
	}
	return s, nil
}

// rawString returns the value of a JSON string, or the JSON text itself for
// any other kind.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func timeAt(fields []json.RawMessage, pos int, name string) (time.Time, error) {
	s, err := stringAt(fields, pos, name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s (field %d): %w", name, pos, err)
	}
	return t, nil
}

func parseLevels(raw json.RawMessage) ([]Level, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errors.New("levels: missing")
	}

	var rows [][]*int
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}

	levels := make([]Level, 0, len(rows))
	for i, row := range rows {
		if len(row) < 4 {
			return nil, fmt.Errorf("level %d: expected at least 4 values, got %d", i, len(row))
		}
		for j, name := range []string{"altitude", "wind direction", "wind speed"} {
			if row[j] == nil {
				return nil, fmt.Errorf("level %d: %s is null", i, name)
			}
		}

		lvl := Level{
			AltitudeFeet:  *row[0],
			WindDirection: *row[1],
			WindSpeed:     *row[2],
			Temperature:   row[3],
		}
		if len(row) > 4 {
			lvl.Unused = row[4]
		}
		levels = append(levels, lvl)
	}

	// Upstream row order is not guaranteed.
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].AltitudeFeet < levels[j].AltitudeFeet
	})

	return levels, nil
}

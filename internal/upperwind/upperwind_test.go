package upperwind

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func altitudes(levels []Level) []int {
	out := make([]int, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.AltitudeFeet)
	}
	return out
}

func TestParse_BothLevels(t *testing.T) {
	t.Parallel()
	report, err := Parse(readFixture(t, "both_levels.json"))
	require.NoError(t, err)
	require.Len(t, report.Elements, 2)
	assert.Zero(t, report.Failed())

	low := report.Elements[0]
	require.NoError(t, low.Err)
	assert.Equal(t, "CYKF", low.Location)
	assert.Equal(t, "FBCN35", low.Forecast.ReportType)
	assert.Equal(t, "CWAO", low.Forecast.Issuer)
	assert.Equal(t, "2023-11-10T15:30:00+00:00", low.Forecast.ApproxIssueTime)
	assert.True(t, low.Forecast.DataBasedOn.Equal(time.Date(2023, 11, 10, 12, 0, 0, 0, time.UTC)))
	assert.True(t, low.Forecast.ValidAt.Equal(time.Date(2023, 11, 11, 12, 0, 0, 0, time.UTC)))
	assert.True(t, low.Forecast.UseStart.Equal(time.Date(2023, 11, 11, 6, 0, 0, 0, time.UTC)))
	assert.True(t, low.Forecast.UseEnd.Equal(time.Date(2023, 11, 11, 18, 0, 0, 0, time.UTC)))
	assert.Len(t, low.Forecast.Reserved, 4)

	high := report.Elements[1]
	require.NoError(t, high.Err)
	assert.Equal(t, "KWNO", high.Forecast.Issuer)
	assert.Equal(t, []int{24000, 30000, 34000, 39000, 45000, 53000}, altitudes(high.Forecast.Levels))
}

func TestParse_SortsLevelsNumerically(t *testing.T) {
	t.Parallel()
	report, err := Parse(readFixture(t, "both_levels.json"))
	require.NoError(t, err)

	levels := report.Elements[0].Forecast.Levels
	assert.Equal(t, []int{3000, 6000, 9000, 12000, 18000}, altitudes(levels))

	assert.Equal(t, Level{
		AltitudeFeet:  18000,
		WindDirection: 280,
		WindSpeed:     37,
		Temperature:   ptr.To(-24),
		Unused:        ptr.To(0),
	}, levels[4])
}

func TestParse_NullTemperatureStaysUnknown(t *testing.T) {
	t.Parallel()
	report, err := Parse(readFixture(t, "both_levels.json"))
	require.NoError(t, err)

	lowest := report.Elements[0].Forecast.Levels[0]
	assert.Equal(t, 3000, lowest.AltitudeFeet)
	assert.Equal(t, 310, lowest.WindDirection)
	assert.Equal(t, 17, lowest.WindSpeed)
	assert.Nil(t, lowest.Temperature)
}

func TestParse_ZeroTemperatureIsKnown(t *testing.T) {
	t.Parallel()
	report, err := Parse(readFixture(t, "partial.json"))
	require.NoError(t, err)

	levels := report.Elements[2].Forecast.Levels
	require.Len(t, levels, 3)
	assert.Equal(t, ptr.To(0), levels[1].Temperature)
	assert.Equal(t, ptr.To(4), levels[0].Temperature)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()
	tests := map[string][]byte{
		"empty list": readFixture(t, "empty.json"),
		"null data":  []byte(`{"data":null}`),
		"no data":    []byte(`{"meta":{}}`),
	}

	for name, body := range tests {
		report, err := Parse(body)
		require.ErrorIs(t, err, ErrNoData, name)
		assert.Nil(t, report, name)

		var de *DecodeError
		assert.False(t, errors.As(err, &de), name)
	}
}

func TestParse_MalformedEnvelope(t *testing.T) {
	t.Parallel()
	for _, body := range []string{``, `not json`, `[]`, `{"data":"nope"}`} {
		_, err := Parse([]byte(body))

		var de *DecodeError
		require.ErrorAs(t, err, &de, body)
		assert.Equal(t, StageEnvelope, de.Stage)
		assert.NotErrorIs(t, err, ErrNoData)
	}
}

func TestParse_IsolatesMalformedElement(t *testing.T) {
	t.Parallel()
	report, err := Parse(readFixture(t, "partial.json"))
	require.NoError(t, err)
	require.Len(t, report.Elements, 3)
	assert.Equal(t, 1, report.Failed())

	assert.NoError(t, report.Elements[0].Err)
	assert.NotNil(t, report.Elements[0].Forecast)

	bad := report.Elements[1]
	assert.Equal(t, "CYYZ", bad.Location)
	assert.Nil(t, bad.Forecast)
	var de *DecodeError
	require.ErrorAs(t, bad.Err, &de)
	assert.Equal(t, StageElement, de.Stage)
	assert.Equal(t, 1, de.Index)

	assert.NoError(t, report.Elements[2].Err)
	assert.Equal(t, "FBCN31", report.Elements[2].Forecast.ReportType)
}

func TestParse_IsolatesMistypedElement(t *testing.T) {
	t.Parallel()
	report, err := Parse(readFixture(t, "mistyped.json"))
	require.NoError(t, err)
	require.Len(t, report.Elements, 4)
	assert.Equal(t, 2, report.Failed())

	assert.NoError(t, report.Elements[0].Err)
	assert.Equal(t, []int{3000, 18000}, altitudes(report.Elements[0].Forecast.Levels))

	textArray := report.Elements[1]
	assert.Equal(t, "CYYZ", textArray.Location)
	assert.Nil(t, textArray.Forecast)
	var de *DecodeError
	require.ErrorAs(t, textArray.Err, &de)
	assert.Equal(t, StageElement, de.Stage)
	assert.Equal(t, 1, de.Index)

	notObject := report.Elements[2]
	assert.Empty(t, notObject.Location)
	require.ErrorAs(t, notObject.Err, &de)
	assert.Equal(t, StageElement, de.Stage)
	assert.Equal(t, 2, de.Index)

	require.NoError(t, report.Elements[3].Err)
	assert.Equal(t, "FBCN31", report.Elements[3].Forecast.ReportType)
}

func TestParseText_ApproxIssueTimeKeptAsSent(t *testing.T) {
	t.Parallel()
	const rest = `"2023-11-10T12:00:00+00:00","2023-11-11T12:00:00+00:00",` +
		`"2023-11-11T06:00:00+00:00","2023-11-11T18:00:00+00:00",null,null,null,null,[]]`

	tests := map[string]string{
		`"about 1530Z"`: "about 1530Z",
		`1699630200`:    "1699630200",
		`null`:          "",
	}
	for approx, want := range tests {
		fc, err := ParseText(`["FBCN35","CWAO",` + approx + `,` + rest)
		require.NoError(t, err, approx)
		assert.Equal(t, want, fc.ApproxIssueTime, approx)
	}
}

func TestParseText_Errors(t *testing.T) {
	t.Parallel()
	const (
		ts     = `"2023-11-10T12:00:00+00:00"`
		header = `"FBCN35","CWAO","2023-11-10T15:30:00+00:00",` + ts + `,` + ts + `,` + ts + `,` + ts
	)

	tests := map[string]string{
		"not json":            `[`,
		"not an array":        `{"a":1}`,
		"too short":           `["FBCN35","CWAO"]`,
		"report type number":  `[35,"CWAO","x",` + ts + `,` + ts + `,` + ts + `,` + ts + `,[]]`,
		"bad timestamp":       `["FBCN35","CWAO","x","yesterday",` + ts + `,` + ts + `,` + ts + `,[]]`,
		"null timestamp":      `["FBCN35","CWAO","x",null,` + ts + `,` + ts + `,` + ts + `,[]]`,
		"levels not array":    `[` + header + `,null,null,null,null,"levels"]`,
		"levels null":         `[` + header + `,null,null,null,null,null]`,
		"short level row":     `[` + header + `,null,null,null,null,[[3000,310]]]`,
		"null altitude":       `[` + header + `,null,null,null,null,[[null,310,17,-5,0]]]`,
		"fractional altitude": `[` + header + `,null,null,null,null,[[3000.5,310,17,-5,0]]]`,
	}

	for name, text := range tests {
		_, err := ParseText(text)
		assert.Error(t, err, name)
	}
}

func TestParseText_OffsetNormalised(t *testing.T) {
	t.Parallel()
	text := `["FBCN35","CWAO","x","2023-11-10T07:00:00-05:00","2023-11-11T12:00:00+00:00",` +
		`"2023-11-11T06:00:00+00:00","2023-11-11T18:00:00+00:00",null,null,null,null,[]]`

	fc, err := ParseText(text)
	require.NoError(t, err)
	assert.Equal(t, "2023-11-10 12:00:00 UTC", fc.DataBasedOn.UTC().Format("2006-01-02 15:04:05 MST"))
	assert.Empty(t, fc.Levels)
}

// stubFetcher returns canned bodies and records requested URLs.
type stubFetcher struct {
	body []byte
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	return s.body, s.err
}

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()
	fetcher := &stubFetcher{body: readFixture(t, "both_levels.json")}
	d := NewDecoder(fetcher)

	report, err := d.Decode(context.Background(), "https://example.test/?point=CYKF|site|--80.379,43.461&alpha=upperwind")
	require.NoError(t, err)
	assert.Len(t, report.Elements, 2)
	assert.Equal(t, []string{
		"https://example.test/?point=CYKF|site|--80.379,43.461&alpha=upperwind&upperwind_choice=both",
	}, fetcher.urls)
}

func TestDecoder_FetchFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection refused")
	d := NewDecoder(&stubFetcher{err: boom})

	_, err := d.Decode(context.Background(), "https://example.test/?")
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, StageFetch, de.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestDecoder_NoData(t *testing.T) {
	t.Parallel()
	d := NewDecoder(&stubFetcher{body: readFixture(t, "empty.json")})

	_, err := d.Decode(context.Background(), "https://example.test/?")
	assert.ErrorIs(t, err, ErrNoData)
}

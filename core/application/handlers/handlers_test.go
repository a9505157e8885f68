package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/druidfamiliar/core/application/handlers"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

func response(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestJSONHandler_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object", `{"a":1,"b":{"c":[1,2,3]},"d":"x","e":null,"f":true}`},
		{"array", `[{"timestamp":"2020-01-01T00:00:00Z","event":{"n":9007199254740993}},{"x":1.5}]`},
		{"empty object", `{}`},
		{"empty array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := handlers.NewJSONHandler().HandleResponse(response(tt.body))
			require.NoError(t, err)

			encoded, err := json.Marshal(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, tt.body, string(encoded))
		})
	}
}

func TestJSONHandler_Shapes(t *testing.T) {
	decoded, err := handlers.NewJSONHandler().HandleResponse(response(`{}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, decoded)

	decoded, err = handlers.NewJSONHandler().HandleResponse(response(`[]`))
	require.NoError(t, err)
	assert.Equal(t, []any{}, decoded)

	decoded, err = handlers.NewJSONHandler().HandleResponse(response(`[1,"a"]`))
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), "a"}, decoded)
}

func TestJSONHandler_Errors(t *testing.T) {
	for name, body := range map[string]string{
		"empty body":    "",
		"whitespace":    "  \n",
		"malformed":     `{"a":`,
		"trailing data": `{} {}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := handlers.NewJSONHandler().HandleResponse(response(body))
			require.Error(t, err)
			assert.True(t, errors.IsUnexpectedData(err))
		})
	}
}

type metric struct {
	Timestamp string
	Page      string
	Count     int64
	Ratio     float64
}

func extractMetric(c handlers.Chunk) (metric, error) {
	page, err := c.String("page")
	if err != nil {
		return metric{}, err
	}
	count, err := c.Int("count")
	if err != nil {
		return metric{}, err
	}
	ratio, err := c.Float("ratio")
	if err != nil {
		return metric{}, err
	}
	return metric{Timestamp: c.Timestamp, Page: page, Count: count, Ratio: ratio}, nil
}

func TestRecordHandler_PreservesOrder(t *testing.T) {
	body := `[
		{"version":"v1","timestamp":"2020-01-01T00:00:00Z","event":{"page":"b","count":2,"ratio":0.5}},
		{"version":"v1","timestamp":"2020-01-02T00:00:00Z","event":{"page":"a","count":"7","ratio":1}},
		{"version":"v1","timestamp":"2020-01-03T00:00:00Z","event":{"page":"c","count":3.0,"ratio":"0.25"}}
	]`

	records, err := handlers.NewRecordHandler(extractMetric).HandleResponse(response(body))
	require.NoError(t, err)
	assert.Equal(t, []metric{
		{Timestamp: "2020-01-01T00:00:00Z", Page: "b", Count: 2, Ratio: 0.5},
		{Timestamp: "2020-01-02T00:00:00Z", Page: "a", Count: 7, Ratio: 1},
		{Timestamp: "2020-01-03T00:00:00Z", Page: "c", Count: 3, Ratio: 0.25},
	}, records)
}

// An empty result is reported as an unknown data source, not as zero
// records. Druid gives the same answer for both, and callers rely on the
// error to notice a misspelled or missing data source.
func TestRecordHandler_EmptyIsDataSourceError(t *testing.T) {
	for name, body := range map[string]string{
		"empty array":  `[]`,
		"null":         `null`,
		"empty body":   ``,
		"empty object": `{}`,
		"zero":         `0`,
		"zero float":   `0.0`,
		"false":        `false`,
		"empty string": `""`,
		"zero string":  `"0"`,
	} {
		t.Run(name, func(t *testing.T) {
			records, err := handlers.NewRecordHandler(extractMetric).HandleResponse(response(body))
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, errors.IsDataSourceError(err), "got %v", err)
		})
	}
}

func TestRecordHandler_FieldExtraction(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "missing event field",
			body:    `[{"timestamp":"t","event":{"page":"a","ratio":1}}]`,
			wantMsg: "chunk 0 is missing field 'event.count'",
		},
		{
			name:    "missing timestamp",
			body:    `[{"timestamp":"t","event":{"page":"a","count":1,"ratio":1}},{"event":{}}]`,
			wantMsg: "chunk 1 is missing field 'timestamp'",
		},
		{
			name:    "missing event",
			body:    `[{"timestamp":"t"}]`,
			wantMsg: "chunk 0 is missing field 'event'",
		},
		{
			name:    "chunk not an object",
			body:    `[1]`,
			wantMsg: "chunk 0 is not an object",
		},
		{
			name:    "wrong type",
			body:    `[{"timestamp":"t","event":{"page":"a","count":"many","ratio":1}}]`,
			wantMsg: "chunk 0 field 'event.count' must be an integer, got string",
		},
		{
			name:    "fractional integer",
			body:    `[{"timestamp":"t","event":{"page":"a","count":1.5,"ratio":1}}]`,
			wantMsg: "must be an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handlers.NewRecordHandler(extractMetric).HandleResponse(response(tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsFieldExtractionError(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRecordHandler_ExtractorErrorIsWrapped(t *testing.T) {
	failing := func(handlers.Chunk) (int, error) { return 0, io.ErrUnexpectedEOF }

	_, err := handlers.NewRecordHandler(failing).HandleResponse(response(`[{"timestamp":"t","event":{}}]`))
	require.Error(t, err)
	assert.True(t, errors.IsFieldExtractionError(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRecordHandler_UnexpectedShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"druid error", `{"error":"Unknown exception","errorMessage":"bad interval"}`, "Unknown exception: bad interval"},
		{"object", `{"rows":[]}`, "got an object"},
		{"scalar", `42`, "got json.Number"},
		{"true", `true`, "got bool"},
		{"string", `"ok"`, "got string"},
		{"malformed", `[{`, "not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handlers.NewRecordHandler(extractMetric).HandleResponse(response(tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsUnexpectedData(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

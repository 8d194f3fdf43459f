package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONDocument(t *testing.T) {
	t.Parallel()

	doc := `{
  "activities": [
    {"id": "garmin-1", "type": "running", "start": "2024-05-01T06:30:00Z", "distance_m": 8000, "duration_s": 2600, "avg_hr": 150, "elevation_gain_m": null},
    {"type": "swimming", "start": "2024-05-02T18:00:00Z", "distance_m": 1500, "duration_s": 1800, "pool_length_m": 25},
    {"type": "running", "distance_m": 1000, "duration_s": 300}
  ],
  "wellness": [
    {"date": "2024-05-01", "steps": 12000, "hrv": 58},
    {"date": "2024-05-02T00:00:00Z", "sleep_s": 27000},
    {"date": "yesterday"}
  ]
}`

	batch, err := ParseJSON(strings.NewReader(doc), "export.json")
	require.NoError(t, err)

	require.Len(t, batch.Activities, 2)
	assert.Equal(t, "garmin-1", batch.Activities[0].ID, "provider ids are kept")
	assert.Equal(t, 150.0, batch.Activities[0].AvgHeartRate.OrZero())
	assert.False(t, batch.Activities[0].ElevationGain.IsSet())
	assert.NotEmpty(t, batch.Activities[1].ID, "missing ids are derived")
	assert.Equal(t, 25.0, batch.Activities[1].PoolLength.OrZero())

	require.Len(t, batch.Wellness, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), batch.Wellness[0].Date)
	assert.Equal(t, 12000, batch.Wellness[0].Steps.OrZero())
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), batch.Wellness[1].Date)

	require.Len(t, batch.RowErrors, 2)
	assert.Contains(t, batch.RowErrors[0].Error(), "row 3: missing start")
	assert.Contains(t, batch.RowErrors[1].Error(), `invalid date "yesterday"`)
}

func TestParseJSONArray(t *testing.T) {
	t.Parallel()

	doc := `[
  {"id": "a", "type": "cycling", "start": "2023-12-31T10:00:00Z", "distance_m": 40000, "duration_s": 5400},
  {"date": "2024-01-01", "resting_hr": 48},
  {"name": "mystery"},
  {"id": "b", "type": "running", "start": "2024-01-01T10:00:00Z", "distance_m": "far", "duration_s": 5400}
]`

	batch, err := ParseJSON(strings.NewReader(doc), "mixed.json")
	require.NoError(t, err)
	require.Len(t, batch.Activities, 1)
	require.Len(t, batch.Wellness, 1)
	require.Len(t, batch.RowErrors, 2)
	assert.Equal(t, 3, batch.RowErrors[0].Row)
	assert.Equal(t, 4, batch.RowErrors[1].Row)
	assert.Equal(t, []int{2023, 2024}, yearsOf(batch))
}

func TestParseJSONErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: "  "},
		{name: "scalar", doc: "42"},
		{name: "broken object", doc: `{"activities": [`},
		{name: "broken array", doc: `[{"start": }]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseJSON(strings.NewReader(tt.doc), "bad.json")
			assert.Error(t, err)
		})
	}
}

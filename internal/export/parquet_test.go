package export

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

func readRows(t *testing.T, data []byte) []ActivityRow {
	t.Helper()
	pr, err := reader.NewParquetReader(buffer.NewBufferFileFromBytes(data), new(ActivityRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	rows := make([]ActivityRow, pr.GetNumRows())
	require.NoError(t, pr.Read(&rows))
	return rows
}

func TestMarshalActivities(t *testing.T) {
	acts := []activity.Activity{
		{
			ID:              "a1",
			Name:            "Lunch Run",
			Sport:           activity.SportRunning,
			Start:           time.Date(2024, 4, 2, 12, 30, 0, 0, time.FixedZone("CEST", 7200)),
			DistanceMeters:  10200,
			DurationSeconds: 3000,
			AvgHeartRate:    activity.Some(151.0),
			Calories:        activity.Some(640.0),
		},
		{
			ID:              "a2",
			Name:            "Commute",
			Sport:           activity.SportCycling,
			SubType:         "e_bike",
			Start:           time.Date(2024, 4, 3, 7, 0, 0, 0, time.UTC),
			DistanceMeters:  8000,
			DurationSeconds: 1500,
		},
	}

	data, err := MarshalActivities(acts)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "PAR1", string(data[:4]))

	rows := readRows(t, data)
	require.Len(t, rows, 2)

	assert.Equal(t, "a1", rows[0].ID)
	assert.Equal(t, "running", rows[0].Sport)
	assert.Equal(t, "2024-04-02T10:30:00Z", rows[0].StartUTC)
	assert.InDelta(t, 10.2, rows[0].DistanceKm, 1e-9)
	assert.Equal(t, 151.0, rows[0].AvgHeartRate)
	assert.True(t, math.IsNaN(rows[0].ElevationGainM), "absent metrics are NaN")

	assert.Equal(t, "e_bike", rows[1].SubType)
	assert.True(t, math.IsNaN(rows[1].Calories))
}

func TestWriteActivitiesParquet(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteActivitiesParquet(&buf, []activity.Activity{{ID: "x", Sport: activity.SportYoga, DurationSeconds: 1800}})
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)
	assert.Len(t, readRows(t, buf.Bytes()), 1)
}

func TestMarshalActivitiesEmpty(t *testing.T) {
	data, err := MarshalActivities(nil)
	require.NoError(t, err)
	assert.Empty(t, readRows(t, data))
}

package activity

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d, hour int) time.Time {
	return time.Date(year, month, d, hour, 0, 0, 0, time.UTC)
}

func TestOptionalJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		A Optional[float64] `json:"a"`
		B Optional[float64] `json:"b"`
		C Optional[int]     `json:"c"`
	}

	data, err := json.Marshal(payload{A: Some(0.0), C: Some(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0,"b":null,"c":3}`, string(data))

	var back payload
	require.NoError(t, json.Unmarshal([]byte(`{"a":1.5,"b":null}`), &back))
	v, ok := back.A.Get()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	assert.False(t, back.B.IsSet())
	assert.False(t, back.C.IsSet())
	assert.Equal(t, 7, back.C.Or(7))
	assert.Nil(t, back.B.Ptr())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		sport   Sport
		label   string
		group   string
		display string
		known   bool
	}{
		{raw: "running", sport: SportRunning, label: "running", display: "Running", known: true},
		{raw: "Trail Running", sport: SportRunning, label: "trail_running", display: "Trail Running", known: true},
		{raw: "trail-running", sport: SportRunning, label: "trail_running", display: "Trail Running", known: true},
		{raw: "Laufen", sport: SportRunning, label: "running", display: "Running", known: true},
		{raw: "road_biking", sport: SportCycling, label: "road_biking", group: "road", display: "Road Cycling", known: true},
		{raw: "Mountain Biking", sport: SportCycling, label: "mountain_biking", group: "mountain", display: "Mountain Biking", known: true},
		{raw: "cycling", sport: SportCycling, label: "cycling", group: "cycling", display: "Cycling", known: true},
		{raw: "lap_swimming", sport: SportSwimming, label: "lap_swimming", display: "Pool Swimming", known: true},
		{raw: "HIIT", sport: SportStrength, label: "hiit", display: "HIIT", known: true},
		{raw: "Meditation", sport: SportYoga, label: "meditation", display: "Meditation", known: true},
		{raw: "multi_sport", sport: SportOther, label: "multi_sport", display: "Multisport", known: true},
		{raw: "stand_up_paddleboarding_v2", sport: SportOther, label: "stand_up_paddleboarding_v2", display: "SUP", known: true},
		{raw: "Underwater Hockey", sport: SportOther, label: "underwater_hockey", display: "Underwater Hockey", known: false},
		{raw: "", sport: SportOther, label: "other", display: "Other", known: false},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			c := Classify(tc.raw)
			assert.Equal(t, tc.sport, c.Sport)
			assert.Equal(t, tc.label, c.Label)
			assert.Equal(t, tc.group, c.Group)
			assert.Equal(t, tc.display, c.DisplayName)
			assert.Equal(t, tc.known, c.Known)
		})
	}
}

func TestUnits(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 5.0, MetersToKm(5000), 1e-9)
	assert.InDelta(t, 1.5, SecondsToHours(5400), 1e-9)

	speed, ok := SpeedKmh(20000, 3600).Get()
	require.True(t, ok)
	assert.InDelta(t, 20.0, speed, 1e-9)

	pace, ok := PacePerKm(5000, 1500).Get()
	require.True(t, ok)
	assert.InDelta(t, 300.0, pace, 1e-9)

	swim, ok := PacePer100m(1000, 1200).Get()
	require.True(t, ok)
	assert.InDelta(t, 120.0, swim, 1e-9)

	assert.False(t, SpeedKmh(0, 100).IsSet())
	assert.False(t, PacePerKm(100, 0).IsSet())
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := []Activity{
		{ID: "b", RawType: "running", Start: day(2024, 3, 2, 7), DistanceMeters: 5000, DurationSeconds: 1500},
		{ID: "a", RawType: "road_biking", Start: day(2024, 3, 2, 7), DistanceMeters: 20000, DurationSeconds: 3600},
		{ID: "neg", RawType: "running", Start: day(2024, 3, 3, 7), DistanceMeters: -1, DurationSeconds: 10},
		{ID: "nan", RawType: "running", Start: day(2024, 3, 3, 7), DistanceMeters: 10, DurationSeconds: math.NaN()},
		{ID: "badopt", RawType: "running", Start: day(2024, 3, 3, 7), DistanceMeters: 10, DurationSeconds: 10, Calories: Some(-5.0)},
		{ID: "old", RawType: "running", Start: day(2023, 12, 31, 23), DistanceMeters: 10, DurationSeconds: 10},
		{ID: "hr", RawType: "running", Start: day(2024, 1, 1, 6), DistanceMeters: 10, DurationSeconds: 10, MaxHeartRate: Some(250.0), AvgHeartRate: Some(150.0)},
		{ID: "cold", RawType: "skiing", Start: day(2024, 1, 5, 6), DistanceMeters: 10, DurationSeconds: 10, AvgTemperature: Some(-8.0)},
	}
	original := make([]Activity, len(in))
	copy(original, in)

	out, diags := Normalize(in, 2024, NormalizeOptions{MaxHeartRate: 210})

	assert.Equal(t, original, in, "input must not be mutated")

	ids := make([]string, 0, len(out))
	for _, a := range out {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"hr", "cold", "a", "b"}, ids)

	assert.Equal(t, SportCycling, out[2].Sport)
	assert.Equal(t, "road_biking", out[2].SubType)
	assert.Equal(t, SportOther, out[1].Sport)
	assert.False(t, out[0].MaxHeartRate.IsSet())
	assert.True(t, out[0].AvgHeartRate.IsSet())

	kinds := map[string]DiagnosticKind{}
	for _, d := range diags {
		kinds[d.RecordID] = d.Kind
	}
	assert.Equal(t, DiagMalformedActivity, kinds["neg"])
	assert.Equal(t, DiagMalformedActivity, kinds["nan"])
	assert.Equal(t, DiagMalformedActivity, kinds["badopt"])
	assert.Equal(t, DiagOutOfYear, kinds["old"])
	assert.Equal(t, DiagFieldDiscarded, kinds["hr"])
	assert.Len(t, diags, 5)
}

func TestNormalizeKeepsExplicitSport(t *testing.T) {
	t.Parallel()

	out, diags := Normalize([]Activity{
		{ID: "x", RawType: "something odd", Sport: SportHiking, Start: day(2024, 6, 1, 9), DistanceMeters: 100, DurationSeconds: 60},
	}, 2024, NormalizeOptions{})
	require.Len(t, out, 1)
	assert.Empty(t, diags)
	assert.Equal(t, SportHiking, out[0].Sport)
	assert.Equal(t, "something_odd", out[0].SubType)
}

func TestNormalizeWellness(t *testing.T) {
	t.Parallel()

	in := []WellnessSample{
		{Date: day(2024, 2, 2, 0), Steps: Some(9000)},
		{Date: day(2024, 2, 1, 0), Steps: Some(8000)},
		{Date: day(2024, 2, 1, 12), Steps: Some(1)},
		{Date: day(2023, 2, 1, 0), Steps: Some(1)},
		{Date: day(2024, 2, 3, 0), HRV: Some(math.Inf(1))},
		{Date: day(2024, 2, 4, 0), BodyBatteryDelta: Some(-12.0)},
	}

	out, diags := NormalizeWellness(in, 2024)
	require.Len(t, out, 3)
	assert.Equal(t, 8000, out[0].Steps.OrZero())
	assert.Equal(t, 9000, out[1].Steps.OrZero())
	assert.Equal(t, -12.0, out[2].BodyBatteryDelta.OrZero())

	var kinds []DiagnosticKind
	for _, d := range diags {
		kinds = append(kinds, d.Kind)
	}
	assert.ElementsMatch(t, []DiagnosticKind{DiagDuplicateSample, DiagOutOfYear, DiagMalformedSample}, kinds)
}

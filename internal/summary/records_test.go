package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

func run(id string, day int, meters, seconds float64) activity.Activity {
	return activity.Activity{
		ID:              id,
		Name:            "Run " + id,
		RawType:         "running",
		Sport:           activity.SportRunning,
		SubType:         "running",
		Start:           time.Date(2024, time.March, day, 7, 0, 0, 0, time.UTC),
		DistanceMeters:  meters,
		DurationSeconds: seconds,
	}
}

func TestFindRecordsWindows(t *testing.T) {
	t.Parallel()

	acts := []activity.Activity{
		run("a", 1, 5000, 1500),
		run("b", 2, 5400, 1500),
		run("c", 3, 4800, 1000),
		run("d", 4, 10200, 3300),
		run("e", 5, 21100, 7200),
	}

	r := FindRecords(acts, DefaultConfig().RecordWindows, Streak{})

	require.NotNil(t, r.Fastest5K)
	assert.Equal(t, "a", r.Fastest5K.Activity.ID, "equal times keep the earliest activity")
	assert.Equal(t, 1500.0, r.Fastest5K.Seconds)

	require.NotNil(t, r.Fastest10K)
	assert.Equal(t, "d", r.Fastest10K.Activity.ID)
	require.NotNil(t, r.FastestHalfMarathon)
	assert.Equal(t, "e", r.FastestHalfMarathon.Activity.ID)
	assert.Nil(t, r.FastestMarathon)

	require.NotNil(t, r.LongestRun)
	assert.InDelta(t, 21.1, r.LongestRun.Value, 1e-9)
	assert.Equal(t, "2024-03-05", r.LongestRun.Activity.Date)
	assert.Nil(t, r.LongestRide)
	assert.Nil(t, r.MostElevation, "no elevation data means no record")
	assert.Nil(t, r.HighestHeartRate)
}

func TestFindRecordsIgnoresOtherSportsForRaces(t *testing.T) {
	t.Parallel()

	ride := run("r", 1, 5000, 600)
	ride.Sport = activity.SportCycling
	r := FindRecords([]activity.Activity{ride}, DefaultConfig().RecordWindows, Streak{})
	assert.Nil(t, r.Fastest5K)
	require.NotNil(t, r.LongestRide)
	assert.Equal(t, "r", r.LongestRide.Activity.ID)
}

func TestFindRecordsMaxima(t *testing.T) {
	t.Parallel()

	a := run("a", 1, 8000, 2400)
	a.ElevationGain = activity.Some(300.0)
	a.MaxHeartRate = activity.Some(185.0)
	a.Calories = activity.Some(0.0)
	b := run("b", 2, 6000, 3600)
	b.ElevationGain = activity.Some(300.0)
	b.MaxHeartRate = activity.Some(190.0)

	r := FindRecords([]activity.Activity{a, b}, DefaultConfig().RecordWindows, Streak{})
	assert.Equal(t, "a", r.MostElevation.Activity.ID)
	assert.Equal(t, "b", r.HighestHeartRate.Activity.ID)
	assert.Equal(t, "b", r.LongestDuration.Activity.ID)
	assert.Nil(t, r.MostCalories, "zero calories is not a record")
}

func TestAggregateRates(t *testing.T) {
	t.Parallel()

	acts := []activity.Activity{
		run("a", 1, 5000, 1500),
		run("b", 2, 10000, 2700),
		{ID: "s", Sport: activity.SportStrength, Start: time.Date(2024, 3, 3, 18, 0, 0, 0, time.UTC), DurationSeconds: 3600},
		{ID: "w", Sport: activity.SportSwimming, Start: time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC), DistanceMeters: 1500, DurationSeconds: 1800},
	}

	by := Aggregate(acts)
	require.Len(t, by, 3)

	running := by[activity.SportRunning]
	assert.Equal(t, 2, running.Count)
	assert.Equal(t, RatePacePerKm, running.RateKind)
	assert.InDelta(t, 280.0, running.AvgRate.OrZero(), 1e-9)
	assert.InDelta(t, 270.0, running.BestRate.OrZero(), 1e-9)
	assert.Equal(t, "b", running.FastestActivity.ID)
	assert.Equal(t, "b", running.LongestActivity.ID)

	strength := by[activity.SportStrength]
	assert.Equal(t, RateNone, strength.RateKind)
	assert.Nil(t, strength.LongestActivity)
	assert.Nil(t, strength.FastestActivity)
	assert.False(t, strength.AvgRate.IsSet())
	assert.InDelta(t, 1.0, strength.TotalDurationHours, 1e-9)

	swim := by[activity.SportSwimming]
	assert.Equal(t, RatePacePer100m, swim.RateKind)
	assert.InDelta(t, 120.0, swim.AvgRate.OrZero(), 1e-9)
}

func TestAggregateBy(t *testing.T) {
	t.Parallel()

	mk := func(id, raw string, day int) activity.Activity {
		return activity.Activity{ID: id, RawType: raw, Start: time.Date(2024, 5, day, 9, 0, 0, 0, time.UTC), DistanceMeters: 1000, DurationSeconds: 600}
	}
	acts, _ := activity.Normalize([]activity.Activity{
		mk("1", "tennis", 1),
		mk("2", "tennis", 2),
		mk("3", "Underwater Hockey", 3),
		mk("4", "road_biking", 4),
		mk("5", "Rennrad", 5),
		mk("6", "indoor_cycling", 6),
	}, 2024, activity.NormalizeOptions{})

	other := AggregateBy(acts, activity.SportOther, OtherKey)
	require.Len(t, other, 2)
	assert.Equal(t, "tennis", other[0].Label)
	assert.Equal(t, 2, other[0].Count)
	assert.Equal(t, "Tennis", other[0].DisplayName)
	assert.Equal(t, "underwater_hockey", other[1].Label)
	assert.Equal(t, "Underwater Hockey", other[1].DisplayName)

	cycling := AggregateBy(acts, activity.SportCycling, CyclingKey)
	require.Len(t, cycling, 2)
	assert.Equal(t, "road", cycling[0].Label)
	assert.Equal(t, 2, cycling[0].Count)
	assert.Equal(t, "indoor", cycling[1].Label)
}

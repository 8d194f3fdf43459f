package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

func stepsOn(day time.Time, steps int) activity.WellnessSample {
	return activity.WellnessSample{Date: day, Steps: activity.Some(steps)}
}

func TestRollupWellnessSteps(t *testing.T) {
	t.Parallel()

	// 2024-01-01 is a Monday
	tests := []struct {
		name    string
		samples []activity.WellnessSample
		check   func(t *testing.T, si StepInsights)
	}{
		{
			name: "averages and extremes",
			samples: []activity.WellnessSample{
				stepsOn(date(2024, time.January, 1), 8000),
				stepsOn(date(2024, time.January, 2), 12000),
				{Date: date(2024, time.January, 3), Floors: activity.Some(4.0)},
				stepsOn(date(2024, time.January, 8), 10000),
				stepsOn(date(2024, time.February, 3), 4000),
				stepsOn(date(2024, time.February, 4), 0),
			},
			check: func(t *testing.T, si StepInsights) {
				assert.True(t, si.HasStepData)
				assert.Equal(t, 5, si.StepDataPoints)
				assert.Equal(t, activity.Some(6800.0), si.AvgDailySteps)
				assert.Equal(t, activity.Some(6800.0*365), si.EstimatedYearly)
				require.NotNil(t, si.BestDay)
				assert.Equal(t, StepDay{Date: "2024-01-02", Steps: 12000}, *si.BestDay)

				assert.Equal(t, WeekdayAverage{Weekday: "Monday", Average: 9000, Samples: 2}, si.Weekdays[0])
				assert.Equal(t, WeekdayAverage{Weekday: "Wednesday"}, si.Weekdays[2])
				assert.Equal(t, WeekdayAverage{Weekday: "Sunday", Average: 0, Samples: 1}, si.Weekdays[6])
				assert.Equal(t, activity.Some("Tuesday"), si.BestWeekday)
				assert.Equal(t, activity.Some("Saturday"), si.WorstWeekday, "a zero average is not the worst weekday")

				assert.Equal(t, 10000.0, si.MonthlyAverages[0])
				assert.Equal(t, 2000.0, si.MonthlyAverages[1])
				assert.Zero(t, si.MonthlyAverages[2])
				assert.Equal(t, activity.Some(1), si.BestMonth)
			},
		},
		{
			name: "equal step days keep the earliest",
			samples: []activity.WellnessSample{
				stepsOn(date(2024, time.May, 6), 15000),
				stepsOn(date(2024, time.May, 9), 15000),
			},
			check: func(t *testing.T, si StepInsights) {
				require.NotNil(t, si.BestDay)
				assert.Equal(t, "2024-05-06", si.BestDay.Date)
				assert.Equal(t, activity.Some(5), si.BestMonth)
			},
		},
		{
			name: "zero steps are data",
			samples: []activity.WellnessSample{
				stepsOn(date(2024, time.January, 1), 0),
				stepsOn(date(2024, time.January, 2), 0),
			},
			check: func(t *testing.T, si StepInsights) {
				assert.True(t, si.HasStepData)
				assert.Equal(t, 2, si.StepDataPoints)
				assert.Equal(t, activity.Some(0.0), si.AvgDailySteps)
				assert.Equal(t, activity.Some(0.0), si.EstimatedYearly)
				require.NotNil(t, si.BestDay)
				assert.Equal(t, "2024-01-01", si.BestDay.Date)
				assert.Equal(t, activity.Some("Monday"), si.BestWeekday)
				assert.False(t, si.WorstWeekday.IsSet())
			},
		},
		{
			name:    "no step data",
			samples: []activity.WellnessSample{{Date: date(2024, time.January, 1), HRV: activity.Some(50.0)}},
			check: func(t *testing.T, si StepInsights) {
				assert.False(t, si.HasStepData)
				assert.Zero(t, si.StepDataPoints)
				assert.False(t, si.AvgDailySteps.IsSet())
				assert.False(t, si.EstimatedYearly.IsSet())
				assert.Nil(t, si.BestDay)
				assert.False(t, si.BestWeekday.IsSet())
				assert.False(t, si.WorstWeekday.IsSet())
				assert.False(t, si.BestMonth.IsSet())
				assert.Equal(t, "Monday", si.Weekdays[0].Weekday)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := RollupWellness(tt.samples, nil, nil, DefaultConfig())
			tt.check(t, w.Steps)
		})
	}
}

func TestRollupWellnessFloors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []activity.WellnessSample
		want    FloorInsights
	}{
		{
			name: "weekday totals",
			samples: []activity.WellnessSample{
				{Date: date(2024, time.January, 1), Floors: activity.Some(10.0)},
				{Date: date(2024, time.January, 5), Floors: activity.Some(5.0)},
				{Date: date(2024, time.January, 6), Steps: activity.Some(3000)},
				{Date: date(2024, time.January, 8), Floors: activity.Some(6.0)},
			},
			want: FloorInsights{
				HasFloorData:    true,
				FloorDataPoints: 3,
				TotalFloors:     21,
				AvgDailyFloors:  activity.Some(7.0),
				WeekdayTotals:   [7]float64{16, 0, 0, 0, 5, 0, 0},
			},
		},
		{
			name:    "zero floors are data",
			samples: []activity.WellnessSample{{Date: date(2024, time.January, 7), Floors: activity.Some(0.0)}},
			want:    FloorInsights{HasFloorData: true, FloorDataPoints: 1, AvgDailyFloors: activity.Some(0.0)},
		},
		{
			name: "no floor data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := RollupWellness(tt.samples, nil, nil, DefaultConfig())
			assert.Equal(t, tt.want, w.Floors)
		})
	}
}

func TestRollupWellnessSweat(t *testing.T) {
	t.Parallel()

	withSweat := func(id string, ml float64) activity.Activity {
		a := run(id, 1, 5000, 1500)
		a.SweatLoss = activity.Some(ml)
		return a
	}

	tests := []struct {
		name    string
		samples []activity.WellnessSample
		acts    []activity.Activity
		want    SweatInsights
	}{
		{
			name: "daily samples are extrapolated",
			samples: []activity.WellnessSample{
				{Date: date(2024, time.March, 1), SweatLoss: activity.Some(600.0)},
				{Date: date(2024, time.March, 2), SweatLoss: activity.Some(900.0)},
			},
			acts: []activity.Activity{withSweat("a", 400)},
			want: SweatInsights{
				HasSweatData:      true,
				SweatDataPoints:   2,
				AvgDailyMl:        activity.Some(750.0),
				EstimatedYearlyMl: activity.Some(750.0 * 365),
			},
		},
		{
			name: "activities are summed without daily samples",
			acts: []activity.Activity{withSweat("a", 400), run("b", 2, 5000, 1500), withSweat("c", 350)},
			want: SweatInsights{
				HasSweatData:      true,
				SweatDataPoints:   2,
				EstimatedYearlyMl: activity.Some(750.0),
				FromActivities:    true,
			},
		},
		{
			name: "no sweat data",
			acts: []activity.Activity{run("a", 1, 5000, 1500)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := RollupWellness(tt.samples, nil, tt.acts, DefaultConfig())
			assert.Equal(t, tt.want, w.Sweat)
		})
	}
}

func TestRollupWellnessSleep(t *testing.T) {
	t.Parallel()

	sleep := func(day int, score, seconds float64) activity.WellnessSample {
		s := activity.WellnessSample{Date: date(2024, time.June, day)}
		if score > 0 {
			s.SleepScore = activity.Some(score)
		}
		if seconds > 0 {
			s.SleepSeconds = activity.Some(seconds)
		}
		return s
	}

	tests := []struct {
		name    string
		samples []activity.WellnessSample
		want    SleepInsights
	}{
		{
			name: "perfect days also count as excellent",
			samples: []activity.WellnessSample{
				sleep(1, 100, 28800),
				sleep(2, 92, 25200),
				sleep(3, 85, 0),
				sleep(4, 84, 0),
				sleep(5, 0, 27000),
			},
			want: SleepInsights{
				HasSleepData:    true,
				SleepDataPoints: 4,
				AvgScore:        activity.Some(90.25),
				AvgHours:        activity.Some(7.5),
				PerfectDays:     1,
				ExcellentDays:   3,
			},
		},
		{
			name:    "near perfect is only excellent",
			samples: []activity.WellnessSample{sleep(1, 99, 0)},
			want: SleepInsights{
				HasSleepData:    true,
				SleepDataPoints: 1,
				AvgScore:        activity.Some(99.0),
				ExcellentDays:   1,
			},
		},
		{
			name:    "durations without scores",
			samples: []activity.WellnessSample{sleep(1, 0, 21600), sleep(2, 0, 25200)},
			want: SleepInsights{
				HasSleepData:    true,
				SleepDataPoints: 2,
				AvgHours:        activity.Some(6.5),
			},
		},
		{
			name: "no sleep data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := RollupWellness(tt.samples, nil, nil, DefaultConfig())
			assert.Equal(t, tt.want, w.Sleep)
		})
	}
}

func TestRollupWellnessDailyAverages(t *testing.T) {
	t.Parallel()

	samples := []activity.WellnessSample{
		{Date: date(2024, time.July, 1), RestingHeartRate: activity.Some(50.0), BodyBatteryDelta: activity.Some(10.0)},
		{Date: date(2024, time.July, 2), RestingHeartRate: activity.Some(54.0), BodyBatteryDelta: activity.Some(-4.0)},
		{Date: date(2024, time.July, 3), BodyBatteryDelta: activity.Some(0.0)},
	}
	w := RollupWellness(samples, nil, nil, DefaultConfig())

	assert.True(t, w.HasRestingHRData)
	assert.Equal(t, 2, w.RestingHRDataPoints)
	assert.Equal(t, activity.Some(52.0), w.AvgRestingHR)
	assert.True(t, w.HasBodyBatteryData)
	assert.Equal(t, 3, w.BodyBatteryDataPoints)
	assert.Equal(t, activity.Some(2.0), w.AvgBodyBatteryDelta)

	empty := RollupWellness(nil, nil, nil, DefaultConfig())
	assert.False(t, empty.HasRestingHRData)
	assert.False(t, empty.AvgRestingHR.IsSet())
	assert.False(t, empty.HasBodyBatteryData)
	assert.False(t, empty.AvgBodyBatteryDelta.IsSet())
	assert.False(t, empty.HRV.HasHRVData)
	assert.Nil(t, empty.HRV.Trend)
}

func TestRollupWellnessHRV(t *testing.T) {
	t.Parallel()

	hrv := func(day int, hour int, v float64) activity.WellnessSample {
		return activity.WellnessSample{
			Date: time.Date(2024, time.January, day, hour, 30, 0, 0, time.UTC),
			HRV:  activity.Some(v),
		}
	}

	tests := []struct {
		name        string
		samples     []activity.WellnessSample
		activeDates []time.Time
		check       func(t *testing.T, hi HRVInsights)
	}{
		{
			name: "split by the previous day and rising trend",
			samples: []activity.WellnessSample{
				hrv(2, 0, 40),
				hrv(3, 0, 42),
				hrv(4, 6, 44),
				hrv(5, 0, 50),
				hrv(6, 0, 52),
				hrv(7, 0, 54),
			},
			activeDates: []time.Time{date(2024, time.January, 1), date(2024, time.January, 3)},
			check: func(t *testing.T, hi HRVInsights) {
				assert.True(t, hi.HasHRVData)
				assert.Equal(t, 6, hi.HRVDataPoints)
				assert.Equal(t, activity.Some(47.0), hi.Average)
				assert.Equal(t, activity.Some(42.0), hi.AfterActiveDay)
				assert.Equal(t, activity.Some(49.5), hi.AfterRestDay)

				require.NotNil(t, hi.Trend)
				assert.Equal(t, TrendImproving, hi.Trend.Trend)
				assert.Equal(t, 41.0, hi.Trend.StartAverage)
				assert.Equal(t, 53.0, hi.Trend.EndAverage)
			},
		},
		{
			name:    "flat series is stable",
			samples: []activity.WellnessSample{hrv(1, 0, 60), hrv(2, 0, 61), hrv(3, 0, 60)},
			check: func(t *testing.T, hi HRVInsights) {
				require.NotNil(t, hi.Trend)
				assert.Equal(t, TrendStable, hi.Trend.Trend)
				assert.False(t, hi.AfterActiveDay.IsSet(), "no active days")
				avg, ok := hi.AfterRestDay.Get()
				require.True(t, ok)
				assert.InDelta(t, 60.333, avg, 1e-3)
			},
		},
		{
			name:        "too few samples for a trend",
			samples:     []activity.WellnessSample{hrv(2, 0, 45), hrv(3, 0, 55)},
			activeDates: []time.Time{date(2024, time.January, 1), date(2024, time.January, 2)},
			check: func(t *testing.T, hi HRVInsights) {
				assert.Equal(t, 2, hi.HRVDataPoints)
				assert.Nil(t, hi.Trend)
				assert.Equal(t, activity.Some(50.0), hi.AfterActiveDay)
				assert.False(t, hi.AfterRestDay.IsSet())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := RollupWellness(tt.samples, tt.activeDates, nil, DefaultConfig())
			tt.check(t, w.HRV)
		})
	}
}

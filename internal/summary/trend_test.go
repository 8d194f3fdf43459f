package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

func TestClassifyTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		series         []float64
		higherIsBetter bool
		want           Trend
		ok             bool
	}{
		{name: "too few points", series: []float64{1, 2}, higherIsBetter: true, ok: false},
		{name: "rising", series: []float64{200, 200, 200, 210, 220, 220}, higherIsBetter: true, want: TrendImproving, ok: true},
		{name: "falling", series: []float64{220, 220, 210, 200, 200, 200}, higherIsBetter: true, want: TrendDeclining, ok: true},
		{name: "within threshold", series: []float64{100, 100, 101, 102, 102, 102}, higherIsBetter: true, want: TrendStable, ok: true},
		{name: "lower is better", series: []float64{260, 255, 250, 245, 240, 235}, higherIsBetter: false, want: TrendImproving, ok: true},
		{name: "zero baseline", series: []float64{0, 5, 5}, higherIsBetter: true, want: TrendImproving, ok: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, ok := ClassifyTrend(tc.series, 3, tc.higherIsBetter, 3)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, res.Trend)
			}
		})
	}
}

func TestClassifyTrendPeriods(t *testing.T) {
	t.Parallel()

	// n = 7 gives k = 2: first {10, 20}, last {40, 50}
	res, ok := ClassifyTrend([]float64{10, 20, 99, 99, 99, 40, 50}, 3, true, 3)
	require.True(t, ok)
	assert.InDelta(t, 15.0, res.StartAverage, 1e-9)
	assert.InDelta(t, 45.0, res.EndAverage, 1e-9)
	assert.InDelta(t, 200.0, res.ChangePercent, 1e-9)
}

func TestPercentChange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, PercentChange(0, 10))
	assert.Equal(t, 0.0, PercentChange(0, 0))
	assert.InDelta(t, -50.0, PercentChange(10, 5), 1e-9)
	assert.InDelta(t, 25.0, PercentChange(100, 125), 1e-9)
}

func TestFormScore(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Form
	some := activity.Some[float64]
	none := activity.None[float64]()

	tests := []struct {
		name         string
		gct, vo, cad activity.Optional[float64]
		want         float64
	}{
		{name: "no data", gct: none, vo: none, cad: none, want: 50},
		{name: "elite", gct: some(230), vo: some(7.5), cad: some(182), want: 95},
		{name: "middle tiers", gct: some(250), vo: some(8.5), cad: some(172), want: 80},
		{name: "lowest tiers", gct: some(270), vo: some(9.5), cad: some(165), want: 65},
		{name: "no bonus", gct: some(300), vo: some(11), cad: some(150), want: 50},
		{name: "partial", gct: some(230), vo: none, cad: none, want: 65},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FormScore(cfg, tc.gct, tc.vo, tc.cad))
		})
	}

	capped := cfg
	capped.Base = 80
	assert.Equal(t, 100.0, FormScore(capped, some(230), some(7), some(190)))
}

func TestAnalyzeCyclingPower(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	var acts []activity.Activity
	for i, p := range []float64{200, 205, 210, 230, 240, 250} {
		acts = append(acts, activity.Activity{
			ID:              string(rune('a' + i)),
			Sport:           activity.SportCycling,
			Start:           time.Date(2024, time.Month(i+1), 1, 8, 0, 0, 0, time.UTC),
			DistanceMeters:  40000,
			DurationSeconds: 5400,
			AvgPower:        activity.Some(p - 20),
			MaxPower:        activity.Some(p * 3),
			Max20MinPower:   activity.Some(p),
		})
	}
	acts = append(acts, activity.Activity{ID: "z", Sport: activity.SportCycling, Start: time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC), DistanceMeters: 1000, DurationSeconds: 100})

	cp := AnalyzeCyclingPower(acts, cfg)
	require.NotNil(t, cp)
	assert.Equal(t, 6, cp.DataPoints)
	assert.InDelta(t, 750.0, cp.MaxPowerW.OrZero(), 1e-9)
	assert.InDelta(t, 250*0.95, cp.EstimatedFTPW.OrZero(), 1e-9)
	require.NotNil(t, cp.FTPTrend)
	assert.Equal(t, TrendImproving, cp.FTPTrend.Trend)
	assert.Equal(t, 6, cp.FTPTrend.DataPoints)

	assert.Nil(t, AnalyzeCyclingPower(acts[6:], cfg))
}

func TestAnalyzeRunningForm(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	acts := []activity.Activity{
		{ID: "1", Sport: activity.SportRunning, Start: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), GroundContactTime: activity.Some(250.0), AvgCadence: activity.Some(170.0)},
		{ID: "2", Sport: activity.SportRunning, Start: time.Date(2024, 2, 1, 7, 0, 0, 0, time.UTC), GroundContactTime: activity.Some(230.0), AvgCadence: activity.Some(182.0), VerticalOscillation: activity.Some(7.8)},
		{ID: "3", Sport: activity.SportRunning, Start: time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)},
	}

	rf := AnalyzeRunningForm(acts, cfg)
	require.NotNil(t, rf)
	assert.Equal(t, 2, rf.DataPoints)
	assert.InDelta(t, 240.0, rf.AvgGroundContactMs.OrZero(), 1e-9)
	assert.InDelta(t, 230.0, rf.BestGroundContactMs.OrZero(), 1e-9)
	assert.InDelta(t, 182.0, rf.BestCadence.OrZero(), 1e-9)
	assert.False(t, rf.AvgStrideLengthM.IsSet())
	assert.Nil(t, rf.Trend, "two samples are below the trend minimum")
}

func TestAnalyzeTrainingEffect(t *testing.T) {
	t.Parallel()

	acts := []activity.Activity{
		{ID: "1", AerobicEffect: activity.Some(4.2), AnaerobicEffect: activity.Some(1.0), TrainingEffectLabel: "TEMPO"},
		{ID: "2", AerobicEffect: activity.Some(3.0), TrainingEffectLabel: "BASE"},
		{ID: "3", AnaerobicEffect: activity.Some(4.0), TrainingEffectLabel: "ANAEROBIC"},
		{ID: "4"},
	}

	te := AnalyzeTrainingEffect(acts, 4)
	require.NotNil(t, te)
	assert.Equal(t, 3, te.DataPoints)
	assert.Equal(t, 2, te.HighImpactWorkouts)
	assert.InDelta(t, 3.6, te.AvgAerobicEffect, 1e-9)
	assert.InDelta(t, 2.5, te.AvgAnaerobicEffect, 1e-9)
	assert.InDelta(t, 4.2, te.MaxAerobicEffect, 1e-9)
	assert.Equal(t, "ANAEROBIC", te.DominantLabel, "ties resolve to the smallest label")

	assert.Nil(t, AnalyzeTrainingEffect(acts[3:], 4))
}

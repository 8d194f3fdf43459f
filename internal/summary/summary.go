// Package summary turns one calendar year of activities and wellness
// samples into an immutable YearSummary. It performs no I/O.
package summary

import (
	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// Totals are the headline numbers of a year
type Totals struct {
	Activities    int     `json:"activities"`
	DistanceKm    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_h"`
	ElevationM    float64 `json:"elevation_m"`
	Calories      float64 `json:"calories"`
	ActiveDays    int     `json:"active_days"`
}

// YearSummary is the complete analysis of one year. It is never modified
// after Compute returns it.
type YearSummary struct {
	Year             int                               `json:"year"`
	CatalogueVersion string                            `json:"catalogue_version"`
	Totals           Totals                            `json:"totals"`
	BySport          map[activity.Sport]*SportRollup   `json:"by_sport"`
	OtherBreakdown   []*SportRollup                    `json:"other_breakdown"`
	CyclingBreakdown []*SportRollup                    `json:"cycling_breakdown"`
	Records          RecordSet                         `json:"records"`
	Calendar         Calendar                          `json:"calendar"`
	Wellness         WellnessInsights                  `json:"wellness"`
	Trends           map[activity.Sport]*TrendAnalysis `json:"trends"`
	RunningForm      *RunningForm                      `json:"running_form"`
	CyclingPower     *CyclingPower                     `json:"cycling_power"`
	TrainingEffect   *TrainingEffect                   `json:"training_effect"`
	Metrics          Metrics                           `json:"metrics"`
	Personality      ArchetypeResult                   `json:"personality"`
	Achievements     []Achievement                     `json:"achievements"`
	Insights         []Insight                         `json:"insights"`
	YearOverYear     *YearOverYearDelta                `json:"year_over_year"`
	Diagnostics      []activity.Diagnostic             `json:"diagnostics"`
}

// Compute analyses the activities and wellness samples of year. Records
// outside the year or with invalid values are reported in Diagnostics.
// previous may be nil; when set it must be the summary of an earlier year.
func (e *Engine) Compute(acts []activity.Activity, samples []activity.WellnessSample, year int, previous *YearSummary) *YearSummary {
	cfg := e.cfg
	norm, diags := activity.Normalize(acts, year, activity.NormalizeOptions{MaxHeartRate: cfg.MaxHeartRate})
	wellness, wdiags := activity.NormalizeWellness(samples, year)
	diags = append(diags, wdiags...)

	dates := ActiveDates(norm)
	streak := LongestStreak(dates)

	s := &YearSummary{
		Year:             year,
		CatalogueVersion: cfg.Catalogue.Version,
		BySport:          Aggregate(norm),
		OtherBreakdown:   AggregateBy(norm, activity.SportOther, OtherKey),
		CyclingBreakdown: AggregateBy(norm, activity.SportCycling, CyclingKey),
		Records:          FindRecords(norm, cfg.RecordWindows, streak),
		Calendar:         BuildCalendar(norm, year, cfg.ConsistencyScale),
		Wellness:         RollupWellness(wellness, dates, norm, cfg),
		Trends:           map[activity.Sport]*TrendAnalysis{},
		RunningForm:      AnalyzeRunningForm(norm, cfg),
		CyclingPower:     AnalyzeCyclingPower(norm, cfg),
		TrainingEffect:   AnalyzeTrainingEffect(norm, cfg.HighImpactEffect),
		Diagnostics:      diags,
	}
	if s.Diagnostics == nil {
		s.Diagnostics = []activity.Diagnostic{}
	}

	s.Totals = totalsOf(norm, len(dates))
	if s.RunningForm != nil && s.RunningForm.Trend != nil {
		s.Trends[activity.SportRunning] = s.RunningForm.Trend
	}
	if s.CyclingPower != nil && s.CyclingPower.FTPTrend != nil {
		s.Trends[activity.SportCycling] = s.CyclingPower.FTPTrend
	}

	s.Metrics = buildMetrics(norm, s, cfg)
	s.Personality = ClassifyArchetype(s.Metrics, cfg.Archetypes.Rules, cfg.Archetypes.Default)
	s.Achievements = EvaluateAchievements(s.Metrics, cfg.Catalogue)
	s.Insights = BuildInsights(norm, s.Totals, s.Calendar, streak)
	if s.Insights == nil {
		s.Insights = []Insight{}
	}
	if previous != nil && previous.Year < year {
		s.YearOverYear = ComputeDelta(s, previous)
	}
	return s
}

func totalsOf(acts []activity.Activity, activeDays int) Totals {
	var t Totals
	var meters, seconds float64
	for _, a := range acts {
		t.Activities++
		meters += a.DistanceMeters
		seconds += a.DurationSeconds
		t.ElevationM += a.ElevationGain.OrZero()
		t.Calories += a.Calories.OrZero()
	}
	t.DistanceKm = activity.MetersToKm(meters)
	t.DurationHours = activity.SecondsToHours(seconds)
	t.ActiveDays = activeDays
	return t
}

func boolMetric(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func buildMetrics(acts []activity.Activity, s *YearSummary, cfg Config) Metrics {
	m := Metrics{Numbers: map[string]float64{}, Labels: map[string]string{}}
	n := m.Numbers

	types := map[string]bool{}
	var sweatMl float64
	var cold, hot int
	for _, a := range acts {
		types[activity.NormalizeLabel(a.SubType)] = true
		sweatMl += a.SweatLoss.OrZero()
		if t, ok := a.AvgTemperature.Get(); ok {
			if t < cfg.Temperature.ColdBelow {
				cold++
			}
			if t > cfg.Temperature.HotAbove {
				hot++
			}
		}
	}

	n[MetricDistinctSports] = float64(len(s.BySport))
	n[MetricDistinctTypes] = float64(len(types))
	n[MetricTotalActivities] = float64(s.Totals.Activities)
	n[MetricTotalDistanceKm] = s.Totals.DistanceKm
	n[MetricTotalElevationM] = s.Totals.ElevationM
	n[MetricTotalDurationH] = s.Totals.DurationHours
	n[MetricActiveDays] = float64(s.Totals.ActiveDays)
	n[MetricLongestStreak] = float64(s.Records.LongestStreak.Days)
	n[MetricConsistency] = float64(s.Calendar.Patterns.Consistency)
	if v, ok := s.Calendar.Patterns.WeekendShare.Get(); ok {
		n[MetricWeekendShare] = v
	}
	if tod, ok := s.Calendar.Patterns.PreferredTimeOfDay.Get(); ok {
		m.Labels[LabelPreferredTimeOfDay] = string(tod)
	}

	r := s.Records
	if r.LongestRide != nil {
		n[MetricLongestRideKm] = r.LongestRide.Value
	} else {
		n[MetricLongestRideKm] = 0
	}
	n[MetricRecord5K] = boolMetric(r.Fastest5K != nil)
	n[MetricRecord10K] = boolMetric(r.Fastest10K != nil)
	switch {
	case r.FastestMarathon != nil:
		n[MetricRaceDistanceKm] = 42.195
	case r.FastestHalfMarathon != nil:
		n[MetricRaceDistanceKm] = 21.0975
	case r.Fastest10K != nil:
		n[MetricRaceDistanceKm] = 10
	case r.Fastest5K != nil:
		n[MetricRaceDistanceKm] = 5
	default:
		n[MetricRaceDistanceKm] = 0
	}

	n[MetricRunningFormSamples] = 0
	if rf := s.RunningForm; rf != nil {
		n[MetricRunningFormSamples] = float64(rf.DataPoints)
		if v, ok := rf.AvgGroundContactMs.Get(); ok {
			n[MetricAvgGroundContactMs] = v
		}
		if v, ok := rf.AvgCadence.Get(); ok {
			n[MetricAvgRunCadence] = v
		}
	}

	n[MetricPowerRides] = 0
	if cp := s.CyclingPower; cp != nil {
		n[MetricPowerRides] = float64(cp.DataPoints)
		if v, ok := cp.MaxPowerW.Get(); ok {
			n[MetricMaxPowerW] = v
		}
	}

	n[MetricTrainingEffectSamples] = 0
	n[MetricHighImpactWorkouts] = 0
	if te := s.TrainingEffect; te != nil {
		n[MetricTrainingEffectSamples] = float64(te.DataPoints)
		n[MetricHighImpactWorkouts] = float64(te.HighImpactWorkouts)
	}

	n[MetricTotalSweatLossL] = sweatMl / 1000
	n[MetricColdActivities] = float64(cold)
	n[MetricHotActivities] = float64(hot)
	return m
}

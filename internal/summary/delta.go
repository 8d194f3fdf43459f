package summary

// MetricDelta compares one total across two years
type MetricDelta struct {
	Previous   float64 `json:"previous"`
	Current    float64 `json:"current"`
	Difference float64 `json:"difference"`
	Percent    float64 `json:"percent"`
}

func deltaOf(prev, cur float64) MetricDelta {
	return MetricDelta{
		Previous:   prev,
		Current:    cur,
		Difference: cur - prev,
		Percent:    PercentChange(prev, cur),
	}
}

// YearOverYearDelta compares the totals of two summaries
type YearOverYearDelta struct {
	PreviousYear  int         `json:"previous_year"`
	Activities    MetricDelta `json:"activities"`
	DistanceKm    MetricDelta `json:"distance_km"`
	DurationHours MetricDelta `json:"duration_h"`
	ElevationM    MetricDelta `json:"elevation_m"`
	Calories      MetricDelta `json:"calories"`
}

// ComputeDelta compares current against previous
func ComputeDelta(current, previous *YearSummary) *YearOverYearDelta {
	if current == nil || previous == nil {
		return nil
	}
	c, p := current.Totals, previous.Totals
	return &YearOverYearDelta{
		PreviousYear:  previous.Year,
		Activities:    deltaOf(float64(p.Activities), float64(c.Activities)),
		DistanceKm:    deltaOf(p.DistanceKm, c.DistanceKm),
		DurationHours: deltaOf(p.DurationHours, c.DurationHours),
		ElevationM:    deltaOf(p.ElevationM, c.ElevationM),
		Calories:      deltaOf(p.Calories, c.Calories),
	}
}

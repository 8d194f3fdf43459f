package summary

import (
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// StepDay is the step count of a single day
type StepDay struct {
	Date  string `json:"date"`
	Steps int    `json:"steps"`
}

// WeekdayAverage is the average of a daily metric on one weekday
type WeekdayAverage struct {
	Weekday string  `json:"weekday"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// StepInsights rolls up daily step counts
type StepInsights struct {
	HasStepData     bool                       `json:"has_step_data"`
	StepDataPoints  int                        `json:"step_data_points"`
	AvgDailySteps   activity.Optional[float64] `json:"avg_daily_steps"`
	EstimatedYearly activity.Optional[float64] `json:"estimated_yearly_steps"`
	BestDay         *StepDay                   `json:"best_day"`
	Weekdays        [7]WeekdayAverage          `json:"weekdays"`
	BestWeekday     activity.Optional[string]  `json:"best_weekday"`
	WorstWeekday    activity.Optional[string]  `json:"worst_weekday"`
	MonthlyAverages [12]float64                `json:"monthly_averages"`
	BestMonth       activity.Optional[int]     `json:"best_month"`
}

// FloorInsights rolls up floors climbed
type FloorInsights struct {
	HasFloorData    bool                       `json:"has_floor_data"`
	FloorDataPoints int                        `json:"floor_data_points"`
	TotalFloors     float64                    `json:"total_floors"`
	AvgDailyFloors  activity.Optional[float64] `json:"avg_daily_floors"`
	WeekdayTotals   [7]float64                 `json:"weekday_totals"`
}

// SweatInsights rolls up estimated sweat loss
type SweatInsights struct {
	HasSweatData      bool                       `json:"has_sweat_data"`
	SweatDataPoints   int                        `json:"sweat_data_points"`
	AvgDailyMl        activity.Optional[float64] `json:"avg_daily_ml"`
	EstimatedYearlyMl activity.Optional[float64] `json:"estimated_yearly_ml"`
	// FromActivities is set when the yearly estimate sums per-activity values
	FromActivities bool `json:"from_activities"`
}

// SleepInsights rolls up sleep scores and durations
type SleepInsights struct {
	HasSleepData    bool                       `json:"has_sleep_data"`
	SleepDataPoints int                        `json:"sleep_data_points"`
	AvgScore        activity.Optional[float64] `json:"avg_score"`
	AvgHours        activity.Optional[float64] `json:"avg_hours"`
	PerfectDays     int                        `json:"perfect_days"`
	ExcellentDays   int                        `json:"excellent_days"`
}

// HRVInsights rolls up heart rate variability
type HRVInsights struct {
	HasHRVData     bool                       `json:"has_hrv_data"`
	HRVDataPoints  int                        `json:"hrv_data_points"`
	Average        activity.Optional[float64] `json:"average"`
	Trend          *TrendResult               `json:"trend"`
	AfterActiveDay activity.Optional[float64] `json:"after_active_day"`
	AfterRestDay   activity.Optional[float64] `json:"after_rest_day"`
}

// WellnessInsights is the yearly rollup of daily wellness samples
type WellnessInsights struct {
	Steps  StepInsights  `json:"steps"`
	Floors FloorInsights `json:"floors"`
	Sweat  SweatInsights `json:"sweat"`
	Sleep  SleepInsights `json:"sleep"`

	HasRestingHRData    bool                       `json:"has_resting_hr_data"`
	RestingHRDataPoints int                        `json:"resting_hr_data_points"`
	AvgRestingHR        activity.Optional[float64] `json:"avg_resting_hr"`

	HRV HRVInsights `json:"hrv"`

	HasBodyBatteryData    bool                       `json:"has_body_battery_data"`
	BodyBatteryDataPoints int                        `json:"body_battery_data_points"`
	AvgBodyBatteryDelta   activity.Optional[float64] `json:"avg_body_battery_delta"`
}

const daysPerYearEstimate = 365

// RollupWellness summarizes samples sorted by date. activeDates is the set
// of days with at least one activity and acts supplies the sweat fallback.
func RollupWellness(samples []activity.WellnessSample, activeDates []time.Time, acts []activity.Activity, cfg Config) WellnessInsights {
	var w WellnessInsights
	w.Steps = rollupSteps(samples)
	w.Floors = rollupFloors(samples)
	w.Sweat = rollupSweat(samples, acts)
	w.Sleep = rollupSleep(samples, cfg.Sleep)

	var rhr, bb stat
	for _, s := range samples {
		if v, ok := s.RestingHeartRate.Get(); ok {
			rhr.add(v)
		}
		if v, ok := s.BodyBatteryDelta.Get(); ok {
			bb.add(v)
		}
	}
	w.HasRestingHRData = rhr.count > 0
	w.RestingHRDataPoints = rhr.count
	w.AvgRestingHR = rhr.avg()
	w.HasBodyBatteryData = bb.count > 0
	w.BodyBatteryDataPoints = bb.count
	w.AvgBodyBatteryDelta = bb.avg()

	w.HRV = rollupHRV(samples, activeDates, cfg.Trend)
	return w
}

func rollupSteps(samples []activity.WellnessSample) StepInsights {
	var si StepInsights
	var total stat
	var weekday [7]stat
	var monthly [12]stat
	for _, s := range samples {
		steps, ok := s.Steps.Get()
		if !ok {
			continue
		}
		total.add(float64(steps))
		weekday[mondayIndex(s.Date.Weekday())].add(float64(steps))
		monthly[s.Date.Month()-1].add(float64(steps))
		if si.BestDay == nil || steps > si.BestDay.Steps {
			si.BestDay = &StepDay{Date: activity.DateString(s.Date), Steps: steps}
		}
	}
	si.HasStepData = total.count > 0
	si.StepDataPoints = total.count
	si.AvgDailySteps = total.avg()
	if avg, ok := total.avg().Get(); ok {
		si.EstimatedYearly = activity.Some(avg * daysPerYearEstimate)
	}

	best, worst := -1, -1
	for i := range weekday {
		si.Weekdays[i] = WeekdayAverage{Weekday: weekdayNames[i], Average: weekday[i].avg().OrZero(), Samples: weekday[i].count}
		avg := si.Weekdays[i].Average
		if weekday[i].count == 0 {
			continue
		}
		if best < 0 || avg > si.Weekdays[best].Average {
			best = i
		}
		if avg > 0 && (worst < 0 || avg < si.Weekdays[worst].Average) {
			worst = i
		}
	}
	if best >= 0 {
		si.BestWeekday = activity.Some(weekdayNames[best])
	}
	if worst >= 0 {
		si.WorstWeekday = activity.Some(weekdayNames[worst])
	}

	bestMonth := -1
	for i := range monthly {
		si.MonthlyAverages[i] = monthly[i].avg().OrZero()
		if monthly[i].count > 0 && (bestMonth < 0 || si.MonthlyAverages[i] > si.MonthlyAverages[bestMonth]) {
			bestMonth = i
		}
	}
	if bestMonth >= 0 {
		si.BestMonth = activity.Some(bestMonth + 1)
	}
	return si
}

func rollupFloors(samples []activity.WellnessSample) FloorInsights {
	var fi FloorInsights
	var total stat
	for _, s := range samples {
		v, ok := s.Floors.Get()
		if !ok {
			continue
		}
		total.add(v)
		fi.WeekdayTotals[mondayIndex(s.Date.Weekday())] += v
	}
	fi.HasFloorData = total.count > 0
	fi.FloorDataPoints = total.count
	fi.TotalFloors = total.sum
	fi.AvgDailyFloors = total.avg()
	return fi
}

func rollupSweat(samples []activity.WellnessSample, acts []activity.Activity) SweatInsights {
	var si SweatInsights
	var daily stat
	for _, s := range samples {
		if v, ok := s.SweatLoss.Get(); ok {
			daily.add(v)
		}
	}
	if daily.count > 0 {
		si.HasSweatData = true
		si.SweatDataPoints = daily.count
		si.AvgDailyMl = daily.avg()
		si.EstimatedYearlyMl = activity.Some(daily.avg().OrZero() * daysPerYearEstimate)
		return si
	}

	var fromActs stat
	for _, a := range acts {
		if v, ok := a.SweatLoss.Get(); ok {
			fromActs.add(v)
		}
	}
	if fromActs.count > 0 {
		si.HasSweatData = true
		si.SweatDataPoints = fromActs.count
		si.EstimatedYearlyMl = activity.Some(fromActs.sum)
		si.FromActivities = true
	}
	return si
}

func rollupSleep(samples []activity.WellnessSample, cfg SleepConfig) SleepInsights {
	var si SleepInsights
	var score, hours stat
	for _, s := range samples {
		if v, ok := s.SleepScore.Get(); ok {
			score.add(v)
			if v == cfg.PerfectScore {
				si.PerfectDays++
			}
			if v >= cfg.ExcellentScore {
				si.ExcellentDays++
			}
		}
		if v, ok := s.SleepSeconds.Get(); ok {
			hours.add(activity.SecondsToHours(v))
		}
	}
	si.SleepDataPoints = max(score.count, hours.count)
	si.HasSleepData = si.SleepDataPoints > 0
	si.AvgScore = score.avg()
	si.AvgHours = hours.avg()
	return si
}

func rollupHRV(samples []activity.WellnessSample, activeDates []time.Time, trend TrendConfig) HRVInsights {
	active := make(map[time.Time]bool, len(activeDates))
	for _, d := range activeDates {
		active[d] = true
	}

	var hi HRVInsights
	var all, after, rest stat
	var series []float64
	for _, s := range samples {
		v, ok := s.HRV.Get()
		if !ok {
			continue
		}
		all.add(v)
		series = append(series, v)
		if active[activity.DayOf(s.Date).AddDate(0, 0, -1)] {
			after.add(v)
		} else {
			rest.add(v)
		}
	}
	hi.HasHRVData = all.count > 0
	hi.HRVDataPoints = all.count
	hi.Average = all.avg()
	hi.AfterActiveDay = after.avg()
	hi.AfterRestDay = rest.avg()
	if res, ok := ClassifyTrend(series, trend.ThresholdPercent, true, trend.MinSamples); ok {
		hi.Trend = &res
	}
	return hi
}

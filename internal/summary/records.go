package summary

import "github.com/joshdurbin/fitness-wrapped/internal/activity"

// TimeRecord is the fastest finish over a reference distance
type TimeRecord struct {
	Seconds    float64      `json:"seconds"`
	DistanceKm float64      `json:"distance_km"`
	Activity   *ActivityRef `json:"activity"`
}

// ValueRecord is the largest value of a metric
type ValueRecord struct {
	Value    float64      `json:"value"`
	Unit     string       `json:"unit"`
	Activity *ActivityRef `json:"activity"`
}

// RecordSet holds the personal bests of a year. Absent records are nil.
type RecordSet struct {
	Fastest5K           *TimeRecord  `json:"fastest_5k"`
	Fastest10K          *TimeRecord  `json:"fastest_10k"`
	FastestHalfMarathon *TimeRecord  `json:"fastest_half_marathon"`
	FastestMarathon     *TimeRecord  `json:"fastest_marathon"`
	LongestRun          *ValueRecord `json:"longest_run"`
	LongestRide         *ValueRecord `json:"longest_ride"`
	LongestSwim         *ValueRecord `json:"longest_swim"`
	LongestDuration     *ValueRecord `json:"longest_duration"`
	MostElevation       *ValueRecord `json:"most_elevation"`
	MostCalories        *ValueRecord `json:"most_calories"`
	HighestHeartRate    *ValueRecord `json:"highest_heart_rate"`
	LongestStreak       Streak       `json:"longest_streak"`
}

// fastestOver returns the quickest run whose distance falls in w. Input is
// sorted by start, so strict comparison keeps the earliest on ties.
func fastestOver(acts []activity.Activity, w Window) *TimeRecord {
	var best *activity.Activity
	for i := range acts {
		a := &acts[i]
		if a.Sport != activity.SportRunning || a.DurationSeconds <= 0 || !w.Contains(a.DistanceMeters) {
			continue
		}
		if best == nil || a.DurationSeconds < best.DurationSeconds {
			best = a
		}
	}
	if best == nil {
		return nil
	}
	return &TimeRecord{
		Seconds:    best.DurationSeconds,
		DistanceKm: activity.MetersToKm(best.DistanceMeters),
		Activity:   RefOf(*best),
	}
}

// maxBy returns the activity with the largest present, positive value
func maxBy(acts []activity.Activity, value func(activity.Activity) (float64, bool), unit string) *ValueRecord {
	var best *activity.Activity
	var bestValue float64
	for i := range acts {
		v, ok := value(acts[i])
		if !ok || v <= 0 {
			continue
		}
		if best == nil || v > bestValue {
			best = &acts[i]
			bestValue = v
		}
	}
	if best == nil {
		return nil
	}
	return &ValueRecord{Value: bestValue, Unit: unit, Activity: RefOf(*best)}
}

func distanceOf(sport activity.Sport) func(activity.Activity) (float64, bool) {
	return func(a activity.Activity) (float64, bool) {
		if a.Sport != sport {
			return 0, false
		}
		return activity.MetersToKm(a.DistanceMeters), true
	}
}

// FindRecords computes the personal bests of normalized activities
func FindRecords(acts []activity.Activity, windows RecordWindows, streak Streak) RecordSet {
	return RecordSet{
		Fastest5K:           fastestOver(acts, windows.FiveK),
		Fastest10K:          fastestOver(acts, windows.TenK),
		FastestHalfMarathon: fastestOver(acts, windows.HalfMarathon),
		FastestMarathon:     fastestOver(acts, windows.Marathon),
		LongestRun:          maxBy(acts, distanceOf(activity.SportRunning), "km"),
		LongestRide:         maxBy(acts, distanceOf(activity.SportCycling), "km"),
		LongestSwim:         maxBy(acts, distanceOf(activity.SportSwimming), "km"),
		LongestDuration: maxBy(acts, func(a activity.Activity) (float64, bool) {
			return a.DurationSeconds, true
		}, "s"),
		MostElevation: maxBy(acts, func(a activity.Activity) (float64, bool) {
			return a.ElevationGain.Get()
		}, "m"),
		MostCalories: maxBy(acts, func(a activity.Activity) (float64, bool) {
			return a.Calories.Get()
		}, "kcal"),
		HighestHeartRate: maxBy(acts, func(a activity.Activity) (float64, bool) {
			return a.MaxHeartRate.Get()
		}, "bpm"),
		LongestStreak: streak,
	}
}

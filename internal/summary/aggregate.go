package summary

import (
	"sort"
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// RateKind says how the speed of a sport is expressed
type RateKind string

const (
	RatePacePerKm   RateKind = "pace_per_km"
	RatePacePer100m RateKind = "pace_per_100m"
	RateSpeedKmh    RateKind = "speed_kmh"
	RateNone        RateKind = "none"
)

// RateKindFor returns the rate kind of a sport
func RateKindFor(s activity.Sport) RateKind {
	switch s {
	case activity.SportRunning, activity.SportWalking, activity.SportHiking:
		return RatePacePerKm
	case activity.SportSwimming:
		return RatePacePer100m
	case activity.SportStrength, activity.SportYoga:
		return RateNone
	default:
		return RateSpeedKmh
	}
}

// rate returns the rate of kind k, absent without distance and duration
func rate(k RateKind, meters, seconds float64) activity.Optional[float64] {
	switch k {
	case RatePacePerKm:
		return activity.PacePerKm(meters, seconds)
	case RatePacePer100m:
		return activity.PacePer100m(meters, seconds)
	case RateSpeedKmh:
		return activity.SpeedKmh(meters, seconds)
	}
	return activity.None[float64]()
}

// better reports whether rate a beats rate b for kind k
func better(k RateKind, a, b float64) bool {
	if k == RateSpeedKmh {
		return a > b
	}
	return a < b
}

// ActivityRef identifies the activity a record or rollup value came from
type ActivityRef struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Sport           activity.Sport `json:"sport"`
	Date            string         `json:"date"`
	Start           time.Time      `json:"start"`
	DistanceKm      float64        `json:"distance_km"`
	DurationSeconds float64        `json:"duration_s"`
}

// RefOf builds an ActivityRef from an activity
func RefOf(a activity.Activity) *ActivityRef {
	return &ActivityRef{
		ID:              a.ID,
		Name:            a.Name,
		Sport:           a.Sport,
		Date:            activity.DateString(a.Start),
		Start:           a.Start,
		DistanceKm:      activity.MetersToKm(a.DistanceMeters),
		DurationSeconds: a.DurationSeconds,
	}
}

// SportRollup aggregates the activities of one sport, or of one label
// inside a breakdown
type SportRollup struct {
	Sport       activity.Sport `json:"sport"`
	Label       string         `json:"label,omitempty"`
	DisplayName string         `json:"display_name,omitempty"`
	Count       int            `json:"count"`

	TotalDistanceKm    float64 `json:"total_distance_km"`
	TotalDurationHours float64 `json:"total_duration_h"`
	TotalElevationM    float64 `json:"total_elevation_m"`
	TotalCalories      float64 `json:"total_calories"`
	AvgDistanceKm      float64 `json:"avg_distance_km"`
	AvgDurationHours   float64 `json:"avg_duration_h"`

	RateKind RateKind `json:"rate_kind"`
	// AvgRate and BestRate are seconds per km, seconds per 100 m or km/h
	// depending on RateKind
	AvgRate  activity.Optional[float64] `json:"avg_rate"`
	BestRate activity.Optional[float64] `json:"best_rate"`

	LongestActivity *ActivityRef `json:"longest_activity"`
	FastestActivity *ActivityRef `json:"fastest_activity"`
}

type accumulator struct {
	rollup       SportRollup
	meters       float64
	seconds      float64
	rateMeters   float64
	rateSeconds  float64
	longest      *activity.Activity
	fastest      *activity.Activity
	fastestValue float64
}

func (acc *accumulator) add(a *activity.Activity) {
	r := &acc.rollup
	r.Count++
	acc.meters += a.DistanceMeters
	acc.seconds += a.DurationSeconds
	if v, ok := a.ElevationGain.Get(); ok {
		r.TotalElevationM += v
	}
	if v, ok := a.Calories.Get(); ok {
		r.TotalCalories += v
	}

	if a.DistanceMeters > 0 && (acc.longest == nil || a.DistanceMeters > acc.longest.DistanceMeters) {
		acc.longest = a
	}

	if a.DistanceMeters > 0 && a.DurationSeconds > 0 {
		acc.rateMeters += a.DistanceMeters
		acc.rateSeconds += a.DurationSeconds
		if v, ok := rate(r.RateKind, a.DistanceMeters, a.DurationSeconds).Get(); ok {
			if acc.fastest == nil || better(r.RateKind, v, acc.fastestValue) {
				acc.fastest = a
				acc.fastestValue = v
			}
		}
	}
}

func (acc *accumulator) finish() *SportRollup {
	r := acc.rollup
	r.TotalDistanceKm = activity.MetersToKm(acc.meters)
	r.TotalDurationHours = activity.SecondsToHours(acc.seconds)
	if r.Count > 0 {
		r.AvgDistanceKm = r.TotalDistanceKm / float64(r.Count)
		r.AvgDurationHours = r.TotalDurationHours / float64(r.Count)
	}
	r.AvgRate = rate(r.RateKind, acc.rateMeters, acc.rateSeconds)
	if acc.longest != nil {
		r.LongestActivity = RefOf(*acc.longest)
	}
	if acc.fastest != nil {
		r.FastestActivity = RefOf(*acc.fastest)
		r.BestRate = activity.Some(acc.fastestValue)
	}
	return &r
}

// Aggregate rolls activities up per sport. Activities must be normalized,
// which makes ties resolve to the earliest start.
func Aggregate(acts []activity.Activity) map[activity.Sport]*SportRollup {
	accs := map[activity.Sport]*accumulator{}
	for i := range acts {
		a := &acts[i]
		acc, ok := accs[a.Sport]
		if !ok {
			acc = &accumulator{rollup: SportRollup{Sport: a.Sport, RateKind: RateKindFor(a.Sport)}}
			accs[a.Sport] = acc
		}
		acc.add(a)
	}

	out := make(map[activity.Sport]*SportRollup, len(accs))
	for sport, acc := range accs {
		out[sport] = acc.finish()
	}
	return out
}

// BreakdownKey maps an activity onto a breakdown label and display name
type BreakdownKey func(a activity.Activity) (label, display string)

// AggregateBy rolls up the activities of one sport per label. The result is
// ordered by count descending, then label.
func AggregateBy(acts []activity.Activity, sport activity.Sport, key BreakdownKey) []*SportRollup {
	accs := map[string]*accumulator{}
	for i := range acts {
		a := &acts[i]
		if a.Sport != sport {
			continue
		}
		label, display := key(*a)
		acc, ok := accs[label]
		if !ok {
			acc = &accumulator{rollup: SportRollup{
				Sport:       sport,
				Label:       label,
				DisplayName: display,
				RateKind:    RateKindFor(sport),
			}}
			accs[label] = acc
		}
		acc.add(a)
	}

	out := make([]*SportRollup, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.finish())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// OtherKey groups "other" activities by their original label
func OtherKey(a activity.Activity) (string, string) {
	label := activity.NormalizeLabel(a.SubType)
	if label == "" {
		label = activity.Classify(a.RawType).Label
	}
	return label, activity.DisplayName(label)
}

var cyclingGroupNames = map[string]string{
	"cycling":   "Cycling",
	"road":      "Road",
	"mountain":  "Mountain Bike",
	"gravel":    "Gravel",
	"indoor":    "Indoor",
	"virtual":   "Virtual",
	"e_bike":    "E-Bike",
	"bmx":       "BMX",
	"commuting": "Commuting",
}

// CyclingKey groups rides by sub-type
func CyclingKey(a activity.Activity) (string, string) {
	raw := a.SubType
	if raw == "" {
		raw = a.RawType
	}
	group := activity.CyclingGroup(raw)
	if name, ok := cyclingGroupNames[group]; ok {
		return group, name
	}
	return group, activity.DisplayName(group)
}

package summary

import (
	"fmt"
	"slices"
)

// Op is a comparison operator in a rule or achievement predicate
type Op string

const (
	OpGTE Op = ">="
	OpGT  Op = ">"
	OpLT  Op = "<"
	OpLTE Op = "<="
	OpEQ  Op = "=="
	OpIn  Op = "in"
)

func (o Op) valid() bool {
	switch o {
	case OpGTE, OpGT, OpLT, OpLTE, OpEQ, OpIn:
		return true
	}
	return false
}

func (o Op) lowerIsBetter() bool {
	return o == OpLT || o == OpLTE
}

// Metric names available to archetype rules and achievements
const (
	MetricDistinctSports        = "distinct_sports"
	MetricDistinctTypes         = "distinct_types"
	MetricTotalActivities       = "total_activities"
	MetricTotalDistanceKm       = "total_distance_km"
	MetricTotalElevationM       = "total_elevation_m"
	MetricTotalDurationH        = "total_duration_h"
	MetricActiveDays            = "active_days"
	MetricLongestStreak         = "longest_streak"
	MetricConsistency           = "consistency"
	MetricWeekendShare          = "weekend_share"
	MetricLongestRideKm         = "longest_ride_km"
	MetricRaceDistanceKm        = "race_distance_km"
	MetricRecord5K              = "record_5k"
	MetricRecord10K             = "record_10k"
	MetricRunningFormSamples    = "running_form_samples"
	MetricAvgGroundContactMs    = "avg_ground_contact_ms"
	MetricAvgRunCadence         = "avg_run_cadence"
	MetricPowerRides            = "power_rides"
	MetricMaxPowerW             = "max_power_w"
	MetricTrainingEffectSamples = "training_effect_samples"
	MetricHighImpactWorkouts    = "high_impact_workouts"
	MetricTotalSweatLossL       = "total_sweat_loss_l"
	MetricColdActivities        = "cold_activities"
	MetricHotActivities         = "hot_activities"

	LabelPreferredTimeOfDay = "preferred_time_of_day"
)

var numericMetrics = []string{
	MetricDistinctSports, MetricDistinctTypes, MetricTotalActivities,
	MetricTotalDistanceKm, MetricTotalElevationM, MetricTotalDurationH,
	MetricActiveDays, MetricLongestStreak, MetricConsistency, MetricWeekendShare,
	MetricLongestRideKm, MetricRaceDistanceKm, MetricRecord5K, MetricRecord10K,
	MetricRunningFormSamples, MetricAvgGroundContactMs, MetricAvgRunCadence,
	MetricPowerRides, MetricMaxPowerW, MetricTrainingEffectSamples,
	MetricHighImpactWorkouts, MetricTotalSweatLossL, MetricColdActivities,
	MetricHotActivities,
}

var labelMetrics = []string{LabelPreferredTimeOfDay}

// IsNumericMetric reports whether name is a known numeric metric
func IsNumericMetric(name string) bool {
	return slices.Contains(numericMetrics, name)
}

// IsLabelMetric reports whether name is a known label metric
func IsLabelMetric(name string) bool {
	return slices.Contains(labelMetrics, name)
}

// Metrics is the flat view of a year that rules and achievements read.
// A metric missing from both maps has no data.
type Metrics struct {
	Numbers map[string]float64 `json:"numbers"`
	Labels  map[string]string  `json:"labels"`
}

// Number returns a numeric metric and whether it is present
func (m Metrics) Number(name string) (float64, bool) {
	v, ok := m.Numbers[name]
	return v, ok
}

// Label returns a label metric and whether it is present
func (m Metrics) Label(name string) (string, bool) {
	v, ok := m.Labels[name]
	return v, ok
}

// Condition is a single predicate over a metric. Numeric metrics compare
// against Value; label metrics support == against Text and in against Values.
type Condition struct {
	Metric string   `yaml:"metric" json:"metric"`
	Op     Op       `yaml:"op" json:"op"`
	Value  float64  `yaml:"value,omitempty" json:"value,omitempty"`
	Text   string   `yaml:"text,omitempty" json:"text,omitempty"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`
}

func (c Condition) clone() Condition {
	c.Values = slices.Clone(c.Values)
	return c
}

func (c Condition) validate() error {
	if !c.Op.valid() {
		return fmt.Errorf("unknown op %q", c.Op)
	}
	switch {
	case IsNumericMetric(c.Metric):
		if c.Op == OpIn {
			return fmt.Errorf("op in is not supported for numeric metric %q", c.Metric)
		}
	case IsLabelMetric(c.Metric):
		switch c.Op {
		case OpEQ:
			if c.Text == "" {
				return fmt.Errorf("label metric %q needs text", c.Metric)
			}
		case OpIn:
			if len(c.Values) == 0 {
				return fmt.Errorf("label metric %q needs values", c.Metric)
			}
		default:
			return fmt.Errorf("op %q is not supported for label metric %q", c.Op, c.Metric)
		}
	default:
		return fmt.Errorf("unknown metric %q", c.Metric)
	}
	return nil
}

// Eval evaluates the predicate; a missing metric evaluates to false
func (c Condition) Eval(m Metrics) bool {
	if IsLabelMetric(c.Metric) {
		v, ok := m.Label(c.Metric)
		if !ok {
			return false
		}
		switch c.Op {
		case OpEQ:
			return v == c.Text
		case OpIn:
			return slices.Contains(c.Values, v)
		}
		return false
	}

	v, ok := m.Number(c.Metric)
	if !ok {
		return false
	}
	switch c.Op {
	case OpGTE:
		return v >= c.Value
	case OpGT:
		return v > c.Value
	case OpLT:
		return v < c.Value
	case OpLTE:
		return v <= c.Value
	case OpEQ:
		return v == c.Value
	}
	return false
}

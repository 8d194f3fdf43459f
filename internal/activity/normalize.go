package activity

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DiagnosticKind classifies a non-fatal data problem
type DiagnosticKind string

const (
	// DiagMalformedActivity marks an activity dropped for an invalid value
	DiagMalformedActivity DiagnosticKind = "malformed_activity"
	// DiagMalformedSample marks a wellness sample dropped for an invalid value
	DiagMalformedSample DiagnosticKind = "malformed_sample"
	// DiagOutOfYear marks a record outside the summarized year
	DiagOutOfYear DiagnosticKind = "out_of_year"
	// DiagDuplicateSample marks a second wellness sample for the same day
	DiagDuplicateSample DiagnosticKind = "duplicate_sample"
	// DiagFieldDiscarded marks a single implausible field that was cleared
	DiagFieldDiscarded DiagnosticKind = "field_discarded"
)

// Diagnostic describes one record excluded from (or altered before) aggregation
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	RecordID string         `json:"record_id"`
	Field    string         `json:"field,omitempty"`
	Reason   string         `json:"reason"`
}

// NormalizeOptions controls plausibility limits applied by Normalize
type NormalizeOptions struct {
	// MaxHeartRate clears heart rate readings above it. Zero disables the check.
	MaxHeartRate float64
}

type optionalField struct {
	name          string
	value         Optional[float64]
	allowNegative bool
}

func (a Activity) optionalFields() []optionalField {
	return []optionalField{
		{name: "elevation_gain_m", value: a.ElevationGain},
		{name: "avg_hr", value: a.AvgHeartRate},
		{name: "max_hr", value: a.MaxHeartRate},
		{name: "avg_speed_mps", value: a.AvgSpeed},
		{name: "avg_cadence", value: a.AvgCadence},
		{name: "calories", value: a.Calories},
		{name: "avg_power_w", value: a.AvgPower},
		{name: "max_power_w", value: a.MaxPower},
		{name: "normalized_power_w", value: a.NormalizedPower},
		{name: "max_20min_power_w", value: a.Max20MinPower},
		{name: "aerobic_training_effect", value: a.AerobicEffect},
		{name: "anaerobic_training_effect", value: a.AnaerobicEffect},
		{name: "vo2max", value: a.VO2Max},
		{name: "pool_length_m", value: a.PoolLength},
		{name: "ground_contact_ms", value: a.GroundContactTime},
		{name: "vertical_oscillation_cm", value: a.VerticalOscillation},
		{name: "stride_length_m", value: a.StrideLength},
		{name: "sweat_loss_ml", value: a.SweatLoss},
		{name: "avg_temperature_c", value: a.AvgTemperature, allowNegative: true},
		{name: "strokes", value: intAsFloat(a.Strokes)},
		{name: "laps", value: intAsFloat(a.Laps)},
	}
}

func (s WellnessSample) optionalFields() []optionalField {
	return []optionalField{
		{name: "steps", value: intAsFloat(s.Steps)},
		{name: "floors", value: s.Floors},
		{name: "sleep_s", value: s.SleepSeconds},
		{name: "sleep_score", value: s.SleepScore},
		{name: "resting_hr", value: s.RestingHeartRate},
		{name: "hrv", value: s.HRV},
		{name: "body_battery_delta", value: s.BodyBatteryDelta, allowNegative: true},
		{name: "sweat_loss_ml", value: s.SweatLoss},
	}
}

func intAsFloat(o Optional[int]) Optional[float64] {
	if v, ok := o.Get(); ok {
		return Some(float64(v))
	}
	return None[float64]()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validateRequired checks the non-optional numeric fields of an activity
func validateRequired(a Activity) (string, string, bool) {
	switch {
	case !isFinite(a.DistanceMeters):
		return "distance_m", "distance is not a finite number", false
	case a.DistanceMeters < 0:
		return "distance_m", fmt.Sprintf("distance is negative (%g)", a.DistanceMeters), false
	case !isFinite(a.DurationSeconds):
		return "duration_s", "duration is not a finite number", false
	case a.DurationSeconds < 0:
		return "duration_s", fmt.Sprintf("duration is negative (%g)", a.DurationSeconds), false
	}
	return "", "", true
}

func validateOptional(fields []optionalField) (string, string, bool) {
	for _, f := range fields {
		v, ok := f.value.Get()
		if !ok {
			continue
		}
		if !isFinite(v) {
			return f.name, f.name + " is not a finite number", false
		}
		if v < 0 && !f.allowNegative {
			return f.name, fmt.Sprintf("%s is negative (%g)", f.name, v), false
		}
	}
	return "", "", true
}

// Normalize validates and classifies the activities of one year. Invalid
// records are dropped and reported, the input slice is left untouched and
// the result is ordered by start time, then ID.
func Normalize(in []Activity, year int, opts NormalizeOptions) ([]Activity, []Diagnostic) {
	out := make([]Activity, 0, len(in))
	var diags []Diagnostic

	for _, a := range in {
		if field, reason, ok := validateRequired(a); !ok {
			diags = append(diags, Diagnostic{Kind: DiagMalformedActivity, RecordID: a.ID, Field: field, Reason: reason})
			continue
		}
		if field, reason, ok := validateOptional(a.optionalFields()); !ok {
			diags = append(diags, Diagnostic{Kind: DiagMalformedActivity, RecordID: a.ID, Field: field, Reason: reason})
			continue
		}
		if a.Start.IsZero() {
			diags = append(diags, Diagnostic{Kind: DiagMalformedActivity, RecordID: a.ID, Field: "start", Reason: "missing start time"})
			continue
		}
		if a.Start.Year() != year {
			diags = append(diags, Diagnostic{
				Kind:     DiagOutOfYear,
				RecordID: a.ID,
				Field:    "start",
				Reason:   fmt.Sprintf("starts in %d, summarizing %d", a.Start.Year(), year),
			})
			continue
		}

		if opts.MaxHeartRate > 0 {
			if v, ok := a.MaxHeartRate.Get(); ok && v > opts.MaxHeartRate {
				a.MaxHeartRate = None[float64]()
				diags = append(diags, Diagnostic{
					Kind:     DiagFieldDiscarded,
					RecordID: a.ID,
					Field:    "max_hr",
					Reason:   fmt.Sprintf("%g bpm exceeds plausible maximum %g", v, opts.MaxHeartRate),
				})
			}
			if v, ok := a.AvgHeartRate.Get(); ok && v > opts.MaxHeartRate {
				a.AvgHeartRate = None[float64]()
				diags = append(diags, Diagnostic{
					Kind:     DiagFieldDiscarded,
					RecordID: a.ID,
					Field:    "avg_hr",
					Reason:   fmt.Sprintf("%g bpm exceeds plausible maximum %g", v, opts.MaxHeartRate),
				})
			}
		}

		c := Classify(a.RawType)
		if !a.Sport.Valid() {
			a.Sport = c.Sport
		}
		if a.SubType == "" {
			a.SubType = c.Label
		}
		out = append(out, a)
	}

	SortByStart(out)
	return out, diags
}

// NormalizeWellness validates the wellness samples of one year, keeping the
// first sample seen for each day. The result is ordered by date.
func NormalizeWellness(in []WellnessSample, year int) ([]WellnessSample, []Diagnostic) {
	out := make([]WellnessSample, 0, len(in))
	seen := make(map[time.Time]bool, len(in))
	var diags []Diagnostic

	for _, s := range in {
		id := DateString(s.Date)
		if s.Date.IsZero() {
			diags = append(diags, Diagnostic{Kind: DiagMalformedSample, RecordID: id, Field: "date", Reason: "missing date"})
			continue
		}
		if field, reason, ok := validateOptional(s.optionalFields()); !ok {
			diags = append(diags, Diagnostic{Kind: DiagMalformedSample, RecordID: id, Field: field, Reason: reason})
			continue
		}
		if s.Date.Year() != year {
			diags = append(diags, Diagnostic{
				Kind:     DiagOutOfYear,
				RecordID: id,
				Field:    "date",
				Reason:   fmt.Sprintf("sample from %d, summarizing %d", s.Date.Year(), year),
			})
			continue
		}
		day := DayOf(s.Date)
		if seen[day] {
			diags = append(diags, Diagnostic{Kind: DiagDuplicateSample, RecordID: id, Reason: "more than one sample for this day"})
			continue
		}
		seen[day] = true
		s.Date = day
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, diags
}

// SortByStart orders activities chronologically, breaking ties by ID
func SortByStart(acts []Activity) {
	sort.SliceStable(acts, func(i, j int) bool {
		if !acts[i].Start.Equal(acts[j].Start) {
			return acts[i].Start.Before(acts[j].Start)
		}
		return acts[i].ID < acts[j].ID
	})
}

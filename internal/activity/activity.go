// Package activity holds the input records of the year summary engine
// together with their normalization and sport classification.
package activity

import "time"

// Sport is one of the closed set of sport categories
type Sport string

const (
	SportRunning  Sport = "running"
	SportCycling  Sport = "cycling"
	SportSwimming Sport = "swimming"
	SportWalking  Sport = "walking"
	SportHiking   Sport = "hiking"
	SportStrength Sport = "strength"
	SportYoga     Sport = "yoga"
	SportOther    Sport = "other"
)

// Sports lists every category in presentation order
var Sports = []Sport{
	SportRunning,
	SportCycling,
	SportSwimming,
	SportWalking,
	SportHiking,
	SportStrength,
	SportYoga,
	SportOther,
}

// Valid reports whether s is a known category
func (s Sport) Valid() bool {
	for _, known := range Sports {
		if s == known {
			return true
		}
	}
	return false
}

// Activity is one recorded workout. Distance and duration are required;
// every sensor-dependent metric is optional.
type Activity struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	RawType string    `json:"type"`
	Sport   Sport     `json:"sport,omitempty"`
	SubType string    `json:"sub_type,omitempty"`
	Start   time.Time `json:"start"`

	DistanceMeters  float64 `json:"distance_m"`
	DurationSeconds float64 `json:"duration_s"`

	ElevationGain Optional[float64] `json:"elevation_gain_m"`
	AvgHeartRate  Optional[float64] `json:"avg_hr"`
	MaxHeartRate  Optional[float64] `json:"max_hr"`
	AvgSpeed      Optional[float64] `json:"avg_speed_mps"`
	AvgCadence    Optional[float64] `json:"avg_cadence"`
	Calories      Optional[float64] `json:"calories"`

	AvgPower        Optional[float64] `json:"avg_power_w"`
	MaxPower        Optional[float64] `json:"max_power_w"`
	NormalizedPower Optional[float64] `json:"normalized_power_w"`
	Max20MinPower   Optional[float64] `json:"max_20min_power_w"`

	AerobicEffect       Optional[float64] `json:"aerobic_training_effect"`
	AnaerobicEffect     Optional[float64] `json:"anaerobic_training_effect"`
	TrainingEffectLabel string            `json:"training_effect_label,omitempty"`
	VO2Max              Optional[float64] `json:"vo2max"`

	Strokes    Optional[int]     `json:"strokes"`
	Laps       Optional[int]     `json:"laps"`
	PoolLength Optional[float64] `json:"pool_length_m"`

	GroundContactTime   Optional[float64] `json:"ground_contact_ms"`
	VerticalOscillation Optional[float64] `json:"vertical_oscillation_cm"`
	StrideLength        Optional[float64] `json:"stride_length_m"`

	SweatLoss      Optional[float64] `json:"sweat_loss_ml"`
	AvgTemperature Optional[float64] `json:"avg_temperature_c"`
}

// Day returns the calendar day the activity started on
func (a Activity) Day() time.Time {
	return DayOf(a.Start)
}

// WellnessSample is one day of health data. Every field is optional.
type WellnessSample struct {
	Date time.Time `json:"date"`

	Steps            Optional[int]     `json:"steps"`
	Floors           Optional[float64] `json:"floors"`
	SleepSeconds     Optional[float64] `json:"sleep_s"`
	SleepScore       Optional[float64] `json:"sleep_score"`
	RestingHeartRate Optional[float64] `json:"resting_hr"`
	HRV              Optional[float64] `json:"hrv"`
	BodyBatteryDelta Optional[float64] `json:"body_battery_delta"`
	SweatLoss        Optional[float64] `json:"sweat_loss_ml"`
}

// DayOf truncates t to its calendar day, keeping the wall clock date
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateString formats a calendar day as YYYY-MM-DD
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

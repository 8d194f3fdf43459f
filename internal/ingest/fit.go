package ingest

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/tormoder/fit"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// ParseFIT decodes an activity FIT file and converts its first session
func ParseFIT(r io.Reader, name string) (activity.Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return activity.Activity{}, fmt.Errorf("decode FIT file %s: %w", name, err)
	}

	af, err := decoded.Activity()
	if err != nil {
		return activity.Activity{}, fmt.Errorf("activity FIT expected in %s: %w", name, err)
	}
	if len(af.Sessions) == 0 {
		return activity.Activity{}, fmt.Errorf("%s has no session message", name)
	}

	a, err := sessionActivity(af.Sessions[0], name)
	if err != nil {
		return activity.Activity{}, err
	}
	if serial := decoded.FileId.SerialNumber; serial != 0 && !decoded.FileId.TimeCreated.IsZero() {
		a.ID = fmt.Sprintf("fit-%d-%d", serial, decoded.FileId.TimeCreated.Unix())
	}
	return a, nil
}

func sessionActivity(s *fit.SessionMsg, name string) (activity.Activity, error) {
	if s.StartTime.IsZero() {
		return activity.Activity{}, fmt.Errorf("%s: session has no start time", name)
	}

	rawType := fitRawType(s.Sport, s.SubSport)
	a := activity.Activity{
		Name:            strings.TrimSuffix(name, ".fit"),
		RawType:         rawType,
		Start:           s.StartTime.UTC(),
		DistanceMeters:  finiteOrZero(s.GetTotalDistanceScaled()),
		DurationSeconds: finiteOrZero(s.GetTotalTimerTimeScaled()),
	}
	a.ID = derivedID(name, a.Start, rawType)

	a.ElevationGain = optUint16(s.TotalAscent)
	a.Calories = optUint16(s.TotalCalories)
	a.AvgHeartRate = optUint8(s.AvgHeartRate)
	a.MaxHeartRate = optUint8(s.MaxHeartRate)
	a.AvgPower = optUint16(s.AvgPower)
	a.MaxPower = optUint16(s.MaxPower)
	a.NormalizedPower = optUint16(s.NormalizedPower)

	if v := positive(s.GetEnhancedAvgSpeedScaled()); v.IsSet() {
		a.AvgSpeed = v
	} else {
		a.AvgSpeed = positive(s.GetAvgSpeedScaled())
	}

	if cad, ok := cadenceOf(s.GetAvgCadence()); ok {
		// Running cadence is recorded per leg.
		if s.Sport == fit.SportRunning || s.Sport == fit.SportWalking {
			cad *= 2
		}
		a.AvgCadence = activity.Some(cad)
	}

	if te := optUint8(s.TotalTrainingEffect); te.IsSet() {
		a.AerobicEffect = activity.Some(te.OrZero() / 10)
	}
	if te := optUint8(s.TotalAnaerobicTrainingEffect); te.IsSet() {
		a.AnaerobicEffect = activity.Some(te.OrZero() / 10)
	}

	if s.AvgTemperature != math.MaxInt8 {
		a.AvgTemperature = activity.Some(float64(s.AvgTemperature))
	}
	if s.NumLaps != math.MaxUint16 && s.NumLaps != 0 {
		a.Laps = activity.Some(int(s.NumLaps))
	}

	if s.Sport == fit.SportSwimming {
		a.PoolLength = positive(s.GetPoolLengthScaled())
		if s.TotalCycles != math.MaxUint32 && s.TotalCycles != 0 {
			a.Strokes = activity.Some(int(s.TotalCycles))
		}
	}

	if s.Sport == fit.SportRunning {
		a.GroundContactTime = positive(s.GetAvgStanceTimeScaled())
		// FIT records vertical oscillation in millimetres.
		if vo, ok := positive(s.GetAvgVerticalOscillationScaled()).Get(); ok {
			a.VerticalOscillation = activity.Some(vo / 10)
		}
	}

	return a, nil
}

// fitRawType maps a FIT sport and sub-sport onto an activity type key
func fitRawType(sport fit.Sport, sub fit.SubSport) string {
	switch sport {
	case fit.SportRunning:
		switch sub {
		case fit.SubSportTreadmill:
			return "treadmill_running"
		case fit.SubSportTrail:
			return "trail_running"
		case fit.SubSportTrack:
			return "track_running"
		case fit.SubSportIndoorRunning:
			return "indoor_running"
		case fit.SubSportVirtualActivity:
			return "virtual_running"
		}
		return "running"
	case fit.SportCycling:
		switch sub {
		case fit.SubSportRoad:
			return "road_biking"
		case fit.SubSportMountain, fit.SubSportDownhill:
			return "mountain_biking"
		case fit.SubSportIndoorCycling:
			return "indoor_cycling"
		case fit.SubSportSpin:
			return "spin"
		case fit.SubSportCyclocross:
			return "cyclocross"
		case fit.SubSportVirtualActivity:
			return "virtual_ride"
		}
		return "cycling"
	case fit.SportSwimming:
		switch sub {
		case fit.SubSportLapSwimming:
			return "lap_swimming"
		case fit.SubSportOpenWater:
			return "open_water_swimming"
		}
		return "swimming"
	case fit.SportTraining, fit.SportFitnessEquipment:
		switch sub {
		case fit.SubSportStrengthTraining:
			return "strength_training"
		case fit.SubSportYoga:
			return "yoga"
		case fit.SubSportPilates:
			return "pilates"
		case fit.SubSportIndoorRowing:
			return "indoor_rowing"
		case fit.SubSportElliptical:
			return "elliptical"
		case fit.SubSportStairClimbing:
			return "stair_stepper"
		}
		return "cardio"
	}
	return snakeCase(sport.String())
}

// snakeCase turns "CrossCountrySkiing" into "cross_country_skiing"
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func optUint8(v uint8) activity.Optional[float64] {
	if v == math.MaxUint8 {
		return activity.None[float64]()
	}
	return activity.Some(float64(v))
}

func optUint16(v uint16) activity.Optional[float64] {
	if v == math.MaxUint16 {
		return activity.None[float64]()
	}
	return activity.Some(float64(v))
}

// positive keeps finite values above zero; scaled getters return NaN for
// unset fields
func positive(v float64) activity.Optional[float64] {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return activity.None[float64]()
	}
	return activity.Some(v)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func cadenceOf(v any) (float64, bool) {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 || x == 0 {
			return 0, false
		}
		return float64(x), true
	case uint16:
		if x == math.MaxUint16 || x == 0 {
			return 0, false
		}
		return float64(x), true
	}
	return 0, false
}

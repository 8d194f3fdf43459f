// Package export writes normalized activities to columnar files.
package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// ActivityRow is one activity as stored in the Parquet file. Absent
// optional metrics are written as NaN.
type ActivityRow struct {
	ID              string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name            string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Sport           string  `parquet:"name=sport, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SubType         string  `parquet:"name=sub_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartUTC        string  `parquet:"name=start_utc, type=BYTE_ARRAY, convertedtype=UTF8"`
	DistanceKm      float64 `parquet:"name=distance_km, type=DOUBLE"`
	DurationS       float64 `parquet:"name=duration_s, type=DOUBLE"`
	ElevationGainM  float64 `parquet:"name=elevation_gain_m, type=DOUBLE"`
	AvgHeartRate    float64 `parquet:"name=avg_hr, type=DOUBLE"`
	MaxHeartRate    float64 `parquet:"name=max_hr, type=DOUBLE"`
	AvgSpeedMPS     float64 `parquet:"name=avg_speed_mps, type=DOUBLE"`
	AvgCadence      float64 `parquet:"name=avg_cadence, type=DOUBLE"`
	Calories        float64 `parquet:"name=calories, type=DOUBLE"`
	AvgPowerW       float64 `parquet:"name=avg_power_w, type=DOUBLE"`
	NormalizedPower float64 `parquet:"name=normalized_power_w, type=DOUBLE"`
	AerobicEffect   float64 `parquet:"name=aerobic_training_effect, type=DOUBLE"`
	VO2Max          float64 `parquet:"name=vo2max, type=DOUBLE"`
}

func valueOrNaN(o activity.Optional[float64]) float64 {
	if v, ok := o.Get(); ok {
		return v
	}
	return math.NaN()
}

func toRow(a activity.Activity) ActivityRow {
	return ActivityRow{
		ID:              a.ID,
		Name:            a.Name,
		Sport:           string(a.Sport),
		SubType:         a.SubType,
		StartUTC:        a.Start.UTC().Format(time.RFC3339),
		DistanceKm:      a.DistanceMeters / 1000,
		DurationS:       a.DurationSeconds,
		ElevationGainM:  valueOrNaN(a.ElevationGain),
		AvgHeartRate:    valueOrNaN(a.AvgHeartRate),
		MaxHeartRate:    valueOrNaN(a.MaxHeartRate),
		AvgSpeedMPS:     valueOrNaN(a.AvgSpeed),
		AvgCadence:      valueOrNaN(a.AvgCadence),
		Calories:        valueOrNaN(a.Calories),
		AvgPowerW:       valueOrNaN(a.AvgPower),
		NormalizedPower: valueOrNaN(a.NormalizedPower),
		AerobicEffect:   valueOrNaN(a.AerobicEffect),
		VO2Max:          valueOrNaN(a.VO2Max),
	}
}

// MarshalActivities encodes acts as a snappy compressed Parquet file
func MarshalActivities(acts []activity.Activity) ([]byte, error) {
	fw := buffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(ActivityRow), 4)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, a := range acts {
		if err := pw.Write(toRow(a)); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("writing activity %s: %w", a.ID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finishing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteActivitiesParquet writes acts to w as Parquet and returns the bytes written
func WriteActivitiesParquet(w io.Writer, acts []activity.Activity) (int, error) {
	data, err := MarshalActivities(acts)
	if err != nil {
		return 0, err
	}
	return w.Write(data)
}

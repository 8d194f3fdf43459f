package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// Column names of the Garmin Connect activity export, English first and
// then the German export.
var csvColumns = map[string][]string{
	"type":        {"Activity Type", "Aktivitätstyp"},
	"date":        {"Date", "Datum"},
	"title":       {"Title", "Titel"},
	"distance":    {"Distance", "Distanz"},
	"calories":    {"Calories", "Kalorien"},
	"time":        {"Time", "Zeit"},
	"avg_hr":      {"Avg HR", "Durchschn. HF"},
	"max_hr":      {"Max HR", "Max. HF"},
	"avg_speed":   {"Avg Speed", "Durchschn. Geschwindigkeit"},
	"elev_gain":   {"Elev Gain", "Höhengewinn", "Positiver Höhenunterschied"},
	"avg_cadence": {"Avg Cadence", "Durchschn. Schrittfrequenz"},
	"avg_power":   {"Avg Power", "Durchschn. Leistung"},
	"max_power":   {"Max Power", "Max. Leistung"},
	"te":          {"Training Effect", "Trainingseffekt", "Aerobic TE", "Aerober TE"},
}

var thousands = regexp.MustCompile(`^-?\d{1,3}([.,]\d{3})+$`)

var csvDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2.1.2006 15:04",
	"02.01.2006",
}

// ParseCSV reads a Garmin Connect activity export. Rows that cannot be
// parsed are returned as RowErrors numbered by file line; a missing
// header is an error.
func ParseCSV(r io.Reader, name string) (Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Batch{}, fmt.Errorf("%s: empty CSV file", name)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("%s: reading CSV header: %w", name, err)
	}

	cols := indexColumns(header)
	if _, ok := cols["type"]; !ok {
		return Batch{}, fmt.Errorf("%s: missing activity type column", name)
	}
	if _, ok := cols["date"]; !ok {
		return Batch{}, fmt.Errorf("%s: missing date column", name)
	}

	var batch Batch
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			row := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				row = pe.Line
			}
			batch.RowErrors = append(batch.RowErrors, RowError{File: name, Row: row, Err: err})
			continue
		}
		if blank(rec) {
			continue
		}
		row, _ := reader.FieldPos(0)
		a, err := parseCSVRow(cols, rec, name)
		if err != nil {
			batch.RowErrors = append(batch.RowErrors, RowError{File: name, Row: row, Err: err})
			continue
		}
		batch.Activities = append(batch.Activities, a)
	}
	return batch, nil
}

func indexColumns(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	cols := map[string]int{}
	for key, names := range csvColumns {
		for _, n := range names {
			if i, ok := pos[n]; ok {
				cols[key] = i
				break
			}
		}
	}
	return cols
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type csvRow struct {
	cols map[string]int
	rec  []string
}

func (r csvRow) get(key string) string {
	i, ok := r.cols[key]
	if !ok || i >= len(r.rec) {
		return ""
	}
	v := strings.TrimSpace(r.rec[i])
	if v == "--" {
		return ""
	}
	return v
}

func parseCSVRow(cols map[string]int, rec []string, name string) (activity.Activity, error) {
	row := csvRow{cols: cols, rec: rec}

	rawType := row.get("type")
	if rawType == "" {
		return activity.Activity{}, errors.New("missing activity type")
	}
	start, err := parseCSVDate(row.get("date"))
	if err != nil {
		return activity.Activity{}, err
	}

	a := activity.Activity{
		Name:    row.get("title"),
		RawType: rawType,
		Start:   start,
	}
	if a.Name == "" {
		a.Name = rawType
	}
	a.ID = derivedID(name, start, rawType)

	if km, err := decimal(row.get("distance")); err != nil {
		return activity.Activity{}, fmt.Errorf("distance: %w", err)
	} else if v, ok := km.Get(); ok {
		a.DistanceMeters = v * 1000
	}

	seconds, err := parseDuration(row.get("time"))
	if err != nil {
		return activity.Activity{}, fmt.Errorf("time: %w", err)
	}
	a.DurationSeconds = seconds

	fields := []struct {
		key   string
		dst   *activity.Optional[float64]
		parse func(string) (activity.Optional[float64], error)
	}{
		{"calories", &a.Calories, integer},
		{"avg_hr", &a.AvgHeartRate, integer},
		{"max_hr", &a.MaxHeartRate, integer},
		{"elev_gain", &a.ElevationGain, integer},
		{"avg_cadence", &a.AvgCadence, integer},
		{"avg_power", &a.AvgPower, integer},
		{"max_power", &a.MaxPower, integer},
		{"te", &a.AerobicEffect, decimal},
	}
	for _, f := range fields {
		v, err := f.parse(row.get(f.key))
		if err != nil {
			return activity.Activity{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = v
	}

	// The export reports km/h; pace-based sports show a pace here instead.
	if raw := row.get("avg_speed"); raw != "" && !strings.Contains(raw, ":") {
		kmh, err := decimal(raw)
		if err != nil {
			return activity.Activity{}, fmt.Errorf("avg_speed: %w", err)
		}
		if v, ok := kmh.Get(); ok {
			a.AvgSpeed = activity.Some(v / 3.6)
		}
	}

	return a, nil
}

func parseCSVDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing date")
	}
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseDuration reads HH:MM:SS or MM:SS with optional fractional seconds
func parseDuration(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("unrecognized duration %q", s)
	}

	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.Replace(p, ",", ".", 1), 64)
		if err != nil {
			return 0, fmt.Errorf("unrecognized duration %q", s)
		}
		total = total*60 + v
	}
	return total, nil
}

// stripUnits keeps digits, separators and a leading minus sign
func stripUnits(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// integer parses a whole-number column. Commas and dots before a group of
// three digits separate thousands.
func integer(s string) (activity.Optional[float64], error) {
	if s == "" {
		return activity.None[float64](), nil
	}
	cleaned := stripUnits(s)
	if thousands.MatchString(cleaned) {
		return parseNumber(s, strings.NewReplacer(",", "", ".", "").Replace(cleaned))
	}
	return decimal(s)
}

// decimal parses a fractional column. When both separators appear the
// last one is the decimal point; a lone comma is the decimal point.
func decimal(s string) (activity.Optional[float64], error) {
	if s == "" {
		return activity.None[float64](), nil
	}
	cleaned := stripUnits(s)
	dot, comma := strings.LastIndex(cleaned, "."), strings.LastIndex(cleaned, ",")
	switch {
	case dot >= 0 && comma > dot:
		cleaned = strings.Replace(strings.ReplaceAll(cleaned, ".", ""), ",", ".", 1)
	case dot >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	default:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	return parseNumber(s, cleaned)
}

func parseNumber(raw, cleaned string) (activity.Optional[float64], error) {
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return activity.None[float64](), fmt.Errorf("invalid number %q", raw)
	}
	return activity.Some(v), nil
}

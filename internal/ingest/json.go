package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

type jsonDocument struct {
	Activities []json.RawMessage `json:"activities"`
	Wellness   []json.RawMessage `json:"wellness"`
}

type jsonProbe struct {
	Start *json.RawMessage `json:"start"`
	Date  *json.RawMessage `json:"date"`
}

// ParseJSON reads activities and wellness samples in their JSON form.
// The document is either an object with "activities" and "wellness"
// arrays or a single array whose elements are told apart by their "start"
// (activity) or "date" (wellness) key.
func ParseJSON(r io.Reader, name string) (Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Batch{}, fmt.Errorf("reading %s: %w", name, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Batch{}, fmt.Errorf("%s: empty JSON file", name)
	}

	var batch Batch
	switch data[0] {
	case '{':
		var doc jsonDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return Batch{}, fmt.Errorf("decoding %s: %w", name, err)
		}
		for i, raw := range doc.Activities {
			batch.addActivity(raw, name, i+1)
		}
		for i, raw := range doc.Wellness {
			batch.addWellness(raw, name, i+1)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return Batch{}, fmt.Errorf("decoding %s: %w", name, err)
		}
		for i, raw := range items {
			var probe jsonProbe
			if err := json.Unmarshal(raw, &probe); err != nil {
				batch.RowErrors = append(batch.RowErrors, RowError{File: name, Row: i + 1, Err: err})
				continue
			}
			switch {
			case probe.Start != nil:
				batch.addActivity(raw, name, i+1)
			case probe.Date != nil:
				batch.addWellness(raw, name, i+1)
			default:
				batch.RowErrors = append(batch.RowErrors, RowError{
					File: name, Row: i + 1, Err: errors.New(`neither "start" nor "date" present`),
				})
			}
		}
	default:
		return Batch{}, fmt.Errorf("%s: expected a JSON object or array", name)
	}
	return batch, nil
}

func (b *Batch) addActivity(raw json.RawMessage, name string, row int) {
	var a activity.Activity
	if err := json.Unmarshal(raw, &a); err != nil {
		b.RowErrors = append(b.RowErrors, RowError{File: name, Row: row, Err: err})
		return
	}
	if a.Start.IsZero() {
		b.RowErrors = append(b.RowErrors, RowError{File: name, Row: row, Err: errors.New("missing start")})
		return
	}
	if a.ID == "" {
		a.ID = derivedID(name, a.Start, a.RawType)
	}
	b.Activities = append(b.Activities, a)
}

// wellnessJSON accepts plain YYYY-MM-DD dates as well as timestamps
type wellnessJSON struct {
	activity.WellnessSample
	Date string `json:"date"`
}

func (b *Batch) addWellness(raw json.RawMessage, name string, row int) {
	var w wellnessJSON
	if err := json.Unmarshal(raw, &w); err != nil {
		b.RowErrors = append(b.RowErrors, RowError{File: name, Row: row, Err: err})
		return
	}
	if w.Date == "" {
		b.RowErrors = append(b.RowErrors, RowError{File: name, Row: row, Err: errors.New("missing date")})
		return
	}
	day, err := time.Parse("2006-01-02", w.Date)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, w.Date)
		if tsErr != nil {
			b.RowErrors = append(b.RowErrors, RowError{File: name, Row: row, Err: fmt.Errorf("invalid date %q", w.Date)})
			return
		}
		day = activity.DayOf(ts)
	}
	sample := w.WellnessSample
	sample.Date = day
	b.Wellness = append(b.Wellness, sample)
}

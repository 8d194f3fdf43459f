package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

const upsertActivity = `-- name: UpsertActivity :exec
INSERT INTO activities (id, year, start_time, raw_type, source, payload, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    year = excluded.year,
    start_time = excluded.start_time,
    raw_type = excluded.raw_type,
    source = excluded.source,
    payload = excluded.payload,
    updated_at = excluded.updated_at
`

const activitiesForYear = `-- name: ActivitiesForYear :many
SELECT payload FROM activities WHERE year = ? ORDER BY start_time, id
`

const upsertWellness = `-- name: UpsertWellness :exec
INSERT INTO wellness_samples (date, year, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
    year = excluded.year,
    payload = excluded.payload,
    updated_at = excluded.updated_at
`

const wellnessForYear = `-- name: WellnessForYear :many
SELECT payload FROM wellness_samples WHERE year = ? ORDER BY date
`

const activityRevision = `-- name: ActivityRevision :one
SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM activities WHERE year = ?
`

const wellnessRevision = `-- name: WellnessRevision :one
SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM wellness_samples WHERE year = ?
`

// now stamps written rows
var now = func() time.Time { return time.Now().UTC() }

// UpsertActivities inserts or replaces activities by ID. source records
// where they came from. Returns the number of rows written.
func (s *Store) UpsertActivities(ctx context.Context, source string, acts []activity.Activity) (int, error) {
	if len(acts) == 0 {
		return 0, nil
	}

	stamp := now().Format(time.RFC3339Nano)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertActivity)
		if err != nil {
			return fmt.Errorf("preparing activity upsert: %w", err)
		}
		defer stmt.Close()

		for _, a := range acts {
			if a.ID == "" {
				return fmt.Errorf("activity at %s has no id", a.Start.Format(time.RFC3339))
			}
			payload, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encoding activity %s: %w", a.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				a.ID,
				a.Start.Year(),
				a.Start.Format(time.RFC3339Nano),
				a.RawType,
				source,
				string(payload),
				stamp,
			); err != nil {
				return fmt.Errorf("upserting activity %s: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(acts), nil
}

// ActivitiesForYear returns the stored activities that started in year
func (s *Store) ActivitiesForYear(ctx context.Context, year int) ([]activity.Activity, error) {
	rows, err := s.db.QueryContext(ctx, activitiesForYear, year)
	if err != nil {
		return nil, fmt.Errorf("querying activities for %d: %w", year, err)
	}
	defer rows.Close()

	var out []activity.Activity
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		var a activity.Activity
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decoding activity: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return out, nil
}

// UpsertWellness inserts or replaces wellness samples by date
func (s *Store) UpsertWellness(ctx context.Context, samples []activity.WellnessSample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	stamp := now().Format(time.RFC3339Nano)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertWellness)
		if err != nil {
			return fmt.Errorf("preparing wellness upsert: %w", err)
		}
		defer stmt.Close()

		for _, w := range samples {
			if w.Date.IsZero() {
				return fmt.Errorf("wellness sample has no date")
			}
			payload, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("encoding wellness sample: %w", err)
			}
			day := activity.DayOf(w.Date)
			if _, err := stmt.ExecContext(ctx,
				activity.DateString(day),
				day.Year(),
				string(payload),
				stamp,
			); err != nil {
				return fmt.Errorf("upserting wellness %s: %w", activity.DateString(day), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

// WellnessForYear returns the stored wellness samples of year in date order
func (s *Store) WellnessForYear(ctx context.Context, year int) ([]activity.WellnessSample, error) {
	rows, err := s.db.QueryContext(ctx, wellnessForYear, year)
	if err != nil {
		return nil, fmt.Errorf("querying wellness for %d: %w", year, err)
	}
	defer rows.Close()

	var out []activity.WellnessSample
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning wellness sample: %w", err)
		}
		var w activity.WellnessSample
		if err := json.Unmarshal([]byte(payload), &w); err != nil {
			return nil, fmt.Errorf("decoding wellness sample: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wellness samples: %w", err)
	}
	return out, nil
}

// Revision describes the stored inputs of one year. It changes whenever
// rows of that year are written.
func (s *Store) Revision(ctx context.Context, year int) (string, error) {
	var (
		actCount, wellCount int64
		actLast, wellLast   string
	)
	if err := s.db.QueryRowContext(ctx, activityRevision, year).Scan(&actCount, &actLast); err != nil {
		return "", fmt.Errorf("reading activity revision: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, wellnessRevision, year).Scan(&wellCount, &wellLast); err != nil {
		return "", fmt.Errorf("reading wellness revision: %w", err)
	}
	return fmt.Sprintf("%d:%d@%s/%d@%s", year, actCount, actLast, wellCount, wellLast), nil
}

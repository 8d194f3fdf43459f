package store

import (
	"context"
	"fmt"
)

const listYears = `-- name: ListYears :many
SELECT year FROM activities
UNION
SELECT year FROM wellness_samples
ORDER BY year
`

const countRows = `-- name: CountRows :one
SELECT
    (SELECT COUNT(*) FROM activities),
    (SELECT COUNT(*) FROM wellness_samples),
    (SELECT COUNT(*) FROM year_summaries),
    (SELECT COALESCE(MIN(start_time), '') FROM activities),
    (SELECT COALESCE(MAX(start_time), '') FROM activities)
`

// Stats are row counts and the activity date range
type Stats struct {
	Activities      int64
	WellnessSamples int64
	Summaries       int64
	OldestActivity  string
	NewestActivity  string
}

// Years returns every year with stored activities or wellness samples,
// ascending
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, listYears)
	if err != nil {
		return nil, fmt.Errorf("listing years: %w", err)
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scanning year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating years: %w", err)
	}
	return years, nil
}

// Stats returns row counts across all tables
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, countRows).Scan(
		&st.Activities,
		&st.WellnessSamples,
		&st.Summaries,
		&st.OldestActivity,
		&st.NewestActivity,
	); err != nil {
		return Stats{}, fmt.Errorf("reading database stats: %w", err)
	}
	return st, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const saveSummary = `-- name: SaveSummary :exec
INSERT INTO year_summaries (year, fingerprint, payload, computed_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(year) DO UPDATE SET
    fingerprint = excluded.fingerprint,
    payload = excluded.payload,
    computed_at = excluded.computed_at
`

const loadSummary = `-- name: LoadSummary :one
SELECT fingerprint, payload, computed_at FROM year_summaries WHERE year = ?
`

// CachedSummary is a serialized YearSummary with the fingerprint of the
// inputs it was computed from
type CachedSummary struct {
	Year        int
	Fingerprint string
	Payload     []byte
	ComputedAt  time.Time
}

// SaveSummary stores the summary payload for year, replacing any previous one
func (s *Store) SaveSummary(ctx context.Context, year int, fingerprint string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx, saveSummary,
		year,
		fingerprint,
		string(payload),
		now().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("saving summary for %d: %w", year, err)
	}
	return nil
}

// LoadSummary returns the cached summary of year. It returns ErrNotFound
// when nothing is cached or the cached entry has a different fingerprint.
func (s *Store) LoadSummary(ctx context.Context, year int, fingerprint string) (*CachedSummary, error) {
	var fp, payload, computed string
	err := s.db.QueryRowContext(ctx, loadSummary, year).Scan(&fp, &payload, &computed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading summary for %d: %w", year, err)
	}
	if fp != fingerprint {
		return nil, ErrNotFound
	}

	computedAt, err := time.Parse(time.RFC3339Nano, computed)
	if err != nil {
		return nil, fmt.Errorf("parsing computed_at %q: %w", computed, err)
	}
	return &CachedSummary{
		Year:        year,
		Fingerprint: fp,
		Payload:     []byte(payload),
		ComputedAt:  computedAt,
	}, nil
}

// InvalidateYears drops cached summaries of the given years and returns how
// many were removed
func (s *Store) InvalidateYears(ctx context.Context, years []int) (int64, error) {
	if len(years) == 0 {
		return 0, nil
	}

	args := make([]any, len(years))
	for i, y := range years {
		args[i] = y
	}
	query := "DELETE FROM year_summaries WHERE year IN (?" + strings.Repeat(", ?", len(years)-1) + ")"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("invalidating summaries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("invalidating summaries: %w", err)
	}
	return n, nil
}

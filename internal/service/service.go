// Package service computes, caches and publishes year summaries from the
// stored activity data.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/observability"
	"github.com/joshdurbin/fitness-wrapped/internal/publish"
	"github.com/joshdurbin/fitness-wrapped/internal/store"
	"github.com/joshdurbin/fitness-wrapped/internal/summary"
)

// Repository is the storage the service reads from. *store.Store
// implements it.
type Repository interface {
	ActivitiesForYear(ctx context.Context, year int) ([]activity.Activity, error)
	WellnessForYear(ctx context.Context, year int) ([]activity.WellnessSample, error)
	Revision(ctx context.Context, year int) (string, error)
	Years(ctx context.Context) ([]int, error)
	SaveSummary(ctx context.Context, year int, fingerprint string, payload []byte) error
	LoadSummary(ctx context.Context, year int, fingerprint string) (*store.CachedSummary, error)
	InvalidateYears(ctx context.Context, years []int) (int64, error)
}

// Options control a YearSummary call
type Options struct {
	// Refresh ignores the cache and recomputes
	Refresh bool
	// Publish announces the summary when it was computed, not cached
	Publish bool
}

// Result is a summary with its provenance
type Result struct {
	Summary    *summary.YearSummary
	Cached     bool
	ComputedAt time.Time
}

// Comparison holds two years side by side
type Comparison struct {
	Year  int                        `json:"year"`
	With  int                        `json:"with"`
	Left  summary.Totals             `json:"totals"`
	Right summary.Totals             `json:"with_totals"`
	Delta *summary.YearOverYearDelta `json:"delta"`
}

// ErrNoData is returned when a year has no stored records
var ErrNoData = errors.New("no data for year")

// Service computes year summaries
type Service struct {
	repo      Repository
	engine    *summary.Engine
	publisher publish.Publisher
	digest    string
	now       func() time.Time
}

// New creates a service. A nil publisher disables publishing.
func New(repo Repository, engine *summary.Engine, publisher publish.Publisher) (*Service, error) {
	if publisher == nil {
		publisher = publish.Nop{}
	}
	cfg, err := json.Marshal(engine.Config())
	if err != nil {
		return nil, fmt.Errorf("fingerprinting engine config: %w", err)
	}
	sum := sha256.Sum256(cfg)
	return &Service{
		repo:      repo,
		engine:    engine,
		publisher: publisher,
		digest:    hex.EncodeToString(sum[:]),
		now:       time.Now,
	}, nil
}

// Years lists the years with stored data
func (s *Service) Years(ctx context.Context) ([]int, error) {
	return s.repo.Years(ctx)
}

// YearSummary returns the summary of year, from the cache when the stored
// inputs and engine configuration are unchanged.
func (s *Service) YearSummary(ctx context.Context, year int, opts Options) (*Result, error) {
	log := logging.Logger

	fp, err := s.fingerprint(ctx, year)
	if err != nil {
		return nil, err
	}

	if !opts.Refresh {
		res, err := s.cached(ctx, year, fp)
		if err == nil {
			observability.RecordSummary(observability.CacheHit)
			log.Debug().Int("year", year).Time("computed_at", res.ComputedAt).Msg("summary served from cache")
			return res, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Int("year", year).Msg("ignoring unreadable cached summary")
		}
	}

	cur, prev, err := s.load(ctx, year)
	if err != nil {
		return nil, err
	}
	if cur.empty() {
		return nil, fmt.Errorf("%w %d", ErrNoData, year)
	}

	start := time.Now()
	var previous *summary.YearSummary
	if !prev.empty() {
		previous = s.engine.Compute(prev.activities, prev.wellness, year-1, nil)
	}
	sum := s.engine.Compute(cur.activities, cur.wellness, year, previous)
	elapsed := time.Since(start)

	observability.RecordComputeDuration(elapsed)
	observability.RecordSummary(observability.CacheMiss)
	recordDiagnostics(sum.Diagnostics)

	log.Info().
		Int("year", year).
		Int("activities", sum.Totals.Activities).
		Int("diagnostics", len(sum.Diagnostics)).
		Bool("has_previous", previous != nil).
		Dur("elapsed", elapsed).
		Msg("summary computed")

	payload, err := json.Marshal(sum)
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}
	if err := s.repo.SaveSummary(ctx, year, fp, payload); err != nil {
		log.Warn().Err(err).Int("year", year).Msg("failed to cache summary")
	}

	if opts.Publish {
		if err := s.publisher.Publish(ctx, sum); err != nil {
			observability.RecordPublishError()
			log.Warn().Err(err).Int("year", year).Msg("failed to publish summary")
		}
	}

	return &Result{Summary: sum, ComputedAt: s.now().UTC()}, nil
}

// Compare summarizes year and with and reports the change from with to year
func (s *Service) Compare(ctx context.Context, year, with int) (*Comparison, error) {
	if year == with {
		return nil, fmt.Errorf("cannot compare %d with itself", year)
	}

	var left, right *Result
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		left, err = s.YearSummary(gCtx, year, Options{})
		return err
	})
	g.Go(func() error {
		var err error
		right, err = s.YearSummary(gCtx, with, Options{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Comparison{
		Year:  year,
		With:  with,
		Left:  left.Summary.Totals,
		Right: right.Summary.Totals,
		Delta: summary.ComputeDelta(left.Summary, right.Summary),
	}, nil
}

// Activities returns the normalized activities of year
func (s *Service) Activities(ctx context.Context, year int) ([]activity.Activity, error) {
	acts, err := s.repo.ActivitiesForYear(ctx, year)
	if err != nil {
		return nil, err
	}
	norm, _ := activity.Normalize(acts, year, activity.NormalizeOptions{MaxHeartRate: s.engine.Config().MaxHeartRate})
	return norm, nil
}

// Invalidate drops cached summaries affected by changes to years. The year
// after each changed year is included since its comparison depends on it.
func (s *Service) Invalidate(ctx context.Context, years []int) error {
	var affected []int
	for _, y := range years {
		for _, a := range []int{y, y + 1} {
			if !slices.Contains(affected, a) {
				affected = append(affected, a)
			}
		}
	}
	n, err := s.repo.InvalidateYears(ctx, affected)
	if err != nil {
		return err
	}
	logging.Logger.Debug().Ints("years", affected).Int64("removed", n).Msg("cached summaries invalidated")
	return nil
}

func (s *Service) cached(ctx context.Context, year int, fp string) (*Result, error) {
	c, err := s.repo.LoadSummary(ctx, year, fp)
	if err != nil {
		return nil, err
	}
	var sum summary.YearSummary
	if err := json.Unmarshal(c.Payload, &sum); err != nil {
		return nil, fmt.Errorf("decoding cached summary: %w", err)
	}
	return &Result{Summary: &sum, Cached: true, ComputedAt: c.ComputedAt}, nil
}

// fingerprint identifies the inputs of a summary: the stored rows of the
// year and the year before, plus the engine configuration
func (s *Service) fingerprint(ctx context.Context, year int) (string, error) {
	h := sha256.New()
	h.Write([]byte(s.digest))
	for _, y := range []int{year, year - 1} {
		rev, err := s.repo.Revision(ctx, y)
		if err != nil {
			return "", err
		}
		h.Write([]byte{0})
		h.Write([]byte(rev))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type yearData struct {
	activities []activity.Activity
	wellness   []activity.WellnessSample
}

func (d yearData) empty() bool {
	return len(d.activities) == 0 && len(d.wellness) == 0
}

// load reads year and the year before in parallel
func (s *Service) load(ctx context.Context, year int) (cur, prev yearData, err error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur.activities, err = s.repo.ActivitiesForYear(gCtx, year)
		return err
	})
	g.Go(func() error {
		var err error
		cur.wellness, err = s.repo.WellnessForYear(gCtx, year)
		return err
	})
	g.Go(func() error {
		var err error
		prev.activities, err = s.repo.ActivitiesForYear(gCtx, year-1)
		return err
	})
	g.Go(func() error {
		var err error
		prev.wellness, err = s.repo.WellnessForYear(gCtx, year-1)
		return err
	})
	if err := g.Wait(); err != nil {
		return yearData{}, yearData{}, fmt.Errorf("loading %d and %d: %w", year, year-1, err)
	}
	return cur, prev, nil
}

func recordDiagnostics(diags []activity.Diagnostic) {
	counts := map[activity.DiagnosticKind]int{}
	for _, d := range diags {
		counts[d.Kind]++
	}
	for kind, n := range counts {
		observability.RecordDropped(string(kind), n)
	}
}

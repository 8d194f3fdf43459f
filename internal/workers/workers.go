package workers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/ingest"
	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/service"
	"github.com/joshdurbin/fitness-wrapped/internal/store"
)

// Subdirectories of the inbox that imported files are moved into
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// FileImporter imports a single export file
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (ingest.Result, error)
}

// Summarizer recomputes summaries after an import
type Summarizer interface {
	Invalidate(ctx context.Context, years []int) error
	YearSummary(ctx context.Context, year int, opts service.Options) (*service.Result, error)
}

// InboxWatcher periodically imports export files dropped into a directory
type InboxWatcher struct {
	importer   FileImporter
	summarizer Summarizer
	inbox      string
	interval   time.Duration
}

// NewInboxWatcher creates a new inbox watcher worker
func NewInboxWatcher(importer FileImporter, summarizer Summarizer, inbox string, interval time.Duration) *InboxWatcher {
	return &InboxWatcher{
		importer:   importer,
		summarizer: summarizer,
		inbox:      inbox,
		interval:   interval,
	}
}

// Run starts the inbox watcher
func (w *InboxWatcher) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Str("inbox", w.inbox).Dur("interval", w.interval).Msg("inbox watcher started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Pick up anything that arrived while we were down
	w.scanAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("inbox watcher stopped")
			return
		case <-ticker.C:
			w.scanAndLog(ctx)
		}
	}
}

func (w *InboxWatcher) scanAndLog(ctx context.Context) {
	if _, err := w.Scan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Logger.Error().Err(err).Str("inbox", w.inbox).Msg("inbox scan failed")
	}
}

// Scan imports every supported file in the inbox once. Imported files move
// to processed/, files that fail to import move to failed/. Summaries of
// the touched years are recomputed and published. It returns the number of
// files imported.
func (w *InboxWatcher) Scan(ctx context.Context) (int, error) {
	log := logging.Logger

	files, err := w.pending()
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		log.Debug().Str("inbox", w.inbox).Msg("inbox empty")
		return 0, nil
	}

	var years []int
	imported := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			log.Info().Int("imported", imported).Int("pending", len(files)).Msg("inbox scan interrupted")
			return imported, err
		}

		res, err := w.importer.ImportFile(ctx, f)
		if err != nil {
			log.Error().Err(err).Str("file", filepath.Base(f)).Msg("failed to import file")
			if mvErr := w.move(f, FailedDir); mvErr != nil {
				log.Error().Err(mvErr).Str("file", filepath.Base(f)).Msg("failed to move file")
			}
			continue
		}
		imported++
		for _, y := range res.Years {
			if !slices.Contains(years, y) {
				years = append(years, y)
			}
		}
		if err := w.move(f, ProcessedDir); err != nil {
			log.Error().Err(err).Str("file", filepath.Base(f)).Msg("failed to move file")
		}
	}
	sort.Ints(years)

	if len(years) > 0 {
		if err := w.summarizer.Invalidate(ctx, years); err != nil {
			return imported, fmt.Errorf("invalidating summaries: %w", err)
		}
		for _, y := range years {
			if _, err := w.summarizer.YearSummary(ctx, y, service.Options{Publish: true}); err != nil {
				if errors.Is(err, service.ErrNoData) {
					continue
				}
				log.Error().Err(err).Int("year", y).Msg("failed to recompute summary")
			}
		}
	}

	log.Info().
		Int("imported", imported).
		Int("failed", len(files)-imported).
		Ints("years", years).
		Msg("inbox scan completed")
	return imported, nil
}

// pending lists the supported files directly inside the inbox
func (w *InboxWatcher) pending() ([]string, error) {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		return nil, fmt.Errorf("reading inbox: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := ingest.DetectFormat(e.Name()); err != nil {
			continue
		}
		files = append(files, filepath.Join(w.inbox, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (w *InboxWatcher) move(path, dir string) error {
	dst := filepath.Join(w.inbox, dir)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dst, filepath.Base(path)))
}

// StatsSource reports database statistics. *store.Store implements it.
type StatsSource interface {
	Stats(ctx context.Context) (store.Stats, error)
}

// LogDatabaseStats logs current database statistics
func LogDatabaseStats(ctx context.Context, src StatsSource) {
	log := logging.Logger

	stats, err := src.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read database statistics")
		return
	}

	if stats.Activities == 0 && stats.WellnessSamples == 0 {
		log.Info().Int64("total_activities", 0).Msg("database statistics")
		return
	}

	log.Info().
		Int64("total_activities", stats.Activities).
		Int64("wellness_samples", stats.WellnessSamples).
		Int64("cached_summaries", stats.Summaries).
		Str("newest_activity", orUnknown(stats.NewestActivity)).
		Str("oldest_activity", orUnknown(stats.OldestActivity)).
		Msg("database statistics")
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

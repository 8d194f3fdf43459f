// Package ingest reads activity exports (FIT, Garmin Connect CSV and JSON)
// into the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/observability"
)

// Format is an import file format
type Format string

const (
	FormatFIT  Format = "fit"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat returns the format of path from its extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit":
		return FormatFIT, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Sink receives parsed records. *store.Store implements it.
type Sink interface {
	UpsertActivities(ctx context.Context, source string, acts []activity.Activity) (int, error)
	UpsertWellness(ctx context.Context, samples []activity.WellnessSample) (int, error)
}

// RowError is a record that could not be parsed. Row is 1-based and zero
// when the error is not tied to a row.
type RowError struct {
	File string
	Row  int
	Err  error
}

func (e RowError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Batch is the parsed content of one file
type Batch struct {
	Activities []activity.Activity
	Wellness   []activity.WellnessSample
	RowErrors  []RowError
}

// Result summarizes an import
type Result struct {
	Files      int
	Activities int
	Wellness   int
	// Years lists every year touched by the import, ascending
	Years     []int
	RowErrors []RowError
	ByFormat  map[Format]int
}

func (r *Result) merge(o Result) {
	r.Files += o.Files
	r.Activities += o.Activities
	r.Wellness += o.Wellness
	r.RowErrors = append(r.RowErrors, o.RowErrors...)
	for _, y := range o.Years {
		if !slices.Contains(r.Years, y) {
			r.Years = append(r.Years, y)
		}
	}
	sort.Ints(r.Years)
	if r.ByFormat == nil {
		r.ByFormat = map[Format]int{}
	}
	for f, n := range o.ByFormat {
		r.ByFormat[f] += n
	}
}

// Importer parses files and writes their records to a Sink
type Importer struct {
	sink Sink
}

// NewImporter creates an importer writing to sink
func NewImporter(sink Sink) *Importer {
	return &Importer{sink: sink}
}

// ImportPaths imports every path. Directories are walked and files with
// unsupported extensions inside them are skipped. A file that cannot be
// read or parsed at all fails the import; row-level failures are collected
// in the result.
func (im *Importer) ImportPaths(ctx context.Context, paths []string) (Result, error) {
	var total Result
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return total, err
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			res, err := im.ImportFile(ctx, f)
			if err != nil {
				return total, err
			}
			total.merge(res)
		}
	}
	return total, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ferr := DetectFormat(p); ferr == nil {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

// ImportFile parses one file and writes its records
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	log := logging.Logger

	format, err := DetectFormat(path)
	if err != nil {
		return Result{}, err
	}

	batch, err := ParseFile(path)
	if err != nil {
		observability.RecordImportErrors(string(format), 1)
		return Result{}, err
	}
	observability.RecordImportErrors(string(format), len(batch.RowErrors))

	source := filepath.Base(path)
	nActs, err := im.sink.UpsertActivities(ctx, source, batch.Activities)
	if err != nil {
		return Result{}, fmt.Errorf("storing activities from %s: %w", source, err)
	}
	nWell, err := im.sink.UpsertWellness(ctx, batch.Wellness)
	if err != nil {
		return Result{}, fmt.Errorf("storing wellness from %s: %w", source, err)
	}
	observability.RecordFileImported(string(format))

	res := Result{
		Files:      1,
		Activities: nActs,
		Wellness:   nWell,
		Years:      yearsOf(batch),
		RowErrors:  batch.RowErrors,
		ByFormat:   map[Format]int{format: 1},
	}

	log.Info().
		Str("file", source).
		Str("format", string(format)).
		Int("activities", nActs).
		Int("wellness", nWell).
		Int("row_errors", len(batch.RowErrors)).
		Ints("years", res.Years).
		Msg("file imported")
	for _, re := range batch.RowErrors {
		log.Debug().Err(re.Err).Str("file", re.File).Int("row", re.Row).Msg("row skipped")
	}
	return res, nil
}

// ParseFile parses path according to its extension without storing anything
func ParseFile(path string) (Batch, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return Batch{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	switch format {
	case FormatFIT:
		a, err := ParseFIT(f, name)
		if err != nil {
			return Batch{}, err
		}
		return Batch{Activities: []activity.Activity{a}}, nil
	case FormatCSV:
		return ParseCSV(f, name)
	default:
		return ParseJSON(f, name)
	}
}

func yearsOf(b Batch) []int {
	var years []int
	add := func(y int) {
		if !slices.Contains(years, y) {
			years = append(years, y)
		}
	}
	for _, a := range b.Activities {
		add(a.Start.Year())
	}
	for _, w := range b.Wellness {
		add(w.Date.Year())
	}
	sort.Ints(years)
	return years
}

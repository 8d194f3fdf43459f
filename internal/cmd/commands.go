package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshdurbin/fitness-wrapped/internal/config"
	"github.com/joshdurbin/fitness-wrapped/internal/export"
	"github.com/joshdurbin/fitness-wrapped/internal/ingest"
	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/report"
	"github.com/joshdurbin/fitness-wrapped/internal/service"
)

// maxRowErrorsShown limits the row errors echoed after an import
const maxRowErrorsShown = 10

var importCmd = &cobra.Command{
	Use:   "import <paths...>",
	Short: "Import FIT, Garmin Connect CSV or JSON exports",
	Long: `Import reads activity and wellness records from the given files or
directories into the database. Directories are walked; files with unsupported
extensions inside them are skipped. Records are upserted by id, so importing
the same file twice is harmless. Cached summaries of the touched years are
invalidated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := ingest.NewImporter(a.store).ImportPaths(ctx, args)
		if err != nil {
			return fmt.Errorf("importing: %w", err)
		}
		if err := a.service.Invalidate(ctx, res.Years); err != nil {
			return err
		}
		printImportResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func printImportResult(w io.Writer, res ingest.Result) {
	fmt.Fprintf(w, "Imported %s and %s from %s\n",
		plural(res.Activities, "activity", "activities"),
		plural(res.Wellness, "wellness sample", "wellness samples"),
		plural(res.Files, "file", "files"))
	if len(res.Years) > 0 {
		fmt.Fprintf(w, "Years touched: %v\n", res.Years)
	}
	if n := len(res.RowErrors); n > 0 {
		fmt.Fprintf(w, "%s could not be parsed:\n", plural(n, "row", "rows"))
		for i, re := range res.RowErrors {
			if i == maxRowErrorsShown {
				fmt.Fprintf(w, "  ... and %s more\n", humanize.Comma(int64(n-i)))
				break
			}
			fmt.Fprintf(w, "  %v\n", re)
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(int64(n)) + " " + many
}

var (
	summaryYear    int
	summaryJSON    bool
	summaryRefresh bool
	summaryPublish bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the year in review",
	Long: `Summary computes (or loads from cache) the year in review for --year and
prints it as tables, or as JSON with --json. Without --year the most recent
year with data is used. With --publish a freshly computed summary is also
sent to the configured Kafka topic.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cfg, summaryPublish)
		if err != nil {
			return err
		}
		defer a.Close()

		year, err := resolveYear(ctx, a.service, summaryYear)
		if err != nil {
			return err
		}
		res, err := a.service.YearSummary(ctx, year, service.Options{Refresh: summaryRefresh, Publish: summaryPublish})
		if err != nil {
			return yearError(year, err)
		}
		logging.Debug("summary ready", "year", year, "cached", res.Cached, "computed_at", res.ComputedAt)

		if summaryJSON {
			return writeJSON(cmd.OutOrStdout(), res.Summary)
		}
		return report.Render(cmd.OutOrStdout(), res.Summary)
	},
}

var (
	compareYear int
	compareWith int
	compareJSON bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the totals of two years",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		year, err := resolveYear(ctx, a.service, compareYear)
		if err != nil {
			return err
		}
		with := compareWith
		if with == 0 {
			with = year - 1
		}
		cmp, err := a.service.Compare(ctx, year, with)
		if err != nil {
			if errors.Is(err, service.ErrNoData) {
				return fmt.Errorf("comparing %d with %d: %w", year, with, err)
			}
			return err
		}

		if compareJSON {
			return writeJSON(cmd.OutOrStdout(), cmp)
		}
		return report.RenderComparison(cmd.OutOrStdout(), cmp)
	},
}

var (
	exportYear int
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the normalized activities of a year as Parquet",
	Long: `Export writes every valid activity of --year, after normalization, to a
snappy compressed Parquet file. Absent optional metrics are written as NaN.
Use --out - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		year, err := resolveYear(ctx, a.service, exportYear)
		if err != nil {
			return err
		}
		acts, err := a.service.Activities(ctx, year)
		if err != nil {
			return err
		}
		if len(acts) == 0 {
			return yearError(year, service.ErrNoData)
		}

		if exportOut == "-" {
			_, err := export.WriteActivitiesParquet(cmd.OutOrStdout(), acts)
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOut, err)
		}
		n, err := export.WriteActivitiesParquet(f, acts)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", exportOut, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s) to %s\n",
			plural(len(acts), "activity", "activities"), humanize.Bytes(uint64(n)), exportOut)
		return nil
	},
}

var checkConfigDump bool

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the settings and the engine thresholds and catalogue",
	Long: `Check-config loads the application settings and the engine document
(engine.file, or the built-in defaults) and reports whether they are valid.
With --dump the effective engine document is printed as YAML; it can be
saved, edited and pointed at with engine.file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engineCfg, err := config.LoadEngineConfig(cfg.Engine.File)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if checkConfigDump {
			data, err := config.MarshalEngineConfig(engineCfg)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}

		source := cfg.Engine.File
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Fprintf(out, "Configuration OK\n")
		fmt.Fprintf(out, "  database:  %s\n", cfg.DB.Path)
		fmt.Fprintf(out, "  engine:    %s\n", source)
		fmt.Fprintf(out, "  catalogue: version %s, %s, %s\n",
			engineCfg.Catalogue.Version,
			plural(len(engineCfg.Catalogue.Achievements), "achievement", "achievements"),
			plural(len(engineCfg.Archetypes.Rules), "archetype rule", "archetype rules"))
		return nil
	},
}

func init() {
	summaryCmd.Flags().IntVarP(&summaryYear, "year", "y", 0, "calendar year (default: most recent year with data)")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the summary as JSON")
	summaryCmd.Flags().BoolVar(&summaryRefresh, "refresh", false, "recompute even if a cached summary is current")
	summaryCmd.Flags().BoolVar(&summaryPublish, "publish", false, "publish a freshly computed summary to Kafka")

	compareCmd.Flags().IntVarP(&compareYear, "year", "y", 0, "calendar year (default: most recent year with data)")
	compareCmd.Flags().IntVarP(&compareWith, "with", "w", 0, "year to compare against (default: the year before)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print the comparison as JSON")

	exportCmd.Flags().IntVarP(&exportYear, "year", "y", 0, "calendar year (default: most recent year with data)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, or - for stdout")
	_ = exportCmd.MarkFlagRequired("out")

	checkConfigCmd.Flags().BoolVar(&checkConfigDump, "dump", false, "print the effective engine document as YAML")
}

// YearLister lists the years with stored data
type YearLister interface {
	Years(ctx context.Context) ([]int, error)
}

// resolveYear returns year, or the most recent stored year when year is 0
func resolveYear(ctx context.Context, src YearLister, year int) (int, error) {
	if year < 0 {
		return 0, fmt.Errorf("invalid year %d", year)
	}
	if year > 0 {
		return year, nil
	}
	years, err := src.Years(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing years: %w", err)
	}
	if len(years) == 0 {
		return 0, errors.New("no data imported yet, run `fitness-wrapped import` first")
	}
	sort.Ints(years)
	return years[len(years)-1], nil
}

func yearError(year int, err error) error {
	if errors.Is(err, service.ErrNoData) {
		return fmt.Errorf("no activities stored for %d", year)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

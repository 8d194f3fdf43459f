// Package report renders year summaries as terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
	"github.com/joshdurbin/fitness-wrapped/internal/service"
	"github.com/joshdurbin/fitness-wrapped/internal/summary"
)

// Render writes the human readable year in review of s to w
func Render(w io.Writer, s *summary.YearSummary) error {
	parts := []string{
		fmt.Sprintf("=== %d WRAPPED ===", s.Year),
		totalsTable(s),
	}
	if t := sportsTable(s); t != "" {
		parts = append(parts, t)
	}
	if t := recordsTable(s.Records); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, monthlyTable(s.Calendar))
	parts = append(parts, personality(s))
	if t := achievementsTable(s.Achievements); t != "" {
		parts = append(parts, t)
	}
	if t := insightsList(s.Insights); t != "" {
		parts = append(parts, t)
	}
	if s.YearOverYear != nil {
		parts = append(parts, deltaTable(s.YearOverYear, s.Year))
	}
	if n := len(s.Diagnostics); n > 0 {
		parts = append(parts, fmt.Sprintf("%s skipped or adjusted, see --json for details", plural(n, "record")))
	}

	_, err := io.WriteString(w, strings.Join(parts, "\n\n")+"\n")
	return err
}

// RenderComparison writes a side by side view of two years
func RenderComparison(w io.Writer, c *service.Comparison) error {
	parts := []string{
		fmt.Sprintf("=== %d vs %d ===", c.Year, c.With),
		deltaTable(c.Delta, c.Year),
	}
	_, err := io.WriteString(w, strings.Join(parts, "\n\n")+"\n")
	return err
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetTitle(title)
	return tbl
}

func alignRight(cols ...int) []table.ColumnConfig {
	cfg := make([]table.ColumnConfig, 0, len(cols))
	for _, c := range cols {
		cfg = append(cfg, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	return cfg
}

func totalsTable(s *summary.YearSummary) string {
	t := s.Totals
	tbl := newTable("Totals")
	tbl.AppendRows([]table.Row{
		{"Activities", humanize.Comma(int64(t.Activities))},
		{"Distance", km(t.DistanceKm)},
		{"Time", hours(t.DurationHours)},
		{"Elevation", meters(t.ElevationM)},
		{"Calories", humanize.Comma(int64(math.Round(t.Calories))) + " kcal"},
		{"Active days", fmt.Sprintf("%d (longest streak %s)", t.ActiveDays, plural(s.Records.LongestStreak.Days, "day"))},
	})
	tbl.SetColumnConfigs(alignRight(2))
	return tbl.Render()
}

func sportsTable(s *summary.YearSummary) string {
	if len(s.BySport) == 0 {
		return ""
	}
	rollups := make([]*summary.SportRollup, 0, len(s.BySport))
	for _, r := range s.BySport {
		rollups = append(rollups, r)
	}
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].Count != rollups[j].Count {
			return rollups[i].Count > rollups[j].Count
		}
		return rollups[i].Sport < rollups[j].Sport
	})

	tbl := newTable("Sports")
	tbl.AppendHeader(table.Row{"Sport", "Count", "Distance", "Time", "Elevation", "Avg rate", "Best rate"})
	for _, r := range rollups {
		tbl.AppendRow(table.Row{
			sportName(r),
			r.Count,
			km(r.TotalDistanceKm),
			hours(r.TotalDurationHours),
			meters(r.TotalElevationM),
			rate(r.RateKind, r.AvgRate),
			rate(r.RateKind, r.BestRate),
		})
	}
	tbl.SetColumnConfigs(alignRight(2, 3, 4, 5, 6, 7))
	return tbl.Render()
}

func recordsTable(r summary.RecordSet) string {
	tbl := newTable("Records")
	tbl.AppendHeader(table.Row{"Record", "Value", "Date", "Activity"})

	times := []struct {
		label string
		rec   *summary.TimeRecord
	}{
		{"Fastest 5K", r.Fastest5K},
		{"Fastest 10K", r.Fastest10K},
		{"Fastest half marathon", r.FastestHalfMarathon},
		{"Fastest marathon", r.FastestMarathon},
	}
	rows := 0
	for _, t := range times {
		if t.rec == nil {
			continue
		}
		tbl.AppendRow(append(table.Row{t.label, clock(t.rec.Seconds)}, ref(t.rec.Activity)...))
		rows++
	}

	values := []struct {
		label string
		rec   *summary.ValueRecord
	}{
		{"Longest run", r.LongestRun},
		{"Longest ride", r.LongestRide},
		{"Longest swim", r.LongestSwim},
		{"Longest session", r.LongestDuration},
		{"Most elevation", r.MostElevation},
		{"Most calories", r.MostCalories},
		{"Highest heart rate", r.HighestHeartRate},
	}
	for _, v := range values {
		if v.rec == nil {
			continue
		}
		tbl.AppendRow(append(table.Row{v.label, valueWithUnit(v.rec.Value, v.rec.Unit)}, ref(v.rec.Activity)...))
		rows++
	}

	if st := r.LongestStreak; st.Days > 0 {
		tbl.AppendRow(table.Row{"Longest streak", plural(st.Days, "day"), st.Start + " to " + st.End, ""})
		rows++
	}
	if rows == 0 {
		return ""
	}
	tbl.SetColumnConfigs(alignRight(2))
	return tbl.Render()
}

func monthlyTable(c summary.Calendar) string {
	tbl := newTable("Months")
	tbl.AppendHeader(table.Row{"Month", "Activities", "Distance", "Time"})
	var busiest int
	for i, m := range c.Monthly {
		if m.Activities > c.Monthly[busiest].Activities {
			busiest = i
		}
	}
	for i, m := range c.Monthly {
		name := time.Month(m.Month).String()[:3]
		if i == busiest && m.Activities > 0 {
			name += " *"
		}
		tbl.AppendRow(table.Row{name, m.Activities, km(m.DistanceKm), hours(m.DurationHours)})
	}
	footer := fmt.Sprintf("consistency %d/100", c.Patterns.Consistency)
	if season, ok := c.MostActiveSeason.Get(); ok {
		footer += ", busiest season " + string(season)
	}
	tbl.AppendFooter(table.Row{"", "", "", footer})
	tbl.SetColumnConfigs(alignRight(2, 3, 4))
	return tbl.Render()
}

func personality(s *summary.YearSummary) string {
	name := archetypeName(s.Personality.Archetype)
	if s.Personality.Rule == "" || s.Personality.Rule == summary.DefaultRuleName {
		return "Personality: " + name
	}
	return fmt.Sprintf("Personality: %s (%s)", name, s.Personality.Rule)
}

func achievementsTable(achievements []summary.Achievement) string {
	if len(achievements) == 0 {
		return ""
	}
	tbl := newTable("Achievements")
	tbl.AppendHeader(table.Row{"Badge", "Description", "Value"})
	for _, a := range achievements {
		tbl.AppendRow(table.Row{a.Name, a.Description, humanize.CommafWithDigits(a.Value, 1)})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %s", plural(len(achievements), "badge")), ""})
	tbl.SetColumnConfigs(alignRight(3))
	return tbl.Render()
}

func insightsList(insights []summary.Insight) string {
	if len(insights) == 0 {
		return ""
	}
	lines := make([]string, 0, len(insights)+1)
	lines = append(lines, "Highlights:")
	for _, in := range insights {
		lines = append(lines, fmt.Sprintf("  • %s: %s", in.Title, in.Message))
	}
	return strings.Join(lines, "\n")
}

func deltaTable(d *summary.YearOverYearDelta, year int) string {
	if d == nil {
		return "No data to compare against"
	}
	tbl := newTable(fmt.Sprintf("%d compared with %d", year, d.PreviousYear))
	tbl.AppendHeader(table.Row{"Metric", fmt.Sprint(d.PreviousYear), fmt.Sprint(year), "Change"})
	rows := []struct {
		label  string
		md     summary.MetricDelta
		format func(float64) string
	}{
		{"Activities", d.Activities, func(v float64) string { return humanize.Comma(int64(v)) }},
		{"Distance", d.DistanceKm, km},
		{"Time", d.DurationHours, hours},
		{"Elevation", d.ElevationM, meters},
		{"Calories", d.Calories, func(v float64) string { return humanize.Comma(int64(math.Round(v))) }},
	}
	for _, r := range rows {
		tbl.AppendRow(table.Row{r.label, r.format(r.md.Previous), r.format(r.md.Current), signedPercent(r.md.Percent)})
	}
	tbl.SetColumnConfigs(alignRight(2, 3, 4))
	return tbl.Render()
}

func archetypeName(a summary.Archetype) string {
	words := strings.Fields(strings.ReplaceAll(string(a), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func ref(a *summary.ActivityRef) table.Row {
	if a == nil {
		return table.Row{"", ""}
	}
	return table.Row{a.Date, a.Name}
}

func sportName(r *summary.SportRollup) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return activity.DisplayName(string(r.Sport))
}

func km(v float64) string {
	return humanize.CommafWithDigits(v, 1) + " km"
}

func meters(v float64) string {
	return humanize.Comma(int64(math.Round(v))) + " m"
}

func hours(v float64) string {
	return humanize.CommafWithDigits(v, 1) + " h"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), unit)
}

func signedPercent(p float64) string {
	return fmt.Sprintf("%+.1f%%", p)
}

func valueWithUnit(v float64, unit string) string {
	switch unit {
	case "km":
		return km(v)
	case "m":
		return meters(v)
	case "h":
		return hours(v)
	case "s":
		return clock(v)
	}
	s := humanize.CommafWithDigits(v, 1)
	if unit != "" {
		s += " " + unit
	}
	return s
}

// clock formats seconds as H:MM:SS, or M:SS below an hour
func clock(seconds float64) string {
	total := int(math.Round(seconds))
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func rate(kind summary.RateKind, v activity.Optional[float64]) string {
	x, ok := v.Get()
	if !ok {
		return "-"
	}
	switch kind {
	case summary.RatePacePerKm:
		return clock(x) + " /km"
	case summary.RatePacePer100m:
		return clock(x) + " /100m"
	case summary.RateSpeedKmh:
		return fmt.Sprintf("%.1f km/h", x)
	}
	return "-"
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/service"
	"github.com/joshdurbin/fitness-wrapped/internal/summary"
)

// MockSummaries implements the Summaries interface for testing
type MockSummaries struct {
	years     []int
	summaries map[int]*summary.YearSummary
	yearsErr  error
	requested []service.Options
}

func (m *MockSummaries) YearSummary(ctx context.Context, year int, opts service.Options) (*service.Result, error) {
	m.requested = append(m.requested, opts)
	s, ok := m.summaries[year]
	if !ok {
		return nil, fmt.Errorf("%w %d", service.ErrNoData, year)
	}
	return &service.Result{Summary: s, Cached: true, ComputedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}, nil
}

func (m *MockSummaries) Compare(ctx context.Context, year, with int) (*service.Comparison, error) {
	a, ok := m.summaries[year]
	if !ok {
		return nil, fmt.Errorf("%w %d", service.ErrNoData, year)
	}
	b, ok := m.summaries[with]
	if !ok {
		return nil, fmt.Errorf("%w %d", service.ErrNoData, with)
	}
	return &service.Comparison{
		Year:  year,
		With:  with,
		Left:  a.Totals,
		Right: b.Totals,
		Delta: summary.ComputeDelta(a, b),
	}, nil
}

func (m *MockSummaries) Years(ctx context.Context) ([]int, error) {
	return m.years, m.yearsErr
}

func newMock() *MockSummaries {
	return &MockSummaries{
		years: []int{2023, 2024},
		summaries: map[int]*summary.YearSummary{
			2023: {
				Year:   2023,
				Totals: summary.Totals{Activities: 100, DistanceKm: 1000, DurationHours: 100, ElevationM: 5000},
			},
			2024: {
				Year:             2024,
				CatalogueVersion: "2024.1",
				Totals:           summary.Totals{Activities: 150, DistanceKm: 1050, DurationHours: 90, ElevationM: 5100},
				Records: summary.RecordSet{
					LongestStreak: summary.Streak{Days: 12},
				},
				Personality: summary.ArchetypeResult{Archetype: summary.ArchetypeEnduranceChampion},
				Achievements: []summary.Achievement{
					{ID: "century", Name: "Century", Group: "activities", Value: 150},
				},
			},
		},
	}
}

func toolErrorCode(err error) ErrorCode {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %+v", res)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestServerNew(t *testing.T) {
	t.Parallel()

	mock := newMock()
	srv := New(mock, "test")

	if srv == nil {
		t.Fatal("expected non-nil server")
	}
	if srv.mcp == nil {
		t.Error("expected non-nil MCP server")
	}
	if srv.summaries == nil {
		t.Error("expected non-nil summaries")
	}
	if srv.MCPServer() != srv.mcp {
		t.Error("expected MCPServer() to return the internal mcp server")
	}
}

func TestGetYearSummaryDefaultsToLatestYear(t *testing.T) {
	t.Parallel()

	mock := newMock()
	srv := New(mock, "test")

	res, out, err := srv.getYearSummary(context.Background(), nil, YearInput{})
	if err != nil {
		t.Fatalf("getYearSummary() error = %v", err)
	}
	got, ok := out.(YearSummaryOutput)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if got.Summary.Year != 2024 {
		t.Errorf("expected latest year 2024, got %d", got.Summary.Year)
	}
	if !got.Cached {
		t.Error("expected cached flag to pass through")
	}
	if len(got.SuggestedActions) == 0 {
		t.Error("expected suggested actions")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(textOf(t, res)), &decoded); err != nil {
		t.Fatalf("text content is not JSON: %v", err)
	}
	if _, ok := decoded["summary"]; !ok {
		t.Error("expected summary key in text content")
	}
}

func TestGetYearSummaryRefresh(t *testing.T) {
	t.Parallel()

	mock := newMock()
	srv := New(mock, "test")

	if _, _, err := srv.getYearSummary(context.Background(), nil, YearInput{Year: 2023, Refresh: true}); err != nil {
		t.Fatalf("getYearSummary() error = %v", err)
	}
	if len(mock.requested) != 1 || !mock.requested[0].Refresh {
		t.Errorf("expected a refresh request, got %+v", mock.requested)
	}
	if mock.requested[0].Publish {
		t.Error("tool calls must not publish")
	}
}

func TestYearToolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		mock  *MockSummaries
		input YearInput
		want  ErrorCode
	}{
		{name: "unknown year", mock: newMock(), input: YearInput{Year: 2019}, want: ErrNotFound},
		{name: "negative year", mock: newMock(), input: YearInput{Year: -1}, want: ErrInvalidInput},
		{name: "nothing imported", mock: &MockSummaries{}, input: YearInput{}, want: ErrNotFound},
		{name: "store failure", mock: &MockSummaries{yearsErr: errors.New("disk I/O error")}, input: YearInput{}, want: ErrStorageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := New(tt.mock, "test")
			_, _, err := srv.getYearRecords(context.Background(), nil, tt.input)
			if got := toolErrorCode(err); got != tt.want {
				t.Errorf("error code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestGetYearRecords(t *testing.T) {
	t.Parallel()

	srv := New(newMock(), "test")
	_, out, err := srv.getYearRecords(context.Background(), nil, YearInput{Year: 2024})
	if err != nil {
		t.Fatalf("getYearRecords() error = %v", err)
	}
	got := out.(RecordsOutput)
	if got.Records.LongestStreak.Days != 12 {
		t.Errorf("expected streak of 12 days, got %d", got.Records.LongestStreak.Days)
	}
}

func TestGetAchievements(t *testing.T) {
	t.Parallel()

	srv := New(newMock(), "test")

	_, out, err := srv.getAchievements(context.Background(), nil, YearInput{Year: 2024})
	if err != nil {
		t.Fatalf("getAchievements() error = %v", err)
	}
	got := out.(AchievementsOutput)
	if got.CatalogueVersion != "2024.1" {
		t.Errorf("expected catalogue version 2024.1, got %q", got.CatalogueVersion)
	}
	if len(got.Achievements) != 1 || got.Achievements[0].ID != "century" {
		t.Errorf("unexpected achievements %+v", got.Achievements)
	}

	// A year without badges still returns an empty list
	_, out, err = srv.getAchievements(context.Background(), nil, YearInput{Year: 2023})
	if err != nil {
		t.Fatalf("getAchievements() error = %v", err)
	}
	if got := out.(AchievementsOutput); got.Achievements == nil {
		t.Error("expected non-nil achievements")
	}
}

func TestCompareYears(t *testing.T) {
	t.Parallel()

	srv := New(newMock(), "test")

	_, out, err := srv.compareYears(context.Background(), nil, CompareYearsInput{Year: 2024})
	if err != nil {
		t.Fatalf("compareYears() error = %v", err)
	}
	if out.With != 2023 {
		t.Errorf("expected default comparison with 2023, got %d", out.With)
	}
	if out.Delta == nil || out.Delta.Activities.Percent != 50 {
		t.Errorf("expected +50%% activities, got %+v", out.Delta)
	}

	var sawActivityGain bool
	for _, in := range out.Insights {
		if in.Type == "achievement" && strings.Contains(in.Message, "Activity count") {
			sawActivityGain = true
		}
	}
	if !sawActivityGain {
		t.Errorf("expected an activity count insight, got %+v", out.Insights)
	}
}

func TestCompareYearsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input CompareYearsInput
		want  ErrorCode
	}{
		{name: "missing year", input: CompareYearsInput{}, want: ErrInvalidInput},
		{name: "same year", input: CompareYearsInput{Year: 2024, With: 2024}, want: ErrInvalidInput},
		{name: "no data", input: CompareYearsInput{Year: 2024, With: 2010}, want: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := New(newMock(), "test")
			_, _, err := srv.compareYears(context.Background(), nil, tt.input)
			if got := toolErrorCode(err); got != tt.want {
				t.Errorf("error code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestListYears(t *testing.T) {
	t.Parallel()

	srv := New(&MockSummaries{}, "test")
	_, out, err := srv.listYears(context.Background(), nil, ListYearsInput{})
	if err != nil {
		t.Fatalf("listYears() error = %v", err)
	}
	if out.Years == nil || len(out.Years) != 0 {
		t.Errorf("expected empty non-nil years, got %v", out.Years)
	}
}

func TestComparisonInsights(t *testing.T) {
	t.Parallel()

	stable := &summary.YearOverYearDelta{
		PreviousYear: 2023,
		Activities:   summary.MetricDelta{Previous: 100, Current: 105, Percent: 5},
		DistanceKm:   summary.MetricDelta{Previous: 1000, Current: 990, Percent: -1},
	}
	got := comparisonInsights(stable)
	if len(got) != 1 || got[0].Type != "trend" {
		t.Errorf("expected a single stable trend insight, got %+v", got)
	}

	dropped := &summary.YearOverYearDelta{
		PreviousYear: 2023,
		DistanceKm:   summary.MetricDelta{Previous: 1000, Current: 500, Percent: -50},
	}
	got = comparisonInsights(dropped)
	if len(got) != 1 || got[0].Type != "warning" {
		t.Errorf("expected a distance warning, got %+v", got)
	}

	if got := comparisonInsights(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty insights for nil delta, got %+v", got)
	}
}

func TestReadYearSummary(t *testing.T) {
	t.Parallel()

	srv := New(newMock(), "test")

	tests := []struct {
		name    string
		uri     string
		wantErr bool
		wantIn  string
	}{
		{name: "existing year", uri: "wrapped://summary/2024", wantIn: `"catalogue_version": "2024.1"`},
		{name: "missing year", uri: "wrapped://summary/2010", wantIn: "No data for 2010"},
		{name: "bad year", uri: "wrapped://summary/abc", wantErr: true},
		{name: "wrong scheme", uri: "garmin://summary/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: tt.uri}}
			res, err := srv.readYearSummary(context.Background(), req)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("readYearSummary() error = %v", err)
			}
			if !strings.Contains(res.Contents[0].Text, tt.wantIn) {
				t.Errorf("expected %q in %s", tt.wantIn, res.Contents[0].Text)
			}
		})
	}
}

func TestYearInReviewPrompt(t *testing.T) {
	t.Parallel()

	srv := New(newMock(), "test")

	req := &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Arguments: map[string]string{"year": "2024"}}}
	res, err := srv.yearInReviewPrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("yearInReviewPrompt() error = %v", err)
	}
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	for _, want := range []string{"get_year_summary** with year=2024", "with=2023", "get_achievements"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	bad := &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Arguments: map[string]string{"year": "last"}}}
	if _, err := srv.yearInReviewPrompt(context.Background(), bad); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := New(newMock(), "test")
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"get_year_summary", "get_year_records", "get_wellness_insights", "get_achievements", "compare_years", "list_years"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "list_years", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool list_years: %v", err)
	}
	if res.IsError {
		t.Fatalf("list_years returned an error result: %+v", res.Content)
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "get_year_summary", Arguments: map[string]any{"year": 2024}})
	if err != nil {
		t.Fatalf("CallTool get_year_summary: %v", err)
	}
	if res.IsError {
		t.Fatalf("get_year_summary returned an error result: %+v", res.Content)
	}
}

// The logger is package state, so this runs sequentially.
func TestToolLoggingByVerbosity(t *testing.T) {
	t.Cleanup(func() { logging.SetupWriter(&bytes.Buffer{}, logging.LevelNormal, logging.FormatConsole) })

	tests := []struct {
		name         string
		level        logging.Level
		year         int
		wantPayloads bool
		wantLevel    string
	}{
		{name: "verbose omits payloads", level: logging.LevelVerbose, year: 2024},
		{name: "trace dumps payloads", level: logging.LevelTrace, year: 2024, wantPayloads: true},
		{name: "missing year is a warning", level: logging.LevelNormal, year: 2019, wantLevel: `"level":"warn"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logging.SetupWriter(&buf, tt.level, logging.FormatJSON)

			srv := New(newMock(), "test")
			_, _, _ = srv.getYearSummary(context.Background(), nil, YearInput{Year: tt.year})

			out := buf.String()
			for _, msg := range []string{"MCP request params", "MCP response payload"} {
				if got := strings.Contains(out, msg); got != tt.wantPayloads {
					t.Errorf("log contains %q = %v, want %v\n%s", msg, got, tt.wantPayloads, out)
				}
			}
			if tt.wantLevel != "" && !strings.Contains(out, tt.wantLevel) {
				t.Errorf("expected %s entry, got:\n%s", tt.wantLevel, out)
			}
			if strings.Contains(out, `"level":"error"`) {
				t.Errorf("unexpected error entry:\n%s", out)
			}
		})
	}
}

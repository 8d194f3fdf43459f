package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joshdurbin/fitness-wrapped/internal/logging"
	"github.com/joshdurbin/fitness-wrapped/internal/service"
	"github.com/joshdurbin/fitness-wrapped/internal/summary"
)

// ptr returns a pointer to the given value - useful for optional fields in structs
func ptr[T any](v T) *T {
	return &v
}

// Summaries is the part of the service the MCP server reads from
type Summaries interface {
	YearSummary(ctx context.Context, year int, opts service.Options) (*service.Result, error)
	Compare(ctx context.Context, year, with int) (*service.Comparison, error)
	Years(ctx context.Context) ([]int, error)
}

// Server wraps the MCP server and the summary service
type Server struct {
	mcp       *mcp.Server
	summaries Summaries
}

// MCPServer returns the underlying MCP server (for use with HTTP/SSE transport)
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// New creates a new MCP server with year summary tools
func New(summaries Summaries, version string) *Server {
	logging.Info("MCP server initializing", "name", "fitness-wrapped", "version", version)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "fitness-wrapped",
		Version: version,
	}, nil)

	s := &Server{
		mcp:       mcpServer,
		summaries: summaries,
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	logging.Info("MCP server initialized", "tools_registered", 6, "resources_registered", 2, "prompts_registered", 1)
	return s
}

// Run starts the MCP server over stdio transport
func (s *Server) Run(ctx context.Context) error {
	logging.Info("MCP server starting")
	defer logging.Info("MCP server stopped")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func readOnly(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:           title,
		ReadOnlyHint:    true,
		IdempotentHint:  true,
		OpenWorldHint:   ptr(false),
		DestructiveHint: ptr(false),
	}
}

func (s *Server) registerTools() {
	logging.Debug("Registering tool", "name", "get_year_summary")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_year_summary",
		Description: `Get the complete "year in review" for one calendar year.

Use when:
- User asks "How was my 2024?" or "Give me my year wrapped"
- User wants totals, per-sport breakdowns, calendar patterns and trends in one place

Parameters:
- year (integer): Calendar year. Omit for the most recent year with data.
- refresh (boolean): Recompute even if a cached summary is current.

Returns: Totals, per-sport rollups, records, calendar, wellness, trends, running form, cycling power, training effect, personality, achievements, insights, year-over-year delta and diagnostics.

Example: {"year": 2024}`,
		Annotations: readOnly("Year Summary"),
	}, s.getYearSummary)

	logging.Debug("Registering tool", "name", "get_year_records")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_year_records",
		Description: `Get the personal records set during one year.

Use when:
- User asks "What was my fastest 10K this year?" or "What was my longest ride?"

Parameters:
- year (integer): Calendar year. Omit for the most recent year with data.

Returns: Fastest 5K, 10K, half marathon and marathon, longest run, ride, swim and duration, most elevation and calories, highest heart rate, and the longest streak.

Example: {"year": 2024}`,
		Annotations: readOnly("Year Records"),
	}, s.getYearRecords)

	logging.Debug("Registering tool", "name", "get_wellness_insights")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_wellness_insights",
		Description: `Get daily wellness statistics for one year: steps, floors, sweat, sleep, HRV and resting heart rate.

Use when:
- User asks "How many steps did I take?" or "How did I sleep this year?"

Parameters:
- year (integer): Calendar year. Omit for the most recent year with data.

Example: {"year": 2024}`,
		Annotations: readOnly("Wellness Insights"),
	}, s.getWellnessInsights)

	logging.Debug("Registering tool", "name", "get_achievements")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "get_achievements",
		Description: `Get the badges unlocked in one year and the training personality.

Use when:
- User asks "What badges did I earn?" or "What kind of athlete was I?"

Parameters:
- year (integer): Calendar year. Omit for the most recent year with data.

Returns: Catalogue version, personality archetype with the rule that selected it, and unlocked achievements (highest tier per group).

Example: {"year": 2024}`,
		Annotations: readOnly("Achievements"),
	}, s.getAchievements)

	logging.Debug("Registering tool", "name", "compare_years")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "compare_years",
		Description: `Compare the totals of two years.

Use when:
- User asks "Did I train more than last year?" or "Compare 2024 with 2022"

Parameters:
- year (integer, required): The year being evaluated.
- with (integer): The year to compare against. Default: year - 1.

Returns: Totals of both years, the change per metric (difference and percent) and notable changes.

Example: {"year": 2024, "with": 2023}`,
		Annotations: readOnly("Compare Years"),
	}, s.compareYears)

	logging.Debug("Registering tool", "name", "list_years")
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "list_years",
		Description: `List the calendar years that have stored activity or wellness data.

Use when:
- Starting a conversation, to learn which years can be summarized`,
		Annotations: readOnly("List Years"),
	}, s.listYears)
}

// YearInput selects a year
type YearInput struct {
	Year    int  `json:"year,omitempty" jsonschema:"Calendar year to summarize (e.g., 2024). Omit for the most recent year with data."`
	Refresh bool `json:"refresh,omitempty" jsonschema:"Recompute the summary even if a cached copy is current."`
}

// YearSummaryOutput is the result of get_year_summary
type YearSummaryOutput struct {
	Cached           bool                 `json:"cached"`
	ComputedAt       time.Time            `json:"computed_at"`
	Summary          *summary.YearSummary `json:"summary"`
	SuggestedActions []SuggestedAction    `json:"suggested_actions"`
}

// RecordsOutput is the result of get_year_records
type RecordsOutput struct {
	Year             int               `json:"year"`
	Records          summary.RecordSet `json:"records"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
}

// WellnessOutput is the result of get_wellness_insights
type WellnessOutput struct {
	Year             int                      `json:"year"`
	Wellness         summary.WellnessInsights `json:"wellness"`
	SuggestedActions []SuggestedAction        `json:"suggested_actions"`
}

// AchievementsOutput is the result of get_achievements
type AchievementsOutput struct {
	Year             int                     `json:"year"`
	CatalogueVersion string                  `json:"catalogue_version"`
	Personality      summary.ArchetypeResult `json:"personality"`
	Achievements     []summary.Achievement   `json:"achievements"`
	SuggestedActions []SuggestedAction       `json:"suggested_actions"`
}

// CompareYearsInput selects the two years of compare_years
type CompareYearsInput struct {
	Year int `json:"year" jsonschema:"The year being evaluated (e.g., 2024)."`
	With int `json:"with,omitempty" jsonschema:"The year to compare against. Default: year - 1."`
}

// CompareYearsOutput is the result of compare_years
type CompareYearsOutput struct {
	Year             int                        `json:"year"`
	With             int                        `json:"with"`
	Totals           summary.Totals             `json:"totals"`
	WithTotals       summary.Totals             `json:"with_totals"`
	Delta            *summary.YearOverYearDelta `json:"delta"`
	Insights         []Insight                  `json:"insights"`
	SuggestedActions []SuggestedAction          `json:"suggested_actions"`
}

// ListYearsInput takes no parameters
type ListYearsInput struct{}

// ListYearsOutput is the result of list_years
type ListYearsOutput struct {
	Years            []int             `json:"years"`
	SuggestedActions []SuggestedAction `json:"suggested_actions"`
}

// jsonResult renders v as the text content of a tool result. Summary
// payloads carry optional values whose JSON form is a bare number or null,
// so they are returned untyped.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, NewInternalErrorWithCause("failed to marshal result", err)
	}
	if logging.IsTraceEnabled() {
		logging.Debug("MCP response payload", "bytes", len(data), "payload", logging.ToJSON(v))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, v, nil
}

// resolveYear returns year, or the most recent stored year when it is zero
func (s *Server) resolveYear(ctx context.Context, year int) (int, error) {
	if year < 0 {
		return 0, NewInvalidInputErrorWithDetails("year must be positive", "use a calendar year such as 2024")
	}
	if year > 0 {
		return year, nil
	}
	years, err := s.summaries.Years(ctx)
	if err != nil {
		return 0, NewStorageError("listing years", err)
	}
	if len(years) == 0 {
		return 0, &ToolError{Code: ErrNotFound, Message: "no data imported yet"}
	}
	return years[len(years)-1], nil
}

func (s *Server) summaryFor(ctx context.Context, tool string, input YearInput) (*service.Result, error) {
	logging.Info("MCP tool call", "tool", tool, "year", input.Year, "refresh", input.Refresh)
	if logging.IsTraceEnabled() {
		logging.Debug("MCP request params", "tool", tool, "input", logging.ToJSON(input))
	}

	year, err := s.resolveYear(ctx, input.Year)
	if err != nil {
		return nil, err
	}
	res, err := s.summaries.YearSummary(ctx, year, service.Options{Refresh: input.Refresh})
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			logging.Warn("no data for year", "tool", tool, "year", year)
		} else {
			logging.Error("summary failed", "tool", tool, "year", year, "error", err)
		}
		return nil, summaryError(year, err)
	}
	return res, nil
}

func (s *Server) getYearSummary(ctx context.Context, req *mcp.CallToolRequest, input YearInput) (*mcp.CallToolResult, any, error) {
	res, err := s.summaryFor(ctx, "get_year_summary", input)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(YearSummaryOutput{
		Cached:           res.Cached,
		ComputedAt:       res.ComputedAt,
		Summary:          res.Summary,
		SuggestedActions: SuggestNextActions("year_summary"),
	})
}

func (s *Server) getYearRecords(ctx context.Context, req *mcp.CallToolRequest, input YearInput) (*mcp.CallToolResult, any, error) {
	res, err := s.summaryFor(ctx, "get_year_records", input)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(RecordsOutput{
		Year:             res.Summary.Year,
		Records:          res.Summary.Records,
		SuggestedActions: SuggestNextActions("records"),
	})
}

func (s *Server) getWellnessInsights(ctx context.Context, req *mcp.CallToolRequest, input YearInput) (*mcp.CallToolResult, any, error) {
	res, err := s.summaryFor(ctx, "get_wellness_insights", input)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(WellnessOutput{
		Year:             res.Summary.Year,
		Wellness:         res.Summary.Wellness,
		SuggestedActions: SuggestNextActions("wellness"),
	})
}

func (s *Server) getAchievements(ctx context.Context, req *mcp.CallToolRequest, input YearInput) (*mcp.CallToolResult, any, error) {
	res, err := s.summaryFor(ctx, "get_achievements", input)
	if err != nil {
		return nil, nil, err
	}
	achievements := res.Summary.Achievements
	if achievements == nil {
		achievements = []summary.Achievement{}
	}
	return jsonResult(AchievementsOutput{
		Year:             res.Summary.Year,
		CatalogueVersion: res.Summary.CatalogueVersion,
		Personality:      res.Summary.Personality,
		Achievements:     achievements,
		SuggestedActions: SuggestNextActions("achievements"),
	})
}

func (s *Server) compareYears(ctx context.Context, req *mcp.CallToolRequest, input CompareYearsInput) (*mcp.CallToolResult, CompareYearsOutput, error) {
	logging.Info("MCP tool call", "tool", "compare_years", "year", input.Year, "with", input.With)

	if input.Year <= 0 {
		return nil, CompareYearsOutput{}, NewInvalidInputError("year is required")
	}
	with := input.With
	if with == 0 {
		with = input.Year - 1
	}
	if with == input.Year {
		return nil, CompareYearsOutput{}, NewInvalidInputErrorWithDetails("cannot compare a year with itself", "choose a different value for with")
	}

	cmp, err := s.summaries.Compare(ctx, input.Year, with)
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			logging.Warn("no data to compare", "year", input.Year, "with", with)
		} else {
			logging.Error("compare failed", "year", input.Year, "with", with, "error", err)
		}
		te := summaryError(input.Year, err)
		if te.Code == ErrNotFound {
			te.Message = "one of the years has no data"
			te.Details = fmt.Sprintf("year=%d with=%d", input.Year, with)
		}
		return nil, CompareYearsOutput{}, te
	}

	return nil, CompareYearsOutput{
		Year:             cmp.Year,
		With:             cmp.With,
		Totals:           cmp.Left,
		WithTotals:       cmp.Right,
		Delta:            cmp.Delta,
		Insights:         comparisonInsights(cmp.Delta),
		SuggestedActions: SuggestNextActions("comparison"),
	}, nil
}

func (s *Server) listYears(ctx context.Context, req *mcp.CallToolRequest, input ListYearsInput) (*mcp.CallToolResult, ListYearsOutput, error) {
	logging.Info("MCP tool call", "tool", "list_years")

	years, err := s.summaries.Years(ctx)
	if err != nil {
		return nil, ListYearsOutput{}, NewStorageError("listing years", err)
	}
	if years == nil {
		years = []int{}
	}
	return nil, ListYearsOutput{
		Years:            years,
		SuggestedActions: SuggestNextActions("years"),
	}, nil
}

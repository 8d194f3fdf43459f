package server

import (
	"context"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joshdurbin/fitness-wrapped/internal/logging"
)

// registerPrompts registers all MCP prompts for the server
func (s *Server) registerPrompts() {
	logging.Debug("Registering MCP prompts")

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "year_in_review",
		Description: "Tell the story of a training year: volume, records, habits, wellness and the badges earned",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "year",
				Description: "Calendar year to review (e.g., '2024'). Leave empty for the most recent year with data.",
				Required:    false,
			},
		},
	}, s.yearInReviewPrompt)

	logging.Debug("MCP prompts registered", "count", 1)
}

// yearInReviewPrompt generates a prompt for a narrated year in review
func (s *Server) yearInReviewPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	yearArg := ""
	if req.Params.Arguments != nil {
		yearArg = req.Params.Arguments["year"]
	}

	yearDescription := "my most recent year"
	yearParam := ""
	compareStep := "5. **compare_years** with the reviewed year to see how it stacks up against the year before"
	if yearArg != "" {
		year, err := strconv.Atoi(yearArg)
		if err != nil || year <= 0 {
			return nil, NewInvalidInputErrorWithDetails("invalid year", yearArg)
		}
		yearDescription = yearArg
		yearParam = fmt.Sprintf(` with year=%d`, year)
		compareStep = fmt.Sprintf("5. **compare_years** with year=%d and with=%d", year, year-1)
	}

	logging.Info("MCP prompt requested", "prompt", "year_in_review", "year", yearArg)

	promptText := fmt.Sprintf(`Please write my fitness "year in review" for %s.

Use the following tools to gather data:
1. **get_year_summary**%s for totals, sports, calendar patterns and trends
2. **get_year_records**%s for the year's personal bests and longest streak
3. **get_wellness_insights**%s for steps, sleep, HRV and resting heart rate
4. **get_achievements**%s for the training personality and unlocked badges
%s

Then provide:
- **The Headline**: Total activities, distance, time and elevation in one sentence
- **Favourite Sports**: Which sports dominated and how they compare
- **Best Moments**: Records and standout activities with their dates
- **Habits**: Busiest month, favourite weekday, time of day, longest streak and consistency
- **Body & Recovery**: What the wellness data says about sleep and recovery
- **Personality & Badges**: The archetype and the most impressive achievements
- **Looking Ahead**: Two or three goals for next year grounded in the numbers

Only use numbers returned by the tools. If a section has no data, say so briefly and move on.`,
		yearDescription, yearParam, yearParam, yearParam, yearParam, compareStep)

	return &mcp.GetPromptResult{
		Description: "Year in review prompt",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText},
			},
		},
	}, nil
}

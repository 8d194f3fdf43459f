package server

import (
	"fmt"
	"math"

	"github.com/joshdurbin/fitness-wrapped/internal/summary"
)

// Insight represents a single AI-friendly observation about a comparison
type Insight struct {
	Type    string `json:"type"`    // "achievement", "trend" or "warning"
	Message string `json:"message"` // Human-readable insight
}

// SuggestedAction represents a suggested next tool call
type SuggestedAction struct {
	Tool        string `json:"tool"`        // Tool name to call
	Description string `json:"description"` // Why this action is suggested
	Priority    string `json:"priority"`    // "high", "medium", "low"
}

// SuggestNextActions suggests logical next tool calls based on context
func SuggestNextActions(context string) []SuggestedAction {
	suggestions := make([]SuggestedAction, 0)

	switch context {
	case "year_summary":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_achievements",
				Description: "See unlocked badges and the training personality",
				Priority:    "high",
			},
			SuggestedAction{
				Tool:        "compare_years",
				Description: "Compare with another year",
				Priority:    "medium",
			},
		)
	case "records":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_year_summary",
				Description: "Put the records in context of the whole year",
				Priority:    "medium",
			},
		)
	case "wellness":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_year_summary",
				Description: "Relate wellness to training volume",
				Priority:    "medium",
			},
		)
	case "achievements":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_year_records",
				Description: "See the best performances behind the badges",
				Priority:    "medium",
			},
		)
	case "comparison":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_year_records",
				Description: "Check which records moved",
				Priority:    "medium",
			},
		)
	case "years":
		suggestions = append(suggestions,
			SuggestedAction{
				Tool:        "get_year_summary",
				Description: "Summarize one of the listed years",
				Priority:    "high",
			},
		)
	}

	return suggestions
}

// comparisonInsights describes the notable changes in d. Changes within
// ±15% are not reported; activity counts use ±20%.
func comparisonInsights(d *summary.YearOverYearDelta) []Insight {
	insights := make([]Insight, 0)
	if d == nil {
		return insights
	}

	check := func(md summary.MetricDelta, threshold float64, label string) {
		if md.Previous == 0 {
			return
		}
		switch {
		case md.Percent > threshold:
			insights = append(insights, Insight{
				Type:    "achievement",
				Message: fmt.Sprintf("%s increased by %.0f%%", label, md.Percent),
			})
		case md.Percent < -threshold:
			insights = append(insights, Insight{
				Type:    "warning",
				Message: fmt.Sprintf("%s decreased by %.0f%%", label, math.Abs(md.Percent)),
			})
		}
	}

	check(d.Activities, 20, "Activity count")
	check(d.DistanceKm, 15, "Total distance")
	check(d.DurationHours, 15, "Training time")
	check(d.ElevationM, 15, "Elevation gain")

	if len(insights) == 0 {
		insights = append(insights, Insight{
			Type:    "trend",
			Message: fmt.Sprintf("Training volume is consistent with %d", d.PreviousYear),
		})
	}
	return insights
}

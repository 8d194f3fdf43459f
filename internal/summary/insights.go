package summary

import (
	"fmt"
	"math"
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// Insight types
const (
	InsightFunFact     = "fun_fact"
	InsightTrend       = "trend"
	InsightAchievement = "achievement"
)

// Insight is a short human readable highlight of the year
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

const (
	earthCircumferenceKm = 40075.0
	marathonKm           = 42.195
	pizzaKcal            = 800.0
	everestM             = 8849.0
	movieHours           = 2.0
	tendencyRatio        = 1.5
)

// BuildInsights derives fun facts from the assembled sections
func BuildInsights(acts []activity.Activity, totals Totals, cal Calendar, streak Streak) []Insight {
	var out []Insight

	if pct := totals.DistanceKm / earthCircumferenceKm * 100; pct >= 1 {
		out = append(out, Insight{
			Type:    InsightFunFact,
			Title:   "Around the world",
			Value:   fmt.Sprintf("%.1f%%", pct),
			Message: fmt.Sprintf("You covered %.0f km, %.1f%% of the Earth's circumference.", totals.DistanceKm, pct),
		})
	}

	if n := totals.DistanceKm / marathonKm; n >= 1 {
		out = append(out, Insight{
			Type:    InsightFunFact,
			Title:   "Marathon equivalent",
			Value:   fmt.Sprintf("%.1fx", n),
			Message: fmt.Sprintf("Your total distance equals %.1f marathons.", n),
		})
	}

	best := -1
	for i, m := range cal.Monthly {
		if m.Activities > 0 && (best < 0 || m.Activities > cal.Monthly[best].Activities) {
			best = i
		}
	}
	if best >= 0 {
		month := time.Month(best + 1).String()
		out = append(out, Insight{
			Type:    InsightTrend,
			Title:   "Most active month",
			Value:   month,
			Message: fmt.Sprintf("%s was your busiest month with %d activities.", month, cal.Monthly[best].Activities),
		})
	}

	fav := -1
	for i, d := range cal.Weekdays {
		if d.Activities > 0 && (fav < 0 || d.Activities > cal.Weekdays[fav].Activities) {
			fav = i
		}
	}
	if fav >= 0 {
		day := cal.Weekdays[fav]
		out = append(out, Insight{
			Type:    InsightTrend,
			Title:   "Favourite day",
			Value:   day.Weekday,
			Message: fmt.Sprintf("%s is your training day with %d activities.", day.Weekday, day.Activities),
		})
	}

	morning, evening := 0, 0
	for _, a := range acts {
		switch h := a.Start.Hour(); {
		case h < 12:
			morning++
		case h >= 17:
			evening++
		}
	}
	switch {
	case morning > 0 && float64(morning) > float64(evening)*tendencyRatio:
		out = append(out, Insight{
			Type:    InsightTrend,
			Title:   "Early bird",
			Value:   fmt.Sprintf("%d morning workouts", morning),
			Message: "Most of your activities happen before noon.",
		})
	case evening > 0 && float64(evening) > float64(morning)*tendencyRatio:
		out = append(out, Insight{
			Type:    InsightTrend,
			Title:   "Night owl",
			Value:   fmt.Sprintf("%d evening workouts", evening),
			Message: "You like to train in the evening.",
		})
	}

	if streak.Days >= 7 {
		out = append(out, Insight{
			Type:    InsightAchievement,
			Title:   "Longest streak",
			Value:   fmt.Sprintf("%d days", streak.Days),
			Message: fmt.Sprintf("Your longest run of training days was %d days, from %s to %s.", streak.Days, streak.Start, streak.End),
		})
	}

	if pizzas := math.Floor(totals.Calories / pizzaKcal); pizzas >= 10 {
		out = append(out, Insight{
			Type:    InsightFunFact,
			Title:   "Pizza power",
			Value:   fmt.Sprintf("%.0f pizzas", pizzas),
			Message: fmt.Sprintf("You burned enough calories for %.0f pizzas.", pizzas),
		})
	}

	if n := totals.ElevationM / everestM; n >= 0.5 {
		out = append(out, Insight{
			Type:    InsightFunFact,
			Title:   "High flyer",
			Value:   fmt.Sprintf("%.1fx Everest", n),
			Message: fmt.Sprintf("%.0f m of climbing is %.1f times Mount Everest.", totals.ElevationM, n),
		})
	}

	if movies := math.Floor(totals.DurationHours / movieHours); movies >= 20 {
		out = append(out, Insight{
			Type:    InsightFunFact,
			Title:   "Time invested",
			Value:   fmt.Sprintf("%.0f hours", totals.DurationHours),
			Message: fmt.Sprintf("That is %.0f movies worth of training.", movies),
		})
	}
	return out
}

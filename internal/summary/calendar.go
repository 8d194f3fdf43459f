package summary

import (
	"math"
	"sort"
	"time"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// Streak is a run of consecutive active days
type Streak struct {
	Days  int    `json:"days"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ActiveDates returns the distinct calendar days with at least one activity,
// ascending
func ActiveDates(acts []activity.Activity) []time.Time {
	seen := map[time.Time]bool{}
	var days []time.Time
	for _, a := range acts {
		d := a.Day()
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// LongestStreak finds the longest run of consecutive days in sorted,
// distinct dates. Ties keep the earliest run.
func LongestStreak(dates []time.Time) Streak {
	if len(dates) == 0 {
		return Streak{}
	}
	best := Streak{Days: 1, Start: activity.DateString(dates[0]), End: activity.DateString(dates[0])}
	runStart, run := dates[0], 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Equal(dates[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			runStart, run = dates[i], 1
		}
		if run > best.Days {
			best = Streak{Days: run, Start: activity.DateString(runStart), End: activity.DateString(dates[i])}
		}
	}
	return best
}

// Bucket sums the activities of one calendar slot
type Bucket struct {
	Activities    int     `json:"activities"`
	DistanceKm    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_h"`
	Calories      float64 `json:"calories"`
}

func (b *Bucket) add(a activity.Activity) {
	b.Activities++
	b.DistanceKm += activity.MetersToKm(a.DistanceMeters)
	b.DurationHours += activity.SecondsToHours(a.DurationSeconds)
	b.Calories += a.Calories.OrZero()
}

// MonthBucket is one calendar month
type MonthBucket struct {
	Month int `json:"month"`
	Bucket
}

// WeekdayBucket is one weekday, Monday first
type WeekdayBucket struct {
	Weekday       string  `json:"weekday"`
	AvgDistanceKm float64 `json:"avg_distance_km"`
	Bucket
}

// Season is a meteorological season inside the calendar year
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

var seasonOrder = [4]Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

func seasonIndex(m time.Month) int {
	switch m {
	case time.December, time.January, time.February:
		return 0
	case time.March, time.April, time.May:
		return 1
	case time.June, time.July, time.August:
		return 2
	}
	return 3
}

// SeasonBucket is one season
type SeasonBucket struct {
	Season Season `json:"season"`
	Bucket
}

// TimeOfDay buckets the start hour of an activity
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)


// timeOfDayTieOrder decides the preferred time of day when counts are equal
var timeOfDayTieOrder = [4]TimeOfDay{TimeAfternoon, TimeEvening, TimeNight, TimeMorning}

// TimeOfDayFor maps an hour (0-23) onto its bucket
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour <= 11:
		return TimeMorning
	case hour >= 12 && hour <= 16:
		return TimeAfternoon
	case hour >= 17 && hour <= 20:
		return TimeEvening
	}
	return TimeNight
}

// Patterns describes when training happens
type Patterns struct {
	Hourly             [24]int                      `json:"hourly"`
	TimeOfDay          map[TimeOfDay]int            `json:"time_of_day"`
	MostActiveHour     activity.Optional[int]       `json:"most_active_hour"`
	PreferredTimeOfDay activity.Optional[TimeOfDay] `json:"preferred_time_of_day"`
	ActiveDays         int                          `json:"active_days"`
	Consistency        int                          `json:"consistency"`
	WeekendShare       activity.Optional[float64]   `json:"weekend_share"`
}

// Calendar is the time distribution of a year
type Calendar struct {
	Monthly          [12]MonthBucket           `json:"monthly"`
	Weekdays         [7]WeekdayBucket          `json:"weekdays"`
	Seasons          [4]SeasonBucket           `json:"seasons"`
	MostActiveSeason activity.Optional[Season] `json:"most_active_season"`
	Patterns         Patterns                  `json:"patterns"`
}

// mondayIndex maps time.Weekday onto a Monday-first index
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// BuildCalendar distributes activities over months, weekdays, seasons and
// hours. consistencyScale is the multiplier applied to the active day ratio.
func BuildCalendar(acts []activity.Activity, year int, consistencyScale float64) Calendar {
	var c Calendar
	for i := range c.Monthly {
		c.Monthly[i].Month = i + 1
	}
	for i := range c.Weekdays {
		c.Weekdays[i].Weekday = weekdayNames[i]
	}
	for i := range c.Seasons {
		c.Seasons[i].Season = seasonOrder[i]
	}
	c.Patterns.TimeOfDay = map[TimeOfDay]int{}

	weekend := 0
	for _, a := range acts {
		c.Monthly[a.Start.Month()-1].add(a)
		wd := mondayIndex(a.Start.Weekday())
		c.Weekdays[wd].add(a)
		if wd >= 5 {
			weekend++
		}
		c.Seasons[seasonIndex(a.Start.Month())].add(a)
		c.Patterns.Hourly[a.Start.Hour()]++
		c.Patterns.TimeOfDay[TimeOfDayFor(a.Start.Hour())]++
	}

	for i := range c.Weekdays {
		if n := c.Weekdays[i].Activities; n > 0 {
			c.Weekdays[i].AvgDistanceKm = c.Weekdays[i].DistanceKm / float64(n)
		}
	}

	bestSeason := -1
	for i, s := range c.Seasons {
		if s.Activities > 0 && (bestSeason < 0 || s.Activities > c.Seasons[bestSeason].Activities) {
			bestSeason = i
		}
	}
	if bestSeason >= 0 {
		c.MostActiveSeason = activity.Some(seasonOrder[bestSeason])
	}

	bestHour := -1
	for h, n := range c.Patterns.Hourly {
		if n > 0 && (bestHour < 0 || n > c.Patterns.Hourly[bestHour]) {
			bestHour = h
		}
	}
	if bestHour >= 0 {
		c.Patterns.MostActiveHour = activity.Some(bestHour)
	}

	bestCount := 0
	for _, tod := range timeOfDayTieOrder {
		if n := c.Patterns.TimeOfDay[tod]; n > bestCount {
			bestCount = n
			c.Patterns.PreferredTimeOfDay = activity.Some(tod)
		}
	}

	c.Patterns.ActiveDays = len(ActiveDates(acts))
	c.Patterns.Consistency = ConsistencyScore(c.Patterns.ActiveDays, daysInYear(year), consistencyScale)
	if len(acts) > 0 {
		c.Patterns.WeekendShare = activity.Some(float64(weekend) / float64(len(acts)))
	}
	return c
}

// ConsistencyScore is min(100, round(activeDays / days x scale))
func ConsistencyScore(activeDays, days int, scale float64) int {
	if days <= 0 {
		return 0
	}
	score := int(math.Round(float64(activeDays) / float64(days) * scale))
	if score > 100 {
		return 100
	}
	return score
}

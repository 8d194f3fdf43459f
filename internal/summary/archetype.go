package summary

import "slices"

// Archetype is a training personality
type Archetype string

const (
	ArchetypeAllRounder        Archetype = "all_rounder"
	ArchetypeClimber           Archetype = "climber"
	ArchetypeConsistencyKing   Archetype = "consistency_king"
	ArchetypeDistanceCollector Archetype = "distance_collector"
	ArchetypeEarlyRiser        Archetype = "early_riser"
	ArchetypeNightOwl          Archetype = "night_owl"
	ArchetypeWeekendWarrior    Archetype = "weekend_warrior"
	ArchetypeEnduranceChampion Archetype = "endurance_champion"
)

var archetypes = []Archetype{
	ArchetypeAllRounder,
	ArchetypeClimber,
	ArchetypeConsistencyKing,
	ArchetypeDistanceCollector,
	ArchetypeEarlyRiser,
	ArchetypeNightOwl,
	ArchetypeWeekendWarrior,
	ArchetypeEnduranceChampion,
}

// Valid reports whether a is a known archetype
func (a Archetype) Valid() bool {
	return slices.Contains(archetypes, a)
}

// ArchetypeRule assigns Archetype when When holds
type ArchetypeRule struct {
	Name      string    `yaml:"name"`
	Archetype Archetype `yaml:"archetype"`
	When      Condition `yaml:"when"`
}

// ArchetypeResult names the archetype and the rule that selected it
type ArchetypeResult struct {
	Archetype Archetype `json:"archetype"`
	Rule      string    `json:"rule"`
}

// DefaultRuleName is reported when no rule matches
const DefaultRuleName = "default"

// DefaultArchetypeRules returns the built-in rule order
func DefaultArchetypeRules() []ArchetypeRule {
	return []ArchetypeRule{
		{Name: "many_sports", Archetype: ArchetypeAllRounder,
			When: Condition{Metric: MetricDistinctSports, Op: OpGTE, Value: 4}},
		{Name: "high_elevation", Archetype: ArchetypeClimber,
			When: Condition{Metric: MetricTotalElevationM, Op: OpGT, Value: 30000}},
		{Name: "long_streak", Archetype: ArchetypeConsistencyKing,
			When: Condition{Metric: MetricLongestStreak, Op: OpGTE, Value: 14}},
		{Name: "high_distance", Archetype: ArchetypeDistanceCollector,
			When: Condition{Metric: MetricTotalDistanceKm, Op: OpGT, Value: 3000}},
		{Name: "morning_training", Archetype: ArchetypeEarlyRiser,
			When: Condition{Metric: LabelPreferredTimeOfDay, Op: OpEQ, Text: string(TimeMorning)}},
		{Name: "late_training", Archetype: ArchetypeNightOwl,
			When: Condition{Metric: LabelPreferredTimeOfDay, Op: OpIn, Values: []string{string(TimeEvening), string(TimeNight)}}},
		{Name: "steady_training", Archetype: ArchetypeEnduranceChampion,
			When: Condition{Metric: MetricConsistency, Op: OpGTE, Value: 60}},
	}
}

// ClassifyArchetype returns the first matching rule, or def when none match
func ClassifyArchetype(m Metrics, rules []ArchetypeRule, def Archetype) ArchetypeResult {
	for _, r := range rules {
		if r.When.Eval(m) {
			return ArchetypeResult{Archetype: r.Archetype, Rule: r.Name}
		}
	}
	return ArchetypeResult{Archetype: def, Rule: DefaultRuleName}
}

package summary

// Guard is a sample-size precondition on an achievement
type Guard struct {
	Metric string  `yaml:"metric" json:"metric"`
	Min    float64 `yaml:"min" json:"min"`
}

// AchievementDef is one catalogue entry. Entries that share a Group are
// tiers of the same badge and only the strongest unlocked tier is awarded.
type AchievementDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Group       string `yaml:"group,omitempty"`
	Condition          `yaml:",inline"`
	Requires    *Guard `yaml:"requires,omitempty"`
}

// GroupKey returns the tier group, defaulting to the id
func (d AchievementDef) GroupKey() string {
	if d.Group != "" {
		return d.Group
	}
	return d.ID
}

// Achievement is an unlocked catalogue entry
type Achievement struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Group       string  `json:"group"`
	Threshold   float64 `json:"threshold"`
	Value       float64 `json:"value"`
}

func (d AchievementDef) unlocked(m Metrics) bool {
	if d.Requires != nil {
		n, ok := m.Number(d.Requires.Metric)
		if !ok || n < d.Requires.Min {
			return false
		}
	}
	return d.Eval(m)
}

// stronger reports whether d is a harder tier than other
func (d AchievementDef) stronger(other AchievementDef) bool {
	if d.Op.lowerIsBetter() {
		return d.Value < other.Value
	}
	return d.Value > other.Value
}

// EvaluateAchievements evaluates every definition and keeps the strongest
// unlocked tier per group. Output follows catalogue order.
func EvaluateAchievements(m Metrics, cat Catalogue) []Achievement {
	best := map[string]int{}
	for i, def := range cat.Achievements {
		if !def.unlocked(m) {
			continue
		}
		g := def.GroupKey()
		if j, ok := best[g]; !ok || def.stronger(cat.Achievements[j]) {
			best[g] = i
		}
	}

	out := make([]Achievement, 0, len(best))
	for i, def := range cat.Achievements {
		if j, ok := best[def.GroupKey()]; !ok || j != i {
			continue
		}
		value, _ := m.Number(def.Metric)
		out = append(out, Achievement{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Group:       def.GroupKey(),
			Threshold:   def.Value,
			Value:       value,
		})
	}
	return out
}

func tier(group, id, name, desc, metric string, value float64) AchievementDef {
	return AchievementDef{
		ID:          id,
		Name:        name,
		Description: desc,
		Group:       group,
		Condition:   Condition{Metric: metric, Op: OpGTE, Value: value},
	}
}

func guarded(def AchievementDef, metric string, atLeast float64) AchievementDef {
	def.Requires = &Guard{Metric: metric, Min: atLeast}
	return def
}

// CatalogueVersion is the version of the built-in catalogue
const CatalogueVersion = "2024.1"

// DefaultCatalogue returns the built-in achievement catalogue
func DefaultCatalogue() Catalogue {
	return Catalogue{
		Version: CatalogueVersion,
		Achievements: []AchievementDef{
			tier("distance", "distance_500", "Distance Hunter", "500+ km covered", MetricTotalDistanceKm, 500),
			tier("distance", "distance_1000", "Thousand Club", "1,000+ km covered", MetricTotalDistanceKm, 1000),
			tier("distance", "distance_2500", "Kilometer Eater", "2,500+ km covered", MetricTotalDistanceKm, 2500),
			tier("distance", "distance_5000", "Globetrotter", "5,000+ km covered", MetricTotalDistanceKm, 5000),

			tier("elevation", "elevation_5k", "Hill King", "5,000+ m climbed", MetricTotalElevationM, 5000),
			tier("elevation", "elevation_10k", "Summit Seeker", "10,000+ m climbed", MetricTotalElevationM, 10000),
			tier("elevation", "elevation_25k", "Mountain Goat", "25,000+ m climbed", MetricTotalElevationM, 25000),
			tier("elevation", "elevation_50k", "Everest x5", "50,000+ m climbed", MetricTotalElevationM, 50000),

			tier("consistency", "consistent_50", "Regular", "Trained on 50+ days", MetricActiveDays, 50),
			tier("consistency", "consistent_100", "Steady", "Trained on 100+ days", MetricActiveDays, 100),
			tier("consistency", "consistent_200", "Iron Will", "Trained on 200+ days", MetricActiveDays, 200),
			tier("consistency", "consistent_300", "Unstoppable", "Trained on 300+ days", MetricActiveDays, 300),

			tier("streak", "streak_7", "Week Winner", "Active 7 days in a row", MetricLongestStreak, 7),
			tier("streak", "streak_14", "Two Week Warrior", "Active 14 days in a row", MetricLongestStreak, 14),
			tier("streak", "streak_30", "Month Warrior", "Active 30 days in a row", MetricLongestStreak, 30),

			guarded(AchievementDef{
				ID: "form_gct", Name: "Light Feet", Description: "Efficient running technique",
				Condition: Condition{Metric: MetricAvgGroundContactMs, Op: OpLT, Value: 240},
			}, MetricRunningFormSamples, 10),
			guarded(AchievementDef{
				ID: "form_cadence", Name: "Cadence King", Description: "Optimal running cadence",
				Condition: Condition{Metric: MetricAvgRunCadence, Op: OpGTE, Value: 180},
			}, MetricRunningFormSamples, 10),

			guarded(tier("power", "power_500", "Powerhouse", "500+ W peak power", MetricMaxPowerW, 500), MetricPowerRides, 5),
			guarded(tier("power", "power_1000", "Power Pack", "1,000+ W peak power", MetricMaxPowerW, 1000), MetricPowerRides, 5),

			tier("activities", "activities_50", "Riser", "50+ workouts completed", MetricTotalActivities, 50),
			tier("activities", "activities_100", "Centurion", "100+ workouts completed", MetricTotalActivities, 100),
			tier("activities", "activities_300", "Evergreen", "300+ workouts completed", MetricTotalActivities, 300),
			tier("activities", "activities_500", "Machine", "500+ workouts completed", MetricTotalActivities, 500),

			guarded(tier("high_impact", "high_impact_10", "Pusher", "10+ hard workouts", MetricHighImpactWorkouts, 10), MetricTrainingEffectSamples, 10),
			guarded(tier("high_impact", "high_impact_20", "Edge Walker", "20+ hard workouts", MetricHighImpactWorkouts, 20), MetricTrainingEffectSamples, 10),
			guarded(tier("high_impact", "high_impact_50", "Beast Mode", "50+ hard workouts", MetricHighImpactWorkouts, 50), MetricTrainingEffectSamples, 10),

			tier("variety", "variety_3", "Versatile", "3+ different activity types", MetricDistinctTypes, 3),
			tier("variety", "variety_5", "All-Rounder", "5+ different activity types", MetricDistinctTypes, 5),
			tier("variety", "variety_7", "Multi Talent", "7+ different activity types", MetricDistinctTypes, 7),

			tier("race_long", "race_marathon", "Marathoner", "Finished a marathon", MetricRaceDistanceKm, 42.195),
			tier("race_long", "race_half", "Half Marathoner", "Finished a half marathon", MetricRaceDistanceKm, 21.0975),
			tier("race_10k", "race_10k", "10K Finisher", "Ran 10 km in one go", MetricRecord10K, 1),
			tier("race_5k", "race_5k", "5K Finisher", "Ran 5 km in one go", MetricRecord5K, 1),

			tier("century_ride", "century_ride", "Century Rider", "Rode 100+ km in one go", MetricLongestRideKm, 100),

			tier("sweat", "sweat_50", "Drop Catcher", "50+ liters of sweat", MetricTotalSweatLossL, 50),
			tier("sweat", "sweat_100", "Sweat Master", "100+ liters of sweat", MetricTotalSweatLossL, 100),
			tier("sweat", "sweat_200", "Sweat Machine", "200+ liters of sweat", MetricTotalSweatLossL, 200),
			tier("sweat", "sweat_500", "Waterfall", "500+ liters of sweat", MetricTotalSweatLossL, 500),

			tier("cold_warrior", "cold_warrior", "Frost Proof", "10+ workouts below 5 C", MetricColdActivities, 10),
			tier("heat_warrior", "heat_warrior", "Heat Proof", "10+ workouts above 25 C", MetricHotActivities, 10),
		},
	}
}

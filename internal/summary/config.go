package summary

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidConfig is returned when thresholds, rules or the achievement
// catalogue are inconsistent
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Window is an inclusive distance tolerance for a reference race distance
type Window struct {
	MinMeters float64 `yaml:"min_m" json:"min_m"`
	MaxMeters float64 `yaml:"max_m" json:"max_m"`
}

// Contains reports whether meters falls inside the window
func (w Window) Contains(meters float64) bool {
	return meters >= w.MinMeters && meters <= w.MaxMeters
}

// RecordWindows holds the tolerance windows of the reference distances
type RecordWindows struct {
	FiveK        Window `yaml:"5k"`
	TenK         Window `yaml:"10k"`
	HalfMarathon Window `yaml:"half_marathon"`
	Marathon     Window `yaml:"marathon"`
}

// TrendConfig controls trend classification
type TrendConfig struct {
	ThresholdPercent float64 `yaml:"threshold_percent"`
	MinSamples       int     `yaml:"min_samples"`
}

// Tier awards Points when a metric passes Limit
type Tier struct {
	Limit  float64 `yaml:"limit"`
	Points float64 `yaml:"points"`
}

// FormConfig drives the running form score. Ground contact and vertical
// oscillation tiers apply below their limit, cadence tiers at or above it.
// Tiers are checked in order and the first match wins.
type FormConfig struct {
	Base                float64 `yaml:"base"`
	Max                 float64 `yaml:"max"`
	GroundContact       []Tier  `yaml:"ground_contact_ms"`
	VerticalOscillation []Tier  `yaml:"vertical_oscillation_cm"`
	Cadence             []Tier  `yaml:"cadence_spm"`
}

// SleepConfig sets the sleep score counters
type SleepConfig struct {
	PerfectScore   float64 `yaml:"perfect_score"`
	ExcellentScore float64 `yaml:"excellent_score"`
}

// TemperatureConfig sets the cold and hot activity thresholds in Celsius
type TemperatureConfig struct {
	ColdBelow float64 `yaml:"cold_below"`
	HotAbove  float64 `yaml:"hot_above"`
}

// ArchetypeConfig is the ordered rule list; the first matching rule wins
type ArchetypeConfig struct {
	Rules   []ArchetypeRule `yaml:"rules"`
	Default Archetype       `yaml:"default"`
}

// Catalogue is the versioned list of achievement definitions
type Catalogue struct {
	Version      string           `yaml:"version"`
	Achievements []AchievementDef `yaml:"achievements"`
}

// Config holds every threshold the engine uses
type Config struct {
	MaxHeartRate     float64           `yaml:"max_heart_rate"`
	RecordWindows    RecordWindows     `yaml:"record_windows"`
	Trend            TrendConfig       `yaml:"trend"`
	Form             FormConfig        `yaml:"form"`
	FTPFactor        float64           `yaml:"ftp_factor"`
	Sleep            SleepConfig       `yaml:"sleep"`
	ConsistencyScale float64           `yaml:"consistency_scale"`
	Temperature      TemperatureConfig `yaml:"temperature"`
	HighImpactEffect float64           `yaml:"high_impact_effect"`
	Archetypes       ArchetypeConfig   `yaml:"archetypes"`
	Catalogue        Catalogue         `yaml:"catalogue"`
}

// DefaultConfig returns the built-in thresholds, rules and catalogue
func DefaultConfig() Config {
	return Config{
		MaxHeartRate: 210,
		RecordWindows: RecordWindows{
			FiveK:        Window{MinMeters: 4900, MaxMeters: 5500},
			TenK:         Window{MinMeters: 9800, MaxMeters: 10500},
			HalfMarathon: Window{MinMeters: 21000, MaxMeters: 22000},
			Marathon:     Window{MinMeters: 42000, MaxMeters: 43000},
		},
		Trend: TrendConfig{ThresholdPercent: 3, MinSamples: 3},
		Form: FormConfig{
			Base:                50,
			Max:                 100,
			GroundContact:       []Tier{{Limit: 240, Points: 15}, {Limit: 260, Points: 10}, {Limit: 280, Points: 5}},
			VerticalOscillation: []Tier{{Limit: 8, Points: 15}, {Limit: 9, Points: 10}, {Limit: 10, Points: 5}},
			Cadence:             []Tier{{Limit: 180, Points: 15}, {Limit: 170, Points: 10}, {Limit: 160, Points: 5}},
		},
		FTPFactor:        0.95,
		Sleep:            SleepConfig{PerfectScore: 100, ExcellentScore: 85},
		ConsistencyScale: 200,
		Temperature:      TemperatureConfig{ColdBelow: 5, HotAbove: 25},
		HighImpactEffect: 4,
		Archetypes: ArchetypeConfig{
			Rules:   DefaultArchetypeRules(),
			Default: ArchetypeEnduranceChampion,
		},
		Catalogue: DefaultCatalogue(),
	}
}

// Validate checks the configuration for internal consistency
func (c Config) Validate() error {
	thresholds := c.ValidateThresholds()
	catalogue := c.Catalogue.Validate()
	if thresholds == nil && catalogue == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(thresholds, catalogue))
}

type checker struct {
	errs []error
}

func (ch *checker) check(ok bool, format string, args ...any) {
	if !ok {
		ch.errs = append(ch.errs, fmt.Errorf(format, args...))
	}
}

func (ch *checker) add(prefix string, err error) {
	if err != nil {
		ch.errs = append(ch.errs, fmt.Errorf("%s: %w", prefix, err))
	}
}

func (ch *checker) err() error {
	return errors.Join(ch.errs...)
}

// ValidateThresholds checks everything except the achievement catalogue
func (c Config) ValidateThresholds() error {
	var ch checker

	ch.check(c.MaxHeartRate > 0, "max_heart_rate must be positive")
	for _, w := range []struct {
		name string
		Window
	}{
		{"5k", c.RecordWindows.FiveK},
		{"10k", c.RecordWindows.TenK},
		{"half_marathon", c.RecordWindows.HalfMarathon},
		{"marathon", c.RecordWindows.Marathon},
	} {
		ch.check(w.MinMeters > 0 && w.MaxMeters >= w.MinMeters, "record window %s: need 0 < min_m <= max_m", w.name)
	}
	ch.check(c.Trend.ThresholdPercent >= 0, "trend.threshold_percent must not be negative")
	ch.check(c.Trend.MinSamples >= 3, "trend.min_samples must be at least 3")
	ch.check(c.Form.Max >= c.Form.Base, "form.max must be at least form.base")
	ch.check(c.FTPFactor > 0 && c.FTPFactor <= 1, "ftp_factor must be in (0, 1]")
	ch.check(c.Sleep.PerfectScore > 0, "sleep.perfect_score must be positive")
	ch.check(c.Sleep.ExcellentScore > 0 && c.Sleep.ExcellentScore <= c.Sleep.PerfectScore,
		"sleep.excellent_score must be in (0, perfect_score]")
	ch.check(c.ConsistencyScale > 0, "consistency_scale must be positive")
	ch.check(c.Temperature.ColdBelow < c.Temperature.HotAbove, "temperature.cold_below must be below hot_above")
	ch.check(c.HighImpactEffect > 0, "high_impact_effect must be positive")

	ch.check(c.Archetypes.Default.Valid(), "archetypes.default: unknown archetype %q", c.Archetypes.Default)
	ruleNames := map[string]bool{}
	for i, r := range c.Archetypes.Rules {
		ch.check(r.Name != "", "archetype rule %d: name is required", i)
		ch.check(!ruleNames[r.Name], "archetype rule %q: duplicate name", r.Name)
		ruleNames[r.Name] = true
		ch.check(r.Archetype.Valid(), "archetype rule %q: unknown archetype %q", r.Name, r.Archetype)
		ch.add(fmt.Sprintf("archetype rule %q", r.Name), r.When.validate())
	}
	return ch.err()
}

// Validate checks ids, conditions and tier groups of the catalogue
func (cat Catalogue) Validate() error {
	var ch checker

	ch.check(cat.Version != "", "catalogue.version is required")
	ids := map[string]bool{}
	groupOps := map[string]Op{}
	for i, def := range cat.Achievements {
		ch.check(def.ID != "", "achievement %d: id is required", i)
		ch.check(!ids[def.ID], "achievement %q: duplicate id", def.ID)
		ids[def.ID] = true
		ch.check(def.Name != "", "achievement %q: name is required", def.ID)
		ch.add(fmt.Sprintf("achievement %q", def.ID), def.Condition.validate())
		if def.Requires != nil {
			ch.check(IsNumericMetric(def.Requires.Metric), "achievement %q: requires: unknown metric %q", def.ID, def.Requires.Metric)
		}
		group := def.GroupKey()
		if op, ok := groupOps[group]; ok {
			ch.check(op.lowerIsBetter() == def.Op.lowerIsBetter(),
				"achievement %q: group %q mixes lower and higher bound tiers", def.ID, group)
		}
		groupOps[group] = def.Op
	}
	return ch.err()
}

// Engine computes year summaries. It is immutable and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine bound to a private copy of
// it. Later changes to cfg do not reach the engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg.Clone()}, nil
}

// Config returns a copy of the configuration the engine was built with
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

// Clone returns a deep copy of c that shares no slices or pointers with it
func (c Config) Clone() Config {
	out := c
	out.Form.GroundContact = slices.Clone(c.Form.GroundContact)
	out.Form.VerticalOscillation = slices.Clone(c.Form.VerticalOscillation)
	out.Form.Cadence = slices.Clone(c.Form.Cadence)

	if c.Archetypes.Rules != nil {
		out.Archetypes.Rules = make([]ArchetypeRule, len(c.Archetypes.Rules))
		for i, r := range c.Archetypes.Rules {
			r.When = r.When.clone()
			out.Archetypes.Rules[i] = r
		}
	}

	if c.Catalogue.Achievements != nil {
		out.Catalogue.Achievements = make([]AchievementDef, len(c.Catalogue.Achievements))
		for i, d := range c.Catalogue.Achievements {
			d.Condition = d.Condition.clone()
			if d.Requires != nil {
				g := *d.Requires
				d.Requires = &g
			}
			out.Catalogue.Achievements[i] = d
		}
	}
	return out
}

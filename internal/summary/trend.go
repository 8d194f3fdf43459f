package summary

import (
	"math"
	"sort"

	"github.com/joshdurbin/fitness-wrapped/internal/activity"
)

// Trend is the direction of a metric over the year
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// PercentChange is (cur - prev) / prev x 100. A zero baseline yields +100
// when cur is positive and 0 otherwise.
func PercentChange(prev, cur float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return (cur - prev) / math.Abs(prev) * 100
}

// TrendResult is the period comparison behind a trend
type TrendResult struct {
	Trend         Trend   `json:"trend"`
	StartAverage  float64 `json:"start_average"`
	EndAverage    float64 `json:"end_average"`
	ChangePercent float64 `json:"change_percent"`
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ClassifyTrend compares the mean of the first third of series with the
// mean of the last third. It reports false when the series has fewer than
// minSamples points.
func ClassifyTrend(series []float64, thresholdPct float64, higherIsBetter bool, minSamples int) (TrendResult, bool) {
	if minSamples < 3 {
		minSamples = 3
	}
	n := len(series)
	if n < minSamples {
		return TrendResult{}, false
	}
	k := n / 3
	start := mean(series[:k])
	end := mean(series[n-k:])
	change := PercentChange(start, end)

	res := TrendResult{Trend: TrendStable, StartAverage: start, EndAverage: end, ChangePercent: change}
	directed := change
	if !higherIsBetter {
		directed = -change
	}
	switch {
	case directed > thresholdPct:
		res.Trend = TrendImproving
	case directed < -thresholdPct:
		res.Trend = TrendDeclining
	}
	return res, true
}

// TrendAnalysis summarizes one sensor metric of a sport over the year
type TrendAnalysis struct {
	Sport          activity.Sport             `json:"sport"`
	Metric         string                     `json:"metric"`
	DataPoints     int                        `json:"data_points"`
	CurrentAverage float64                    `json:"current_average"`
	EstimatedMax   activity.Optional[float64] `json:"estimated_max"`
	StartAverage   float64                    `json:"start_average"`
	EndAverage     float64                    `json:"end_average"`
	ChangePercent  float64                    `json:"change_percent"`
	Trend          Trend                      `json:"trend"`
}

func tierPoints(v float64, tiers []Tier, below bool) float64 {
	for _, t := range tiers {
		if (below && v < t.Limit) || (!below && v >= t.Limit) {
			return t.Points
		}
	}
	return 0
}

// FormScore rates running form from ground contact time, vertical
// oscillation and cadence. Absent metrics add nothing.
func FormScore(cfg FormConfig, gct, vo, cadence activity.Optional[float64]) float64 {
	score := cfg.Base
	if v, ok := gct.Get(); ok {
		score += tierPoints(v, cfg.GroundContact, true)
	}
	if v, ok := vo.Get(); ok {
		score += tierPoints(v, cfg.VerticalOscillation, true)
	}
	if v, ok := cadence.Get(); ok {
		score += tierPoints(v, cfg.Cadence, false)
	}
	return math.Max(0, math.Min(cfg.Max, score))
}

type stat struct {
	sum   float64
	count int
	min   float64
	max   float64
}

func (s *stat) add(v float64) {
	if s.count == 0 || v < s.min {
		s.min = v
	}
	if s.count == 0 || v > s.max {
		s.max = v
	}
	s.sum += v
	s.count++
}

func (s *stat) addOptional(o activity.Optional[float64]) {
	if v, ok := o.Get(); ok && v > 0 {
		s.add(v)
	}
}

func (s stat) avg() activity.Optional[float64] {
	if s.count == 0 {
		return activity.None[float64]()
	}
	return activity.Some(s.sum / float64(s.count))
}

func (s stat) lowest() activity.Optional[float64] {
	if s.count == 0 {
		return activity.None[float64]()
	}
	return activity.Some(s.min)
}

func (s stat) highest() activity.Optional[float64] {
	if s.count == 0 {
		return activity.None[float64]()
	}
	return activity.Some(s.max)
}

// RunningForm summarizes running dynamics
type RunningForm struct {
	DataPoints                int                        `json:"data_points"`
	AvgGroundContactMs        activity.Optional[float64] `json:"avg_ground_contact_ms"`
	AvgVerticalOscillationCm  activity.Optional[float64] `json:"avg_vertical_oscillation_cm"`
	AvgStrideLengthM          activity.Optional[float64] `json:"avg_stride_length_m"`
	AvgCadence                activity.Optional[float64] `json:"avg_cadence"`
	BestGroundContactMs       activity.Optional[float64] `json:"best_ground_contact_ms"`
	BestVerticalOscillationCm activity.Optional[float64] `json:"best_vertical_oscillation_cm"`
	BestCadence               activity.Optional[float64] `json:"best_cadence"`
	EfficiencyScore           float64                    `json:"efficiency_score"`
	Trend                     *TrendAnalysis             `json:"trend"`
}

func hasFormData(a activity.Activity) bool {
	return a.GroundContactTime.IsSet() || a.VerticalOscillation.IsSet() || a.AvgCadence.IsSet() || a.StrideLength.IsSet()
}

// AnalyzeRunningForm returns nil when no run carries running dynamics
func AnalyzeRunningForm(acts []activity.Activity, cfg Config) *RunningForm {
	var gct, vo, stride, cadence stat
	var scores []float64
	for _, a := range acts {
		if a.Sport != activity.SportRunning || !hasFormData(a) {
			continue
		}
		gct.addOptional(a.GroundContactTime)
		vo.addOptional(a.VerticalOscillation)
		stride.addOptional(a.StrideLength)
		cadence.addOptional(a.AvgCadence)
		scores = append(scores, FormScore(cfg.Form, a.GroundContactTime, a.VerticalOscillation, a.AvgCadence))
	}
	if len(scores) == 0 {
		return nil
	}

	rf := &RunningForm{
		DataPoints:                len(scores),
		AvgGroundContactMs:        gct.avg(),
		AvgVerticalOscillationCm:  vo.avg(),
		AvgStrideLengthM:          stride.avg(),
		AvgCadence:                cadence.avg(),
		BestGroundContactMs:       gct.lowest(),
		BestVerticalOscillationCm: vo.lowest(),
		BestCadence:               cadence.highest(),
		EfficiencyScore:           FormScore(cfg.Form, gct.avg(), vo.avg(), cadence.avg()),
	}

	if res, ok := ClassifyTrend(scores, cfg.Trend.ThresholdPercent, true, cfg.Trend.MinSamples); ok {
		best := scores[0]
		for _, s := range scores[1:] {
			best = math.Max(best, s)
		}
		rf.Trend = &TrendAnalysis{
			Sport:          activity.SportRunning,
			Metric:         "form_score",
			DataPoints:     len(scores),
			CurrentAverage: mean(scores),
			EstimatedMax:   activity.Some(best),
			StartAverage:   res.StartAverage,
			EndAverage:     res.EndAverage,
			ChangePercent:  res.ChangePercent,
			Trend:          res.Trend,
		}
	}
	return rf
}

// CyclingPower summarizes power meter rides
type CyclingPower struct {
	DataPoints          int                        `json:"data_points"`
	AvgPowerW           activity.Optional[float64] `json:"avg_power_w"`
	MaxPowerW           activity.Optional[float64] `json:"max_power_w"`
	AvgNormalizedPowerW activity.Optional[float64] `json:"avg_normalized_power_w"`
	EstimatedFTPW       activity.Optional[float64] `json:"estimated_ftp_w"`
	FTPTrend            *TrendAnalysis             `json:"ftp_trend"`
}

func hasPowerData(a activity.Activity) bool {
	return a.AvgPower.IsSet() || a.MaxPower.IsSet() || a.NormalizedPower.IsSet() || a.Max20MinPower.IsSet()
}

// AnalyzeCyclingPower returns nil when no ride carries power data
func AnalyzeCyclingPower(acts []activity.Activity, cfg Config) *CyclingPower {
	var avg, maxP, np stat
	var ftp []float64
	rides := 0
	for _, a := range acts {
		if a.Sport != activity.SportCycling || !hasPowerData(a) {
			continue
		}
		rides++
		avg.addOptional(a.AvgPower)
		maxP.addOptional(a.MaxPower)
		np.addOptional(a.NormalizedPower)
		if v, ok := a.Max20MinPower.Get(); ok && v > 0 {
			ftp = append(ftp, v*cfg.FTPFactor)
		}
	}
	if rides == 0 {
		return nil
	}

	cp := &CyclingPower{
		DataPoints:          rides,
		AvgPowerW:           avg.avg(),
		MaxPowerW:           maxP.highest(),
		AvgNormalizedPowerW: np.avg(),
	}
	if len(ftp) > 0 {
		best := ftp[0]
		for _, v := range ftp[1:] {
			best = math.Max(best, v)
		}
		cp.EstimatedFTPW = activity.Some(best)
	}

	if res, ok := ClassifyTrend(ftp, cfg.Trend.ThresholdPercent, true, cfg.Trend.MinSamples); ok {
		cp.FTPTrend = &TrendAnalysis{
			Sport:          activity.SportCycling,
			Metric:         "ftp_w",
			DataPoints:     len(ftp),
			CurrentAverage: avg.avg().OrZero(),
			EstimatedMax:   cp.EstimatedFTPW,
			StartAverage:   res.StartAverage,
			EndAverage:     res.EndAverage,
			ChangePercent:  res.ChangePercent,
			Trend:          res.Trend,
		}
	}
	return cp
}

// TrainingEffect summarizes the training effect scores of the year
type TrainingEffect struct {
	DataPoints         int     `json:"data_points"`
	AvgAerobicEffect   float64 `json:"avg_aerobic_effect"`
	AvgAnaerobicEffect float64 `json:"avg_anaerobic_effect"`
	MaxAerobicEffect   float64 `json:"max_aerobic_effect"`
	MaxAnaerobicEffect float64 `json:"max_anaerobic_effect"`
	DominantLabel      string  `json:"dominant_label,omitempty"`
	HighImpactWorkouts int     `json:"high_impact_workouts"`
}

// AnalyzeTrainingEffect returns nil when no activity carries a training
// effect. Activities count as high impact when either effect reaches
// highImpact.
func AnalyzeTrainingEffect(acts []activity.Activity, highImpact float64) *TrainingEffect {
	var aerobic, anaerobic stat
	labels := map[string]int{}
	te := &TrainingEffect{}
	for _, a := range acts {
		ae, hasAe := a.AerobicEffect.Get()
		an, hasAn := a.AnaerobicEffect.Get()
		if !hasAe && !hasAn {
			continue
		}
		te.DataPoints++
		if hasAe {
			aerobic.add(ae)
		}
		if hasAn {
			anaerobic.add(an)
		}
		if (hasAe && ae >= highImpact) || (hasAn && an >= highImpact) {
			te.HighImpactWorkouts++
		}
		if a.TrainingEffectLabel != "" {
			labels[a.TrainingEffectLabel]++
		}
	}
	if te.DataPoints == 0 {
		return nil
	}

	te.AvgAerobicEffect = aerobic.avg().OrZero()
	te.AvgAnaerobicEffect = anaerobic.avg().OrZero()
	te.MaxAerobicEffect = aerobic.max
	te.MaxAnaerobicEffect = anaerobic.max

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if te.DominantLabel == "" || labels[name] > labels[te.DominantLabel] {
			te.DominantLabel = name
		}
	}
	return te
}

package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/trophic/components"
)

// SpeciesTrialStats holds one species' results for one finished trial.
type SpeciesTrialStats struct {
	Trial   int    `csv:"trial"`
	Ticks   int64  `csv:"ticks"`
	Reason  string `csv:"reason"`
	Species string `csv:"species"`
	Tier    int    `csv:"tier"`

	// Population
	Population int `csv:"population"`
	AliveAtEnd int `csv:"alive_at_end"`

	// Events during the trial
	Meals        int     `csv:"meals"`
	Eaten        int     `csv:"eaten"`
	Starved      int     `csv:"starved"`
	EnergyGained float64 `csv:"energy_gained"`

	// Survival
	FittestID         uint32  `csv:"fittest_id"`
	FittestAliveTicks int32   `csv:"fittest_alive_ticks"`
	MedianAliveTicks  float64 `csv:"median_alive_ticks"`

	// Heritable trait distribution over the population
	Traits TraitStats `csv:"-"`

	SpeedMean   float64 `csv:"speed_mean"`
	SpeedStd    float64 `csv:"speed_std"`
	BurstMean   float64 `csv:"burst_mean"`
	BurstStd    float64 `csv:"burst_std"`
	RecoverMean float64 `csv:"recover_mean"`
	RecoverStd  float64 `csv:"recover_std"`
	MassMean    float64 `csv:"mass_mean"`
	MassStd     float64 `csv:"mass_std"`
	VisionMean  float64 `csv:"vision_mean"`
	VisionStd   float64 `csv:"vision_std"`
}

// TraitStats holds the mean and sample standard deviation of each trait.
type TraitStats struct {
	Mean components.Traits
	Std  components.Traits
}

// ComputeTraitStats summarizes a population's traits. The deviation of a
// population smaller than two is 0.
func ComputeTraitStats(traits []components.Traits) TraitStats {
	var ts TraitStats
	if len(traits) == 0 {
		return ts
	}

	col := make([]float64, len(traits))
	summarize := func(get func(components.Traits) float64) (float64, float64) {
		for i, t := range traits {
			col[i] = get(t)
		}
		if len(col) < 2 {
			return col[0], 0
		}
		return stat.MeanStdDev(col, nil)
	}

	ts.Mean.Speed, ts.Std.Speed = summarize(func(t components.Traits) float64 { return t.Speed })
	ts.Mean.Burst, ts.Std.Burst = summarize(func(t components.Traits) float64 { return t.Burst })
	ts.Mean.Recover, ts.Std.Recover = summarize(func(t components.Traits) float64 { return t.Recover })
	ts.Mean.Mass, ts.Std.Mass = summarize(func(t components.Traits) float64 { return t.Mass })
	ts.Mean.Vision, ts.Std.Vision = summarize(func(t components.Traits) float64 { return t.Vision })
	return ts
}

// MedianAliveTicks returns the empirical median of the given counts.
func MedianAliveTicks(ticks []int32) float64 {
	if len(ticks) == 0 {
		return 0
	}
	sorted := make([]float64, len(ticks))
	for i, t := range ticks {
		sorted[i] = float64(t)
	}
	slices.Sort(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// flattenTraits copies Traits into the CSV columns.
func (s *SpeciesTrialStats) flattenTraits() {
	s.SpeedMean, s.SpeedStd = s.Traits.Mean.Speed, s.Traits.Std.Speed
	s.BurstMean, s.BurstStd = s.Traits.Mean.Burst, s.Traits.Std.Burst
	s.RecoverMean, s.RecoverStd = s.Traits.Mean.Recover, s.Traits.Std.Recover
	s.MassMean, s.MassStd = s.Traits.Mean.Mass, s.Traits.Std.Mass
	s.VisionMean, s.VisionStd = s.Traits.Mean.Vision, s.Traits.Std.Vision
}

// LogValue implements slog.LogValuer for structured logging.
func (s SpeciesTrialStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("population", s.Population),
		slog.Int("alive_at_end", s.AliveAtEnd),
		slog.Int("meals", s.Meals),
		slog.Int("eaten", s.Eaten),
		slog.Int("starved", s.Starved),
		slog.Int("fittest_alive_ticks", int(s.FittestAliveTicks)),
		slog.Float64("median_alive_ticks", s.MedianAliveTicks),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("vision_mean", s.VisionMean),
		slog.Float64("mass_mean", s.MassMean),
	)
}

// TrialSummary is the complete record of one finished trial.
type TrialSummary struct {
	Trial   int
	Ticks   int64
	Reason  string
	Species []SpeciesTrialStats
}

// LogValue implements slog.LogValuer for structured logging.
func (t TrialSummary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("trial", t.Trial),
		slog.Int64("ticks", t.Ticks),
		slog.String("reason", t.Reason),
	}
	for _, s := range t.Species {
		if s.Population == 0 {
			continue
		}
		attrs = append(attrs, slog.Any(s.Species, s))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the summary using slog.
func (t TrialSummary) LogStats() {
	slog.Info("trial_ended", "summary", t)
}
